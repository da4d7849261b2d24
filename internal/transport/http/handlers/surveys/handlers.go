package surveyhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/org"
	"hrportal/internal/domain/survey"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Store *survey.Store
	Org   *org.Store
}

func NewHandler(store *survey.Store, orgStore *org.Store) *Handler {
	return &Handler{Store: store, Org: orgStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/surveys", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.HandleList)
		r.Get("/{surveyID}", h.HandleGet)
		r.Post("/{surveyID}/responses", h.HandleSubmitResponse)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR))
			r.Post("/", h.HandleCreate)
			r.Put("/{surveyID}", h.HandleUpdate)
			r.Delete("/{surveyID}", h.HandleDelete)
			r.Post("/{surveyID}/questions", h.HandleAddQuestion)
			r.Put("/{surveyID}/questions/{questionID}", h.HandleUpdateQuestion)
			r.Delete("/{surveyID}/questions/{questionID}", h.HandleDeleteQuestion)
			r.Get("/{surveyID}/responses", h.HandleListResponses)
		})
	})

	// Flat aliases matching the console's wire contract.
	r.Route("/survey-responses", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.HandleSubmitResponseFlat)
		r.Post("/{responseID}/answers", h.HandleAddAnswer)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).
			Get("/", h.HandleListResponsesFlat)
	})
}

// HandleList gives HR and admin the full catalog; everyone else only sees
// surveys targeting their role and department.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	surveys, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "survey_list_failed", "failed to list surveys", middleware.GetRequestID(r.Context()))
		return
	}

	if actor.Role == auth.RoleAdmin || actor.Role == auth.RoleHR {
		api.Success(w, surveys, middleware.GetRequestID(r.Context()))
		return
	}

	departmentID := h.actorDepartment(r, actor)
	now := time.Now()
	visible := []survey.Survey{}
	for _, s := range surveys {
		if survey.Open(s, now) && survey.VisibleTo(s, actor.Role, departmentID) {
			visible = append(visible, s)
		}
	}
	api.Success(w, visible, middleware.GetRequestID(r.Context()))
}

func (h *Handler) actorDepartment(r *http.Request, actor auth.UserContext) string {
	employee, err := h.Org.GetEmployee(r.Context(), actor.UserID)
	if err != nil {
		return ""
	}
	return employee.DepartmentID
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	s, err := h.loadWithQuestions(r, chi.URLParam(r, "surveyID"))
	if err != nil {
		h.failLookup(w, r, err)
		return
	}
	if actor.Role != auth.RoleAdmin && actor.Role != auth.RoleHR {
		if !survey.VisibleTo(s, actor.Role, h.actorDepartment(r, actor)) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this survey", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, s, middleware.GetRequestID(r.Context()))
}

func (h *Handler) loadWithQuestions(r *http.Request, surveyID string) (survey.Survey, error) {
	s, err := h.Store.Get(r.Context(), surveyID)
	if err != nil {
		return survey.Survey{}, err
	}
	questions, err := h.Store.ListQuestions(r.Context(), surveyID)
	if err != nil {
		return survey.Survey{}, err
	}
	s.Questions = questions
	return s, nil
}

type surveyPayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Type               string   `json:"type"`
	URL                string   `json:"url"`
	TargetDepartmentID string   `json:"target_department_id"`
	TargetRoles        []string `json:"target_roles"`
	IsActive           *bool    `json:"is_active"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
}

func decodeSurvey(w http.ResponseWriter, r *http.Request) (survey.Survey, bool) {
	var payload surveyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return survey.Survey{}, false
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "survey title is required")
	v.Enum("type", payload.Type, []string{survey.TypeInternal, survey.TypeExternal}, "must be internal or external")
	if strings.TrimSpace(payload.Type) == "" {
		payload.Type = survey.TypeInternal
	}
	if payload.Type == survey.TypeExternal && strings.TrimSpace(payload.URL) == "" {
		v.Add("url", "external surveys require a url")
	}
	for _, role := range payload.TargetRoles {
		if !auth.ValidRole(role) {
			v.Add("target_roles", "contains an unknown role")
			break
		}
	}

	var startDate, endDate *time.Time
	if strings.TrimSpace(payload.StartDate) != "" {
		if parsed, ok := v.Date("start_date", payload.StartDate); ok {
			startDate = &parsed
		}
	}
	if strings.TrimSpace(payload.EndDate) != "" {
		if parsed, ok := v.Date("end_date", payload.EndDate); ok {
			endDate = &parsed
		}
	}
	if startDate != nil && endDate != nil {
		v.DateOrder("start_date", *startDate, "end_date", *endDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return survey.Survey{}, false
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	return survey.Survey{
		Title:              strings.TrimSpace(payload.Title),
		Description:        strings.TrimSpace(payload.Description),
		Type:               strings.TrimSpace(payload.Type),
		URL:                strings.TrimSpace(payload.URL),
		TargetDepartmentID: strings.TrimSpace(payload.TargetDepartmentID),
		TargetRoles:        payload.TargetRoles,
		IsActive:           isActive,
		StartDate:          startDate,
		EndDate:            endDate,
	}, true
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	s, ok := decodeSurvey(w, r)
	if !ok {
		return
	}
	s.CreatedBy = actor.UserID

	id, err := h.Store.Create(r.Context(), s)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "survey_create_failed", "failed to create survey", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "survey_create_failed", "failed to load survey", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

// guardMutable rejects edits once the collection window has opened.
func (h *Handler) guardMutable(w http.ResponseWriter, r *http.Request, surveyID string) (survey.Survey, bool) {
	s, err := h.Store.Get(r.Context(), surveyID)
	if err != nil {
		h.failLookup(w, r, err)
		return survey.Survey{}, false
	}
	if !survey.Mutable(s.StartDate, time.Now()) {
		api.Fail(w, http.StatusForbidden, "survey_started", survey.MsgStartedImmutable, middleware.GetRequestID(r.Context()))
		return survey.Survey{}, false
	}
	return s, true
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	if _, ok := h.guardMutable(w, r, surveyID); !ok {
		return
	}

	s, ok := decodeSurvey(w, r)
	if !ok {
		return
	}
	if err := h.Store.Update(r.Context(), surveyID, s); err != nil {
		h.failLookup(w, r, err)
		return
	}

	updated, err := h.loadWithQuestions(r, surveyID)
	if err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	if _, ok := h.guardMutable(w, r, surveyID); !ok {
		return
	}

	if err := h.Store.Delete(r.Context(), surveyID); err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type questionPayload struct {
	QuestionText string   `json:"question_text"`
	Kind         string   `json:"kind"`
	Options      []string `json:"options"`
	Position     int      `json:"position"`
}

func decodeQuestion(w http.ResponseWriter, r *http.Request, surveyID string) (survey.Question, bool) {
	var payload questionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return survey.Question{}, false
	}

	v := shared.NewValidator()
	v.Required("question_text", payload.QuestionText, "question text is required")
	v.Enum("kind", payload.Kind, []string{survey.KindText, survey.KindChoice}, "must be text or choice")
	if strings.TrimSpace(payload.Kind) == "" {
		payload.Kind = survey.KindText
	}
	if payload.Kind == survey.KindChoice && len(payload.Options) < 2 {
		v.Add("options", "choice questions need at least two options")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return survey.Question{}, false
	}

	return survey.Question{
		SurveyID:     surveyID,
		QuestionText: strings.TrimSpace(payload.QuestionText),
		Kind:         strings.TrimSpace(payload.Kind),
		Options:      payload.Options,
		Position:     payload.Position,
	}, true
}

func (h *Handler) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	if _, ok := h.guardMutable(w, r, surveyID); !ok {
		return
	}

	q, ok := decodeQuestion(w, r, surveyID)
	if !ok {
		return
	}

	id, err := h.Store.CreateQuestion(r.Context(), q)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "question_create_failed", "failed to create question", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.GetQuestion(r.Context(), surveyID, id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "question_create_failed", "failed to load question", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	if _, ok := h.guardMutable(w, r, surveyID); !ok {
		return
	}

	q, ok := decodeQuestion(w, r, surveyID)
	if !ok {
		return
	}

	questionID := chi.URLParam(r, "questionID")
	if err := h.Store.UpdateQuestion(r.Context(), surveyID, questionID, q); err != nil {
		h.failLookup(w, r, err)
		return
	}
	updated, err := h.Store.GetQuestion(r.Context(), surveyID, questionID)
	if err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	if _, ok := h.guardMutable(w, r, surveyID); !ok {
		return
	}

	if err := h.Store.DeleteQuestion(r.Context(), surveyID, chi.URLParam(r, "questionID")); err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type responsePayload struct {
	SurveyID string `json:"survey_id"`
	Answers  []struct {
		QuestionID string `json:"question_id"`
		AnswerText string `json:"answer_text"`
	} `json:"answers"`
}

func (h *Handler) HandleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var payload responsePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	h.submitResponse(w, r, chi.URLParam(r, "surveyID"), payload)
}

func (h *Handler) HandleSubmitResponseFlat(w http.ResponseWriter, r *http.Request) {
	var payload responsePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if strings.TrimSpace(payload.SurveyID) == "" {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "survey_id", Reason: "survey_id is required"}})
		return
	}
	h.submitResponse(w, r, payload.SurveyID, payload)
}

func (h *Handler) submitResponse(w http.ResponseWriter, r *http.Request, surveyID string, payload responsePayload) {
	actor, _ := middleware.GetUser(r.Context())

	s, err := h.loadWithQuestions(r, surveyID)
	if err != nil {
		h.failLookup(w, r, err)
		return
	}

	now := time.Now()
	if !survey.Open(s, now) {
		api.Fail(w, http.StatusConflict, "invalid_state", "survey is not open for responses", middleware.GetRequestID(r.Context()))
		return
	}
	if !survey.VisibleTo(s, actor.Role, h.actorDepartment(r, actor)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "survey does not target this account", middleware.GetRequestID(r.Context()))
		return
	}
	if s.Type == survey.TypeExternal {
		api.Fail(w, http.StatusConflict, "invalid_state", "external surveys are answered at their url", middleware.GetRequestID(r.Context()))
		return
	}

	known := map[string]survey.Question{}
	for _, q := range s.Questions {
		known[q.ID] = q
	}
	v := shared.NewValidator()
	if len(payload.Answers) == 0 {
		v.Add("answers", "at least one answer is required")
	}
	for _, a := range payload.Answers {
		q, ok := known[a.QuestionID]
		if !ok {
			v.Add("answers", "references an unknown question")
			continue
		}
		if strings.TrimSpace(a.AnswerText) == "" {
			v.Add("answers", "answer text is required")
		}
		if q.Kind == survey.KindChoice && !containsOption(q.Options, a.AnswerText) {
			v.Add("answers", "answer is not one of the question's options")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	responseID, err := h.Store.CreateResponse(r.Context(), surveyID, actor.UserID)
	if err != nil {
		if errors.Is(err, survey.ErrDuplicate) {
			api.Fail(w, http.StatusConflict, "already_responded", "this survey has already been answered", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "response_failed", "failed to record response", middleware.GetRequestID(r.Context()))
		return
	}
	for _, a := range payload.Answers {
		if _, err := h.Store.AddAnswer(r.Context(), responseID, a.QuestionID, strings.TrimSpace(a.AnswerText)); err != nil {
			api.Fail(w, http.StatusInternalServerError, "response_failed", "failed to record response", middleware.GetRequestID(r.Context()))
			return
		}
	}

	api.Created(w, map[string]string{"id": responseID, "status": "submitted"}, middleware.GetRequestID(r.Context()))
}

type answerPayload struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// HandleAddAnswer appends an answer to the caller's own response.
func (h *Handler) HandleAddAnswer(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	responseID := chi.URLParam(r, "responseID")

	ownerID, err := h.Store.ResponseOwner(r.Context(), responseID)
	if err != nil {
		if errors.Is(err, survey.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "response not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal", "survey operation failed", middleware.GetRequestID(r.Context()))
		return
	}
	if ownerID != actor.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to modify this response", middleware.GetRequestID(r.Context()))
		return
	}

	var payload answerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("question_id", payload.QuestionID, "question_id is required")
	v.Required("answer_text", payload.AnswerText, "answer text is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.AddAnswer(r.Context(), responseID, strings.TrimSpace(payload.QuestionID), strings.TrimSpace(payload.AnswerText))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "response_failed", "failed to record answer", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func containsOption(options []string, answer string) bool {
	answer = strings.TrimSpace(answer)
	for _, option := range options {
		if strings.TrimSpace(option) == answer {
			return true
		}
	}
	return false
}

func (h *Handler) HandleListResponses(w http.ResponseWriter, r *http.Request) {
	h.listResponses(w, r, chi.URLParam(r, "surveyID"))
}

func (h *Handler) HandleListResponsesFlat(w http.ResponseWriter, r *http.Request) {
	surveyID := strings.TrimSpace(r.URL.Query().Get("survey_id"))
	if surveyID == "" {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "survey_id", Reason: "survey_id is required"}})
		return
	}
	h.listResponses(w, r, surveyID)
}

func (h *Handler) listResponses(w http.ResponseWriter, r *http.Request, surveyID string) {
	if _, err := h.Store.Get(r.Context(), surveyID); err != nil {
		h.failLookup(w, r, err)
		return
	}

	responses, err := h.Store.ListResponses(r.Context(), surveyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "response_list_failed", "failed to list responses", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, responses, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failLookup(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, survey.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "survey not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal", "survey operation failed", middleware.GetRequestID(r.Context()))
}
