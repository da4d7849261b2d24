package coursehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/course"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Store *course.Store
}

func NewHandler(store *course.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.HandleList)
		r.Get("/{courseID}", h.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR))
			r.Post("/", h.HandleCreate)
			r.Put("/{courseID}", h.HandleUpdate)
			r.Delete("/{courseID}", h.HandleDelete)
		})
	})
}

// HandleList shows employees only available courses; HR and admin see the
// whole catalog unless they narrow it themselves.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	onlyAvailable := actor.Role != auth.RoleAdmin && actor.Role != auth.RoleHR
	if r.URL.Query().Get("available") == "true" {
		onlyAvailable = true
	}

	courses, err := h.Store.List(r.Context(), onlyAvailable)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "course_list_failed", "failed to list courses", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, courses, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Get(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

type coursePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Location    string `json:"location"`
	Instructor  string `json:"instructor"`
	Available   *bool  `json:"available"`
}

func decodeCourse(w http.ResponseWriter, r *http.Request) (course.Course, bool) {
	var payload coursePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return course.Course{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "course name is required")

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
		return course.Course{}, false
	}

	available := true
	if payload.Available != nil {
		available = *payload.Available
	}
	return course.Course{
		Name:        strings.TrimSpace(payload.Name),
		Description: strings.TrimSpace(payload.Description),
		StartDate:   startDate,
		EndDate:     endDate,
		Location:    strings.TrimSpace(payload.Location),
		Instructor:  strings.TrimSpace(payload.Instructor),
		Available:   available,
	}, true
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCourse(w, r)
	if !ok {
		return
	}

	id, err := h.Store.Create(r.Context(), c)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "course_create_failed", "failed to create course", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "course_create_failed", "failed to load course", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCourse(w, r)
	if !ok {
		return
	}

	courseID := chi.URLParam(r, "courseID")
	if err := h.Store.Update(r.Context(), courseID, c); err != nil {
		h.failLookup(w, r, err)
		return
	}
	updated, err := h.Store.Get(r.Context(), courseID)
	if err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		h.failLookup(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failLookup(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, course.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "course not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal", "course operation failed", middleware.GetRequestID(r.Context()))
}
