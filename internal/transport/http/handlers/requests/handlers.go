package requesthandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/org"
	"hrportal/internal/domain/request"
	"hrportal/internal/domain/statement"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Service            *request.Service
	Org                *org.Store
	MaxAttachmentBytes int64
}

const (
	maxMultipartMemory       = 8 * 1024 * 1024
	maxAttachmentsPerRequest = 5
)

func NewHandler(service *request.Service, orgStore *org.Store, maxAttachmentBytes int64) *Handler {
	return &Handler{Service: service, Org: orgStore, MaxAttachmentBytes: maxAttachmentBytes}
}

// RegisterRoutes mounts one identical route group per variant; the variant
// is bound into the handlers instead of being re-implemented per role area.
func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, variant := range request.Variants {
		v := variant
		r.Route("/"+v+"-requests", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", h.handleList(v))
			r.Post("/", h.handleCreate(v))
			r.Get("/{requestID}", h.handleGet(v))
			r.Put("/{requestID}", h.handleUpdate(v))
			r.Delete("/{requestID}", h.handleDelete(v))
			r.Post("/{requestID}/approve", h.handleApprove(v))
			if v != request.VariantLeave {
				r.Post("/{requestID}/reject", h.handleReject(v))
			}
			r.Get("/{requestID}/attachments/{attachmentID}/download", h.handleDownloadAttachment(v))
		})
	}

	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).
		Get("/requests/all", h.handleListAll)
}

// scopeFilter narrows a list read to what the actor may see: employees
// their own requests, managers their department's leave, HR/admin all.
func (h *Handler) scopeFilter(r *http.Request, actor auth.UserContext, f request.Filter) (request.Filter, error) {
	switch actor.Role {
	case auth.RoleAdmin, auth.RoleHR:
		return f, nil
	case auth.RoleManager:
		if f.Variant == request.VariantLeave {
			departmentID, err := h.managerDepartment(r, actor)
			if err != nil {
				return f, err
			}
			if departmentID != "" {
				f.DepartmentID = departmentID
				return f, nil
			}
		}
		f.OwnerID = actor.UserID
		return f, nil
	default:
		f.OwnerID = actor.UserID
		return f, nil
	}
}

func (h *Handler) managerDepartment(r *http.Request, actor auth.UserContext) (string, error) {
	departmentID, err := h.Org.ManagedDepartmentID(r.Context(), actor.UserID)
	if err != nil {
		return "", err
	}
	if departmentID != "" {
		return departmentID, nil
	}
	employee, err := h.Org.GetEmployee(r.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return employee.DepartmentID, nil
}

func parseFilter(r *http.Request) (request.Filter, string) {
	f := request.Filter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			return f, "date must be YYYY-MM-DD"
		}
		f.Date = parsed
	}
	switch f.Status {
	case "", request.StatusPending, request.StatusApproved, request.StatusRejected:
	default:
		return f, "status must be one of pending, approved, rejected"
	}
	return f, ""
}

func (h *Handler) handleList(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())

		f, issue := parseFilter(r)
		if issue != "" {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", issue, middleware.GetRequestID(r.Context()))
			return
		}
		f.Variant = variant

		f, err := h.scopeFilter(r, actor, f)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
			return
		}

		page := shared.ParsePagination(r, 50, 200)
		items, total, err := h.Service.List(r.Context(), f, page.Limit, page.Offset)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]any{"items": items, "total": total}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	f, issue := parseFilter(r)
	if issue != "" {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", issue, middleware.GetRequestID(r.Context()))
		return
	}
	if rawType := strings.TrimSpace(r.URL.Query().Get("type")); rawType != "" {
		if !request.ValidVariant(rawType) {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "type must be one of leave, statement, course", middleware.GetRequestID(r.Context()))
			return
		}
		f.Variant = rawType
	}

	page := shared.ParsePagination(r, 50, 200)
	out, err := h.Service.ListAll(r.Context(), f, page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type createPayload struct {
	Subtype              string `json:"subtype"`
	Reason               string `json:"reason"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	CourseID             string `json:"course_id"`
	CustomCourseTitle    string `json:"custom_course_title"`
	CustomCourseProvider string `json:"custom_course_provider"`
	Link                 string `json:"link"`
}

// decodeCreate accepts JSON or, for leave submissions with an attachment,
// multipart form data.
func (h *Handler) decodeCreate(r *http.Request, variant string) (request.CreateInput, *request.AttachmentUpload, []shared.ValidationIssue) {
	var payload createPayload
	var upload *request.AttachmentUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return request.CreateInput{}, nil, []shared.ValidationIssue{{Field: "body", Reason: "invalid multipart payload"}}
		}
		payload.Subtype = r.FormValue("subtype")
		payload.Reason = r.FormValue("reason")
		payload.StartDate = r.FormValue("start_date")
		payload.EndDate = r.FormValue("end_date")
		payload.CourseID = r.FormValue("course_id")
		payload.CustomCourseTitle = r.FormValue("custom_course_title")
		payload.CustomCourseProvider = r.FormValue("custom_course_provider")
		payload.Link = r.FormValue("link")

		file, header, err := r.FormFile("attachment")
		if err == nil {
			defer file.Close()
			up, issue := h.readUpload(file, header)
			if issue != "" {
				return request.CreateInput{}, nil, []shared.ValidationIssue{{Field: "attachment", Reason: issue}}
			}
			upload = up
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return request.CreateInput{}, nil, []shared.ValidationIssue{{Field: "body", Reason: "invalid request payload"}}
		}
	}

	in := request.CreateInput{
		Variant:              variant,
		Subtype:              strings.TrimSpace(payload.Subtype),
		Reason:               strings.TrimSpace(payload.Reason),
		CourseID:             strings.TrimSpace(payload.CourseID),
		CustomCourseTitle:    strings.TrimSpace(payload.CustomCourseTitle),
		CustomCourseProvider: strings.TrimSpace(payload.CustomCourseProvider),
		Link:                 strings.TrimSpace(payload.Link),
	}

	var issues []shared.ValidationIssue
	if variant == request.VariantLeave {
		if payload.StartDate != "" {
			if parsed, err := shared.ParseDate(payload.StartDate); err == nil {
				in.StartDate = parsed
			} else {
				issues = append(issues, shared.ValidationIssue{Field: "start_date", Reason: "must be a valid date in YYYY-MM-DD format"})
			}
		}
		if payload.EndDate != "" {
			if parsed, err := shared.ParseDate(payload.EndDate); err == nil {
				in.EndDate = parsed
			} else {
				issues = append(issues, shared.ValidationIssue{Field: "end_date", Reason: "must be a valid date in YYYY-MM-DD format"})
			}
		}
	}

	for _, issue := range request.ValidateCreate(in) {
		issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Reason})
	}
	return in, upload, issues
}

func (h *Handler) readUpload(file multipart.File, header *multipart.FileHeader) (*request.AttachmentUpload, string) {
	if h.MaxAttachmentBytes > 0 && header.Size > h.MaxAttachmentBytes {
		return nil, fmt.Sprintf("file exceeds the %d byte limit", h.MaxAttachmentBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, h.MaxAttachmentBytes+1))
	if err != nil {
		return nil, "failed to read uploaded file"
	}
	if h.MaxAttachmentBytes > 0 && int64(len(data)) > h.MaxAttachmentBytes {
		return nil, fmt.Sprintf("file exceeds the %d byte limit", h.MaxAttachmentBytes)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &request.AttachmentUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, ""
}

func (h *Handler) handleCreate(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())

		in, upload, issues := h.decodeCreate(r, variant)
		if len(issues) > 0 {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
			return
		}

		created, err := h.Service.Create(r.Context(), actor.UserID, in)
		if err != nil {
			if errors.Is(err, request.ErrNotFound) {
				shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "course_id", Reason: "selected course does not exist"}})
				return
			}
			api.Fail(w, http.StatusInternalServerError, "request_create_failed", "failed to create request", middleware.GetRequestID(r.Context()))
			return
		}

		if upload != nil {
			if !h.attachmentCapacityLeft(w, r, created.ID) {
				return
			}
			if _, err := h.Service.Store.AddAttachment(r.Context(), created.ID, actor.UserID, *upload); err != nil {
				api.Fail(w, http.StatusInternalServerError, "attachment_failed", "failed to store attachment", middleware.GetRequestID(r.Context()))
				return
			}
			created, err = h.Service.Store.Get(r.Context(), created.ID, variant)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "request_create_failed", "failed to load request", middleware.GetRequestID(r.Context()))
				return
			}
		}
		api.Created(w, created, middleware.GetRequestID(r.Context()))
	}
}

// canView mirrors the list scoping for a single request.
func (h *Handler) canView(r *http.Request, actor auth.UserContext, head request.Head) bool {
	switch actor.Role {
	case auth.RoleAdmin, auth.RoleHR:
		return true
	case auth.RoleManager:
		if head.OwnerID == actor.UserID {
			return true
		}
		if head.Variant != request.VariantLeave {
			return false
		}
		departmentID, err := h.managerDepartment(r, actor)
		return err == nil && departmentID != "" && departmentID == head.DepartmentID
	default:
		return head.OwnerID == actor.UserID
	}
}

func (h *Handler) handleGet(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		head, err := h.Service.Store.Head(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		if !h.canView(r, actor, head) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this request", middleware.GetRequestID(r.Context()))
			return
		}

		req, err := h.Service.Store.Get(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		api.Success(w, req, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleUpdate(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		head, err := h.Service.Store.Head(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		if !request.CanEdit(head.OwnerID == actor.UserID, head.Status) {
			if head.OwnerID != actor.UserID {
				api.Fail(w, http.StatusForbidden, "forbidden", "only the owner may edit a request", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusConflict, "invalid_state", "only pending requests can be edited", middleware.GetRequestID(r.Context()))
			return
		}

		in, upload, issues := h.decodeCreate(r, variant)
		if len(issues) > 0 {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
			return
		}
		if upload != nil && !h.attachmentCapacityLeft(w, r, requestID) {
			return
		}

		updated, err := h.Service.Update(r.Context(), requestID, actor.UserID, in)
		if err != nil {
			h.failMutation(w, r, err, "request_update_failed", "failed to update request")
			return
		}

		if upload != nil {
			if _, err := h.Service.Store.AddAttachment(r.Context(), requestID, actor.UserID, *upload); err != nil {
				api.Fail(w, http.StatusInternalServerError, "attachment_failed", "failed to store attachment", middleware.GetRequestID(r.Context()))
				return
			}
			updated, err = h.Service.Store.Get(r.Context(), requestID, variant)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "request_update_failed", "failed to load request", middleware.GetRequestID(r.Context()))
				return
			}
		}
		api.Success(w, updated, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleDelete(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		head, err := h.Service.Store.Head(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		if !request.CanDelete(actor.Role, head.OwnerID == actor.UserID, head.Status) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to delete this request", middleware.GetRequestID(r.Context()))
			return
		}

		if err := h.Service.Delete(r.Context(), requestID, variant); err != nil {
			h.failMutation(w, r, err, "request_delete_failed", "failed to delete request")
			return
		}
		api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
	}
}

type leaveDecisionPayload struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (h *Handler) handleApprove(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		head, err := h.Service.Store.Head(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		if !h.canDecide(r, actor, head) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to decide this request", middleware.GetRequestID(r.Context()))
			return
		}

		if variant == request.VariantLeave {
			h.approveLeave(w, r, requestID, actor)
			return
		}
		h.approveWithEvidence(w, r, requestID, variant, head, actor)
	}
}

func (h *Handler) canDecide(r *http.Request, actor auth.UserContext, head request.Head) bool {
	sameDepartment := false
	if actor.Role == auth.RoleManager {
		departmentID, err := h.managerDepartment(r, actor)
		sameDepartment = err == nil && departmentID != "" && departmentID == head.DepartmentID
	}
	return request.CanDecide(actor.Role, head.Variant, sameDepartment)
}

// approveLeave is the single decision endpoint for leave: the payload's
// status field selects approval or rejection.
func (h *Handler) approveLeave(w http.ResponseWriter, r *http.Request, requestID string, actor auth.UserContext) {
	var payload leaveDecisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	status := strings.TrimSpace(payload.Status)
	if status != request.StatusApproved && status != request.StatusRejected {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "status", Reason: "must be approved or rejected"}})
		return
	}
	comment := strings.TrimSpace(payload.Comment)
	if status == request.StatusRejected && comment == "" {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "comment", Reason: request.MsgRejectCommentRequired}})
		return
	}

	decided, err := h.Service.Decide(r.Context(), requestID, request.VariantLeave, status, comment, actor)
	if err != nil {
		h.failMutation(w, r, err, "request_decide_failed", "failed to decide request")
		return
	}
	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

// approveWithEvidence handles statement and course approvals: multipart
// payloads whose evidence is validated before anything is written.
func (h *Handler) approveWithEvidence(w http.ResponseWriter, r *http.Request, requestID, variant string, head request.Head, actor auth.UserContext) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", middleware.GetRequestID(r.Context()))
		return
	}

	comment := strings.TrimSpace(r.FormValue("comment"))
	link := strings.TrimSpace(r.FormValue("link"))
	generate, _ := strconv.ParseBool(r.FormValue("generate"))
	generate = generate && variant == request.VariantStatement

	var upload *request.AttachmentUpload
	file, header, err := r.FormFile("attachment")
	if err == nil {
		defer file.Close()
		up, issue := h.readUpload(file, header)
		if issue != "" {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "attachment", Reason: issue}})
			return
		}
		upload = up
	}

	hasAttachment := upload != nil || generate
	if msg := request.ApproveEvidenceIssue(variant, hasAttachment, link != ""); msg != "" {
		api.Fail(w, http.StatusBadRequest, "approval_evidence_required", msg, middleware.GetRequestID(r.Context()))
		return
	}

	if upload != nil && !h.attachmentCapacityLeft(w, r, requestID) {
		return
	}

	if upload == nil && generate {
		upload, err = h.generateStatement(r, head)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "statement_generate_failed", "failed to generate statement document", middleware.GetRequestID(r.Context()))
			return
		}
	}

	decided, err := h.Service.ApproveWithEvidence(r.Context(), requestID, variant, comment, link, upload, actor)
	if err != nil {
		h.failMutation(w, r, err, "request_decide_failed", "failed to decide request")
		return
	}
	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

func (h *Handler) generateStatement(r *http.Request, head request.Head) (*request.AttachmentUpload, error) {
	owner, err := h.Org.GetEmployee(r.Context(), head.OwnerID)
	if err != nil {
		return nil, err
	}
	full, err := h.Service.Store.Get(r.Context(), head.ID, head.Variant)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	data, err := statement.Generate(statement.Subject{
		EmployeeName: owner.Name,
		JobNumber:    owner.JobNumber,
		Department:   owner.DepartmentName,
		Subtype:      full.Subtype,
		IssuedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	return &request.AttachmentUpload{
		FileName:    statement.FileName(full.Subtype, now),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

type rejectPayload struct {
	Comment string `json:"comment"`
}

func (h *Handler) handleReject(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		head, err := h.Service.Store.Head(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		if !h.canDecide(r, actor, head) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to decide this request", middleware.GetRequestID(r.Context()))
			return
		}

		var payload rejectPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
		comment := strings.TrimSpace(payload.Comment)
		if comment == "" {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "comment", Reason: request.MsgRejectCommentRequired}})
			return
		}

		decided, err := h.Service.Decide(r.Context(), requestID, variant, request.StatusRejected, comment, actor)
		if err != nil {
			h.failMutation(w, r, err, "request_decide_failed", "failed to decide request")
			return
		}
		api.Success(w, decided, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleDownloadAttachment(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")
		attachmentID := chi.URLParam(r, "attachmentID")

		head, err := h.Service.Store.Head(r.Context(), requestID, variant)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}
		if !h.canView(r, actor, head) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this request", middleware.GetRequestID(r.Context()))
			return
		}

		att, data, err := h.Service.Store.AttachmentData(r.Context(), requestID, attachmentID)
		if err != nil {
			h.failLookup(w, r, err)
			return
		}

		w.Header().Set("Content-Type", att.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	}
}

// attachmentCapacityLeft enforces the per-request attachment cap before any
// new file is stored.
func (h *Handler) attachmentCapacityLeft(w http.ResponseWriter, r *http.Request, requestID string) bool {
	count, err := h.Service.Store.AttachmentCount(r.Context(), requestID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attachment_failed", "failed to store attachment", middleware.GetRequestID(r.Context()))
		return false
	}
	if count >= maxAttachmentsPerRequest {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{
			Field:  "attachment",
			Reason: fmt.Sprintf("a request can carry at most %d attachments", maxAttachmentsPerRequest),
		}})
		return false
	}
	return true
}

func (h *Handler) failLookup(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, request.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal", "failed to load request", middleware.GetRequestID(r.Context()))
}

func (h *Handler) failMutation(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	switch {
	case errors.Is(err, request.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, request.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request is no longer pending", middleware.GetRequestID(r.Context()))
	case errors.Is(err, request.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, middleware.GetRequestID(r.Context()))
	}
}
