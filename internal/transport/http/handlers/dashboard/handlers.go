package dashboardhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/course"
	"hrportal/internal/domain/org"
	"hrportal/internal/domain/request"
	"hrportal/internal/platform/metrics"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
)

type Handler struct {
	Requests  *request.Store
	Courses   *course.Store
	Org       *org.Store
	Collector *metrics.Collector
}

func NewHandler(requests *request.Store, courses *course.Store, orgStore *org.Store, collector *metrics.Collector) *Handler {
	return &Handler{Requests: requests, Courses: courses, Org: orgStore, Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireAuth).Get("/dashboard/summary", h.HandleSummary)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/admin/metrics", h.HandleMetrics)
}

// HandleSummary aggregates the counters behind the landing dashboards.
// Non-privileged roles only get request counts scoped to themselves.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	ownerID := ""
	if actor.Role == auth.RoleEmployee || actor.Role == auth.RoleManager {
		ownerID = actor.UserID
	}

	summary := map[string]any{}
	requests := map[string]any{}
	for _, variant := range request.Variants {
		counts, err := h.Requests.CountByStatus(r.Context(), variant, ownerID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build summary", middleware.GetRequestID(r.Context()))
			return
		}
		requests[variant] = counts
	}
	summary["requests"] = requests

	recent, _, err := h.Requests.List(r.Context(), request.Filter{OwnerID: ownerID}, 5, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build summary", middleware.GetRequestID(r.Context()))
		return
	}
	summary["recent"] = recent

	if actor.Role == auth.RoleAdmin || actor.Role == auth.RoleHR {
		employeeCount, err := h.Org.CountEmployees(r.Context())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build summary", middleware.GetRequestID(r.Context()))
			return
		}
		courseCount, err := h.Courses.Count(r.Context())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build summary", middleware.GetRequestID(r.Context()))
			return
		}
		summary["employees"] = employeeCount
		summary["courses"] = courseCount
	}

	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Collector == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "metrics collection is disabled", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Collector.Snapshot(), middleware.GetRequestID(r.Context()))
}
