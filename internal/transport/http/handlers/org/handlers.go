package orghandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/org"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Store *org.Store
}

func NewHandler(store *org.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.HandleListDepartments)
		r.Get("/{departmentID}", h.HandleGetDepartment)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).
			Get("/{departmentID}/employees", h.HandleListDepartmentEmployees)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR))
			r.Post("/", h.HandleCreateDepartment)
			r.Put("/{departmentID}", h.HandleUpdateDepartment)
			r.Delete("/{departmentID}", h.HandleDeleteDepartment)
		})
	})

	// The signed-in user's own record; reachable for every role.
	r.Route("/user", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.HandleGetProfile)
		r.Put("/update", h.HandleUpdateProfile)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager))
		r.Get("/", h.HandleListEmployees)
		r.Get("/{userID}", h.HandleGetEmployee)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR))
			r.Post("/", h.HandleCreateEmployee)
			r.Put("/{userID}", h.HandleUpdateEmployee)
			r.Delete("/{userID}", h.HandleDeleteEmployee)
		})
	})
}

func (h *Handler) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetDepartment(w http.ResponseWriter, r *http.Request) {
	department, err := h.Store.GetDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		h.failLookup(w, r, err, "department not found")
		return
	}
	api.Success(w, department, middleware.GetRequestID(r.Context()))
}

type departmentPayload struct {
	Name      string `json:"name"`
	ManagerID string `json:"manager_id"`
}

func (h *Handler) HandleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "department name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateDepartment(r.Context(), strings.TrimSpace(payload.Name), strings.TrimSpace(payload.ManagerID))
	if err != nil {
		if errors.Is(err, org.ErrDuplicate) {
			api.Fail(w, http.StatusConflict, "duplicate", "a department with that name already exists", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Store.GetDepartment(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to load department", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "department name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	departmentID := chi.URLParam(r, "departmentID")
	if err := h.Store.UpdateDepartment(r.Context(), departmentID, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.ManagerID)); err != nil {
		if errors.Is(err, org.ErrDuplicate) {
			api.Fail(w, http.StatusConflict, "duplicate", "a department with that name already exists", middleware.GetRequestID(r.Context()))
			return
		}
		h.failLookup(w, r, err, "department not found")
		return
	}

	updated, err := h.Store.GetDepartment(r.Context(), departmentID)
	if err != nil {
		h.failLookup(w, r, err, "department not found")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteDepartment(r.Context(), chi.URLParam(r, "departmentID")); err != nil {
		h.failLookup(w, r, err, "department not found")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleListDepartmentEmployees(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	if actor.Role == auth.RoleManager {
		managed, err := h.Store.ManagedDepartmentID(r.Context(), actor.UserID)
		if err != nil || managed == "" || managed != departmentID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this department", middleware.GetRequestID(r.Context()))
			return
		}
	}

	if _, err := h.Store.GetDepartment(r.Context(), departmentID); err != nil {
		h.failLookup(w, r, err, "department not found")
		return
	}
	employees, err := h.Store.ListEmployees(r.Context(), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

// HandleListEmployees scopes managers to their own department.
func (h *Handler) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	departmentID := strings.TrimSpace(r.URL.Query().Get("department_id"))
	if actor.Role == auth.RoleManager {
		managed, err := h.Store.ManagedDepartmentID(r.Context(), actor.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
			return
		}
		if managed == "" {
			api.Success(w, []org.Employee{}, middleware.GetRequestID(r.Context()))
			return
		}
		departmentID = managed
	}

	employees, err := h.Store.ListEmployees(r.Context(), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	employee, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.failLookup(w, r, err, "user not found")
		return
	}
	if actor.Role == auth.RoleManager {
		managed, err := h.Store.ManagedDepartmentID(r.Context(), actor.UserID)
		if err != nil || managed == "" || managed != employee.DepartmentID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this user", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	profile, err := h.Store.GetProfile(r.Context(), actor.UserID)
	if err != nil {
		h.failLookup(w, r, err, "user not found")
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

type profilePayload struct {
	MaritalStatus    string `json:"marital_status"`
	NumberOfChildren int    `json:"number_of_children"`
	Qualification    string `json:"qualification"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	University       string `json:"university"`
	GraduationYear   string `json:"graduation_year"`
}

// HandleUpdateProfile lets users edit their own personal details. Account
// fields stay with the admin endpoints.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Enum("marital_status", payload.MaritalStatus,
		[]string{"single", "married", "divorced", "widowed"},
		"must be one of single, married, divorced, widowed")
	if payload.NumberOfChildren < 0 {
		v.Add("number_of_children", "cannot be negative")
	}
	if year := strings.TrimSpace(payload.GraduationYear); year != "" && len(year) != 4 {
		v.Add("graduation_year", "must be a four digit year")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	update := org.ProfileUpdate{
		MaritalStatus:    strings.TrimSpace(strings.ToLower(payload.MaritalStatus)),
		NumberOfChildren: payload.NumberOfChildren,
		Qualification:    strings.TrimSpace(payload.Qualification),
		Phone:            strings.TrimSpace(payload.Phone),
		Address:          strings.TrimSpace(payload.Address),
		University:       strings.TrimSpace(payload.University),
		GraduationYear:   strings.TrimSpace(payload.GraduationYear),
	}
	if err := h.Store.UpdateProfile(r.Context(), actor.UserID, update); err != nil {
		h.failLookup(w, r, err, "user not found")
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), actor.UserID)
	if err != nil {
		h.failLookup(w, r, err, "user not found")
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

type employeePayload struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	JobNumber    string `json:"job_number"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
	Password     string `json:"password"`
}

func validateEmployee(payload employeePayload, requirePassword bool) (*shared.Validator, org.Employee) {
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("username", payload.Username, "username is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("role", payload.Role, "role is required")
	if payload.Role != "" && !auth.ValidRole(payload.Role) {
		v.Add("role", "must be one of admin, hr, manager, employee")
	}
	if requirePassword && len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}

	return v, org.Employee{
		Name:         strings.TrimSpace(payload.Name),
		Username:     strings.TrimSpace(payload.Username),
		Email:        strings.TrimSpace(payload.Email),
		JobNumber:    strings.TrimSpace(payload.JobNumber),
		Role:         strings.TrimSpace(payload.Role),
		DepartmentID: strings.TrimSpace(payload.DepartmentID),
	}
}

func (h *Handler) HandleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v, employee := validateEmployee(payload, true)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), employee, hash)
	if err != nil {
		if errors.Is(err, org.ErrDuplicate) {
			api.Fail(w, http.StatusConflict, "duplicate", "username or email already in use", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to load user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v, employee := validateEmployee(payload, false)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.Store.UpdateEmployee(r.Context(), userID, employee); err != nil {
		if errors.Is(err, org.ErrDuplicate) {
			api.Fail(w, http.StatusConflict, "duplicate", "username or email already in use", middleware.GetRequestID(r.Context()))
			return
		}
		h.failLookup(w, r, err, "user not found")
		return
	}

	updated, err := h.Store.GetEmployee(r.Context(), userID)
	if err != nil {
		h.failLookup(w, r, err, "user not found")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")
	if userID == actor.UserID {
		api.Fail(w, http.StatusConflict, "invalid_state", "cannot delete the signed-in account", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.DeleteEmployee(r.Context(), userID); err != nil {
		h.failLookup(w, r, err, "user not found")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failLookup(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, org.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", message, middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal", "operation failed", middleware.GetRequestID(r.Context()))
}
