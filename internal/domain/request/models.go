package request

import "time"

const (
	VariantLeave     = "leave"
	VariantStatement = "statement"
	VariantCourse    = "course"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	LeaveStudy          = "study"
	LeaveMedical        = "medical"
	LeaveAdministrative = "administrative"
)

const (
	StatementSalary = "salary"
	StatementStatus = "status"
)

var Variants = []string{VariantLeave, VariantStatement, VariantCourse}

// Request is the polymorphic unit of work an employee submits. Variant
// decides which of the optional fields carry meaning.
type Request struct {
	ID                   string          `json:"id"`
	Variant              string          `json:"type"`
	OwnerID              string          `json:"user_id"`
	OwnerName            string          `json:"user_name,omitempty"`
	Status               string          `json:"status"`
	Subtype              string          `json:"subtype,omitempty"`
	Reason               string          `json:"reason,omitempty"`
	StartDate            *time.Time      `json:"start_date,omitempty"`
	EndDate              *time.Time      `json:"end_date,omitempty"`
	CourseID             string          `json:"course_id,omitempty"`
	CourseName           string          `json:"course_name,omitempty"`
	CustomCourseTitle    string          `json:"custom_course_title,omitempty"`
	CustomCourseProvider string          `json:"custom_course_provider,omitempty"`
	Link                 string          `json:"link,omitempty"`
	DecisionComment      string          `json:"decision_comment,omitempty"`
	Attachments          []Attachment    `json:"attachments,omitempty"`
	Approvals            []ApprovalEntry `json:"approvals,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

type Attachment struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id,omitempty"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

type AttachmentUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ApprovalEntry is one step of a leave request's approval trail.
type ApprovalEntry struct {
	ID           string    `json:"id"`
	ApproverID   string    `json:"approver_id,omitempty"`
	ApproverName string    `json:"approver_name,omitempty"`
	ApproverRole string    `json:"approver_role"`
	Status       string    `json:"status"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateInput struct {
	Variant              string
	Subtype              string
	Reason               string
	StartDate            time.Time
	EndDate              time.Time
	CourseID             string
	CustomCourseTitle    string
	CustomCourseProvider string
	Link                 string
}

// Filter narrows list reads; zero values mean "no constraint". Scope fields
// are set by the caller from the actor's role, never from user input.
type Filter struct {
	Variant      string
	Status       string
	Date         time.Time
	OwnerID      string
	DepartmentID string
}

// Aggregated is the shape the admin/HR overview binds: all three lists are
// always present so clients can bind them unconditionally.
type Aggregated struct {
	LeaveRequests     []Request `json:"leaveRequests"`
	StatementRequests []Request `json:"statementRequests"`
	CourseRequests    []Request `json:"courseRequests"`
}
