package request

import (
	"errors"
	"strings"

	"hrportal/internal/domain/auth"
)

var (
	ErrNotFound     = errors.New("request not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("request is not pending")
)

// Operator-facing messages the console displays verbatim.
const (
	MsgStatementAttachmentRequired = "يجب رفع مرفق البيان"
	MsgCourseEvidenceRequired      = "يجب رفع مرفق أو إدخال رابط الدورة"
	MsgRejectCommentRequired       = "يجب إدخال سبب الرفض"
)

type FieldIssue struct {
	Field  string
	Reason string
}

func ValidVariant(variant string) bool {
	for _, candidate := range Variants {
		if variant == candidate {
			return true
		}
	}
	return false
}

// Decidable reports whether a request may still be approved or rejected.
// Both approved and rejected are terminal.
func Decidable(status string) bool {
	return status == StatusPending
}

// ValidateCreate checks the variant-specific shape of a new or edited
// request. The returned issues are field-addressable so the console can
// render them inline.
func ValidateCreate(in CreateInput) []FieldIssue {
	var issues []FieldIssue
	add := func(field, reason string) {
		issues = append(issues, FieldIssue{Field: field, Reason: reason})
	}

	switch in.Variant {
	case VariantLeave:
		switch in.Subtype {
		case LeaveStudy, LeaveMedical, LeaveAdministrative:
		default:
			add("subtype", "must be one of study, medical, administrative")
		}
		if in.StartDate.IsZero() {
			add("start_date", "start date is required")
		}
		if in.EndDate.IsZero() {
			add("end_date", "end date is required")
		}
		if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
			add("end_date", "must be on or after start_date")
		}
	case VariantStatement:
		switch in.Subtype {
		case StatementSalary, StatementStatus:
		default:
			add("subtype", "must be one of salary, status")
		}
	case VariantCourse:
		hasCourse := strings.TrimSpace(in.CourseID) != ""
		hasCustom := strings.TrimSpace(in.CustomCourseTitle) != ""
		if hasCourse == hasCustom {
			add("course_id", "اختر دورة من القائمة أو أدخل عنوان دورة مخصصة، وليس كلاهما")
		}
	default:
		add("type", "unknown request type")
	}
	return issues
}

// ApproveEvidenceIssue enforces the supplementary-evidence rule for a
// decision of "approved": statements need an attached document, courses
// need a document or a link. Leave needs nothing beyond the status. The
// returned message is empty when the evidence suffices.
func ApproveEvidenceIssue(variant string, hasAttachment, hasLink bool) string {
	switch variant {
	case VariantStatement:
		if !hasAttachment {
			return MsgStatementAttachmentRequired
		}
	case VariantCourse:
		if !hasAttachment && !hasLink {
			return MsgCourseEvidenceRequired
		}
	}
	return ""
}

// HasTrail reports whether the variant records an approval trail.
func HasTrail(variant string) bool {
	return variant == VariantLeave
}

// CanDecide reports whether a role may approve or reject a given variant.
// Managers decide leave only, and only inside their department; HR and
// admin decide every variant everywhere.
func CanDecide(role, variant string, sameDepartment bool) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleHR:
		return true
	case auth.RoleManager:
		return variant == VariantLeave && sameDepartment
	default:
		return false
	}
}

// CanDelete: owners may remove their own request while it is still
// pending; HR and admin may purge at any status; managers never delete.
func CanDelete(role string, isOwner bool, status string) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleHR:
		return true
	case auth.RoleManager:
		return false
	default:
		return isOwner && status == StatusPending
	}
}

// CanEdit: only the owner, and only while pending.
func CanEdit(isOwner bool, status string) bool {
	return isOwner && status == StatusPending
}
