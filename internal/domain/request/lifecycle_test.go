package request

import (
	"testing"
	"time"

	"hrportal/internal/domain/auth"
)

func issueFor(issues []FieldIssue, field string) string {
	for _, issue := range issues {
		if issue.Field == field {
			return issue.Reason
		}
	}
	return ""
}

func TestValidateCreateLeave(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	issues := ValidateCreate(CreateInput{
		Variant:   VariantLeave,
		Subtype:   LeaveStudy,
		Reason:    "exam week",
		StartDate: start,
		EndDate:   end,
	})
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	issues = ValidateCreate(CreateInput{Variant: VariantLeave})
	if issueFor(issues, "subtype") == "" {
		t.Fatal("expected subtype issue for empty leave")
	}
	if issueFor(issues, "start_date") == "" {
		t.Fatal("expected start_date issue for empty leave")
	}

	issues = ValidateCreate(CreateInput{
		Variant:   VariantLeave,
		Subtype:   LeaveMedical,
		StartDate: end,
		EndDate:   start,
	})
	if issueFor(issues, "end_date") == "" {
		t.Fatal("expected end_date issue when end precedes start")
	}

	issues = ValidateCreate(CreateInput{
		Variant:   VariantLeave,
		Subtype:   "vacation",
		StartDate: start,
		EndDate:   end,
	})
	if issueFor(issues, "subtype") == "" {
		t.Fatal("expected issue for unknown leave subtype")
	}
}

func TestValidateCreateStatement(t *testing.T) {
	issues := ValidateCreate(CreateInput{Variant: VariantStatement, Subtype: StatementSalary})
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	issues = ValidateCreate(CreateInput{Variant: VariantStatement, Subtype: "employment"})
	if issueFor(issues, "subtype") == "" {
		t.Fatal("expected issue for unknown statement subtype")
	}
}

func TestValidateCreateCourseMutualExclusion(t *testing.T) {
	issues := ValidateCreate(CreateInput{Variant: VariantCourse, CourseID: "c1"})
	if len(issues) != 0 {
		t.Fatalf("catalog pick should be valid, got %+v", issues)
	}

	issues = ValidateCreate(CreateInput{Variant: VariantCourse, CustomCourseTitle: "Go for Teams"})
	if len(issues) != 0 {
		t.Fatalf("custom title should be valid, got %+v", issues)
	}

	issues = ValidateCreate(CreateInput{Variant: VariantCourse})
	if issueFor(issues, "course_id") == "" {
		t.Fatal("expected course_id issue when neither source is given")
	}

	issues = ValidateCreate(CreateInput{Variant: VariantCourse, CourseID: "c1", CustomCourseTitle: "Go for Teams"})
	if issueFor(issues, "course_id") == "" {
		t.Fatal("expected course_id issue when both sources are given")
	}
}

func TestApproveEvidenceIssue(t *testing.T) {
	if msg := ApproveEvidenceIssue(VariantLeave, false, false); msg != "" {
		t.Fatalf("leave approvals need no evidence, got %q", msg)
	}

	if msg := ApproveEvidenceIssue(VariantStatement, false, false); msg != MsgStatementAttachmentRequired {
		t.Fatalf("expected statement attachment message, got %q", msg)
	}
	if msg := ApproveEvidenceIssue(VariantStatement, false, true); msg != MsgStatementAttachmentRequired {
		t.Fatal("a link alone must not satisfy a statement approval")
	}
	if msg := ApproveEvidenceIssue(VariantStatement, true, false); msg != "" {
		t.Fatalf("attachment should satisfy statement approval, got %q", msg)
	}

	if msg := ApproveEvidenceIssue(VariantCourse, false, false); msg != MsgCourseEvidenceRequired {
		t.Fatalf("expected course evidence message, got %q", msg)
	}
	if msg := ApproveEvidenceIssue(VariantCourse, false, true); msg != "" {
		t.Fatalf("link should satisfy course approval, got %q", msg)
	}
	if msg := ApproveEvidenceIssue(VariantCourse, true, false); msg != "" {
		t.Fatalf("attachment should satisfy course approval, got %q", msg)
	}
}

func TestDecidable(t *testing.T) {
	if !Decidable(StatusPending) {
		t.Fatal("pending must be decidable")
	}
	if Decidable(StatusApproved) || Decidable(StatusRejected) {
		t.Fatal("terminal statuses must not be decidable")
	}
}

func TestCanDecide(t *testing.T) {
	if !CanDecide(auth.RoleAdmin, VariantStatement, false) {
		t.Fatal("admin decides everything")
	}
	if !CanDecide(auth.RoleHR, VariantCourse, false) {
		t.Fatal("hr decides everything")
	}
	if !CanDecide(auth.RoleManager, VariantLeave, true) {
		t.Fatal("manager decides leave within their department")
	}
	if CanDecide(auth.RoleManager, VariantLeave, false) {
		t.Fatal("manager must not decide leave outside their department")
	}
	if CanDecide(auth.RoleManager, VariantStatement, true) {
		t.Fatal("manager must not decide statement requests")
	}
	if CanDecide(auth.RoleEmployee, VariantLeave, true) {
		t.Fatal("employee never decides")
	}
}

func TestCanDelete(t *testing.T) {
	if !CanDelete(auth.RoleEmployee, true, StatusPending) {
		t.Fatal("owner deletes while pending")
	}
	if CanDelete(auth.RoleEmployee, true, StatusApproved) {
		t.Fatal("owner must not delete a decided request")
	}
	if CanDelete(auth.RoleEmployee, false, StatusPending) {
		t.Fatal("non-owner employee must not delete")
	}
	if !CanDelete(auth.RoleHR, false, StatusApproved) {
		t.Fatal("hr deletes regardless of status")
	}
	if !CanDelete(auth.RoleAdmin, false, StatusRejected) {
		t.Fatal("admin deletes regardless of status")
	}
	if CanDelete(auth.RoleManager, false, StatusPending) {
		t.Fatal("manager never deletes")
	}
}

func TestCanEdit(t *testing.T) {
	if !CanEdit(true, StatusPending) {
		t.Fatal("owner edits while pending")
	}
	if CanEdit(true, StatusApproved) {
		t.Fatal("decided requests are immutable")
	}
	if CanEdit(false, StatusPending) {
		t.Fatal("only the owner edits")
	}
}

func TestHasTrail(t *testing.T) {
	if !HasTrail(VariantLeave) {
		t.Fatal("leave decisions keep an approval trail")
	}
	if HasTrail(VariantStatement) || HasTrail(VariantCourse) {
		t.Fatal("only leave keeps an approval trail")
	}
}
