package survey

import (
	"testing"
	"time"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMutable(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	if !Mutable(nil, now) {
		t.Fatal("a survey without a start date is always mutable")
	}
	if !Mutable(datePtr(2026, 5, 11), now) {
		t.Fatal("mutable before the window opens")
	}
	if Mutable(datePtr(2026, 5, 10), now) {
		t.Fatal("immutable once the window has opened")
	}
	if Mutable(datePtr(2026, 5, 1), now) {
		t.Fatal("immutable after the window has opened")
	}
}

func TestOpen(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	s := Survey{IsActive: true}
	if !Open(s, now) {
		t.Fatal("an active survey without dates is open")
	}

	s.IsActive = false
	if Open(s, now) {
		t.Fatal("an inactive survey is never open")
	}

	s = Survey{IsActive: true, StartDate: datePtr(2026, 5, 11)}
	if Open(s, now) {
		t.Fatal("closed before the start date")
	}

	s = Survey{IsActive: true, EndDate: datePtr(2026, 5, 10)}
	if !Open(s, now) {
		t.Fatal("the end date itself still accepts responses through the day")
	}

	s = Survey{IsActive: true, EndDate: datePtr(2026, 5, 8)}
	if Open(s, now) {
		t.Fatal("closed after the end date")
	}
}

func TestVisibleTo(t *testing.T) {
	s := Survey{}
	if !VisibleTo(s, "employee", "d1") {
		t.Fatal("no targeting means visible to everyone")
	}

	s = Survey{TargetRoles: []string{"employee", "manager"}}
	if !VisibleTo(s, "manager", "") {
		t.Fatal("listed role should see the survey")
	}
	if VisibleTo(s, "hr", "") {
		t.Fatal("unlisted role must not see the survey")
	}

	s = Survey{TargetDepartmentID: "d1"}
	if !VisibleTo(s, "employee", "d1") {
		t.Fatal("matching department should see the survey")
	}
	if VisibleTo(s, "employee", "d2") {
		t.Fatal("other departments must not see the survey")
	}
}
