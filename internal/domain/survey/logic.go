package survey

import "time"

// MsgStartedImmutable is returned with a 403 when someone edits or deletes
// a survey whose collection window has already opened.
const MsgStartedImmutable = "لا يمكن تعديل الاستبيان بعد بدء فترة الإجابة"

// Mutable reports whether a survey may still be edited or deleted: only
// before its start date. A survey with no start date is always mutable.
func Mutable(startDate *time.Time, now time.Time) bool {
	if startDate == nil || startDate.IsZero() {
		return true
	}
	return now.Before(*startDate)
}

// Open reports whether responses are currently accepted.
func Open(s Survey, now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && now.After(s.EndDate.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// VisibleTo reports whether a survey targets the given role and department.
// An empty target list means everyone; an empty target department means all
// departments.
func VisibleTo(s Survey, role, departmentID string) bool {
	if s.TargetDepartmentID != "" && s.TargetDepartmentID != departmentID {
		return false
	}
	if len(s.TargetRoles) == 0 {
		return true
	}
	for _, target := range s.TargetRoles {
		if target == role {
			return true
		}
	}
	return false
}
