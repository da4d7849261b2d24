package org

import "time"

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ManagerID   string    `json:"manager_id,omitempty"`
	ManagerName string    `json:"manager_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Employee struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	JobNumber      string    `json:"job_number"`
	Role           string    `json:"role"`
	DepartmentID   string    `json:"department_id,omitempty"`
	DepartmentName string    `json:"department_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile is the employee's own record: the account fields plus the
// personal details only the owner maintains.
type Profile struct {
	Employee
	MaritalStatus    string `json:"marital_status"`
	NumberOfChildren int    `json:"number_of_children"`
	Qualification    string `json:"qualification"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	University       string `json:"university"`
	GraduationYear   string `json:"graduation_year"`
}

// ProfileUpdate carries the fields a user may change about themselves.
// Account fields (role, department, username) stay admin territory.
type ProfileUpdate struct {
	MaritalStatus    string
	NumberOfChildren int
	Qualification    string
	Phone            string
	Address          string
	University       string
	GraduationYear   string
}
