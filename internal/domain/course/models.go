package course

import "time"

type Course struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Location    string     `json:"location"`
	Instructor  string     `json:"instructor"`
	Available   bool       `json:"available"`
	CreatedAt   time.Time  `json:"created_at"`
}
