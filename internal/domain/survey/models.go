package survey

import "time"

const (
	TypeInternal = "internal"
	TypeExternal = "external"
)

const (
	KindText   = "text"
	KindChoice = "choice"
)

type Survey struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Type               string     `json:"type"`
	URL                string     `json:"url,omitempty"`
	TargetDepartmentID string     `json:"target_department_id,omitempty"`
	TargetRoles        []string   `json:"target_roles"`
	IsActive           bool       `json:"is_active"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	CreatedBy          string     `json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	Questions          []Question `json:"questions,omitempty"`
}

type Question struct {
	ID           string   `json:"id"`
	SurveyID     string   `json:"survey_id,omitempty"`
	QuestionText string   `json:"question_text"`
	Kind         string   `json:"kind"`
	Options      []string `json:"options"`
	Position     int      `json:"position"`
}

type Response struct {
	ID        string    `json:"id"`
	SurveyID  string    `json:"survey_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Answers   []Answer  `json:"answers"`
}

type Answer struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text,omitempty"`
	AnswerText   string `json:"answer_text"`
}
