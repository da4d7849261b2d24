package survey

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already responded")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const surveyColumns = `
  s.id, s.title, s.description, s.type, s.url,
  COALESCE(s.target_department_id::text, ''), s.target_roles, s.is_active,
  s.start_date, s.end_date, COALESCE(s.created_by::text, ''), s.created_at
`

func scanSurvey(row pgx.Row) (Survey, error) {
	var s Survey
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Type, &s.URL,
		&s.TargetDepartmentID, &s.TargetRoles, &s.IsActive,
		&s.StartDate, &s.EndDate, &s.CreatedBy, &s.CreatedAt)
	return s, err
}

func (s *Store) List(ctx context.Context) ([]Survey, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+surveyColumns+" FROM surveys s ORDER BY s.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := []Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, sv)
	}
	return surveys, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Survey, error) {
	sv, err := scanSurvey(s.DB.QueryRow(ctx, "SELECT "+surveyColumns+" FROM surveys s WHERE s.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Survey{}, ErrNotFound
	}
	if err != nil {
		return Survey{}, err
	}
	sv.Questions, err = s.ListQuestions(ctx, id)
	return sv, err
}

func (s *Store) Create(ctx context.Context, sv Survey) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO surveys (title, description, type, url, target_department_id, target_roles,
                         is_active, start_date, end_date, created_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    RETURNING id
  `, sv.Title, sv.Description, sv.Type, sv.URL, nullString(sv.TargetDepartmentID),
		sv.TargetRoles, sv.IsActive, sv.StartDate, sv.EndDate, nullString(sv.CreatedBy)).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, id string, sv Survey) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE surveys
    SET title = $1, description = $2, type = $3, url = $4, target_department_id = $5,
        target_roles = $6, is_active = $7, start_date = $8, end_date = $9
    WHERE id = $10
  `, sv.Title, sv.Description, sv.Type, sv.URL, nullString(sv.TargetDepartmentID),
		sv.TargetRoles, sv.IsActive, sv.StartDate, sv.EndDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM surveys WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListQuestions(ctx context.Context, surveyID string) ([]Question, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, survey_id, question_text, kind, options, position
    FROM survey_questions
    WHERE survey_id = $1
    ORDER BY position, created_at
  `, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.QuestionText, &q.Kind, &q.Options, &q.Position); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) GetQuestion(ctx context.Context, surveyID, questionID string) (Question, error) {
	var q Question
	err := s.DB.QueryRow(ctx, `
    SELECT id, survey_id, question_text, kind, options, position
    FROM survey_questions
    WHERE survey_id = $1 AND id = $2
  `, surveyID, questionID).Scan(&q.ID, &q.SurveyID, &q.QuestionText, &q.Kind, &q.Options, &q.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *Store) CreateQuestion(ctx context.Context, q Question) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO survey_questions (survey_id, question_text, kind, options, position)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, q.SurveyID, q.QuestionText, q.Kind, q.Options, q.Position).Scan(&id)
	return id, err
}

func (s *Store) UpdateQuestion(ctx context.Context, surveyID, questionID string, q Question) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE survey_questions
    SET question_text = $1, kind = $2, options = $3, position = $4
    WHERE survey_id = $5 AND id = $6
  `, q.QuestionText, q.Kind, q.Options, q.Position, surveyID, questionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteQuestion(ctx context.Context, surveyID, questionID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM survey_questions WHERE survey_id = $1 AND id = $2", surveyID, questionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateResponse(ctx context.Context, surveyID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO survey_responses (survey_id, user_id)
    VALUES ($1, $2)
    ON CONFLICT (survey_id, user_id) DO NOTHING
    RETURNING id
  `, surveyID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrDuplicate
	}
	return id, err
}

func (s *Store) AddAnswer(ctx context.Context, responseID, questionID, answerText string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO survey_answers (response_id, question_id, answer_text)
    VALUES ($1, $2, $3)
    RETURNING id
  `, responseID, questionID, answerText).Scan(&id)
	return id, err
}

func (s *Store) ResponseOwner(ctx context.Context, responseID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, "SELECT user_id FROM survey_responses WHERE id = $1", responseID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

// ListResponses returns a survey's responses with answers embedded, joined
// against the question text so the review screens render standalone.
func (s *Store) ListResponses(ctx context.Context, surveyID string) ([]Response, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.survey_id, r.user_id, u.name, r.created_at
    FROM survey_responses r
    JOIN users u ON u.id = r.user_id
    WHERE r.survey_id = $1
    ORDER BY r.created_at
  `, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []Response{}
	for rows.Next() {
		var resp Response
		if err := rows.Scan(&resp.ID, &resp.SurveyID, &resp.UserID, &resp.UserName, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range responses {
		answers, err := s.listAnswers(ctx, responses[i].ID)
		if err != nil {
			return nil, err
		}
		responses[i].Answers = answers
	}
	return responses, nil
}

func (s *Store) listAnswers(ctx context.Context, responseID string) ([]Answer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.question_id, q.question_text, a.answer_text
    FROM survey_answers a
    JOIN survey_questions q ON q.id = a.question_id
    WHERE a.response_id = $1
    ORDER BY q.position, a.created_at
  `, responseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []Answer{}
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.QuestionText, &a.AnswerText); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
