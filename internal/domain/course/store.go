package course

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("course not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) List(ctx context.Context, onlyAvailable bool) ([]Course, error) {
	query := `
    SELECT id, name, description, start_date, end_date, location, instructor, available, created_at
    FROM courses
  `
	if onlyAvailable {
		query += " WHERE available"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Location, &c.Instructor, &c.Available, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, start_date, end_date, location, instructor, available, created_at
    FROM courses
    WHERE id = $1
  `, id).Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Location, &c.Instructor, &c.Available, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func (s *Store) Create(ctx context.Context, c Course) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO courses (name, description, start_date, end_date, location, instructor, available)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, c.Name, c.Description, nullDate(c.StartDate), nullDate(c.EndDate), c.Location, c.Instructor, c.Available).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, id string, c Course) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE courses
    SET name = $1, description = $2, start_date = $3, end_date = $4,
        location = $5, instructor = $6, available = $7
    WHERE id = $8
  `, c.Name, c.Description, nullDate(c.StartDate), nullDate(c.EndDate), c.Location, c.Instructor, c.Available, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM courses").Scan(&count)
	return count, err
}

func nullDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
