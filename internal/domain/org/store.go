package org

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, COALESCE(d.manager_id::text, ''), COALESCE(m.name, ''), d.created_at
    FROM departments d
    LEFT JOIN users m ON m.id = d.manager_id
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := []Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID, &d.ManagerName, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, id string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    SELECT d.id, d.name, COALESCE(d.manager_id::text, ''), COALESCE(m.name, ''), d.created_at
    FROM departments d
    LEFT JOIN users m ON m.id = d.manager_id
    WHERE d.id = $1
  `, id).Scan(&d.ID, &d.Name, &d.ManagerID, &d.ManagerName, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrNotFound
	}
	return d, err
}

func (s *Store) CreateDepartment(ctx context.Context, name, managerID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, manager_id)
    VALUES ($1, $2)
    RETURNING id
  `, name, nullString(managerID)).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, id, name, managerID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments SET name = $1, manager_id = $2 WHERE id = $3
  `, name, nullString(managerID), id)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context, departmentID string) ([]Employee, error) {
	query := `
    SELECT u.id, u.name, u.username, u.email, u.job_number, u.role,
           COALESCE(u.department_id::text, ''), COALESCE(d.name, ''), u.created_at
    FROM users u
    LEFT JOIN departments d ON d.id = u.department_id
  `
	args := []any{}
	if departmentID != "" {
		query += " WHERE u.department_id = $1"
		args = append(args, departmentID)
	}
	query += " ORDER BY u.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []Employee{}
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Username, &e.Email, &e.JobNumber, &e.Role, &e.DepartmentID, &e.DepartmentName, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.name, u.username, u.email, u.job_number, u.role,
           COALESCE(u.department_id::text, ''), COALESCE(d.name, ''), u.created_at
    FROM users u
    LEFT JOIN departments d ON d.id = u.department_id
    WHERE u.id = $1
  `, id).Scan(&e.ID, &e.Name, &e.Username, &e.Email, &e.JobNumber, &e.Role, &e.DepartmentID, &e.DepartmentName, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.name, u.username, u.email, u.job_number, u.role,
           COALESCE(u.department_id::text, ''), COALESCE(d.name, ''), u.created_at,
           u.marital_status, u.number_of_children, u.qualification,
           u.phone, u.address, u.university, u.graduation_year
    FROM users u
    LEFT JOIN departments d ON d.id = u.department_id
    WHERE u.id = $1
  `, userID).Scan(
		&p.ID, &p.Name, &p.Username, &p.Email, &p.JobNumber, &p.Role,
		&p.DepartmentID, &p.DepartmentName, &p.CreatedAt,
		&p.MaritalStatus, &p.NumberOfChildren, &p.Qualification,
		&p.Phone, &p.Address, &p.University, &p.GraduationYear,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET marital_status = $1, number_of_children = $2, qualification = $3,
        phone = $4, address = $5, university = $6, graduation_year = $7
    WHERE id = $8
  `, p.MaritalStatus, p.NumberOfChildren, p.Qualification,
		p.Phone, p.Address, p.University, p.GraduationYear, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateEmployee(ctx context.Context, e Employee, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, username, email, job_number, role, department_id, password_hash)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, e.Name, e.Username, e.Email, e.JobNumber, e.Role, nullString(e.DepartmentID), passwordHash).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

func (s *Store) UpdateEmployee(ctx context.Context, id string, e Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $1, email = $2, job_number = $3, role = $4, department_id = $5
    WHERE id = $6
  `, e.Name, e.Email, e.JobNumber, e.Role, nullString(e.DepartmentID), id)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountEmployees(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users").Scan(&count)
	return count, err
}

// ManagedDepartmentID returns the department a manager account runs, empty
// when the user manages none.
func (s *Store) ManagedDepartmentID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM departments WHERE manager_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
