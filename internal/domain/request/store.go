package request

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const requestColumns = `
  r.id, r.variant, r.owner_id, u.name, r.status, r.subtype, r.reason,
  r.start_date, r.end_date, r.course_id, r.course_name, r.custom_course_title,
  r.custom_course_provider, r.link, r.decision_comment, r.created_at
`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var courseID *string
	if err := row.Scan(
		&req.ID, &req.Variant, &req.OwnerID, &req.OwnerName, &req.Status,
		&req.Subtype, &req.Reason, &req.StartDate, &req.EndDate, &courseID,
		&req.CourseName, &req.CustomCourseTitle, &req.CustomCourseProvider,
		&req.Link, &req.DecisionComment, &req.CreatedAt,
	); err != nil {
		return Request{}, err
	}
	if courseID != nil {
		req.CourseID = *courseID
	}
	return req, nil
}

// Head is the slice of a request the authorization checks need before any
// mutation: who owns it, where they sit, and whether it is still pending.
type Head struct {
	ID           string
	Variant      string
	OwnerID      string
	Status       string
	DepartmentID string
}

func (s *Store) Head(ctx context.Context, id, variant string) (Head, error) {
	var h Head
	var departmentID *string
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.variant, r.owner_id, r.status, u.department_id
    FROM requests r
    JOIN users u ON u.id = r.owner_id
    WHERE r.id = $1 AND r.variant = $2
  `, id, variant).Scan(&h.ID, &h.Variant, &h.OwnerID, &h.Status, &departmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Head{}, ErrNotFound
	}
	if err != nil {
		return Head{}, err
	}
	if departmentID != nil {
		h.DepartmentID = *departmentID
	}
	return h, nil
}

func (s *Store) Get(ctx context.Context, id, variant string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT %s
    FROM requests r
    JOIN users u ON u.id = r.owner_id
    WHERE r.id = $1 AND r.variant = $2
  `, requestColumns), id, variant))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}

	if req.Attachments, err = s.listAttachments(ctx, req.ID, req.Variant); err != nil {
		return Request{}, err
	}
	if HasTrail(req.Variant) {
		if req.Approvals, err = s.listApprovals(ctx, req.ID); err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Request, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Variant != "" {
		where = append(where, "r.variant = "+arg(f.Variant))
	}
	if f.Status != "" {
		where = append(where, "r.status = "+arg(f.Status))
	}
	if !f.Date.IsZero() {
		where = append(where, "r.created_at::date = "+arg(f.Date.Format("2006-01-02")))
	}
	if f.OwnerID != "" {
		where = append(where, "r.owner_id = "+arg(f.OwnerID))
	}
	if f.DepartmentID != "" {
		where = append(where, "u.department_id = "+arg(f.DepartmentID))
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(1) FROM requests r JOIN users u ON u.id = r.owner_id WHERE " + clause
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
    SELECT %s
    FROM requests r
    JOIN users u ON u.id = r.owner_id
    WHERE %s
    ORDER BY r.created_at DESC
    LIMIT %s OFFSET %s
  `, requestColumns, clause, arg(limit), arg(offset))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]Request, 0, limit)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (s *Store) listAttachments(ctx context.Context, requestID, variant string) ([]Attachment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, file_name, content_type, file_size, created_at
    FROM request_attachments
    WHERE request_id = $1
    ORDER BY created_at
  `, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.ID, &att.FileName, &att.ContentType, &att.FileSize, &att.CreatedAt); err != nil {
			return nil, err
		}
		att.RequestID = requestID
		att.URL = AttachmentURL(variant, requestID, att.ID)
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}

// AttachmentURL is the retrieval path the console binds for a stored file.
func AttachmentURL(variant, requestID, attachmentID string) string {
	return fmt.Sprintf("/api/%s-requests/%s/attachments/%s/download", variant, requestID, attachmentID)
}

func (s *Store) listApprovals(ctx context.Context, requestID string) ([]ApprovalEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, COALESCE(a.approver_id::text, ''), COALESCE(u.name, ''), a.approver_role, a.status, a.comment, a.created_at
    FROM request_approvals a
    LEFT JOIN users u ON u.id = a.approver_id
    WHERE a.request_id = $1
    ORDER BY a.created_at
  `, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ApprovalEntry
	for rows.Next() {
		var e ApprovalEntry
		if err := rows.Scan(&e.ID, &e.ApproverID, &e.ApproverName, &e.ApproverRole, &e.Status, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AddAttachment(ctx context.Context, requestID, uploadedBy string, up AttachmentUpload) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO request_attachments (request_id, file_name, content_type, file_size, data, uploaded_by)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, requestID, up.FileName, up.ContentType, int64(len(up.Data)), up.Data, uploadedBy).Scan(&id)
	return id, err
}

func (s *Store) AttachmentData(ctx context.Context, requestID, attachmentID string) (Attachment, []byte, error) {
	var att Attachment
	var data []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, file_name, content_type, file_size, data, created_at
    FROM request_attachments
    WHERE request_id = $1 AND id = $2
  `, requestID, attachmentID).Scan(&att.ID, &att.FileName, &att.ContentType, &att.FileSize, &data, &att.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Attachment{}, nil, ErrNotFound
	}
	if err != nil {
		return Attachment{}, nil, err
	}
	att.RequestID = requestID
	return att, data, nil
}

func (s *Store) AttachmentCount(ctx context.Context, requestID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM request_attachments WHERE request_id = $1", requestID).Scan(&count)
	return count, err
}

// CountByStatus tallies requests per status; an empty ownerID counts across
// all owners.
func (s *Store) CountByStatus(ctx context.Context, variant, ownerID string) (map[string]int, error) {
	query := `
    SELECT status, COUNT(1)
    FROM requests
    WHERE variant = $1
  `
	args := []any{variant}
	if ownerID != "" {
		query += " AND owner_id = $2"
		args = append(args, ownerID)
	}
	query += " GROUP BY status"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{StatusPending: 0, StatusApproved: 0, StatusRejected: 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
