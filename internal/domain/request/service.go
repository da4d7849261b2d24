package request

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hrportal/internal/domain/auth"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Create inserts a new pending request owned by ownerID. Shape validation
// is the caller's job (ValidateCreate); Create still resolves and snapshots
// the catalog course name so the request stays displayable after the
// catalog entry is deleted.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Request, error) {
	courseName := ""
	if in.Variant == VariantCourse && strings.TrimSpace(in.CourseID) != "" {
		if err := s.Store.DB.QueryRow(ctx,
			"SELECT name FROM courses WHERE id = $1", in.CourseID,
		).Scan(&courseName); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Request{}, ErrNotFound
			}
			return Request{}, err
		}
	}

	var id string
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO requests (variant, owner_id, status, subtype, reason, start_date, end_date,
                          course_id, course_name, custom_course_title, custom_course_provider, link)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    RETURNING id
  `, in.Variant, ownerID, StatusPending, in.Subtype, in.Reason,
		nullDate(in.StartDate), nullDate(in.EndDate),
		nullString(in.CourseID), courseName, in.CustomCourseTitle, in.CustomCourseProvider, in.Link,
	).Scan(&id); err != nil {
		return Request{}, err
	}
	return s.Store.Get(ctx, id, in.Variant)
}

// Update applies an owner edit to a still-pending request. The conditional
// WHERE keeps a racing decision from being silently overwritten.
func (s *Service) Update(ctx context.Context, id, ownerID string, in CreateInput) (Request, error) {
	courseName := ""
	if in.Variant == VariantCourse && strings.TrimSpace(in.CourseID) != "" {
		if err := s.Store.DB.QueryRow(ctx,
			"SELECT name FROM courses WHERE id = $1", in.CourseID,
		).Scan(&courseName); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return Request{}, err
		}
	}

	tag, err := s.Store.DB.Exec(ctx, `
    UPDATE requests
    SET subtype = $1, reason = $2, start_date = $3, end_date = $4,
        course_id = $5, course_name = $6, custom_course_title = $7,
        custom_course_provider = $8, link = $9
    WHERE id = $10 AND variant = $11 AND owner_id = $12 AND status = $13
  `, in.Subtype, in.Reason, nullDate(in.StartDate), nullDate(in.EndDate),
		nullString(in.CourseID), courseName, in.CustomCourseTitle,
		in.CustomCourseProvider, in.Link,
		id, in.Variant, ownerID, StatusPending)
	if err != nil {
		return Request{}, err
	}
	if tag.RowsAffected() == 0 {
		return Request{}, s.mutationFailure(ctx, id, in.Variant)
	}
	return s.Store.Get(ctx, id, in.Variant)
}

// Decide moves a pending request to approved or rejected. The transition is
// a conditional UPDATE: of two racing decisions only one row wins, the
// other caller observes ErrInvalidState.
func (s *Service) Decide(ctx context.Context, id, variant, status, comment string, actor auth.UserContext) (Request, error) {
	if status != StatusApproved && status != StatusRejected {
		return Request{}, ErrInvalidState
	}

	tag, err := s.Store.DB.Exec(ctx, `
    UPDATE requests
    SET status = $1, decision_comment = $2, decided_by = $3, decided_at = now()
    WHERE id = $4 AND variant = $5 AND status = $6
  `, status, comment, actor.UserID, id, variant, StatusPending)
	if err != nil {
		return Request{}, err
	}
	if tag.RowsAffected() == 0 {
		return Request{}, s.mutationFailure(ctx, id, variant)
	}

	if HasTrail(variant) {
		if _, err := s.Store.DB.Exec(ctx, `
      INSERT INTO request_approvals (request_id, approver_id, approver_role, status, comment)
      VALUES ($1, $2, $3, $4, $5)
    `, id, actor.UserID, actor.Role, status, comment); err != nil {
			return Request{}, err
		}
	}
	return s.Store.Get(ctx, id, variant)
}

// ApproveWithEvidence is the statement/course approval path: evidence has
// already been checked by the caller (no storage write happens on a
// violation). The transition and its evidence commit in one transaction;
// when a racing decision wins, neither the link nor the attachment lands.
func (s *Service) ApproveWithEvidence(ctx context.Context, id, variant, comment, link string, attachment *AttachmentUpload, actor auth.UserContext) (Request, error) {
	tx, err := s.Store.DB.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE requests
    SET status = $1, decision_comment = $2, decided_by = $3, decided_at = now()
    WHERE id = $4 AND variant = $5 AND status = $6
  `, StatusApproved, comment, actor.UserID, id, variant, StatusPending)
	if err != nil {
		return Request{}, err
	}
	if tag.RowsAffected() == 0 {
		return Request{}, s.mutationFailure(ctx, id, variant)
	}

	if link != "" {
		if _, err := tx.Exec(ctx, "UPDATE requests SET link = $1 WHERE id = $2", link, id); err != nil {
			return Request{}, err
		}
	}
	if attachment != nil {
		if _, err := tx.Exec(ctx, `
      INSERT INTO request_attachments (request_id, file_name, content_type, file_size, data, uploaded_by)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, id, attachment.FileName, attachment.ContentType, int64(len(attachment.Data)), attachment.Data, actor.UserID); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return s.Store.Get(ctx, id, variant)
}

func (s *Service) Delete(ctx context.Context, id, variant string) error {
	tag, err := s.Store.DB.Exec(ctx, "DELETE FROM requests WHERE id = $1 AND variant = $2", id, variant)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]Request, int, error) {
	return s.Store.List(ctx, f, limit, offset)
}

// ListAll backs the aggregated admin/HR overview. With a type filter set
// the other two lists come back empty rather than absent.
func (s *Service) ListAll(ctx context.Context, f Filter, limit int) (Aggregated, error) {
	out := Aggregated{
		LeaveRequests:     []Request{},
		StatementRequests: []Request{},
		CourseRequests:    []Request{},
	}

	for _, variant := range Variants {
		if f.Variant != "" && f.Variant != variant {
			continue
		}
		scoped := f
		scoped.Variant = variant
		items, _, err := s.Store.List(ctx, scoped, limit, 0)
		if err != nil {
			return Aggregated{}, err
		}
		switch variant {
		case VariantLeave:
			out.LeaveRequests = items
		case VariantStatement:
			out.StatementRequests = items
		case VariantCourse:
			out.CourseRequests = items
		}
	}
	return out, nil
}

// mutationFailure distinguishes "gone" from "already decided" after a
// conditional write matched no rows.
func (s *Service) mutationFailure(ctx context.Context, id, variant string) error {
	if _, err := s.Store.Head(ctx, id, variant); errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return ErrInvalidState
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
