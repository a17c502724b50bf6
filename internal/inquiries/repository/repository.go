package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("inquiry not found")

	// ErrDuplicate reports that an equivalent inquiry already exists inside
	// the suppression window. Raised by Create under the per-email lock.
	ErrDuplicate = errors.New("duplicate inquiry")

	// ErrStatusConflict reports that a guarded status update matched no row,
	// meaning the inquiry moved concurrently or does not exist.
	ErrStatusConflict = errors.New("inquiry status changed concurrently")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Inquiry struct {
	ID          uuid.UUID
	PropertyID  uuid.UUID
	ClientID    *uuid.UUID
	UserID      *uuid.UUID
	Name        string
	Email       string
	Phone       *string
	Message     string
	InquiryType string
	Status      string
	Response    *string
	RespondedAt *time.Time
	SubmittedIP string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateInquiryParams struct {
	PropertyID  uuid.UUID
	ClientID    *uuid.UUID
	UserID      *uuid.UUID
	Name        string
	Email       string
	Phone       *string
	Message     string
	InquiryType string
	SubmittedIP string

	// DuplicateSince bounds the duplicate re-check performed inside the
	// insert transaction.
	DuplicateSince time.Time
}

const inquiryColumns = `id, property_id, client_id, user_id, name, email, phone, message,
	inquiry_type, status, response, responded_at, submitted_ip, created_at, updated_at`

func scanInquiry(row pgx.Row) (Inquiry, error) {
	var inq Inquiry
	err := row.Scan(
		&inq.ID, &inq.PropertyID, &inq.ClientID, &inq.UserID, &inq.Name, &inq.Email,
		&inq.Phone, &inq.Message, &inq.InquiryType, &inq.Status, &inq.Response,
		&inq.RespondedAt, &inq.SubmittedIP, &inq.CreatedAt, &inq.UpdatedAt,
	)
	return inq, err
}

// Create inserts an inquiry after re-checking the duplicate window under a
// transaction-scoped advisory lock on the submitter email. The lock
// serializes concurrent submissions for the same email so the check and the
// insert are atomic across instances.
func (r *Repository) Create(ctx context.Context, params CreateInquiryParams) (Inquiry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Inquiry{}, err
	}
	defer tx.Rollback(ctx)

	email := strings.ToLower(strings.TrimSpace(params.Email))

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, email); err != nil {
		return Inquiry{}, err
	}

	var existing int
	err = tx.QueryRow(ctx, `
		SELECT count(*)
		FROM inquiries
		WHERE lower(email) = $1 AND property_id = $2 AND created_at >= $3 AND deleted_at IS NULL
	`, email, params.PropertyID, params.DuplicateSince).Scan(&existing)
	if err != nil {
		return Inquiry{}, err
	}
	if existing > 0 {
		return Inquiry{}, ErrDuplicate
	}

	inq, err := scanInquiry(tx.QueryRow(ctx, `
		INSERT INTO inquiries (
			property_id, client_id, user_id, name, email, phone, message,
			inquiry_type, status, submitted_ip
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'new', $9)
		RETURNING `+inquiryColumns,
		params.PropertyID, params.ClientID, params.UserID, params.Name, email,
		params.Phone, params.Message, params.InquiryType, params.SubmittedIP,
	))
	if err != nil {
		return Inquiry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Inquiry{}, err
	}

	return inq, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Inquiry, error) {
	inq, err := scanInquiry(r.pool.QueryRow(ctx, `
		SELECT `+inquiryColumns+`
		FROM inquiries
		WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Inquiry{}, ErrNotFound
	}
	if err != nil {
		return Inquiry{}, err
	}
	return inq, nil
}

// CountByIPSince counts inquiries submitted from an IP at or after the cutoff.
func (r *Repository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM inquiries
		WHERE submitted_ip = $1 AND created_at >= $2 AND deleted_at IS NULL
	`, ip, since).Scan(&count)
	return count, err
}

// CountByEmailSince counts inquiries for an email at or after the cutoff.
// Matching is case-insensitive.
func (r *Repository) CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM inquiries
		WHERE lower(email) = lower($1) AND created_at >= $2 AND deleted_at IS NULL
	`, email, since).Scan(&count)
	return count, err
}

// HasRecentForProperty reports whether the email already inquired about the
// property at or after the cutoff. Used for the advisory pre-check before
// Create runs the authoritative one under the lock.
func (r *Repository) HasRecentForProperty(ctx context.Context, email string, propertyID uuid.UUID, since time.Time) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM inquiries
		WHERE lower(email) = lower($1) AND property_id = $2 AND created_at >= $3 AND deleted_at IS NULL
	`, email, propertyID, since).Scan(&count)
	return count > 0, err
}

type UpdateStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
	Response   *string

	// RespondedAt is persisted only when the transition marks first contact.
	RespondedAt *time.Time
}

// UpdateStatus persists a transition guarded on the expected current status.
// Returns ErrStatusConflict when the guard does not match.
func (r *Repository) UpdateStatus(ctx context.Context, params UpdateStatusParams) (Inquiry, error) {
	inq, err := scanInquiry(r.pool.QueryRow(ctx, `
		UPDATE inquiries
		SET status = $3,
			response = COALESCE($4, response),
			responded_at = COALESCE($5, responded_at),
			updated_at = now()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL
		RETURNING `+inquiryColumns,
		params.ID, params.FromStatus, params.ToStatus, params.Response, params.RespondedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Inquiry{}, ErrStatusConflict
	}
	if err != nil {
		return Inquiry{}, err
	}
	return inq, nil
}

func (r *Repository) AttachClient(ctx context.Context, inquiryID, clientID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inquiries SET client_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, inquiryID, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkUserByEmail stamps the user on every inquiry matching the email that
// has no user yet. Returns the number of rows updated; already-linked rows
// are untouched, which keeps the operation idempotent.
func (r *Repository) LinkUserByEmail(ctx context.Context, email string, userID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inquiries SET user_id = $2, updated_at = now()
		WHERE lower(email) = lower($1) AND user_id IS NULL AND deleted_at IS NULL
	`, email, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountUnlinkedByEmail counts inquiries LinkUserByEmail would touch, without
// touching them.
func (r *Repository) CountUnlinkedByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM inquiries
		WHERE lower(email) = lower($1) AND user_id IS NULL AND deleted_at IS NULL
	`, email).Scan(&count)
	return count, err
}

// Delete soft deletes an inquiry.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE inquiries SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type OverdueInquiry struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	BrokerID   *uuid.UUID
	Name       string
	Email      string
	CreatedAt  time.Time
}

// FindOverdue lists inquiries still awaiting first contact that were created
// before the cutoff, oldest first.
func (r *Repository) FindOverdue(ctx context.Context, before time.Time, limit int) ([]OverdueInquiry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.property_id, p.broker_id, i.name, i.email, i.created_at
		FROM inquiries i
		JOIN properties p ON p.id = i.property_id
		WHERE i.status = 'new' AND i.created_at < $1 AND i.deleted_at IS NULL
		ORDER BY i.created_at ASC
		LIMIT $2
	`, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OverdueInquiry, 0)
	for rows.Next() {
		var item OverdueInquiry
		if err := rows.Scan(&item.ID, &item.PropertyID, &item.BrokerID, &item.Name, &item.Email, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

type ListInquiriesParams struct {
	PropertyID *uuid.UUID
	ClientID   *uuid.UUID
	Status     *string
	Limit      int
	Offset     int
}

func (r *Repository) List(ctx context.Context, params ListInquiriesParams) ([]Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE deleted_at IS NULL`
	args := []any{}
	idx := 1

	if params.PropertyID != nil {
		query += fmt.Sprintf(" AND property_id = $%d", idx)
		args = append(args, *params.PropertyID)
		idx++
	}
	if params.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", idx)
		args = append(args, *params.ClientID)
		idx++
	}
	if params.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *params.Status)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Inquiry, 0)
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inq)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
