package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("client not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Client struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     *string
	BrokerID  *uuid.UUID
	UserID    *uuid.UUID
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const clientColumns = `id, name, email, phone, broker_id, user_id, status, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.BrokerID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	if err != nil {
		return Client{}, err
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	if err != nil {
		return Client{}, err
	}
	return c, nil
}

type CreateClientParams struct {
	Name  string
	Email string
	Phone *string
}

// FindOrCreate returns the client for the email, creating one when absent.
// The insert relies on the unique index on lower(email): a concurrent
// create loses the race cleanly and falls back to the existing row.
func (r *Repository) FindOrCreate(ctx context.Context, params CreateClientParams) (Client, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	c, err := scanClient(r.pool.QueryRow(ctx, `
		INSERT INTO clients (name, email, phone, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (email) DO NOTHING
		RETURNING `+clientColumns,
		params.Name, email, params.Phone,
	))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Client{}, err
	}

	// Conflict: the row already exists.
	return r.FindByEmail(ctx, email)
}

func (r *Repository) AttachUser(ctx context.Context, clientID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET user_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, clientID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignBroker records the first broker assignment for a client. Re-running
// against an already-assigned client is a no-op.
func (r *Repository) AssignBroker(ctx context.Context, clientID, brokerID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET broker_id = $2, updated_at = now()
		WHERE id = $1 AND broker_id IS NULL AND deleted_at IS NULL
	`, clientID, brokerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// LinkUserByEmail stamps the user on every unlinked client matching the
// email. Returns the number of rows updated.
func (r *Repository) LinkUserByEmail(ctx context.Context, email string, userID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET user_id = $2, updated_at = now()
		WHERE lower(email) = lower($1) AND user_id IS NULL AND deleted_at IS NULL
	`, email, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) CountUnlinkedByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM clients
		WHERE lower(email) = lower($1) AND user_id IS NULL AND deleted_at IS NULL
	`, email).Scan(&count)
	return count, err
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
