package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("property not found")

// Statuses a property can carry. Only active and available accept inquiries.
const (
	StatusActive    = "active"
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusSold      = "sold"
	StatusDelisted  = "delisted"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Property struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Location    *string
	Price       *float64
	Status      string
	BrokerID    *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const propertyColumns = `id, title, description, location, price, status, broker_id, created_at, updated_at`

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Location, &p.Price, &p.Status, &p.BrokerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Property, error) {
	p, err := scanProperty(r.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, err
	}
	return p, nil
}

// AssignBroker records the first broker assignment for a property. The
// broker_id guard makes re-running a no-op instead of a reassignment;
// the bool reports whether this call won the write.
func (r *Repository) AssignBroker(ctx context.Context, propertyID, brokerID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE properties SET broker_id = $2, updated_at = now()
		WHERE id = $1 AND broker_id IS NULL AND deleted_at IS NULL
	`, propertyID, brokerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) List(ctx context.Context, status *string, limit, offset int) ([]Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE deleted_at IS NULL`
	args := []any{}
	if status != nil {
		query += ` AND status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
