package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("broker not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Broker struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Approved  bool
	Active    bool
	CreatedAt time.Time
}

// Workload is a broker candidate with its current load figures.
type Workload struct {
	ID             uuid.UUID
	Name           string
	Email          string
	ActiveWorkload int
	TotalAssigned  int
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Broker, error) {
	var b Broker
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, approved, active, created_at
		FROM brokers
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&b.ID, &b.Name, &b.Email, &b.Approved, &b.Active, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Broker{}, ErrNotFound
	}
	if err != nil {
		return Broker{}, err
	}
	return b, nil
}

// EligibleWithWorkload returns every approved, active broker with its load:
// active inquiries on its properties plus active assigned clients, and the
// total ever assigned for tie-breaking. Computed fresh on every call since
// workload changes continuously.
func (r *Repository) EligibleWithWorkload(ctx context.Context) ([]Workload, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.name, b.email,
			coalesce(iw.active, 0) + coalesce(cw.active, 0) AS active_workload,
			coalesce(iw.total, 0) + coalesce(cw.total, 0) AS total_assigned
		FROM brokers b
		LEFT JOIN (
			SELECT p.broker_id,
				count(*) FILTER (WHERE i.status NOT IN ('completed', 'closed')) AS active,
				count(*) AS total
			FROM inquiries i
			JOIN properties p ON p.id = i.property_id
			WHERE p.broker_id IS NOT NULL AND i.deleted_at IS NULL
			GROUP BY p.broker_id
		) iw ON iw.broker_id = b.id
		LEFT JOIN (
			SELECT broker_id,
				count(*) FILTER (WHERE status = 'active') AS active,
				count(*) AS total
			FROM clients
			WHERE broker_id IS NOT NULL AND deleted_at IS NULL
			GROUP BY broker_id
		) cw ON cw.broker_id = b.id
		WHERE b.approved = true AND b.active = true AND b.deleted_at IS NULL
		ORDER BY b.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Workload, 0)
	for rows.Next() {
		var w Workload
		if err := rows.Scan(&w.ID, &w.Name, &w.Email, &w.ActiveWorkload, &w.TotalAssigned); err != nil {
			return nil, err
		}
		items = append(items, w)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
