package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StatusCount struct {
	Status string
	Count  int
}

func (r *Repository) CountByStatusSince(ctx context.Context, since time.Time) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, count(*)
		FROM inquiries
		WHERE created_at >= $1 AND deleted_at IS NULL
		GROUP BY status
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusCount, 0)
	for rows.Next() {
		var item StatusCount
		if err := rows.Scan(&item.Status, &item.Count); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// AverageResponseHours returns the mean hours between submission and first
// contact over the window, counting only inquiries that were responded to.
// Returns 0 when none were.
func (r *Repository) AverageResponseHours(ctx context.Context, since time.Time) (float64, error) {
	var hours *float64
	err := r.pool.QueryRow(ctx, `
		SELECT avg(extract(epoch FROM responded_at - created_at) / 3600.0)
		FROM inquiries
		WHERE created_at >= $1 AND responded_at IS NOT NULL AND deleted_at IS NULL
	`, since).Scan(&hours)
	if err != nil {
		return 0, err
	}
	if hours == nil {
		return 0, nil
	}
	return *hours, nil
}

type PropertyCount struct {
	PropertyID uuid.UUID
	Title      string
	Count      int
}

func (r *Repository) TopPropertiesSince(ctx context.Context, since time.Time, limit int) ([]PropertyCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.property_id, p.title, count(*) AS inquiry_count
		FROM inquiries i
		JOIN properties p ON p.id = i.property_id
		WHERE i.created_at >= $1 AND i.deleted_at IS NULL
		GROUP BY i.property_id, p.title
		ORDER BY inquiry_count DESC, p.title ASC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PropertyCount, 0)
	for rows.Next() {
		var item PropertyCount
		if err := rows.Scan(&item.PropertyID, &item.Title, &item.Count); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

type BrokerPerformance struct {
	BrokerID  uuid.UUID
	Name      string
	Total     int
	Completed int
}

// BrokerPerformanceSince aggregates inquiry volume and completions per broker
// over the window, attributed through the property the inquiry targets.
func (r *Repository) BrokerPerformanceSince(ctx context.Context, since time.Time) ([]BrokerPerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.name,
			count(i.id) AS total,
			count(i.id) FILTER (WHERE i.status = 'completed') AS completed
		FROM brokers b
		JOIN properties p ON p.broker_id = b.id
		JOIN inquiries i ON i.property_id = p.id
		WHERE i.created_at >= $1 AND i.deleted_at IS NULL
		GROUP BY b.id, b.name
		ORDER BY total DESC, b.name ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]BrokerPerformance, 0)
	for rows.Next() {
		var item BrokerPerformance
		if err := rows.Scan(&item.BrokerID, &item.Name, &item.Total, &item.Completed); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
