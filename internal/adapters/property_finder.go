// Package adapters contains adapters that bridge different bounded contexts.
// These adapters implement interfaces defined by consuming domains while
// wrapping services from providing domains.
package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
	propertyrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/properties/repository"
)

// PropertyFinder adapts the properties repository to the inquiries domain's
// PropertyFinder interface.
type PropertyFinder struct {
	repo *propertyrepo.Repository
}

// NewPropertyFinder creates a new adapter wrapping the properties repository.
func NewPropertyFinder(repo *propertyrepo.Repository) *PropertyFinder {
	return &PropertyFinder{repo: repo}
}

// FindByID returns the inquiries-domain view of a property, or nil when no
// such property exists.
func (a *PropertyFinder) FindByID(ctx context.Context, id uuid.UUID) (*ports.Property, error) {
	p, err := a.repo.GetByID(ctx, id)
	if errors.Is(err, propertyrepo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ports.Property{
		ID:       p.ID,
		Title:    p.Title,
		Status:   p.Status,
		BrokerID: p.BrokerID,
	}, nil
}

// Compile-time check
var _ ports.PropertyFinder = (*PropertyFinder)(nil)
