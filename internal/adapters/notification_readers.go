package adapters

import (
	"context"

	"github.com/google/uuid"

	brokerrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification"
	propertyrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/properties/repository"
)

// PropertyTitleReader adapts the properties repository to the notification
// module's delivery-time title lookup.
type PropertyTitleReader struct {
	repo *propertyrepo.Repository
}

func NewPropertyTitleReader(repo *propertyrepo.Repository) *PropertyTitleReader {
	return &PropertyTitleReader{repo: repo}
}

func (a *PropertyTitleReader) PropertyTitle(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Title, nil
}

// BrokerDirectory adapts the brokers repository to the notification module's
// delivery-time contact lookup.
type BrokerDirectory struct {
	repo *brokerrepo.Repository
}

func NewBrokerDirectory(repo *brokerrepo.Repository) *BrokerDirectory {
	return &BrokerDirectory{repo: repo}
}

func (a *BrokerDirectory) BrokerContact(ctx context.Context, id uuid.UUID) (notification.BrokerContact, error) {
	b, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return notification.BrokerContact{}, err
	}
	return notification.BrokerContact{ID: b.ID, Name: b.Name, Email: b.Email}, nil
}

// Compile-time checks
var (
	_ notification.PropertyTitleReader = (*PropertyTitleReader)(nil)
	_ notification.BrokerDirectory     = (*BrokerDirectory)(nil)
)
