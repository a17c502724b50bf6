package adapters

import (
	"context"

	"github.com/google/uuid"

	brokerservice "github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/service"
	clientrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/clients/repository"
	propertyrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/properties/repository"
)

// PropertyAssignmentWriter adapts the properties repository to the brokers
// domain's PropertyAssigner interface.
type PropertyAssignmentWriter struct {
	repo *propertyrepo.Repository
}

// NewPropertyAssignmentWriter creates a new adapter wrapping the properties repository.
func NewPropertyAssignmentWriter(repo *propertyrepo.Repository) *PropertyAssignmentWriter {
	return &PropertyAssignmentWriter{repo: repo}
}

// AssignBroker records the first broker on a property.
func (a *PropertyAssignmentWriter) AssignBroker(ctx context.Context, propertyID, brokerID uuid.UUID) (bool, error) {
	return a.repo.AssignBroker(ctx, propertyID, brokerID)
}

// ClientAssignmentWriter adapts the clients repository to the brokers
// domain's ClientAssigner interface.
type ClientAssignmentWriter struct {
	repo *clientrepo.Repository
}

// NewClientAssignmentWriter creates a new adapter wrapping the clients repository.
func NewClientAssignmentWriter(repo *clientrepo.Repository) *ClientAssignmentWriter {
	return &ClientAssignmentWriter{repo: repo}
}

// AssignBroker records the first broker on a client.
func (a *ClientAssignmentWriter) AssignBroker(ctx context.Context, clientID, brokerID uuid.UUID) (bool, error) {
	return a.repo.AssignBroker(ctx, clientID, brokerID)
}

// Compile-time checks
var (
	_ brokerservice.PropertyAssigner = (*PropertyAssignmentWriter)(nil)
	_ brokerservice.ClientAssigner   = (*ClientAssignmentWriter)(nil)
)
