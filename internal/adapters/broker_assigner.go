package adapters

import (
	"context"

	brokerservice "github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/service"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
)

// BrokerAssigner adapts the brokers assignment service to the inquiries
// domain's BrokerAssigner interface.
type BrokerAssigner struct {
	svc *brokerservice.Service
}

// NewBrokerAssigner creates a new adapter wrapping the brokers service.
func NewBrokerAssigner(svc *brokerservice.Service) *BrokerAssigner {
	return &BrokerAssigner{svc: svc}
}

// AssignForInquiry routes the inquiry's property and client to a broker.
func (a *BrokerAssigner) AssignForInquiry(ctx context.Context, params ports.AssignParams) (*ports.Broker, error) {
	assigned, err := a.svc.AssignForInquiry(ctx, brokerservice.AssignmentRequest{
		PropertyID:       params.PropertyID,
		PropertyBrokerID: params.PropertyBrokerID,
		ClientID:         params.ClientID,
		ClientBrokerID:   params.ClientBrokerID,
	})
	if err != nil {
		return nil, err
	}
	if assigned == nil {
		return nil, nil
	}

	return &ports.Broker{ID: assigned.ID, Name: assigned.Name, Email: assigned.Email}, nil
}

// Compile-time check
var _ ports.BrokerAssigner = (*BrokerAssigner)(nil)
