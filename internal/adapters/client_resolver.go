package adapters

import (
	"context"

	clientrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/clients/repository"
	clientservice "github.com/marzy-142/geocasa-bohol-sub001/internal/clients/service"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
)

// ClientResolver adapts the clients service to the inquiries domain's
// ClientResolver interface.
type ClientResolver struct {
	svc *clientservice.Service
}

// NewClientResolver creates a new adapter wrapping the clients service.
func NewClientResolver(svc *clientservice.Service) *ClientResolver {
	return &ClientResolver{svc: svc}
}

// Resolve finds or creates the client record for a submission's contact fields.
func (a *ClientResolver) Resolve(ctx context.Context, params ports.ResolveClientParams) (ports.Client, error) {
	c, err := a.svc.Resolve(ctx, clientrepo.CreateClientParams{
		Name:  params.Name,
		Email: params.Email,
		Phone: params.Phone,
	})
	if err != nil {
		return ports.Client{}, err
	}

	return ports.Client{
		ID:       c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		BrokerID: c.BrokerID,
		UserID:   c.UserID,
	}, nil
}

// Compile-time check
var _ ports.ClientResolver = (*ClientResolver)(nil)
