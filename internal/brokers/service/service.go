// Package service implements the broker assignment policy: route each new
// inquiry to the eligible broker carrying the least work.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

// Repository is the persistence surface the service consumes. Satisfied by
// *repository.Repository; declared here so tests can substitute a fake.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Broker, error)
	EligibleWithWorkload(ctx context.Context) ([]repository.Workload, error)
}

// PropertyAssigner records a broker on an unassigned property. The bool
// reports whether this call performed the write.
type PropertyAssigner interface {
	AssignBroker(ctx context.Context, propertyID, brokerID uuid.UUID) (bool, error)
}

// ClientAssigner records a broker on an unassigned client.
type ClientAssigner interface {
	AssignBroker(ctx context.Context, clientID, brokerID uuid.UUID) (bool, error)
}

type Service struct {
	repo       Repository
	properties PropertyAssigner
	clients    ClientAssigner
	bus        events.Bus
	log        *logger.Logger
}

func New(repo Repository, properties PropertyAssigner, clients ClientAssigner, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, properties: properties, clients: clients, bus: bus, log: log}
}

// SetClientAssigner injects the client assignment writer after construction
// (the clients module is built later in the composition root).
func (s *Service) SetClientAssigner(clients ClientAssigner) {
	s.clients = clients
}

// Assigned identifies the broker an inquiry was routed to.
type Assigned struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AssignmentRequest describes the property/client pair behind a new inquiry.
type AssignmentRequest struct {
	PropertyID       uuid.UUID
	PropertyBrokerID *uuid.UUID
	ClientID         uuid.UUID // uuid.Nil when client resolution failed
	ClientBrokerID   *uuid.UUID
}

// Pick selects the assignment winner from the candidates: lowest active
// workload first, ties broken by fewest total ever assigned, then by name
// so the outcome is deterministic. Returns nil when no candidate exists.
func Pick(candidates []repository.Workload) *repository.Workload {
	var best *repository.Workload
	for i := range candidates {
		c := &candidates[i]
		if best == nil {
			best = c
			continue
		}
		switch {
		case c.ActiveWorkload < best.ActiveWorkload:
			best = c
		case c.ActiveWorkload == best.ActiveWorkload && c.TotalAssigned < best.TotalAssigned:
			best = c
		case c.ActiveWorkload == best.ActiveWorkload && c.TotalAssigned == best.TotalAssigned && c.Name < best.Name:
			best = c
		}
	}
	return best
}

// AssignForInquiry routes a new inquiry to a broker. A property that already
// has a broker keeps it; otherwise the lowest-workload eligible broker wins
// the property. The resolved client inherits the same broker when it has
// none yet. A nil result with a nil error means no eligible broker exists
// and the inquiry proceeds unassigned.
func (s *Service) AssignForInquiry(ctx context.Context, req AssignmentRequest) (*Assigned, error) {
	if req.PropertyBrokerID != nil {
		return s.keepExisting(ctx, req)
	}

	candidates, err := s.repo.EligibleWithWorkload(ctx)
	if err != nil {
		return nil, err
	}
	winner := Pick(candidates)
	if winner == nil {
		return nil, nil
	}

	won, err := s.properties.AssignBroker(ctx, req.PropertyID, winner.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost a concurrent assignment race; the property keeps the
		// broker that got there first.
		return nil, nil
	}

	s.assignClient(ctx, req, winner.ID)

	s.bus.Publish(ctx, events.BrokerAssigned{
		BaseEvent:  events.NewBaseEvent(),
		BrokerID:   winner.ID,
		PropertyID: &req.PropertyID,
	})

	return &Assigned{ID: winner.ID, Name: winner.Name, Email: winner.Email}, nil
}

func (s *Service) keepExisting(ctx context.Context, req AssignmentRequest) (*Assigned, error) {
	broker, err := s.repo.GetByID(ctx, *req.PropertyBrokerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.assignClient(ctx, req, broker.ID)

	return &Assigned{ID: broker.ID, Name: broker.Name, Email: broker.Email}, nil
}

func (s *Service) assignClient(ctx context.Context, req AssignmentRequest, brokerID uuid.UUID) {
	if req.ClientID == uuid.Nil || req.ClientBrokerID != nil {
		return
	}
	if _, err := s.clients.AssignBroker(ctx, req.ClientID, brokerID); err != nil {
		s.log.Error("client_broker_assignment_failed", "client_id", req.ClientID.String(), "error", err.Error())
	}
}
