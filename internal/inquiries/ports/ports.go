// Package ports declares the collaborator interfaces the inquiries service
// depends on. Implementations live in internal/adapters, keeping this
// bounded context decoupled from the properties, clients, brokers and
// notification modules.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// Property is the minimal view of a property this context needs.
type Property struct {
	ID       uuid.UUID
	Title    string
	Status   string
	BrokerID *uuid.UUID
}

// OpenForInquiries reports whether the property accepts new inquiries.
func (p Property) OpenForInquiries() bool {
	return p.Status == "active" || p.Status == "available"
}

// PropertyFinder looks up properties for validation and assignment.
type PropertyFinder interface {
	// FindByID returns the property, or nil when no such property exists.
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
}

// Client is the minimal view of a client/lead record.
type Client struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Phone    *string
	BrokerID *uuid.UUID
	UserID   *uuid.UUID
}

// ResolveClientParams carries the contact fields of a submission.
type ResolveClientParams struct {
	Name  string
	Email string
	Phone *string
}

// ClientResolver finds or lazily creates the client record for an email.
type ClientResolver interface {
	Resolve(ctx context.Context, params ResolveClientParams) (Client, error)
}

// Broker is an approved agent eligible for assignment.
type Broker struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AssignParams describes the property/client pair needing a broker.
type AssignParams struct {
	PropertyID       uuid.UUID
	PropertyBrokerID *uuid.UUID
	ClientID         uuid.UUID
	ClientBrokerID   *uuid.UUID
}

// BrokerAssigner selects and records a broker for an inquiry's property and
// client. A nil broker with a nil error means no eligible broker exists;
// the inquiry proceeds unassigned.
type BrokerAssigner interface {
	AssignForInquiry(ctx context.Context, params AssignParams) (*Broker, error)
}

// InquiryNotice is the notification payload describing one inquiry.
type InquiryNotice struct {
	InquiryID  uuid.UUID
	PropertyID uuid.UUID
	Name       string
	Email      string
	Message    string
	Status     string
	Response   *string
}

// Notifier delivers inquiry notifications. Calls are fire-and-forget from
// the orchestrator's perspective: returned errors are logged, never
// propagated to the submitter.
type Notifier interface {
	NotifyNewInquiry(ctx context.Context, broker *Broker, notice InquiryNotice) error
	NotifyStatusChange(ctx context.Context, notice InquiryNotice, oldStatus string) error
}
