// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/marzy-142/geocasa-bohol-sub001/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Inquiry Domain Events
// =============================================================================

// InquiryReceived is published when a valid inquiry submission is persisted.
type InquiryReceived struct {
	BaseEvent
	InquiryID  uuid.UUID  `json:"inquiryId"`
	PropertyID uuid.UUID  `json:"propertyId"`
	ClientID   *uuid.UUID `json:"clientId,omitempty"`
	BrokerID   *uuid.UUID `json:"brokerId,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
}

func (e InquiryReceived) EventName() string { return "inquiries.received" }

// InquiryStatusChanged is published after a legal status transition is persisted.
type InquiryStatusChanged struct {
	BaseEvent
	InquiryID uuid.UUID `json:"inquiryId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ActorID   uuid.UUID `json:"actorId"`
}

func (e InquiryStatusChanged) EventName() string { return "inquiries.status.changed" }

// InquiryOverdue is published by the scheduler for a new inquiry that has
// gone unanswered past the overdue threshold.
type InquiryOverdue struct {
	BaseEvent
	InquiryID  uuid.UUID  `json:"inquiryId"`
	PropertyID uuid.UUID  `json:"propertyId"`
	BrokerID   *uuid.UUID `json:"brokerId,omitempty"`
	Email      string     `json:"email"`
	AgeHours   int        `json:"ageHours"`
}

func (e InquiryOverdue) EventName() string { return "inquiries.overdue" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationOutboxDue is published by the scheduler worker when a claimed
// outbox record is due for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return "notifications.outbox.due" }

// =============================================================================
// Broker Domain Events
// =============================================================================

// BrokerAssigned is published when the assignment policy links a broker to a
// property or client.
type BrokerAssigned struct {
	BaseEvent
	BrokerID   uuid.UUID  `json:"brokerId"`
	PropertyID *uuid.UUID `json:"propertyId,omitempty"`
	ClientID   *uuid.UUID `json:"clientId,omitempty"`
}

func (e BrokerAssigned) EventName() string { return "brokers.assigned" }

// =============================================================================
// Client Domain Events
// =============================================================================

// AccountLinked is published after a registration or login retroactively
// links platform-account IDs to guest inquiries and client records.
type AccountLinked struct {
	BaseEvent
	UserID          uuid.UUID `json:"userId"`
	Email           string    `json:"email"`
	LinkedInquiries int       `json:"linkedInquiries"`
	LinkedClients   int       `json:"linkedClients"`
}

func (e AccountLinked) EventName() string { return "clients.account.linked" }
