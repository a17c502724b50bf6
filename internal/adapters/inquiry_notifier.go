package adapters

import (
	"context"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification"
)

// InquiryNotifier adapts the notification module to the inquiries domain's
// Notifier interface.
type InquiryNotifier struct {
	notifications *notification.Module
}

// NewInquiryNotifier creates a new adapter wrapping the notification module.
func NewInquiryNotifier(notifications *notification.Module) *InquiryNotifier {
	return &InquiryNotifier{notifications: notifications}
}

// NotifyNewInquiry queues the broker alert and client acknowledgement.
func (a *InquiryNotifier) NotifyNewInquiry(ctx context.Context, broker *ports.Broker, notice ports.InquiryNotice) error {
	var recipient *notification.Recipient
	if broker != nil {
		recipient = &notification.Recipient{ID: broker.ID, Name: broker.Name, Email: broker.Email}
	}
	return a.notifications.NotifyNewInquiry(ctx, recipient, toNotificationNotice(notice))
}

// NotifyStatusChange queues the client email about the transition.
func (a *InquiryNotifier) NotifyStatusChange(ctx context.Context, notice ports.InquiryNotice, oldStatus string) error {
	return a.notifications.NotifyStatusChange(ctx, toNotificationNotice(notice), oldStatus)
}

func toNotificationNotice(notice ports.InquiryNotice) notification.InquiryNotice {
	return notification.InquiryNotice{
		InquiryID:   notice.InquiryID,
		PropertyID:  notice.PropertyID,
		ClientName:  notice.Name,
		ClientEmail: notice.Email,
		Message:     notice.Message,
		Status:      notice.Status,
		Response:    notice.Response,
	}
}

// Compile-time check
var _ ports.Notifier = (*InquiryNotifier)(nil)
