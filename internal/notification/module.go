// Package notification queues and delivers inquiry notifications. Email
// deliveries go through a persistent outbox processed by the scheduler
// worker; in-app notices are written directly.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/email"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/events"
	apphttp "github.com/marzy-142/geocasa-bohol-sub001/internal/http"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification/handler"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification/inapp"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification/outbox"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/config"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

const (
	invalidOutboxPayloadPrefix = "invalid payload: "
	maxOutboxRetryAttempts     = 5
	outboxRetryBaseDelay       = time.Minute
	outboxRetryMaxDelay        = 60 * time.Minute
)

// PropertyTitleReader resolves property titles at delivery time, so outbox
// payloads stay small and titles are never stale.
type PropertyTitleReader interface {
	PropertyTitle(ctx context.Context, id uuid.UUID) (string, error)
}

// BrokerContact is the delivery address for a broker recipient.
type BrokerContact struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// BrokerDirectory resolves broker contact details at delivery time.
type BrokerDirectory interface {
	BrokerContact(ctx context.Context, id uuid.UUID) (BrokerContact, error)
}

type Module struct {
	outbox    *outbox.Repository
	inAppSvc  *inapp.Service
	httpH     *handler.HTTPHandler
	sender    email.Sender
	cfg       config.EmailConfig
	titles    PropertyTitleReader
	directory BrokerDirectory
	log       *logger.Logger
}

func New(pool *pgxpool.Pool, sender email.Sender, cfg config.EmailConfig, log *logger.Logger) *Module {
	inAppSvc := inapp.NewService(inapp.NewRepository(pool), log)
	return &Module{
		outbox:   outbox.New(pool),
		inAppSvc: inAppSvc,
		httpH:    handler.NewHTTPHandler(inAppSvc),
		sender:   sender,
		cfg:      cfg,
		log:      log,
	}
}

func (m *Module) Name() string { return "notification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.httpH.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

func (m *Module) SetPropertyTitleReader(r PropertyTitleReader) { m.titles = r }

func (m *Module) SetBrokerDirectory(d BrokerDirectory) { m.directory = d }

// InAppService exposes the in-app notification service to other modules.
func (m *Module) InAppService() *inapp.Service { return m.inAppSvc }

// OutboxRepository exposes the outbox for the scheduler dispatcher.
func (m *Module) OutboxRepository() *outbox.Repository { return m.outbox }

// ── Queueing API ────────────────────────────────────────────────────────

// Recipient identifies the broker a notification is addressed to.
type Recipient struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// InquiryNotice carries the inquiry fields notifications are built from.
type InquiryNotice struct {
	InquiryID   uuid.UUID
	PropertyID  uuid.UUID
	ClientName  string
	ClientEmail string
	Message     string
	Status      string
	Response    *string
}

type newInquiryOutboxPayload struct {
	InquiryID   string `json:"inquiryId"`
	PropertyID  string `json:"propertyId"`
	ToEmail     string `json:"toEmail"`
	ToName      string `json:"toName"`
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	Message     string `json:"message"`
}

type inquiryReceivedOutboxPayload struct {
	InquiryID  string `json:"inquiryId"`
	PropertyID string `json:"propertyId"`
	ToEmail    string `json:"toEmail"`
	ClientName string `json:"clientName"`
}

type statusChangeOutboxPayload struct {
	InquiryID  string `json:"inquiryId"`
	PropertyID string `json:"propertyId"`
	ToEmail    string `json:"toEmail"`
	ClientName string `json:"clientName"`
	NewStatus  string `json:"newStatus"`
	Response   string `json:"response,omitempty"`
}

type overdueReminderOutboxPayload struct {
	BrokerID string `json:"brokerId,omitempty"`
	Count    int    `json:"count"`
}

// NotifyNewInquiry queues the broker alert (or the admin fallback when no
// broker is assigned) plus the client acknowledgement, and writes the
// broker's in-app notice.
func (m *Module) NotifyNewInquiry(ctx context.Context, broker *Recipient, notice InquiryNotice) error {
	now := time.Now().UTC()

	if broker != nil {
		_, err := m.outbox.Insert(ctx, outbox.InsertParams{
			Kind: outbox.KindNewInquiryBroker,
			Payload: newInquiryOutboxPayload{
				InquiryID:   notice.InquiryID.String(),
				PropertyID:  notice.PropertyID.String(),
				ToEmail:     broker.Email,
				ToName:      broker.Name,
				ClientName:  notice.ClientName,
				ClientEmail: notice.ClientEmail,
				Message:     notice.Message,
			},
			RunAt: now,
		})
		if err != nil {
			return fmt.Errorf("queue broker alert: %w", err)
		}

		inquiryID := notice.InquiryID
		if err := m.inAppSvc.Send(ctx, inapp.SendParams{
			UserID:       broker.ID,
			Title:        "New inquiry received",
			Content:      fmt.Sprintf("%s sent an inquiry about one of your properties.", notice.ClientName),
			ResourceID:   &inquiryID,
			ResourceType: "inquiry",
			Category:     "info",
		}); err != nil {
			m.log.Warn("in-app notification failed", "inquiryId", notice.InquiryID, "brokerId", broker.ID, "error", err)
		}
	} else if adminEmail := strings.TrimSpace(m.cfg.GetAdminEmail()); adminEmail != "" {
		_, err := m.outbox.Insert(ctx, outbox.InsertParams{
			Kind: outbox.KindNewInquiryAdmin,
			Payload: newInquiryOutboxPayload{
				InquiryID:   notice.InquiryID.String(),
				PropertyID:  notice.PropertyID.String(),
				ToEmail:     adminEmail,
				ToName:      "Admin",
				ClientName:  notice.ClientName,
				ClientEmail: notice.ClientEmail,
				Message:     notice.Message,
			},
			RunAt: now,
		})
		if err != nil {
			return fmt.Errorf("queue admin alert: %w", err)
		}
	}

	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind: outbox.KindInquiryReceived,
		Payload: inquiryReceivedOutboxPayload{
			InquiryID:  notice.InquiryID.String(),
			PropertyID: notice.PropertyID.String(),
			ToEmail:    notice.ClientEmail,
			ClientName: notice.ClientName,
		},
		RunAt: now,
	})
	if err != nil {
		return fmt.Errorf("queue client acknowledgement: %w", err)
	}
	return nil
}

// NotifyStatusChange queues the client email about an inquiry moving to a
// new status.
func (m *Module) NotifyStatusChange(ctx context.Context, notice InquiryNotice, oldStatus string) error {
	response := ""
	if notice.Response != nil {
		response = *notice.Response
	}

	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind: outbox.KindStatusChangeClient,
		Payload: statusChangeOutboxPayload{
			InquiryID:  notice.InquiryID.String(),
			PropertyID: notice.PropertyID.String(),
			ToEmail:    notice.ClientEmail,
			ClientName: notice.ClientName,
			NewStatus:  notice.Status,
			Response:   response,
		},
		RunAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("queue status change email: %w", err)
	}
	return nil
}

// EnqueueOverdueDigest queues one reminder email covering count overdue
// inquiries. A nil brokerID routes the digest to the admin address.
func (m *Module) EnqueueOverdueDigest(ctx context.Context, brokerID *uuid.UUID, count int) error {
	if count < 1 {
		return nil
	}

	payload := overdueReminderOutboxPayload{Count: count}
	if brokerID != nil {
		payload.BrokerID = brokerID.String()
	}

	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind:    outbox.KindOverdueReminder,
		Payload: payload,
		RunAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("queue overdue reminder: %w", err)
	}
	return nil
}

// ── Event handling ──────────────────────────────────────────────────────

func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.InquiryOverdue{}.EventName(), m)
	bus.Subscribe(events.AccountLinked{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.InquiryOverdue:
		return m.handleInquiryOverdue(ctx, e)
	case events.AccountLinked:
		return m.handleAccountLinked(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleInquiryOverdue(ctx context.Context, e events.InquiryOverdue) error {
	if e.BrokerID == nil {
		return nil
	}

	inquiryID := e.InquiryID
	return m.inAppSvc.Send(ctx, inapp.SendParams{
		UserID:       *e.BrokerID,
		Title:        "Inquiry awaiting contact",
		Content:      fmt.Sprintf("An inquiry from %s has waited %d hours without contact.", e.Email, e.AgeHours),
		ResourceID:   &inquiryID,
		ResourceType: "inquiry",
		Category:     "warning",
	})
}

func (m *Module) handleAccountLinked(ctx context.Context, e events.AccountLinked) error {
	if e.LinkedInquiries == 0 && e.LinkedClients == 0 {
		return nil
	}

	return m.inAppSvc.Send(ctx, inapp.SendParams{
		UserID:       e.UserID,
		Title:        "Past inquiries linked",
		Content:      fmt.Sprintf("We linked %d earlier inquiries to your new account.", e.LinkedInquiries),
		ResourceType: "account",
		Category:     "success",
	})
}

// ── Outbox delivery ─────────────────────────────────────────────────────

func (m *Module) handleOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	rec, process, err := m.prepareOutboxRecord(ctx, e.OutboxID)
	if err != nil || !process {
		if err != nil {
			m.log.Error("failed to prepare outbox record", "outboxId", e.OutboxID, "error", err)
		}
		return err
	}

	var deliveryErr error
	switch rec.Kind {
	case outbox.KindNewInquiryBroker, outbox.KindNewInquiryAdmin:
		deliveryErr = m.deliverNewInquiry(ctx, rec)
	case outbox.KindInquiryReceived:
		deliveryErr = m.deliverInquiryReceived(ctx, rec)
	case outbox.KindStatusChangeClient:
		deliveryErr = m.deliverStatusChange(ctx, rec)
	case outbox.KindOverdueReminder:
		deliveryErr = m.deliverOverdueReminder(ctx, rec)
	default:
		msg := "unsupported outbox kind: " + rec.Kind
		_ = m.outbox.MarkFailed(ctx, rec.ID, msg)
		m.log.Warn("unsupported outbox record", "outboxId", rec.ID, "kind", rec.Kind)
		return nil
	}

	if deliveryErr != nil {
		m.handleOutboxDeliveryError(ctx, rec, deliveryErr)
		return deliveryErr
	}

	_ = m.outbox.MarkSucceeded(ctx, rec.ID)
	m.log.Info("outbox record delivered", "outboxId", rec.ID, "kind", rec.Kind)
	return nil
}

func (m *Module) prepareOutboxRecord(ctx context.Context, outboxID uuid.UUID) (outbox.Record, bool, error) {
	rec, err := m.outbox.GetByID(ctx, outboxID)
	if err != nil {
		return outbox.Record{}, false, err
	}
	if rec.Status == outbox.StatusSucceeded {
		m.log.Debug("outbox record already succeeded; skipping", "outboxId", rec.ID)
		return rec, false, nil
	}
	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return outbox.Record{}, false, err
	}
	return rec, true, nil
}

func (m *Module) handleOutboxDeliveryError(ctx context.Context, rec outbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= maxOutboxRetryAttempts {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Warn("outbox record exhausted retries",
			"outboxId", rec.ID,
			"kind", rec.Kind,
			"attempt", attempt,
			"error", deliveryErr,
		)
		return
	}

	retryAt := time.Now().UTC().Add(computeOutboxRetryDelay(attempt))
	if err := m.outbox.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("outbox retry scheduling failed; marked failed", "outboxId", rec.ID, "error", err)
		return
	}

	m.log.Warn("outbox record scheduled for retry",
		"outboxId", rec.ID,
		"kind", rec.Kind,
		"attempt", attempt,
		"retryAt", retryAt,
		"error", deliveryErr,
	)
}

func computeOutboxRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

func (m *Module) deliverNewInquiry(ctx context.Context, rec outbox.Record) error {
	var payload newInquiryOutboxPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}
	if strings.TrimSpace(payload.ToEmail) == "" {
		_ = m.outbox.MarkSucceeded(ctx, rec.ID)
		return nil
	}

	title := m.resolvePropertyTitle(ctx, payload.PropertyID)
	inquiryURL := m.buildURL("/dashboard/inquiries/" + payload.InquiryID)

	return m.sender.SendNewInquiryEmail(ctx,
		payload.ToEmail, payload.ToName, payload.ClientName, title, payload.Message, inquiryURL)
}

func (m *Module) deliverInquiryReceived(ctx context.Context, rec outbox.Record) error {
	var payload inquiryReceivedOutboxPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}
	if strings.TrimSpace(payload.ToEmail) == "" {
		_ = m.outbox.MarkSucceeded(ctx, rec.ID)
		return nil
	}

	title := m.resolvePropertyTitle(ctx, payload.PropertyID)
	return m.sender.SendInquiryReceivedEmail(ctx, payload.ToEmail, payload.ClientName, title)
}

func (m *Module) deliverStatusChange(ctx context.Context, rec outbox.Record) error {
	var payload statusChangeOutboxPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}
	if strings.TrimSpace(payload.ToEmail) == "" {
		_ = m.outbox.MarkSucceeded(ctx, rec.ID)
		return nil
	}

	title := m.resolvePropertyTitle(ctx, payload.PropertyID)
	return m.sender.SendStatusChangeEmail(ctx,
		payload.ToEmail, payload.ClientName, title, payload.NewStatus, payload.Response)
}

func (m *Module) deliverOverdueReminder(ctx context.Context, rec outbox.Record) error {
	var payload overdueReminderOutboxPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}

	toEmail := strings.TrimSpace(m.cfg.GetAdminEmail())
	toName := "Admin"
	if payload.BrokerID != "" {
		brokerID, err := uuid.Parse(payload.BrokerID)
		if err != nil {
			_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
			return nil
		}
		if m.directory == nil {
			return fmt.Errorf("broker directory not configured")
		}
		contact, err := m.directory.BrokerContact(ctx, brokerID)
		if err != nil {
			return fmt.Errorf("resolve broker contact: %w", err)
		}
		toEmail = contact.Email
		toName = contact.Name
	}
	if toEmail == "" {
		_ = m.outbox.MarkSucceeded(ctx, rec.ID)
		return nil
	}

	dashboardURL := m.buildURL("/dashboard/inquiries?filter=overdue")
	return m.sender.SendOverdueReminderEmail(ctx, toEmail, toName, payload.Count, dashboardURL)
}

func (m *Module) resolvePropertyTitle(ctx context.Context, rawID string) string {
	const fallback = "a property listing"
	if m.titles == nil {
		return fallback
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fallback
	}
	title, err := m.titles.PropertyTitle(ctx, id)
	if err != nil || strings.TrimSpace(title) == "" {
		return fallback
	}
	return title
}

func (m *Module) buildURL(path string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + path
}
