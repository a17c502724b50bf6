package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marzy-142/geocasa-bohol-sub001/platform/config"
)

// Sender delivers the transactional mail this application sends. All sends
// are fire-and-forget from the domain's perspective: callers log failures
// and move on.
type Sender interface {
	SendNewInquiryEmail(ctx context.Context, toEmail, brokerName, clientName, propertyTitle, message, inquiryURL string) error
	SendInquiryReceivedEmail(ctx context.Context, toEmail, clientName, propertyTitle string) error
	SendStatusChangeEmail(ctx context.Context, toEmail, clientName, propertyTitle, newStatus, response string) error
	SendOverdueReminderEmail(ctx context.Context, toEmail, brokerName string, count int, dashboardURL string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender drops every message. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendNewInquiryEmail(ctx context.Context, toEmail, brokerName, clientName, propertyTitle, message, inquiryURL string) error {
	return nil
}

func (NoopSender) SendInquiryReceivedEmail(ctx context.Context, toEmail, clientName, propertyTitle string) error {
	return nil
}

func (NoopSender) SendStatusChangeEmail(ctx context.Context, toEmail, clientName, propertyTitle, newStatus, response string) error {
	return nil
}

func (NoopSender) SendOverdueReminderEmail(ctx context.Context, toEmail, brokerName string, count int, dashboardURL string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// BrevoSender delivers mail through the Brevo transactional HTTP API.
type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

// NewSender picks the delivery backend from configuration: Noop when email
// is disabled, Brevo when an API key is present, SMTP otherwise.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	if cfg.GetBrevoAPIKey() != "" {
		return &BrevoSender{
			apiKey:    cfg.GetBrevoAPIKey(),
			fromName:  cfg.GetEmailFromName(),
			fromEmail: cfg.GetEmailFromAddress(),
			client:    &http.Client{Timeout: 10 * time.Second},
		}, nil
	}

	if cfg.GetSMTPHost() == "" {
		return nil, fmt.Errorf("email enabled but neither BREVO_API_KEY nor SMTP_HOST configured")
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(), cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
	), nil
}

func (b *BrevoSender) SendNewInquiryEmail(ctx context.Context, toEmail, brokerName, clientName, propertyTitle, message, inquiryURL string) error {
	subject := fmt.Sprintf(subjectNewInquiryFmt, propertyTitle)
	content, err := renderEmailTemplate("new_inquiry.html", newInquiryEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "New property inquiry",
			CTALabel: "View inquiry",
			CTAURL:   inquiryURL,
		},
		BrokerName:    brokerName,
		ClientName:    clientName,
		PropertyTitle: propertyTitle,
		Message:       message,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendInquiryReceivedEmail(ctx context.Context, toEmail, clientName, propertyTitle string) error {
	subject := fmt.Sprintf(subjectInquiryReceivedFmt, propertyTitle)
	content, err := renderEmailTemplate("inquiry_received.html", inquiryReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Inquiry received",
		},
		ClientName:    clientName,
		PropertyTitle: propertyTitle,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendStatusChangeEmail(ctx context.Context, toEmail, clientName, propertyTitle, newStatus, response string) error {
	subject := fmt.Sprintf(subjectStatusChangeFmt, propertyTitle)
	content, err := renderEmailTemplate("status_change.html", statusChangeEmailData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Inquiry update",
		},
		ClientName:    clientName,
		PropertyTitle: propertyTitle,
		NewStatus:     newStatus,
		Response:      response,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendOverdueReminderEmail(ctx context.Context, toEmail, brokerName string, count int, dashboardURL string) error {
	subject := fmt.Sprintf(subjectOverdueReminderFmt, count)
	content, err := renderEmailTemplate("overdue_reminder.html", overdueReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "Inquiries awaiting response",
			CTALabel: "Open dashboard",
			CTAURL:   dashboardURL,
		},
		BrokerName: brokerName,
		Count:      count,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.send(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("brevo marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("brevo send: status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// Compile-time checks
var (
	_ Sender = NoopSender{}
	_ Sender = (*BrevoSender)(nil)
)
