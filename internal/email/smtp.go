package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail. It renders the same HTML templates as BrevoSender.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendNewInquiryEmail(ctx context.Context, toEmail, brokerName, clientName, propertyTitle, message, inquiryURL string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendInquiryReceivedEmail(ctx context.Context, toEmail, clientName, propertyTitle string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendStatusChangeEmail(ctx context.Context, toEmail, clientName, propertyTitle, newStatus, response string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendOverdueReminderEmail(ctx context.Context, toEmail, brokerName string, count int, dashboardURL string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}

// Compile-time check
var _ Sender = (*SMTPSender)(nil)
