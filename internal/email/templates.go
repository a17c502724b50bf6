package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type newInquiryEmailData struct {
	baseEmailData
	BrokerName    string
	ClientName    string
	PropertyTitle string
	Message       string
}

type inquiryReceivedEmailData struct {
	baseEmailData
	ClientName    string
	PropertyTitle string
}

type statusChangeEmailData struct {
	baseEmailData
	ClientName    string
	PropertyTitle string
	NewStatus     string
	Response      string
}

type overdueReminderEmailData struct {
	baseEmailData
	BrokerName string
	Count      int
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
