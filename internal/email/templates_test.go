package email

import (
	"strings"
	"testing"
)

func TestRenderNewInquiryTemplate(t *testing.T) {
	content, err := renderEmailTemplate("new_inquiry.html", newInquiryEmailData{
		baseEmailData: baseEmailData{
			Title:    "New inquiry for Beachfront Lot",
			Heading:  "New property inquiry",
			CTALabel: "View inquiry",
			CTAURL:   "https://app.example.com/dashboard/inquiries/abc",
		},
		BrokerName:    "Carlos Reyes",
		ClientName:    "Maria Santos",
		PropertyTitle: "Beachfront Lot",
		Message:       "Is this property still available?",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Carlos Reyes", "Maria Santos", "Beachfront Lot", "Is this property still available?", "View inquiry", "GeoCasa Bohol"} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderInquiryReceivedTemplate(t *testing.T) {
	content, err := renderEmailTemplate("inquiry_received.html", inquiryReceivedEmailData{
		baseEmailData: baseEmailData{Title: "We received your inquiry", Heading: "Inquiry received"},
		ClientName:    "Maria Santos",
		PropertyTitle: "Hillside Villa",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "Hillside Villa") {
		t.Error("rendered email missing property title")
	}
}

func TestRenderStatusChangeTemplate(t *testing.T) {
	content, err := renderEmailTemplate("status_change.html", statusChangeEmailData{
		baseEmailData: baseEmailData{Title: "Update", Heading: "Inquiry update"},
		ClientName:    "Maria Santos",
		PropertyTitle: "Hillside Villa",
		NewStatus:     "contacted",
		Response:      "We will call you tomorrow morning.",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "contacted") {
		t.Error("rendered email missing new status")
	}
	if !strings.Contains(content, "We will call you tomorrow morning.") {
		t.Error("rendered email missing broker response")
	}
}

func TestRenderOverdueReminderTemplate(t *testing.T) {
	content, err := renderEmailTemplate("overdue_reminder.html", overdueReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "3 inquiries are waiting",
			Heading:  "Inquiries awaiting response",
			CTALabel: "Open dashboard",
			CTAURL:   "https://app.example.com/dashboard",
		},
		BrokerName: "Carlos Reyes",
		Count:      3,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "Carlos Reyes") {
		t.Error("rendered email missing broker name")
	}
	if !strings.Contains(content, "3") {
		t.Error("rendered email missing count")
	}
}
