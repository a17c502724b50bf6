package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/domain"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/transport"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/apperr"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/clock"
	platformevents "github.com/marzy-142/geocasa-bohol-sub001/platform/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/validator"
)

const validMessage = "I am interested in this property"

// fakeRepo is an in-memory stand-in for the pgx repository. It reproduces
// the duplicate re-check Create performs under the advisory lock and the
// status guard on UpdateStatus.
type fakeRepo struct {
	clk       clock.Clock
	inquiries []repository.Inquiry
	perf      []repository.BrokerPerformance
	createErr error
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateInquiryParams) (repository.Inquiry, error) {
	if f.createErr != nil {
		return repository.Inquiry{}, f.createErr
	}
	for _, inq := range f.inquiries {
		if inq.Email == params.Email && inq.PropertyID == params.PropertyID && !inq.CreatedAt.Before(params.DuplicateSince) {
			return repository.Inquiry{}, repository.ErrDuplicate
		}
	}
	now := f.clk.Now()
	inq := repository.Inquiry{
		ID:          uuid.New(),
		PropertyID:  params.PropertyID,
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		Message:     params.Message,
		InquiryType: params.InquiryType,
		Status:      "new",
		SubmittedIP: params.SubmittedIP,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.inquiries = append(f.inquiries, inq)
	return inq, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Inquiry, error) {
	for _, inq := range f.inquiries {
		if inq.ID == id {
			return inq, nil
		}
	}
	return repository.Inquiry{}, repository.ErrNotFound
}

func (f *fakeRepo) CountByIPSince(_ context.Context, ip string, since time.Time) (int, error) {
	count := 0
	for _, inq := range f.inquiries {
		if inq.SubmittedIP == ip && !inq.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountByEmailSince(_ context.Context, email string, since time.Time) (int, error) {
	count := 0
	for _, inq := range f.inquiries {
		if strings.EqualFold(inq.Email, email) && !inq.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) HasRecentForProperty(_ context.Context, email string, propertyID uuid.UUID, since time.Time) (bool, error) {
	for _, inq := range f.inquiries {
		if strings.EqualFold(inq.Email, email) && inq.PropertyID == propertyID && !inq.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, params repository.UpdateStatusParams) (repository.Inquiry, error) {
	for i, inq := range f.inquiries {
		if inq.ID != params.ID {
			continue
		}
		if inq.Status != params.FromStatus {
			return repository.Inquiry{}, repository.ErrStatusConflict
		}
		inq.Status = params.ToStatus
		if params.Response != nil {
			inq.Response = params.Response
		}
		if params.RespondedAt != nil {
			inq.RespondedAt = params.RespondedAt
		}
		inq.UpdatedAt = f.clk.Now()
		f.inquiries[i] = inq
		return inq, nil
	}
	return repository.Inquiry{}, repository.ErrStatusConflict
}

func (f *fakeRepo) AttachClient(_ context.Context, inquiryID, clientID uuid.UUID) error {
	for i, inq := range f.inquiries {
		if inq.ID == inquiryID {
			f.inquiries[i].ClientID = &clientID
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, inq := range f.inquiries {
		if inq.ID == id {
			f.inquiries = append(f.inquiries[:i], f.inquiries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) FindOverdue(_ context.Context, before time.Time, limit int) ([]repository.OverdueInquiry, error) {
	items := make([]repository.OverdueInquiry, 0)
	for _, inq := range f.inquiries {
		if inq.Status == "new" && inq.CreatedAt.Before(before) {
			items = append(items, repository.OverdueInquiry{
				ID:         inq.ID,
				PropertyID: inq.PropertyID,
				Name:       inq.Name,
				Email:      inq.Email,
				CreatedAt:  inq.CreatedAt,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListInquiriesParams) ([]repository.Inquiry, error) {
	items := make([]repository.Inquiry, 0)
	for _, inq := range f.inquiries {
		if params.Status != nil && inq.Status != *params.Status {
			continue
		}
		items = append(items, inq)
	}
	return items, nil
}

func (f *fakeRepo) CountByStatusSince(_ context.Context, since time.Time) ([]repository.StatusCount, error) {
	counts := map[string]int{}
	for _, inq := range f.inquiries {
		if !inq.CreatedAt.Before(since) {
			counts[inq.Status]++
		}
	}
	items := make([]repository.StatusCount, 0, len(counts))
	for status, count := range counts {
		items = append(items, repository.StatusCount{Status: status, Count: count})
	}
	return items, nil
}

func (f *fakeRepo) AverageResponseHours(_ context.Context, since time.Time) (float64, error) {
	var sum float64
	var n int
	for _, inq := range f.inquiries {
		if !inq.CreatedAt.Before(since) && inq.RespondedAt != nil {
			sum += inq.RespondedAt.Sub(inq.CreatedAt).Hours()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeRepo) TopPropertiesSince(_ context.Context, since time.Time, limit int) ([]repository.PropertyCount, error) {
	counts := map[uuid.UUID]int{}
	for _, inq := range f.inquiries {
		if !inq.CreatedAt.Before(since) {
			counts[inq.PropertyID]++
		}
	}
	items := make([]repository.PropertyCount, 0, len(counts))
	for id, count := range counts {
		items = append(items, repository.PropertyCount{PropertyID: id, Count: count})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Count > items[j].Count })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeRepo) BrokerPerformanceSince(_ context.Context, _ time.Time) ([]repository.BrokerPerformance, error) {
	return f.perf, nil
}

type fakeProperties struct {
	byID map[uuid.UUID]ports.Property
}

func (f *fakeProperties) FindByID(_ context.Context, id uuid.UUID) (*ports.Property, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeClients struct {
	byEmail map[string]ports.Client
}

func (f *fakeClients) Resolve(_ context.Context, params ports.ResolveClientParams) (ports.Client, error) {
	if c, ok := f.byEmail[params.Email]; ok {
		return c, nil
	}
	c := ports.Client{ID: uuid.New(), Name: params.Name, Email: params.Email, Phone: params.Phone}
	f.byEmail[params.Email] = c
	return c, nil
}

type fakeBrokers struct {
	broker   *ports.Broker
	assigned map[uuid.UUID]uuid.UUID // property -> broker
	err      error
}

func (f *fakeBrokers) AssignForInquiry(_ context.Context, params ports.AssignParams) (*ports.Broker, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.broker == nil {
		return nil, nil
	}
	if params.PropertyBrokerID == nil {
		f.assigned[params.PropertyID] = f.broker.ID
	}
	return f.broker, nil
}

type fakeNotifier struct {
	newInquiries  []ports.InquiryNotice
	statusChanges []ports.InquiryNotice
	err           error
}

func (f *fakeNotifier) NotifyNewInquiry(_ context.Context, _ *ports.Broker, notice ports.InquiryNotice) error {
	f.newInquiries = append(f.newInquiries, notice)
	return f.err
}

func (f *fakeNotifier) NotifyStatusChange(_ context.Context, notice ports.InquiryNotice, _ string) error {
	f.statusChanges = append(f.statusChanges, notice)
	return f.err
}

func discardLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

type harness struct {
	svc        *Service
	repo       *fakeRepo
	properties *fakeProperties
	clients    *fakeClients
	brokers    *fakeBrokers
	notifier   *fakeNotifier
	clk        *clock.Mock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := clock.NewMock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	repo := &fakeRepo{clk: clk}
	properties := &fakeProperties{byID: map[uuid.UUID]ports.Property{}}
	clients := &fakeClients{byEmail: map[string]ports.Client{}}
	brokers := &fakeBrokers{assigned: map[uuid.UUID]uuid.UUID{}}
	notifier := &fakeNotifier{}
	log := discardLogger()

	svc := New(repo, properties, clients, brokers, notifier,
		platformevents.NewInMemoryBus(log), validator.New(), clk,
		Policy{
			IPLimit:          5,
			EmailLimit:       3,
			RateWindow:       24 * time.Hour,
			DuplicateWindow:  24 * time.Hour,
			OverdueThreshold: 24 * time.Hour,
		}, log)

	return &harness{svc: svc, repo: repo, properties: properties, clients: clients, brokers: brokers, notifier: notifier, clk: clk}
}

func (h *harness) addProperty(status string) uuid.UUID {
	id := uuid.New()
	h.properties.byID[id] = ports.Property{ID: id, Title: "Beachfront Lot", Status: status}
	return id
}

func submission(propertyID uuid.UUID) transport.CreateInquiryRequest {
	return transport.CreateInquiryRequest{
		Name:        "John Doe",
		Email:       "john@example.com",
		Message:     validMessage,
		PropertyID:  propertyID,
		SubmitterIP: "203.0.113.10",
	}
}

func TestCreateInquirySuccess(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")
	broker := &ports.Broker{ID: uuid.New(), Name: "Ana Reyes", Email: "ana@geocasa.ph"}
	h.brokers.broker = broker

	resp, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got failure: type=%s error=%s", resp.Type, resp.Error)
	}
	if resp.Inquiry.Status != "new" {
		t.Errorf("expected status new, got %s", resp.Inquiry.Status)
	}
	if resp.Inquiry.ClientID == nil {
		t.Fatal("expected client to be resolved and attached")
	}
	client, ok := h.clients.byEmail["john@example.com"]
	if !ok {
		t.Fatal("expected a client created for john@example.com")
	}
	if *resp.Inquiry.ClientID != client.ID {
		t.Errorf("inquiry linked to wrong client: got %s want %s", resp.Inquiry.ClientID, client.ID)
	}
	if resp.Broker == nil || resp.Broker.ID != broker.ID {
		t.Fatalf("expected broker %s in response, got %+v", broker.ID, resp.Broker)
	}
	if got := h.brokers.assigned[propertyID]; got != broker.ID {
		t.Errorf("property not assigned to broker: got %s want %s", got, broker.ID)
	}
	if len(h.notifier.newInquiries) != 1 {
		t.Errorf("expected 1 new-inquiry notification, got %d", len(h.notifier.newInquiries))
	}
}

func TestCreateInquiryDuplicateWithinWindow(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")

	first, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil || !first.Success {
		t.Fatalf("first submission should succeed: err=%v resp=%+v", err, first)
	}

	h.clk.Advance(5 * time.Minute)

	second, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil {
		t.Fatalf("duplicate submission returned error: %v", err)
	}
	if second.Success {
		t.Fatal("duplicate submission should be rejected")
	}
	if second.Type != string(domain.FailureDuplicate) {
		t.Errorf("expected type duplicate, got %s", second.Type)
	}
	if second.Error != domain.ReasonDuplicate {
		t.Errorf("unexpected reason: %s", second.Error)
	}
	if len(h.repo.inquiries) != 1 {
		t.Errorf("expected exactly 1 persisted inquiry, got %d", len(h.repo.inquiries))
	}
}

func TestCreateInquiryDuplicateAllowedAfterWindow(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")

	if resp, err := h.svc.CreateInquiry(context.Background(), submission(propertyID)); err != nil || !resp.Success {
		t.Fatalf("first submission should succeed: err=%v resp=%+v", err, resp)
	}

	h.clk.Advance(24*time.Hour + time.Minute)

	resp, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("submission after the window should succeed, got type=%s", resp.Type)
	}
}

func TestCreateInquiryEmailRateLimit(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 3; i++ {
		propertyID := h.addProperty("active")
		resp, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
		if err != nil || !resp.Success {
			t.Fatalf("submission %d should succeed: err=%v resp=%+v", i+1, err, resp)
		}
		h.clk.Advance(time.Minute)
	}

	resp, err := h.svc.CreateInquiry(context.Background(), submission(h.addProperty("active")))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if resp.Success {
		t.Fatal("4th submission for the same email should be rate limited")
	}
	if resp.Type != string(domain.FailureRateLimit) {
		t.Errorf("expected type rate_limit, got %s", resp.Type)
	}
	if resp.Error != domain.ReasonEmailLimit {
		t.Errorf("unexpected reason: %s", resp.Error)
	}

	// Rolling window: a day later the counter no longer sees the old rows.
	h.clk.Advance(24*time.Hour + time.Minute)
	resp, err = h.svc.CreateInquiry(context.Background(), submission(h.addProperty("active")))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("submission after the window should succeed, got type=%s error=%s", resp.Type, resp.Error)
	}
}

func TestCreateInquiryIPRateLimit(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 5; i++ {
		req := submission(h.addProperty("active"))
		req.Email = "visitor" + string(rune('a'+i)) + "@example.com"
		resp, err := h.svc.CreateInquiry(context.Background(), req)
		if err != nil || !resp.Success {
			t.Fatalf("submission %d should succeed: err=%v resp=%+v", i+1, err, resp)
		}
		h.clk.Advance(time.Minute)
	}

	req := submission(h.addProperty("active"))
	req.Email = "another@example.com"
	resp, err := h.svc.CreateInquiry(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if resp.Success {
		t.Fatal("6th submission from the same IP should be rate limited")
	}
	if resp.Error != domain.ReasonIPLimit {
		t.Errorf("unexpected reason: %s", resp.Error)
	}
}

func TestCreateInquiryMessageBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantOK     bool
		wantReason string
	}{
		{"nine chars fails", 9, false, domain.ReasonMessageTooShort},
		{"ten chars passes", 10, true, ""},
		{"two thousand chars passes", 2000, true, ""},
		{"over limit fails", 2001, false, domain.ReasonMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := submission(h.addProperty("active"))
			req.Message = strings.Repeat("a", tt.length)

			resp, err := h.svc.CreateInquiry(context.Background(), req)
			if err != nil {
				t.Fatalf("CreateInquiry returned error: %v", err)
			}
			if resp.Success != tt.wantOK {
				t.Fatalf("success = %v, want %v (type=%s error=%s)", resp.Success, tt.wantOK, resp.Type, resp.Error)
			}
			if !tt.wantOK {
				if resp.Type != string(domain.FailureValidation) {
					t.Errorf("expected type validation, got %s", resp.Type)
				}
				if resp.Error != tt.wantReason {
					t.Errorf("reason = %q, want %q", resp.Error, tt.wantReason)
				}
				if resp.Field != "message" {
					t.Errorf("field = %q, want message", resp.Field)
				}
			}
		})
	}
}

func TestCreateInquiryFieldValidation(t *testing.T) {
	shortPhone := "12345"
	tests := []struct {
		name      string
		mutate    func(*transport.CreateInquiryRequest)
		wantField string
	}{
		{"missing name", func(r *transport.CreateInquiryRequest) { r.Name = "" }, "name"},
		{"missing email", func(r *transport.CreateInquiryRequest) { r.Email = "" }, "email"},
		{"bad email", func(r *transport.CreateInquiryRequest) { r.Email = "not-an-email" }, "email"},
		{"short phone", func(r *transport.CreateInquiryRequest) { r.Phone = &shortPhone }, "phone"},
		{"missing property", func(r *transport.CreateInquiryRequest) { r.PropertyID = uuid.Nil }, "propertyId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := submission(h.addProperty("active"))
			tt.mutate(&req)

			resp, err := h.svc.CreateInquiry(context.Background(), req)
			if err != nil {
				t.Fatalf("CreateInquiry returned error: %v", err)
			}
			if resp.Success {
				t.Fatal("expected a validation rejection")
			}
			if resp.Type != string(domain.FailureValidation) {
				t.Errorf("expected type validation, got %s", resp.Type)
			}
			if resp.Field != tt.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tt.wantField)
			}
			if len(h.repo.inquiries) != 0 {
				t.Errorf("validation failure must not persist anything, found %d rows", len(h.repo.inquiries))
			}
		})
	}
}

func TestCreateInquiryPropertyChecks(t *testing.T) {
	h := newHarness(t)

	resp, err := h.svc.CreateInquiry(context.Background(), submission(uuid.New()))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if resp.Success || resp.Type != string(domain.FailureNotFound) {
		t.Errorf("unknown property: expected not_found rejection, got %+v", resp)
	}

	soldID := h.addProperty("sold")
	resp, err = h.svc.CreateInquiry(context.Background(), submission(soldID))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if resp.Success || resp.Type != string(domain.FailureValidation) {
		t.Errorf("sold property: expected validation rejection, got %+v", resp)
	}
	if resp.Error != domain.ReasonPropertyNotOpen {
		t.Errorf("unexpected reason: %s", resp.Error)
	}
}

func TestCreateInquiryNoEligibleBroker(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")
	h.brokers.broker = nil

	resp, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("inquiry should be created even without a broker, got %+v", resp)
	}
	if resp.Broker != nil {
		t.Errorf("expected no broker in response, got %+v", resp.Broker)
	}
	if len(h.brokers.assigned) != 0 {
		t.Errorf("no assignment should have been recorded, got %v", h.brokers.assigned)
	}
}

func TestCreateInquiryNotifierFailureDoesNotFail(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")
	h.notifier.err = errors.New("smtp down")

	resp, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("notification failure must not fail the submission, got %+v", resp)
	}
	if len(h.repo.inquiries) != 1 {
		t.Errorf("expected the inquiry to be persisted, got %d rows", len(h.repo.inquiries))
	}
}

func TestCreateInquiryStripsHTML(t *testing.T) {
	h := newHarness(t)
	req := submission(h.addProperty("active"))
	req.Message = "<script>alert(1)</script> I would love a viewing this weekend"

	resp, err := h.svc.CreateInquiry(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateInquiry returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if strings.Contains(resp.Inquiry.Message, "<script>") {
		t.Errorf("message was not sanitized: %q", resp.Inquiry.Message)
	}
}

func TestUpdateStatusContactedRecordsResponse(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")
	created, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil || !created.Success {
		t.Fatalf("setup submission failed: err=%v resp=%+v", err, created)
	}

	h.clk.Advance(2 * time.Hour)
	response := "Thanks for reaching out, are you free Saturday?"
	updated, err := h.svc.UpdateStatus(context.Background(), created.Inquiry.ID, uuid.New(), transport.UpdateInquiryStatusRequest{
		Status:   "contacted",
		Response: &response,
	})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != "contacted" {
		t.Errorf("status = %s, want contacted", updated.Status)
	}
	if updated.Response == nil || *updated.Response != response {
		t.Errorf("response not recorded: %+v", updated.Response)
	}
	if updated.RespondedAt == nil || !updated.RespondedAt.Equal(h.clk.Now()) {
		t.Errorf("respondedAt = %v, want %v", updated.RespondedAt, h.clk.Now())
	}
	if len(h.notifier.statusChanges) != 1 {
		t.Errorf("expected 1 status-change notification, got %d", len(h.notifier.statusChanges))
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")
	created, err := h.svc.CreateInquiry(context.Background(), submission(propertyID))
	if err != nil || !created.Success {
		t.Fatalf("setup submission failed: err=%v resp=%+v", err, created)
	}

	_, err = h.svc.UpdateStatus(context.Background(), created.Inquiry.ID, uuid.New(), transport.UpdateInquiryStatusRequest{Status: "completed"})
	if err == nil {
		t.Fatal("new -> completed should be rejected")
	}
	if err.Error() != domain.ErrInvalidTransition.Error() {
		t.Errorf("unexpected error: %v", err)
	}
	if len(h.notifier.statusChanges) != 0 {
		t.Errorf("rejected transition must not notify, got %d notifications", len(h.notifier.statusChanges))
	}
}

func TestUpdateStatusUnknownInquiry(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), transport.UpdateInquiryStatusRequest{Status: "contacted"})
	if err == nil {
		t.Fatal("expected not found error")
	}
}

func TestDeleteRemovesInquiry(t *testing.T) {
	h := newHarness(t)

	resp, err := h.svc.CreateInquiry(context.Background(), submission(h.addProperty("active")))
	if err != nil || !resp.Success {
		t.Fatalf("setup submission failed: err=%v resp=%+v", err, resp)
	}

	if err := h.svc.Delete(context.Background(), resp.Inquiry.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := h.svc.GetByID(context.Background(), resp.Inquiry.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("deleted inquiry still readable, err=%v", err)
	}
	if err := h.svc.Delete(context.Background(), resp.Inquiry.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}

func TestOverdueListsOnlyStaleNewInquiries(t *testing.T) {
	h := newHarness(t)

	stale, err := h.svc.CreateInquiry(context.Background(), submission(h.addProperty("active")))
	if err != nil || !stale.Success {
		t.Fatalf("setup submission failed: err=%v resp=%+v", err, stale)
	}

	h.clk.Advance(25 * time.Hour)

	fresh := submission(h.addProperty("active"))
	fresh.Email = "maria@example.com"
	if resp, err := h.svc.CreateInquiry(context.Background(), fresh); err != nil || !resp.Success {
		t.Fatalf("setup submission failed: err=%v resp=%+v", err, resp)
	}

	overdue, err := h.svc.Overdue(context.Background())
	if err != nil {
		t.Fatalf("Overdue returned error: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("expected 1 overdue inquiry, got %d", len(overdue))
	}
	if overdue[0].ID != stale.Inquiry.ID {
		t.Errorf("wrong inquiry flagged: got %s want %s", overdue[0].ID, stale.Inquiry.ID)
	}
	if overdue[0].AgeHours != 25 {
		t.Errorf("ageHours = %d, want 25", overdue[0].AgeHours)
	}
}

func TestStatisticsAggregation(t *testing.T) {
	h := newHarness(t)
	propertyID := h.addProperty("active")

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	ids := make([]uuid.UUID, 0, len(emails))
	for _, email := range emails {
		req := submission(propertyID)
		req.Email = email
		resp, err := h.svc.CreateInquiry(context.Background(), req)
		if err != nil || !resp.Success {
			t.Fatalf("setup submission for %s failed: err=%v resp=%+v", email, err, resp)
		}
		ids = append(ids, resp.Inquiry.ID)
		h.clk.Advance(time.Minute)
	}

	// Walk one inquiry to completed: 3 total, 1 completed.
	actor := uuid.New()
	for _, status := range []string{"contacted", "scheduled", "completed"} {
		if _, err := h.svc.UpdateStatus(context.Background(), ids[0], actor, transport.UpdateInquiryStatusRequest{Status: status}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	stats, err := h.svc.Statistics(context.Background(), 30)
	if err != nil {
		t.Fatalf("Statistics returned error: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByStatus["completed"] != 1 || stats.ByStatus["new"] != 2 {
		t.Errorf("unexpected byStatus: %v", stats.ByStatus)
	}
	if want := 1.0 / 3.0; stats.ConversionRate < want-1e-9 || stats.ConversionRate > want+1e-9 {
		t.Errorf("conversionRate = %f, want %f", stats.ConversionRate, want)
	}
	if len(stats.TopProperties) != 1 || stats.TopProperties[0].Count != 3 {
		t.Errorf("unexpected topProperties: %v", stats.TopProperties)
	}
}
