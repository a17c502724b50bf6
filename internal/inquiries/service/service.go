// Package service implements inquiry intake, status transitions and
// reporting for the inquiries bounded context.
package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/events"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/domain"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/transport"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/apperr"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/clock"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/config"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/phone"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/sanitize"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/validator"
)

const (
	messageMinLen = 10
	messageMaxLen = 2000

	defaultStatisticsWindowDays = 30
	topPropertiesLimit          = 5
	overdueScanLimit            = 500
)

// Repository is the persistence surface the service consumes. Satisfied by
// *repository.Repository; declared here so tests can substitute a fake.
type Repository interface {
	Create(ctx context.Context, params repository.CreateInquiryParams) (repository.Inquiry, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Inquiry, error)
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error)
	HasRecentForProperty(ctx context.Context, email string, propertyID uuid.UUID, since time.Time) (bool, error)
	UpdateStatus(ctx context.Context, params repository.UpdateStatusParams) (repository.Inquiry, error)
	AttachClient(ctx context.Context, inquiryID, clientID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOverdue(ctx context.Context, before time.Time, limit int) ([]repository.OverdueInquiry, error)
	List(ctx context.Context, params repository.ListInquiriesParams) ([]repository.Inquiry, error)
	CountByStatusSince(ctx context.Context, since time.Time) ([]repository.StatusCount, error)
	AverageResponseHours(ctx context.Context, since time.Time) (float64, error)
	TopPropertiesSince(ctx context.Context, since time.Time, limit int) ([]repository.PropertyCount, error)
	BrokerPerformanceSince(ctx context.Context, since time.Time) ([]repository.BrokerPerformance, error)
}

// Policy holds the intake limits. Values come from configuration; tests set
// them directly.
type Policy struct {
	IPLimit              int
	EmailLimit           int
	RateWindow           time.Duration
	DuplicateWindow      time.Duration
	OverdueThreshold     time.Duration
	BusinessHoursEnabled bool
	BusinessHoursStart   int
	BusinessHoursEnd     int
}

// PolicyFromConfig reads the intake policy from application configuration.
func PolicyFromConfig(cfg config.IntakeConfig) Policy {
	return Policy{
		IPLimit:              cfg.GetIntakeIPLimit(),
		EmailLimit:           cfg.GetIntakeEmailLimit(),
		RateWindow:           cfg.GetIntakeRateWindow(),
		DuplicateWindow:      cfg.GetIntakeDuplicateWindow(),
		OverdueThreshold:     cfg.GetOverdueThreshold(),
		BusinessHoursEnabled: cfg.GetBusinessHoursEnabled(),
		BusinessHoursStart:   cfg.GetBusinessHoursStart(),
		BusinessHoursEnd:     cfg.GetBusinessHoursEnd(),
	}
}

type Service struct {
	repo       Repository
	properties ports.PropertyFinder
	clients    ports.ClientResolver
	brokers    ports.BrokerAssigner
	notifier   ports.Notifier
	bus        events.Bus
	validate   *validator.Validator
	clock      clock.Clock
	policy     Policy
	log        *logger.Logger
}

func New(
	repo Repository,
	properties ports.PropertyFinder,
	clients ports.ClientResolver,
	brokers ports.BrokerAssigner,
	notifier ports.Notifier,
	bus events.Bus,
	validate *validator.Validator,
	clk clock.Clock,
	policy Policy,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		properties: properties,
		clients:    clients,
		brokers:    brokers,
		notifier:   notifier,
		bus:        bus,
		validate:   validate,
		clock:      clk,
		policy:     policy,
		log:        log,
	}
}

// SetClientResolver injects the client resolver after construction. The
// clients module is built from this module's repository, so the resolver
// cannot be passed to New (circular dependency avoidance).
func (s *Service) SetClientResolver(clients ports.ClientResolver) {
	s.clients = clients
}

// CreateInquiry runs the full intake pipeline. All checks happen before the
// inquiry row is written; post-write steps (client resolution, broker
// assignment, notification) complete an already-valid inquiry and never
// undo it. Rejections come back inside the response with Success false; a
// non-nil error means a collaborator failed and the caller may retry.
func (s *Service) CreateInquiry(ctx context.Context, req transport.CreateInquiryRequest) (transport.CreateInquiryResponse, error) {
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Message = sanitize.Text(req.Message)
	req.Phone = sanitize.TextPtr(req.Phone)
	if req.InquiryType == "" {
		req.InquiryType = transport.InquiryTypeGeneral
	}

	property, ie, err := s.checkSubmission(ctx, req)
	if err != nil {
		return transport.CreateInquiryResponse{}, err
	}
	if ie != nil {
		return rejection(ie), nil
	}

	inq, err := s.repo.Create(ctx, repository.CreateInquiryParams{
		PropertyID:     req.PropertyID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		InquiryType:    string(req.InquiryType),
		SubmittedIP:    req.SubmitterIP,
		DuplicateSince: s.clock.Now().Add(-s.policy.DuplicateWindow),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return rejection(domain.NewIntakeError(domain.FailureDuplicate, domain.ReasonDuplicate)), nil
	}
	if err != nil {
		s.log.DatabaseError("inquiries.create", err)
		return transport.CreateInquiryResponse{}, apperr.Wrap(apperr.KindUnavailable, "Could not save your inquiry. Please try again.", err)
	}

	broker := s.completeInquiry(ctx, &inq, *property)

	resp := transport.CreateInquiryResponse{
		Success: true,
		Inquiry: toResponse(inq),
	}
	if broker != nil {
		resp.Broker = &transport.BrokerResponse{ID: broker.ID, Name: broker.Name, Email: broker.Email}
	}
	return resp, nil
}

// checkSubmission runs validation, rate limiting and the duplicate pre-check
// in order. The first failure wins. The returned property is non-nil when
// all checks pass.
func (s *Service) checkSubmission(ctx context.Context, req transport.CreateInquiryRequest) (*ports.Property, *domain.IntakeError, error) {
	if ie := s.validateFields(req); ie != nil {
		return nil, ie, nil
	}

	property, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindUnavailable, "Could not verify the property. Please try again.", err)
	}
	if property == nil {
		return nil, domain.NewIntakeError(domain.FailureNotFound, domain.ReasonPropertyNotOpen), nil
	}
	if !property.OpenForInquiries() {
		return nil, domain.NewValidationError("propertyId", domain.ReasonPropertyNotOpen), nil
	}

	if ie, err := s.checkRateLimits(ctx, req.SubmitterIP, req.Email); err != nil {
		return nil, nil, err
	} else if ie != nil {
		return nil, ie, nil
	}

	since := s.clock.Now().Add(-s.policy.DuplicateWindow)
	dup, err := s.repo.HasRecentForProperty(ctx, req.Email, req.PropertyID, since)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindUnavailable, "Could not check your inquiry. Please try again.", err)
	}
	if dup {
		return nil, domain.NewIntakeError(domain.FailureDuplicate, domain.ReasonDuplicate), nil
	}

	return property, nil, nil
}

func (s *Service) validateFields(req transport.CreateInquiryRequest) *domain.IntakeError {
	if req.Name == "" {
		return domain.NewValidationError("name", "Name is required.")
	}
	if req.Email == "" {
		return domain.NewValidationError("email", "Email is required.")
	}
	if req.PropertyID == uuid.Nil {
		return domain.NewValidationError("propertyId", "Property is required.")
	}
	if err := s.validate.Var(req.Email, "email"); err != nil {
		return domain.NewValidationError("email", "Email address is not valid.")
	}

	switch n := utf8.RuneCountInString(req.Message); {
	case n == 0:
		return domain.NewValidationError("message", "Message is required.")
	case n < messageMinLen:
		return domain.NewValidationError("message", domain.ReasonMessageTooShort)
	case n > messageMaxLen:
		return domain.NewValidationError("message", domain.ReasonMessageTooLong)
	}

	if req.Phone != nil && *req.Phone != "" && !phone.PlausibleLength(*req.Phone) {
		return domain.NewValidationError("phone", domain.ReasonPhoneTooShort)
	}

	return nil
}

// completeInquiry runs the best-effort post-write steps. Each failure is
// logged and skipped; the persisted inquiry stands regardless.
func (s *Service) completeInquiry(ctx context.Context, inq *repository.Inquiry, property ports.Property) *ports.Broker {
	client, err := s.clients.Resolve(ctx, ports.ResolveClientParams{
		Name:  inq.Name,
		Email: inq.Email,
		Phone: inq.Phone,
	})
	if err != nil {
		s.log.Error("client_resolve_failed", "inquiry_id", inq.ID.String(), "error", err.Error())
	} else {
		if err := s.repo.AttachClient(ctx, inq.ID, client.ID); err != nil {
			s.log.Error("client_attach_failed", "inquiry_id", inq.ID.String(), "error", err.Error())
		} else {
			inq.ClientID = &client.ID
		}
	}

	var broker *ports.Broker
	assign := ports.AssignParams{
		PropertyID:       property.ID,
		PropertyBrokerID: property.BrokerID,
	}
	if inq.ClientID != nil {
		assign.ClientID = *inq.ClientID
		assign.ClientBrokerID = client.BrokerID
	}
	broker, err = s.brokers.AssignForInquiry(ctx, assign)
	if err != nil {
		s.log.Error("broker_assignment_failed", "inquiry_id", inq.ID.String(), "error", err.Error())
		broker = nil
	}

	notice := ports.InquiryNotice{
		InquiryID:  inq.ID,
		PropertyID: inq.PropertyID,
		Name:       inq.Name,
		Email:      inq.Email,
		Message:    inq.Message,
		Status:     inq.Status,
	}
	if err := s.notifier.NotifyNewInquiry(ctx, broker, notice); err != nil {
		recipient := "admins"
		if broker != nil {
			recipient = broker.Email
		}
		s.log.NotifyFailed("new_inquiry", recipient, err)
	}

	event := events.InquiryReceived{
		BaseEvent:  events.NewBaseEvent(),
		InquiryID:  inq.ID,
		PropertyID: inq.PropertyID,
		ClientID:   inq.ClientID,
		Name:       inq.Name,
		Email:      inq.Email,
	}
	if broker != nil {
		event.BrokerID = &broker.ID
	}
	s.bus.Publish(ctx, event)

	return broker
}

// UpdateStatus applies a status transition. The transition table is enforced
// before any write, and the persisted update is guarded on the current
// status so a concurrent move from another actor cannot be overwritten.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req transport.UpdateInquiryStatusRequest) (transport.InquiryResponse, error) {
	inq, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.InquiryResponse{}, apperr.NotFound("Inquiry not found")
	}
	if err != nil {
		s.log.DatabaseError("inquiries.get", err)
		return transport.InquiryResponse{}, apperr.Wrap(apperr.KindUnavailable, "Could not load the inquiry. Please try again.", err)
	}

	from := domain.Status(inq.Status)
	to := domain.Status(req.Status)
	if err := domain.CheckTransition(from, to); err != nil {
		s.log.InvalidTransition(id.String(), inq.Status, req.Status)
		return transport.InquiryResponse{}, apperr.Wrap(apperr.KindConflict, domain.ErrInvalidTransition.Error(), err)
	}

	params := repository.UpdateStatusParams{
		ID:         id,
		FromStatus: inq.Status,
		ToStatus:   req.Status,
	}
	if to == domain.StatusContacted {
		params.Response = sanitize.TextPtr(req.Response)
		if inq.RespondedAt == nil {
			now := s.clock.Now()
			params.RespondedAt = &now
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, params)
	if errors.Is(err, repository.ErrStatusConflict) {
		s.log.InvalidTransition(id.String(), inq.Status, req.Status)
		return transport.InquiryResponse{}, apperr.Conflict(domain.ErrInvalidTransition.Error())
	}
	if err != nil {
		s.log.DatabaseError("inquiries.update_status", err)
		return transport.InquiryResponse{}, apperr.Wrap(apperr.KindUnavailable, "Could not update the inquiry. Please try again.", err)
	}

	notice := ports.InquiryNotice{
		InquiryID:  updated.ID,
		PropertyID: updated.PropertyID,
		Name:       updated.Name,
		Email:      updated.Email,
		Message:    updated.Message,
		Status:     updated.Status,
		Response:   updated.Response,
	}
	if err := s.notifier.NotifyStatusChange(ctx, notice, inq.Status); err != nil {
		s.log.NotifyFailed("status_change", updated.Email, err)
	}

	s.bus.Publish(ctx, events.InquiryStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		InquiryID: updated.ID,
		OldStatus: inq.Status,
		NewStatus: updated.Status,
		ActorID:   actorID,
	})

	return *toResponse(updated), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.InquiryResponse, error) {
	inq, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.InquiryResponse{}, apperr.NotFound("Inquiry not found")
	}
	if err != nil {
		return transport.InquiryResponse{}, apperr.Wrap(apperr.KindUnavailable, "Could not load the inquiry. Please try again.", err)
	}
	return *toResponse(inq), nil
}

// Delete soft deletes an inquiry.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Inquiry not found")
	}
	if err != nil {
		s.log.DatabaseError("inquiries.delete", err)
		return apperr.Wrap(apperr.KindUnavailable, "Could not delete the inquiry. Please try again.", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, params repository.ListInquiriesParams) ([]transport.InquiryResponse, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Could not list inquiries. Please try again.", err)
	}
	out := make([]transport.InquiryResponse, 0, len(items))
	for _, inq := range items {
		out = append(out, *toResponse(inq))
	}
	return out, nil
}

func rejection(ie *domain.IntakeError) transport.CreateInquiryResponse {
	return transport.CreateInquiryResponse{
		Success: false,
		Type:    string(ie.Type),
		Error:   ie.Reason,
		Field:   ie.Field,
	}
}

func toResponse(inq repository.Inquiry) *transport.InquiryResponse {
	return &transport.InquiryResponse{
		ID:          inq.ID,
		PropertyID:  inq.PropertyID,
		ClientID:    inq.ClientID,
		UserID:      inq.UserID,
		Name:        inq.Name,
		Email:       inq.Email,
		Phone:       inq.Phone,
		Message:     inq.Message,
		InquiryType: transport.InquiryType(inq.InquiryType),
		Status:      inq.Status,
		Response:    inq.Response,
		RespondedAt: inq.RespondedAt,
		CreatedAt:   inq.CreatedAt,
		UpdatedAt:   inq.UpdatedAt,
	}
}
