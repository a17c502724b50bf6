// Package service implements client resolution and retroactive account
// linking for the clients bounded context.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/apperr"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

// Repository is the persistence surface the service consumes. Satisfied by
// *repository.Repository; declared here so tests can substitute a fake.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (repository.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Client, error)
	FindOrCreate(ctx context.Context, params repository.CreateClientParams) (repository.Client, error)
	AttachUser(ctx context.Context, clientID, userID uuid.UUID) error
	LinkUserByEmail(ctx context.Context, email string, userID uuid.UUID) (int, error)
	CountUnlinkedByEmail(ctx context.Context, email string) (int, error)
	List(ctx context.Context, limit, offset int) ([]repository.Client, error)
}

// InquiryLinks is the slice of the inquiries context the linker needs.
type InquiryLinks interface {
	LinkUserByEmail(ctx context.Context, email string, userID uuid.UUID) (int, error)
	CountUnlinkedByEmail(ctx context.Context, email string) (int, error)
}

type Service struct {
	repo      Repository
	inquiries InquiryLinks
	bus       events.Bus
	log       *logger.Logger
}

func New(repo Repository, inquiries InquiryLinks, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, inquiries: inquiries, bus: bus, log: log}
}

// Resolve finds the client for an email, creating one when absent. Used by
// the intake pipeline after an inquiry is persisted.
func (s *Service) Resolve(ctx context.Context, params repository.CreateClientParams) (repository.Client, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.Email == "" {
		return repository.Client{}, apperr.Validation("Email is required.")
	}
	return s.repo.FindOrCreate(ctx, params)
}

// LinkResult reports how many rows the retroactive linker touched.
type LinkResult struct {
	LinkedInquiries int `json:"linkedInquiries"`
	LinkedClients   int `json:"linkedClients"`
}

// LinkAccount attaches a newly confirmed account to all prior inquiries and
// client rows sharing its email. Only unlinked rows are touched, so running
// it again reports zero additional links. An email with no prior activity
// yields zero counts, not an error.
func (s *Service) LinkAccount(ctx context.Context, email string, userID uuid.UUID) (LinkResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return LinkResult{}, apperr.Validation("Email is required.")
	}
	if userID == uuid.Nil {
		return LinkResult{}, apperr.Validation("User is required.")
	}

	linkedClients, err := s.repo.LinkUserByEmail(ctx, email, userID)
	if err != nil {
		s.log.DatabaseError("clients.link_user", err)
		return LinkResult{}, apperr.Wrap(apperr.KindUnavailable, "Could not link the account. Please try again.", err)
	}

	linkedInquiries, err := s.inquiries.LinkUserByEmail(ctx, email, userID)
	if err != nil {
		s.log.DatabaseError("inquiries.link_user", err)
		return LinkResult{}, apperr.Wrap(apperr.KindUnavailable, "Could not link the account. Please try again.", err)
	}

	result := LinkResult{LinkedInquiries: linkedInquiries, LinkedClients: linkedClients}

	if linkedInquiries > 0 || linkedClients > 0 {
		s.bus.Publish(ctx, events.AccountLinked{
			BaseEvent:       events.NewBaseEvent(),
			UserID:          userID,
			Email:           email,
			LinkedInquiries: linkedInquiries,
			LinkedClients:   linkedClients,
		})
	}

	return result, nil
}

// CheckLink reports what LinkAccount would touch for the email, without
// mutating anything.
func (s *Service) CheckLink(ctx context.Context, email string) (LinkResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return LinkResult{}, apperr.Validation("Email is required.")
	}

	clients, err := s.repo.CountUnlinkedByEmail(ctx, email)
	if err != nil {
		return LinkResult{}, apperr.Wrap(apperr.KindUnavailable, "Could not check the account. Please try again.", err)
	}
	inquiries, err := s.inquiries.CountUnlinkedByEmail(ctx, email)
	if err != nil {
		return LinkResult{}, apperr.Wrap(apperr.KindUnavailable, "Could not check the account. Please try again.", err)
	}

	return LinkResult{LinkedInquiries: inquiries, LinkedClients: clients}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Client{}, apperr.NotFound("Client not found")
	}
	if err != nil {
		return repository.Client{}, apperr.Wrap(apperr.KindUnavailable, "Could not load the client. Please try again.", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.Client, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Could not list clients. Please try again.", err)
	}
	return items, nil
}
