// Package inquiries provides the inquiry intake bounded context module.
// This file defines the module that encapsulates all inquiries setup and route registration.
package inquiries

import (
	apphttp "github.com/marzy-142/geocasa-bohol-sub001/internal/http"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/handler"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/ports"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/service"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/clock"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/config"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the inquiries bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// Collaborators groups the cross-context dependencies the intake pipeline
// needs. Implementations live in internal/adapters and are wired by the
// composition root.
type Collaborators struct {
	Properties ports.PropertyFinder
	Clients    ports.ClientResolver
	Brokers    ports.BrokerAssigner
	Notifier   ports.Notifier
}

// NewModule creates and initializes the inquiries module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	collab Collaborators,
	eventBus events.Bus,
	val *validator.Validator,
	clk clock.Clock,
	cfg config.IntakeConfig,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(
		repo,
		collab.Properties,
		collab.Clients,
		collab.Brokers,
		collab.Notifier,
		eventBus,
		val,
		clk,
		service.PolicyFromConfig(cfg),
		log,
	)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "inquiries"
}

// SetClientResolver injects the client resolver once the clients module
// exists (breaks the circular dependency with account linking).
func (m *Module) SetClientResolver(clients ports.ClientResolver) {
	m.service.SetClientResolver(clients)
}

// Service returns the inquiry service for external use (scheduler jobs).
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the inquiry repository for adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts inquiries routes on the provided router context.
// Submission is public behind the intake burst limiter; everything else
// requires authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/inquiries")
	public.Use(ctx.IntakeRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	m.handler.RegisterRoutes(ctx.Protected.Group("/inquiries"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
