// Package clients provides the client management bounded context module.
package clients

import (
	apphttp "github.com/marzy-142/geocasa-bohol-sub001/internal/http"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients/handler"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients/service"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the clients module. The inquiry links
// dependency comes from internal/adapters so this context never imports the
// inquiries packages directly.
func NewModule(pool *pgxpool.Pool, inquiryLinks service.InquiryLinks, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, inquiryLinks, eventBus, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Service returns the client service for adapter wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the client repository for adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts clients routes on the provided router context.
// All clients routes require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/clients"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
