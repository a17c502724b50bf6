// Package brokers provides the broker directory and assignment bounded
// context module.
package brokers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/service"
	apphttp "github.com/marzy-142/geocasa-bohol-sub001/internal/http"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/httpkit"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

// Module is the brokers bounded context module implementing http.Module.
type Module struct {
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the brokers module. Property and client
// assigners come from internal/adapters so this context stays decoupled.
func NewModule(pool *pgxpool.Pool, properties service.PropertyAssigner, clients service.ClientAssigner, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return &Module{
		service: service.New(repo, properties, clients, eventBus, log),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "brokers"
}

// Service returns the assignment service for adapter wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the broker repository for adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// SetClientAssigner injects the client assignment writer once the clients
// module exists.
func (m *Module) SetClientAssigner(clients service.ClientAssigner) {
	m.service.SetClientAssigner(clients)
}

// RegisterRoutes mounts the admin workload endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/brokers/workload", m.workload)
}

func (m *Module) workload(c *gin.Context) {
	items, err := m.repo.EligibleWithWorkload(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "Could not load broker workload. Please try again.", nil)
		return
	}
	httpkit.OK(c, items)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
