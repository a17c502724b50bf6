// Package properties provides the property catalog bounded context module.
// Listing management lives elsewhere; this module serves the read side and
// the broker assignment write used by the intake pipeline.
package properties

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "github.com/marzy-142/geocasa-bohol-sub001/internal/http"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/properties/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/httpkit"
)

// Module is the properties bounded context module implementing http.Module.
type Module struct {
	repo *repository.Repository
}

// NewModule creates and initializes the properties module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: repository.New(pool)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "properties"
}

// Repository returns the property repository for adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the public property read endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rg := ctx.V1.Group("/properties")
	rg.GET("", m.list)
	rg.GET("/:id", m.getByID)
}

func (m *Module) getByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	property, err := m.repo.GetByID(c.Request.Context(), id)
	if err == repository.ErrNotFound {
		httpkit.Error(c, http.StatusNotFound, "Property not found", nil)
		return
	}
	if err != nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "Could not load the property. Please try again.", nil)
		return
	}

	httpkit.OK(c, property)
}

func (m *Module) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	items, err := m.repo.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "Could not list properties. Please try again.", nil)
		return
	}

	httpkit.OK(c, items)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
