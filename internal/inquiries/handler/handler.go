package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/domain"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/service"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/transport"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the unauthenticated submission endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}

// RegisterRoutes mounts the broker/admin endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/statistics", h.Statistics)
	rg.GET("/overdue", h.Overdue)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	req.SubmitterIP = c.ClientIP()

	resp, err := h.svc.CreateInquiry(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, intakeStatus(resp), resp)
}

// intakeStatus maps the discriminated intake result to an HTTP status. The
// response body carries the full result either way; the status is a hint
// for clients that only look at codes.
func intakeStatus(resp transport.CreateInquiryResponse) int {
	if resp.Success {
		return http.StatusCreated
	}
	switch resp.Type {
	case string(domain.FailureRateLimit):
		return http.StatusTooManyRequests
	case string(domain.FailureDuplicate):
		return http.StatusConflict
	case string(domain.FailureNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	inquiry, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, inquiry)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "inquiry deleted"})
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListInquiriesParams{Limit: 50}

	if raw := c.Query("propertyId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		params.PropertyID = &id
	}
	if raw := c.Query("status"); raw != "" {
		if !domain.Status(raw).IsKnown() {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		params.Status = &raw
	}

	items, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, items)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, updated)
}

func (h *Handler) Statistics(c *gin.Context) {
	var req transport.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	stats, err := h.svc.Statistics(c.Request.Context(), req.WindowDays)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, stats)
}

func (h *Handler) Overdue(c *gin.Context) {
	items, err := h.svc.Overdue(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, items)
}
