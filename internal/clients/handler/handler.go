package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients/service"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.POST("/link", h.LinkAccount)
	rg.GET("/link/check", h.CheckLink)
}

type linkAccountRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LinkAccount retroactively attaches the authenticated account to guest
// inquiries and client records sharing its email.
func (h *Handler) LinkAccount(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req linkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.LinkAccount(c.Request.Context(), req.Email, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// CheckLink reports what LinkAccount would change, without changing it.
func (h *Handler) CheckLink(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.CheckLink(c.Request.Context(), email)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	client, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, items)
}
