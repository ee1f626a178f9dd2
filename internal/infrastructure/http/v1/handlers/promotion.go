package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"negoce/internal/domain/pricing/promotion"
	"negoce/internal/infrastructure/http/v1/dto"
	"negoce/internal/infrastructure/storage/postgres"
)

// PromotionHandler handles promotion endpoints.
type PromotionHandler struct {
	*BaseHandler
	service *promotion.Service
	audit   AuditRecorder
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(base *BaseHandler, service *promotion.Service, audit AuditRecorder) *PromotionHandler {
	return &PromotionHandler{BaseHandler: base, service: service, audit: audit}
}

// RegisterRoutes wires promotion endpoints.
func (h *PromotionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/active", h.ListActive)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create adds a promotion after configuration validation.
func (h *PromotionHandler) Create(c *gin.Context) {
	var req dto.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "promotion", p.ID, postgres.AuditActionCreate, p)
	h.Created(c, p.ID.String())
}

// List returns all promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	promotions, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(promotions))
}

// ListActive returns promotions active now, or at ?at=RFC3339.
func (h *PromotionHandler) ListActive(c *gin.Context) {
	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			at = parsed
		}
	}

	promotions, err := h.service.ListActive(c.Request.Context(), at)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(promotions))
}

// Get retrieves a promotion.
func (h *PromotionHandler) Get(c *gin.Context) {
	promotionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update modifies a promotion's configuration.
func (h *PromotionHandler) Update(c *gin.Context) {
	promotionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(p)
	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "promotion", p.ID, postgres.AuditActionUpdate, p)
	h.OK(c, p)
}

// Delete removes a promotion.
func (h *PromotionHandler) Delete(c *gin.Context) {
	promotionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), promotionID); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "promotion", promotionID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}
