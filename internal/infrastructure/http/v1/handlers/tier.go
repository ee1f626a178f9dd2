package handlers

import (
	"github.com/gin-gonic/gin"

	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/pricing/tier"
	"negoce/internal/infrastructure/http/v1/dto"
	"negoce/internal/infrastructure/storage/postgres"
)

// TierHandler handles price tier endpoints.
type TierHandler struct {
	*BaseHandler
	service  *tier.Service
	products *product.Service
	audit    AuditRecorder
}

// NewTierHandler creates a new tier handler.
func NewTierHandler(base *BaseHandler, service *tier.Service, products *product.Service, audit AuditRecorder) *TierHandler {
	return &TierHandler{BaseHandler: base, service: service, products: products, audit: audit}
}

// RegisterRoutes wires tier endpoints under a product.
func (h *TierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/tiers", h.Create)
	rg.GET("/:id/tiers", h.List)
	rg.PUT("/:id/tiers/:tierId", h.Update)
	rg.DELETE("/:id/tiers/:tierId", h.Delete)
	rg.GET("/:id/price", h.ResolvePrice)
}

// Create adds a price tier for a product.
func (h *TierHandler) Create(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateTierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := req.ToEntity(productID)
	if err := h.service.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "tier", t.ID, postgres.AuditActionCreate, t)
	h.Created(c, t.ID.String())
}

// List returns a product's tiers ordered by min quantity.
func (h *TierHandler) List(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	tiers, err := h.service.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(tiers))
}

// Update modifies a tier.
func (h *TierHandler) Update(c *gin.Context) {
	tierID, ok := h.ParamID(c, "tierId")
	if !ok {
		return
	}

	var req dto.UpdateTierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), tierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(t)
	if err := h.service.Update(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "tier", t.ID, postgres.AuditActionUpdate, t)
	h.OK(c, t)
}

// Delete removes a tier.
func (h *TierHandler) Delete(c *gin.Context) {
	tierID, ok := h.ParamID(c, "tierId")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tierID); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "tier", tierID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}

// ResolvePrice reports the applicable unit price for a quantity.
func (h *TierHandler) ResolvePrice(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var q dto.ResolvePriceQuery
	if !h.BindQuery(c, &q) {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.ResolvePrice(c.Request.Context(), p, q.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}
