package handlers

import (
	"github.com/gin-gonic/gin"

	"negoce/internal/domain/sales"
)

// SaleHandler handles sale checkout endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sales.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires sale endpoints.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Checkout)
	rg.GET("/:id", h.Get)
}

// Checkout prices and finalizes a sale in one transaction.
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req sales.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.Checkout(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Get retrieves a finalized sale with its lines.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}
