package handlers

import (
	"github.com/gin-gonic/gin"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/pricing/conversion"
	"negoce/internal/infrastructure/http/v1/dto"
	"negoce/internal/infrastructure/storage/postgres"
)

// ConversionHandler handles per-product unit conversion endpoints.
type ConversionHandler struct {
	*BaseHandler
	service  *conversion.Service
	products *product.Service
	audit    AuditRecorder
}

// NewConversionHandler creates a new conversion handler.
func NewConversionHandler(base *BaseHandler, service *conversion.Service, products *product.Service, audit AuditRecorder) *ConversionHandler {
	return &ConversionHandler{BaseHandler: base, service: service, products: products, audit: audit}
}

// RegisterRoutes wires conversion endpoints under a product. The product
// path parameter is ":id" to stay compatible with the product routes
// registered on the same group.
func (h *ConversionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/conversions", h.Create)
	rg.GET("/:id/conversions", h.List)
	rg.PUT("/:id/conversions/:convId", h.Update)
	rg.DELETE("/:id/conversions/:convId", h.Delete)
	rg.GET("/:id/convert", h.Convert)
}

// Create adds a conversion row for a product.
func (h *ConversionHandler) Create(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateConversionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	conv := req.ToEntity(productID)
	if err := h.service.Create(c.Request.Context(), p, conv); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "conversion", conv.ID, postgres.AuditActionCreate, conv)
	h.Created(c, conv.ID.String())
}

// List returns a product's conversion table.
func (h *ConversionHandler) List(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	conversions, err := h.service.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(conversions))
}

// Update modifies a conversion row.
func (h *ConversionHandler) Update(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	conversionID, ok := h.ParamID(c, "convId")
	if !ok {
		return
	}

	var req dto.UpdateConversionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	existing, err := h.findByID(c, productID, conversionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)
	if err := h.service.Update(c.Request.Context(), p, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "conversion", existing.ID, postgres.AuditActionUpdate, existing)
	h.OK(c, existing)
}

// Delete removes a conversion row.
func (h *ConversionHandler) Delete(c *gin.Context) {
	conversionID, ok := h.ParamID(c, "convId")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), conversionID); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "conversion", conversionID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}

// Convert converts a quantity between a product's units.
func (h *ConversionHandler) Convert(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var q dto.ConvertQuery
	if !h.BindQuery(c, &q) {
		return
	}

	unitID, err := id.Parse(q.UnitID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit id").WithDetail("param", "unitId"))
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	direction := q.Direction
	if direction == "" {
		direction = "to_base"
	}

	var output = q.Quantity
	switch direction {
	case "to_base":
		output, err = h.service.ToBase(c.Request.Context(), p, unitID, q.Quantity)
	case "from_base":
		output, err = h.service.FromBase(c.Request.Context(), p, unitID, q.Quantity)
	default:
		h.Error(c, apperror.NewValidation("direction must be to_base or from_base"))
		return
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ConvertResponse{
		ProductID: productID,
		UnitID:    unitID,
		Input:     q.Quantity,
		Output:    output,
		Direction: direction,
	})
}

func (h *ConversionHandler) findByID(c *gin.Context, productID, conversionID id.ID) (*conversion.UnitConversion, error) {
	rows, err := h.service.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == conversionID {
			return &rows[i], nil
		}
	}
	return nil, apperror.NewNotFound("conversion", conversionID)
}
