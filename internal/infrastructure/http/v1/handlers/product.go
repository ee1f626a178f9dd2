package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"negoce/internal/core/id"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/infrastructure/http/v1/dto"
	"negoce/internal/infrastructure/storage/postgres"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
	audit   AuditRecorder
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, audit AuditRecorder) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service, audit: audit}
}

// RegisterRoutes wires product endpoints.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create adds a product with zero stock.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "product", p.ID, postgres.AuditActionCreate, p)
	h.Created(c, p.ID.String())
}

// List returns products matching the filter.
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ListProductsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := product.ListFilter{
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.CategoryID != "" {
		categoryID, err := id.Parse(q.CategoryID)
		if err == nil {
			filter.CategoryID = &categoryID
		}
	}

	products, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(products))
}

// Get retrieves a product.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update modifies product attributes. Stock is never written here.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(p)
	p.UpdatedAt = time.Now().UTC()

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "product", p.ID, postgres.AuditActionUpdate, p)
	h.OK(c, p)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "product", productID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}
