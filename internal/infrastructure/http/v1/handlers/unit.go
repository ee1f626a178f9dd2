package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"negoce/internal/domain/catalog/unit"
	"negoce/internal/infrastructure/http/v1/dto"
	"negoce/internal/infrastructure/storage/postgres"
)

// UnitHandler handles measurement unit endpoints.
type UnitHandler struct {
	*BaseHandler
	service *unit.Service
	audit   AuditRecorder
}

// NewUnitHandler creates a new unit handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service, audit AuditRecorder) *UnitHandler {
	return &UnitHandler{BaseHandler: base, service: service, audit: audit}
}

// RegisterRoutes wires unit endpoints.
func (h *UnitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create adds a unit.
func (h *UnitHandler) Create(c *gin.Context) {
	var req dto.CreateUnitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), u); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "unit", u.ID, postgres.AuditActionCreate, u)
	h.Created(c, u.ID.String())
}

// List returns all units.
func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(units))
}

// Get retrieves a unit.
func (h *UnitHandler) Get(c *gin.Context) {
	unitID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), unitID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// Update modifies a unit.
func (h *UnitHandler) Update(c *gin.Context) {
	unitID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUnitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), unitID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(u)
	u.UpdatedAt = time.Now().UTC()

	if err := h.service.Update(c.Request.Context(), u); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "unit", u.ID, postgres.AuditActionUpdate, u)
	h.OK(c, u)
}

// Delete removes a unit.
func (h *UnitHandler) Delete(c *gin.Context) {
	unitID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), unitID); err != nil {
		h.Error(c, err)
		return
	}

	h.RecordAudit(c, h.audit, "unit", unitID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}
