package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/ledger"
	"negoce/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock ledger endpoints.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires stock endpoints.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/purchases", h.RecordPurchase)
	rg.POST("/outflows", h.RecordOutflow)
	rg.POST("/adjustments", h.Adjust)
	rg.GET("/movements", h.ListMovements)
	rg.GET("/availability/:productId/:unitId", h.StockInUnit)
	rg.GET("/consistency/:productId", h.VerifyConsistency)
}

// RecordPurchase records goods received from a supplier.
func (h *StockHandler) RecordPurchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.service.RecordPurchase(c.Request.Context(), ledger.PurchaseInput{
		ProductID:   req.ProductID,
		UnitID:      req.UnitID,
		Quantity:    req.Quantity,
		ReferenceID: req.ReferenceID,
		Notes:       req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movement)
}

// RecordOutflow records a manual stock removal with a reason.
func (h *StockHandler) RecordOutflow(c *gin.Context) {
	var req dto.OutflowRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.service.RecordOutflow(c.Request.Context(), ledger.OutflowInput{
		ProductID:    req.ProductID,
		UnitID:       req.UnitID,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		Notes:        req.Notes,
		EnforceStock: req.EnforceStock,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movement)
}

// Adjust reconciles stock with a physical inventory count.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Adjust(c.Request.Context(), ledger.AdjustInput{
		ProductID:       req.ProductID,
		UnitID:          req.UnitID,
		CountedQuantity: req.CountedQuantity,
		Notes:           req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ListMovements returns the movement history, newest first.
func (h *StockHandler) ListMovements(c *gin.Context) {
	var q dto.MovementsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := ledger.MovementFilter{
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.ProductID != "" {
		productID, err := id.Parse(q.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("param", "productId"))
			return
		}
		filter.ProductID = &productID
	}
	if q.MovementType != "" {
		mt := ledger.MovementType(q.MovementType)
		filter.MovementType = &mt
	}
	if q.ReferenceType != "" {
		filter.ReferenceType = &q.ReferenceType
	}
	if q.FromDate != "" {
		from, err := time.Parse("2006-01-02", q.FromDate)
		if err == nil {
			filter.FromDate = &from
		}
	}
	if q.ToDate != "" {
		to, err := time.Parse("2006-01-02", q.ToDate)
		if err == nil {
			end := to.Add(24 * time.Hour)
			filter.ToDate = &end
		}
	}

	movements, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(movements))
}

// StockInUnit reports current stock converted to a requested unit.
func (h *StockHandler) StockInUnit(c *gin.Context) {
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}
	unitID, ok := h.ParamID(c, "unitId")
	if !ok {
		return
	}

	qty, err := h.service.StockInUnit(c.Request.Context(), productID, unitID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.StockInUnitResponse{
		ProductID: productID,
		UnitID:    unitID,
		Quantity:  qty,
	})
}

// VerifyConsistency checks that stock equals the signed ledger sum.
func (h *StockHandler) VerifyConsistency(c *gin.Context) {
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}

	consistent, err := h.service.VerifyConsistency(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ConsistencyResponse{
		ProductID:  productID,
		Consistent: consistent,
	})
}
