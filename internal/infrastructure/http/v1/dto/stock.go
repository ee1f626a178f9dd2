package dto

import (
	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// PurchaseRequest records goods received from a supplier.
type PurchaseRequest struct {
	ProductID   id.ID          `json:"productId" binding:"required"`
	UnitID      id.ID          `json:"unitId" binding:"required"`
	Quantity    types.Quantity `json:"quantity"`
	ReferenceID *id.ID         `json:"referenceId,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// OutflowRequest records a manual stock removal.
type OutflowRequest struct {
	ProductID    id.ID          `json:"productId" binding:"required"`
	UnitID       id.ID          `json:"unitId" binding:"required"`
	Quantity     types.Quantity `json:"quantity"`
	Reason       string         `json:"reason" binding:"required"`
	Notes        string         `json:"notes,omitempty"`
	EnforceStock bool           `json:"enforceStock"`
}

// AdjustRequest reconciles stock with a physical inventory count.
type AdjustRequest struct {
	ProductID       id.ID          `json:"productId" binding:"required"`
	UnitID          id.ID          `json:"unitId" binding:"required"`
	CountedQuantity types.Quantity `json:"countedQuantity"`
	Notes           string         `json:"notes,omitempty"`
}

// MovementsQuery filters movement history.
type MovementsQuery struct {
	ProductID     string `form:"productId"`
	MovementType  string `form:"movementType"`
	ReferenceType string `form:"referenceType"`
	FromDate      string `form:"fromDate"`
	ToDate        string `form:"toDate"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// StockInUnitResponse reports stock converted to a requested unit.
type StockInUnitResponse struct {
	ProductID id.ID          `json:"productId"`
	UnitID    id.ID          `json:"unitId"`
	Quantity  types.Quantity `json:"quantity"`
}

// ConsistencyResponse reports the ledger/stock consistency check outcome.
type ConsistencyResponse struct {
	ProductID  id.ID `json:"productId"`
	Consistent bool  `json:"consistent"`
}
