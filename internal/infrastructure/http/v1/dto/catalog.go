package dto

import (
	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/catalog/unit"
)

// --- Units ---

// CreateUnitRequest creates a measurement unit.
type CreateUnitRequest struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation" binding:"required"`
}

// ToEntity converts the request to a domain unit.
func (r CreateUnitRequest) ToEntity() *unit.Unit {
	return unit.New(r.Name, r.Abbreviation)
}

// UpdateUnitRequest updates a measurement unit.
type UpdateUnitRequest struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation" binding:"required"`
}

// ApplyTo copies updatable fields onto an existing unit.
func (r UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	u.Name = r.Name
	u.Abbreviation = r.Abbreviation
}

// --- Products ---

// CreateProductRequest creates a product.
type CreateProductRequest struct {
	Name          string      `json:"name" binding:"required"`
	CategoryID    *id.ID      `json:"categoryId,omitempty"`
	BaseUnitID    id.ID       `json:"baseUnitId" binding:"required"`
	BaseUnitPrice types.Money `json:"baseUnitPrice"`
}

// ToEntity converts the request to a domain product.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Name, r.BaseUnitID, r.BaseUnitPrice)
	p.CategoryID = r.CategoryID
	return p
}

// UpdateProductRequest updates product attributes. Stock cannot be set here.
type UpdateProductRequest struct {
	Name          string      `json:"name" binding:"required"`
	CategoryID    *id.ID      `json:"categoryId,omitempty"`
	BaseUnitID    id.ID       `json:"baseUnitId" binding:"required"`
	BaseUnitPrice types.Money `json:"baseUnitPrice"`
	IsActive      bool        `json:"isActive"`
}

// ApplyTo copies updatable fields onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	p.CategoryID = r.CategoryID
	p.BaseUnitID = r.BaseUnitID
	p.BaseUnitPrice = r.BaseUnitPrice
	p.IsActive = r.IsActive
}

// ListProductsQuery filters product listing.
type ListProductsQuery struct {
	ActiveOnly bool   `form:"activeOnly"`
	CategoryID string `form:"categoryId"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}
