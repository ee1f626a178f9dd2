package conversion

import (
	"sync"

	"negoce/internal/core/id"
)

// cache holds conversion rows per product, keyed by (product, unit).
// Loaded on first use, invalidated whenever the product's conversions change.
// Callers never cache converted stock values across requests; only the
// configuration rows live here.
type cache struct {
	mu       sync.RWMutex
	products map[id.ID]map[id.ID]UnitConversion
}

func newCache() *cache {
	return &cache{products: make(map[id.ID]map[id.ID]UnitConversion)}
}

// get returns the conversion for (productID, unitID) if the product is loaded.
// The second return reports whether the product is loaded at all.
func (c *cache) get(productID, unitID id.ID) (UnitConversion, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byUnit, loaded := c.products[productID]
	if !loaded {
		return UnitConversion{}, false, false
	}
	conv, ok := byUnit[unitID]
	return conv, ok, true
}

// put replaces all cached rows for a product.
func (c *cache) put(productID id.ID, rows []UnitConversion) {
	byUnit := make(map[id.ID]UnitConversion, len(rows))
	for _, row := range rows {
		byUnit[row.UnitID] = row
	}

	c.mu.Lock()
	c.products[productID] = byUnit
	c.mu.Unlock()
}

// invalidate drops cached rows for a product.
func (c *cache) invalidate(productID id.ID) {
	c.mu.Lock()
	delete(c.products, productID)
	c.mu.Unlock()
}
