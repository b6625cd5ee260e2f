package costing

import (
	"context"

	"github.com/shopspring/decimal"

	"menucost/models"
)

// CostMap is the batch output: one rounded currency value per product id.
type CostMap map[uint]float64

// CalculateAll resolves the per-unit production cost of every product in the
// catalogue. Each product starts from a fresh, empty recursion path, so a
// malformed record can only degrade its own entry, and the result does not
// depend on the order of the input slice. Costs are rounded half-up to
// currency precision before being keyed by product id.
func CalculateAll(ctx context.Context, products []models.Product, ingredients []models.Ingredient, source RowSource) (CostMap, []Diagnostic) {
	resolver := NewResolver(ingredients, products, source)

	costs := make(CostMap, len(products))
	for _, product := range products {
		costs[product.ID] = roundCurrency(resolver.Resolve(ctx, product))
	}
	return costs, resolver.Diagnostics()
}

// roundCurrency rounds half-up to two decimal places.
func roundCurrency(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return rounded
}
