// Package costing computes the cost of goods for the sellable product
// catalogue. Resolution walks the recipe graph depth-first. The graph is
// end-user edited: it may contain dangling references, mismatched units, and
// cycles, none of which may crash a batch or loop forever. Every such spot
// degrades to a zero (or unconverted) contribution and is recorded as a
// Diagnostic so callers can tell "genuinely free" from "data problem".
package costing

import (
	"context"
	"fmt"
	"maps"

	"menucost/internal/units"
	"menucost/models"
)

// RowSource supplies the ordered composition rows of a recipe product. It is
// the engine's only I/O seam; the production implementation reads from the
// database.
type RowSource interface {
	Rows(ctx context.Context, productID uint) ([]models.RecipeItem, error)
}

// RowSourceFunc adapts a plain function to the RowSource interface.
type RowSourceFunc func(ctx context.Context, productID uint) ([]models.RecipeItem, error)

// Rows implements RowSource.
func (f RowSourceFunc) Rows(ctx context.Context, productID uint) ([]models.RecipeItem, error) {
	return f(ctx, productID)
}

// Reason classifies a degraded contribution.
type Reason string

const (
	ReasonMissingIngredient Reason = "missing_ingredient"
	ReasonMissingProduct    Reason = "missing_product"
	ReasonUnitMismatch      Reason = "unit_mismatch"
	ReasonRowFetchFailed    Reason = "row_fetch_failed"
	ReasonCycle             Reason = "cycle"
)

// Diagnostic records one spot where resolution degraded instead of failing.
type Diagnostic struct {
	ProductID uint   `json:"product_id"`
	RowID     uint   `json:"row_id,omitempty"`
	Reason    Reason `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}

// Resolver computes per-unit production costs against fixed ingredient and
// product lookup tables. A Resolver lives for one batch and is not safe for
// concurrent use: it memoizes fetched rows and completed sub-costs.
type Resolver struct {
	ingredients map[uint]models.Ingredient
	products    map[uint]models.Product

	source   RowSource
	rowCache map[uint][]models.RecipeItem

	// costCache holds only costs whose entire subtree resolved without
	// hitting the cycle guard. A cycle-truncated cost depends on the path
	// that produced it and must never be reused.
	costCache map[uint]float64

	diagnostics []Diagnostic
}

// NewResolver indexes both catalogues by id and prepares empty caches.
func NewResolver(ingredients []models.Ingredient, products []models.Product, source RowSource) *Resolver {
	r := &Resolver{
		ingredients: make(map[uint]models.Ingredient, len(ingredients)),
		products:    make(map[uint]models.Product, len(products)),
		source:      source,
		rowCache:    make(map[uint][]models.RecipeItem),
		costCache:   make(map[uint]float64),
	}
	for _, ingredient := range ingredients {
		r.ingredients[ingredient.ID] = ingredient
	}
	for _, product := range products {
		r.products[product.ID] = product
	}
	return r
}

// Resolve computes the cost of producing one unit of product, starting from
// an empty recursion path. It never fails: malformed data only degrades the
// result and leaves a trace in Diagnostics.
func (r *Resolver) Resolve(ctx context.Context, product models.Product) float64 {
	cost, _ := r.resolve(ctx, product, map[uint]struct{}{})
	return cost
}

// Diagnostics returns every degraded contribution recorded so far, in the
// order it was encountered.
func (r *Resolver) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// resolve reports the cost of product and whether its subtree resolved
// cycle-free. guard holds the product ids already being resolved on the
// current path; every recursive call receives its own copy so that sibling
// branches sharing a descendant do not poison each other.
func (r *Resolver) resolve(ctx context.Context, product models.Product, guard map[uint]struct{}) (float64, bool) {
	if _, onPath := guard[product.ID]; onPath {
		r.report(Diagnostic{
			ProductID: product.ID,
			Reason:    ReasonCycle,
			Detail:    "product re-entered while still being resolved",
		})
		return 0, false
	}

	if cost, ok := r.costCache[product.ID]; ok {
		return cost, true
	}

	if product.Kind == models.ProductKindResale {
		cost := r.resolveResale(product)
		r.costCache[product.ID] = cost
		return cost, true
	}

	total := 0.0
	clean := true
	for _, row := range r.rowsFor(ctx, product.ID) {
		switch {
		case row.IngredientID != nil:
			total += r.ingredientContribution(product.ID, row)
		case row.SubProductID != nil:
			contribution, subClean := r.subProductContribution(ctx, product, row, guard)
			total += contribution
			clean = clean && subClean
		}
	}

	if clean {
		r.costCache[product.ID] = total
	}
	return total, clean
}

// resolveResale passes the linked ingredient's price through unchanged: a
// resale product sells exactly one unit of that ingredient.
func (r *Resolver) resolveResale(product models.Product) float64 {
	if product.LinkedIngredientID == nil {
		r.report(Diagnostic{
			ProductID: product.ID,
			Reason:    ReasonMissingIngredient,
			Detail:    "resale product has no linked ingredient",
		})
		return 0
	}
	ingredient, ok := r.ingredients[*product.LinkedIngredientID]
	if !ok {
		r.report(Diagnostic{
			ProductID: product.ID,
			Reason:    ReasonMissingIngredient,
			Detail:    fmt.Sprintf("linked ingredient %d not in catalogue", *product.LinkedIngredientID),
		})
		return 0
	}
	return ingredient.PricePerUnit
}

func (r *Resolver) ingredientContribution(productID uint, row models.RecipeItem) float64 {
	ingredient, ok := r.ingredients[*row.IngredientID]
	if !ok {
		r.report(Diagnostic{
			ProductID: productID,
			RowID:     row.ID,
			Reason:    ReasonMissingIngredient,
			Detail:    fmt.Sprintf("ingredient %d not in catalogue", *row.IngredientID),
		})
		return 0
	}

	quantity, err := units.Convert(row.Quantity, row.Unit, ingredient.Unit)
	if err != nil {
		// Lenient fallback: charge the raw quantity against the unit price
		// so one bad unit does not zero an entire recipe. The diagnostic is
		// the caller's cue that the number is suspect.
		r.report(Diagnostic{
			ProductID: productID,
			RowID:     row.ID,
			Reason:    ReasonUnitMismatch,
			Detail:    err.Error(),
		})
		quantity = row.Quantity
	}
	return quantity * ingredient.PricePerUnit
}

func (r *Resolver) subProductContribution(ctx context.Context, parent models.Product, row models.RecipeItem, guard map[uint]struct{}) (float64, bool) {
	sub, ok := r.products[*row.SubProductID]
	if !ok {
		r.report(Diagnostic{
			ProductID: parent.ID,
			RowID:     row.ID,
			Reason:    ReasonMissingProduct,
			Detail:    fmt.Sprintf("sub-product %d not in catalogue", *row.SubProductID),
		})
		return 0, true
	}

	child := maps.Clone(guard)
	child[parent.ID] = struct{}{}
	cost, clean := r.resolve(ctx, sub, child)

	// Quantity on a sub-recipe row is a dimensionless multiplier.
	return cost * row.Quantity, clean
}

// rowsFor fetches and memoizes a product's composition rows. Fetch failures
// are absorbed as an empty composition for the rest of the batch.
func (r *Resolver) rowsFor(ctx context.Context, productID uint) []models.RecipeItem {
	if rows, ok := r.rowCache[productID]; ok {
		return rows
	}
	rows, err := r.source.Rows(ctx, productID)
	if err != nil {
		r.report(Diagnostic{
			ProductID: productID,
			Reason:    ReasonRowFetchFailed,
			Detail:    err.Error(),
		})
		rows = nil
	}
	r.rowCache[productID] = rows
	return rows
}

func (r *Resolver) report(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}
