package costing

import (
	"context"
	"errors"
	"math"
	"testing"

	"gorm.io/gorm"

	"menucost/models"
)

func uintPtr(v uint) *uint { return &v }

func ingredient(id uint, name, unit string, price float64) models.Ingredient {
	return models.Ingredient{
		Model:        gorm.Model{ID: id},
		Name:         name,
		Unit:         unit,
		PricePerUnit: price,
	}
}

func recipeProduct(id uint, name string) models.Product {
	return models.Product{
		Model: gorm.Model{ID: id},
		Name:  name,
		Kind:  models.ProductKindRecipe,
	}
}

func resaleProduct(id uint, name string, ingredientID *uint) models.Product {
	return models.Product{
		Model:              gorm.Model{ID: id},
		Name:               name,
		Kind:               models.ProductKindResale,
		LinkedIngredientID: ingredientID,
	}
}

func ingredientRow(rowID, productID uint, ingredientID uint, quantity float64, unit string) models.RecipeItem {
	return models.RecipeItem{
		Model:        gorm.Model{ID: rowID},
		ProductID:    productID,
		Quantity:     quantity,
		Unit:         unit,
		IngredientID: uintPtr(ingredientID),
	}
}

func subProductRow(rowID, productID uint, subProductID uint, multiplier float64) models.RecipeItem {
	return models.RecipeItem{
		Model:        gorm.Model{ID: rowID},
		ProductID:    productID,
		Quantity:     multiplier,
		SubProductID: uintPtr(subProductID),
	}
}

func mapSource(rows map[uint][]models.RecipeItem) RowSource {
	return RowSourceFunc(func(_ context.Context, productID uint) ([]models.RecipeItem, error) {
		return rows[productID], nil
	})
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolveResalePassThrough(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{ingredient(1, "San Pellegrino", "lt", 2.50)}
	products := []models.Product{resaleProduct(10, "San Pellegrino 500ml", uintPtr(1))}

	resolver := NewResolver(ingredients, products, mapSource(nil))
	if got := resolver.Resolve(context.Background(), products[0]); !almostEqual(got, 2.50) {
		t.Fatalf("resale cost = %v, want 2.50", got)
	}
	if diags := resolver.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestResolveResaleMissingIngredient(t *testing.T) {
	t.Parallel()

	products := []models.Product{resaleProduct(10, "Ghost Bottle", uintPtr(99))}

	resolver := NewResolver(nil, products, mapSource(nil))
	if got := resolver.Resolve(context.Background(), products[0]); got != 0 {
		t.Fatalf("resale cost with dangling ingredient = %v, want 0", got)
	}
	diags := resolver.Diagnostics()
	if len(diags) != 1 || diags[0].Reason != ReasonMissingIngredient {
		t.Fatalf("expected one missing_ingredient diagnostic, got %v", diags)
	}
}

func TestResolveSimpleRecipeSum(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{
		ingredient(1, "Flour", "kg", 1.20),
		ingredient(2, "Milk", "lt", 0.90),
	}
	products := []models.Product{recipeProduct(10, "Pancake Batter")}
	rows := map[uint][]models.RecipeItem{
		10: {
			ingredientRow(100, 10, 1, 200, "g"),
			ingredientRow(101, 10, 2, 0.5, "lt"),
		},
	}

	resolver := NewResolver(ingredients, products, mapSource(rows))
	if got := resolver.Resolve(context.Background(), products[0]); !almostEqual(got, 0.69) {
		t.Fatalf("recipe cost = %v, want 0.69", got)
	}
}

func TestResolveSubRecipeComposition(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{
		ingredient(1, "Base Syrup", "lt", 1.00),
		ingredient(2, "Citrus Mix", "lt", 0.50),
	}
	productA := recipeProduct(10, "Syrup Shot")
	productB := recipeProduct(11, "House Cocktail")
	rows := map[uint][]models.RecipeItem{
		10: {ingredientRow(100, 10, 1, 1, "lt")},
		11: {
			subProductRow(101, 11, 10, 3),
			ingredientRow(102, 11, 2, 1, "lt"),
		},
	}

	resolver := NewResolver(ingredients, []models.Product{productA, productB}, mapSource(rows))
	if got := resolver.Resolve(context.Background(), productB); !almostEqual(got, 3.50) {
		t.Fatalf("composed cost = %v, want 3.50", got)
	}
}

func TestResolveCycleTerminates(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{
		ingredient(1, "Stock", "lt", 0.30),
		ingredient(2, "Cream", "lt", 0.20),
	}
	productA := recipeProduct(10, "Sauce A")
	productB := recipeProduct(11, "Sauce B")
	rows := map[uint][]models.RecipeItem{
		10: {
			ingredientRow(100, 10, 1, 1, "lt"),
			subProductRow(101, 10, 11, 1),
		},
		11: {
			ingredientRow(102, 11, 2, 1, "lt"),
			subProductRow(103, 11, 10, 1),
		},
	}

	resolver := NewResolver(ingredients, []models.Product{productA, productB}, mapSource(rows))

	// A pulls in B; B's reference back to A is cut by the path guard and
	// contributes zero: 0.30 + (0.20 + 0) = 0.50.
	if got := resolver.Resolve(context.Background(), productA); !almostEqual(got, 0.50) {
		t.Fatalf("Resolve(A) = %v, want 0.50", got)
	}

	foundCycle := false
	for _, d := range resolver.Diagnostics() {
		if d.Reason == ReasonCycle {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Fatal("expected a cycle diagnostic")
	}
}

func TestResolveCycleTruncatedCostIsNotReused(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{
		ingredient(1, "Stock", "lt", 0.30),
		ingredient(2, "Cream", "lt", 0.20),
	}
	productA := recipeProduct(10, "Sauce A")
	productB := recipeProduct(11, "Sauce B")
	rows := map[uint][]models.RecipeItem{
		10: {
			ingredientRow(100, 10, 1, 1, "lt"),
			subProductRow(101, 10, 11, 1),
		},
		11: {
			ingredientRow(102, 11, 2, 1, "lt"),
			subProductRow(103, 11, 10, 1),
		},
	}

	resolver := NewResolver(ingredients, []models.Product{productA, productB}, mapSource(rows))

	// While resolving A, B is computed as 0.20 with A's branch truncated.
	// That path-dependent value must not be served to B's own top-level
	// resolution, which truncates on the opposite side: 0.20 + (0.30 + 0).
	if got := resolver.Resolve(context.Background(), productA); !almostEqual(got, 0.50) {
		t.Fatalf("Resolve(A) = %v, want 0.50", got)
	}
	if got := resolver.Resolve(context.Background(), productB); !almostEqual(got, 0.50) {
		t.Fatalf("Resolve(B) = %v, want 0.50", got)
	}
}

func TestResolveSelfReferenceTerminates(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{ingredient(1, "Dough", "kg", 2.00)}
	product := recipeProduct(10, "Recursive Bread")
	rows := map[uint][]models.RecipeItem{
		10: {
			ingredientRow(100, 10, 1, 0.5, "kg"),
			subProductRow(101, 10, 10, 2),
		},
	}

	resolver := NewResolver(ingredients, []models.Product{product}, mapSource(rows))
	if got := resolver.Resolve(context.Background(), product); !almostEqual(got, 1.00) {
		t.Fatalf("self-referencing cost = %v, want 1.00", got)
	}
}

func TestResolveUnitMismatchFallback(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{ingredient(1, "Olive Oil", "lt", 3.00)}
	product := recipeProduct(10, "Dressing")
	rows := map[uint][]models.RecipeItem{
		10: {ingredientRow(100, 10, 1, 2, "kg")},
	}

	resolver := NewResolver(ingredients, []models.Product{product}, mapSource(rows))

	// Mass against a volume price cannot be converted; the raw quantity is
	// charged unconverted instead of failing the resolution.
	if got := resolver.Resolve(context.Background(), product); !almostEqual(got, 6.00) {
		t.Fatalf("fallback cost = %v, want 6.00", got)
	}
	diags := resolver.Diagnostics()
	if len(diags) != 1 || diags[0].Reason != ReasonUnitMismatch {
		t.Fatalf("expected one unit_mismatch diagnostic, got %v", diags)
	}
	if diags[0].RowID != 100 {
		t.Fatalf("diagnostic row id = %d, want 100", diags[0].RowID)
	}
}

func TestResolveMissingReferencesDegradeToZero(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{ingredient(1, "Butter", "kg", 8.00)}
	product := recipeProduct(10, "Brioche")
	rows := map[uint][]models.RecipeItem{
		10: {
			ingredientRow(100, 10, 77, 1, "kg"),
			subProductRow(101, 10, 88, 2),
			ingredientRow(102, 10, 1, 250, "g"),
		},
	}

	resolver := NewResolver(ingredients, []models.Product{product}, mapSource(rows))
	if got := resolver.Resolve(context.Background(), product); !almostEqual(got, 2.00) {
		t.Fatalf("cost with dangling rows = %v, want 2.00", got)
	}

	reasons := map[Reason]int{}
	for _, d := range resolver.Diagnostics() {
		reasons[d.Reason]++
	}
	if reasons[ReasonMissingIngredient] != 1 || reasons[ReasonMissingProduct] != 1 {
		t.Fatalf("unexpected diagnostics: %v", resolver.Diagnostics())
	}
}

func TestResolveRowFetchFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	product := recipeProduct(10, "Unreachable")
	failing := RowSourceFunc(func(context.Context, uint) ([]models.RecipeItem, error) {
		return nil, errors.New("storage offline")
	})

	resolver := NewResolver(nil, []models.Product{product}, failing)
	if got := resolver.Resolve(context.Background(), product); got != 0 {
		t.Fatalf("cost with failing row source = %v, want 0", got)
	}
	diags := resolver.Diagnostics()
	if len(diags) != 1 || diags[0].Reason != ReasonRowFetchFailed {
		t.Fatalf("expected one row_fetch_failed diagnostic, got %v", diags)
	}
}

func TestResolveMemoizesRowFetches(t *testing.T) {
	t.Parallel()

	ingredients := []models.Ingredient{ingredient(1, "Espresso", "kg", 18.00)}
	shared := recipeProduct(10, "Espresso Shot")
	parent := recipeProduct(11, "Double Course")
	rows := map[uint][]models.RecipeItem{
		10: {ingredientRow(100, 10, 1, 18, "g")},
		11: {
			subProductRow(101, 11, 10, 1),
			subProductRow(102, 11, 10, 1),
		},
	}

	calls := map[uint]int{}
	counting := RowSourceFunc(func(_ context.Context, productID uint) ([]models.RecipeItem, error) {
		calls[productID]++
		return rows[productID], nil
	})

	resolver := NewResolver(ingredients, []models.Product{shared, parent}, counting)
	resolver.Resolve(context.Background(), parent)
	resolver.Resolve(context.Background(), shared)

	for productID, count := range calls {
		if count != 1 {
			t.Fatalf("rows for product %d fetched %d times, want 1", productID, count)
		}
	}
}
