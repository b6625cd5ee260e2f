package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"menucost/internal/costing"
	applog "menucost/internal/log"
	"menucost/internal/metrics"
	"menucost/models"
)

type costsResponse struct {
	Costs       costing.CostMap      `json:"costs"`
	Diagnostics []costing.Diagnostic `json:"diagnostics"`
	ComputedAt  time.Time            `json:"computed_at"`
}

// ProductCosts recomputes the cost map for the entire catalogue on demand.
// The result is an ephemeral snapshot; callers decide when to recompute.
func ProductCosts(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "cost request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var ingredients []models.Ingredient
	if err := database.WithContext(ctx).Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to load ingredient catalogue", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	var products []models.Product
	if err := database.WithContext(ctx).Find(&products).Error; err != nil {
		applog.Error(ctx, "failed to load product catalogue", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	start := time.Now()
	costs, diagnostics := costing.CalculateAll(ctx, products, ingredients, recipeRowSource{db: database})
	elapsed := time.Since(start)

	metrics.CostBatchesTotal.Inc()
	metrics.CostBatchDuration.Observe(elapsed.Seconds())
	for _, d := range diagnostics {
		metrics.CostDiagnosticsTotal.WithLabelValues(string(d.Reason)).Inc()
	}

	if len(diagnostics) > 0 {
		applog.Warn(ctx, "cost batch completed with degraded rows",
			"products", len(products),
			"diagnostics", len(diagnostics),
			"elapsed", elapsed.String(),
		)
	} else {
		applog.Debug(ctx, "cost batch completed",
			"products", len(products),
			"elapsed", elapsed.String(),
		)
	}

	if diagnostics == nil {
		diagnostics = []costing.Diagnostic{}
	}

	writeJSON(w, http.StatusOK, costsResponse{
		Costs:       costs,
		Diagnostics: diagnostics,
		ComputedAt:  time.Now().UTC(),
	})
}

// recipeRowSource reads composition rows straight from the database, in the
// stored display order.
type recipeRowSource struct {
	db *gorm.DB
}

func (s recipeRowSource) Rows(ctx context.Context, productID uint) ([]models.RecipeItem, error) {
	var rows []models.RecipeItem
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
