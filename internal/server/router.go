package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"menucost/internal/handlers"
	applog "menucost/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/ingredients", handlers.IngredientResource)
	mux.HandleFunc("/api/ingredients/", handlers.IngredientResource)
	mux.HandleFunc("/api/products", handlers.ProductResource)
	mux.HandleFunc("/api/products/", handlers.ProductResource)
	mux.HandleFunc("/api/recipe-items", handlers.RecipeItemResource)
	mux.HandleFunc("/api/recipe-items/", handlers.RecipeItemResource)
	mux.HandleFunc("/api/costs", handlers.ProductCosts)
	applog.Debug(context.Background(), "http routes registered")
	return mux
}
