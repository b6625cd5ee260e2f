// Package handlers implements the JSON API surface of the costing backend:
// catalogue CRUD for ingredients, products, and recipe rows, plus the batch
// cost endpoint consumed by the margin and pricing screens.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	applog "menucost/internal/log"
)

var database *gorm.DB

// Configure wires the shared dependencies used by the HTTP handlers.
func Configure(db *gorm.DB) {
	database = db
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
