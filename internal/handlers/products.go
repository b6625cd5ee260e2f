package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "menucost/internal/log"
	"menucost/models"
)

type productRequest struct {
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	Kind               string  `json:"kind"`
	DineInPrice        float64 `json:"dine_in_price"`
	DeliveryPrice      float64 `json:"delivery_price"`
	LinkedIngredientID *uint   `json:"linked_ingredient_id"`
}

type productIngredientSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type productResponse struct {
	ID                 uint                      `json:"id"`
	Name               string                    `json:"name"`
	Category           string                    `json:"category"`
	Kind               string                    `json:"kind"`
	DineInPrice        float64                   `json:"dine_in_price"`
	DeliveryPrice      float64                   `json:"delivery_price"`
	LinkedIngredientID *uint                     `json:"linked_ingredient_id,omitempty"`
	LinkedIngredient   *productIngredientSummary `json:"linked_ingredient,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// ProductResource handles CRUD interactions for sellable product records.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "product request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/products")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r)
		case http.MethodPost:
			createProduct(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid product identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	productID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showProduct(w, r, productID)
	case http.MethodPut:
		updateProduct(w, r, productID)
	case http.MethodDelete:
		deleteProduct(w, r, productID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Product

	query := database.WithContext(ctx).
		Preload("LinkedIngredient").
		Order("name asc")
	if kind := strings.TrimSpace(r.URL.Query().Get("kind")); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(results))
	for _, product := range results {
		responses = append(responses, projectProduct(product))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).
		Preload("LinkedIngredient").
		First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateProductPayload(payload); err != nil {
		applog.Debug(ctx, "product validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := models.Product{
		Name:               strings.TrimSpace(payload.Name),
		Category:           strings.TrimSpace(payload.Category),
		Kind:               payload.Kind,
		DineInPrice:        payload.DineInPrice,
		DeliveryPrice:      payload.DeliveryPrice,
		LinkedIngredientID: payload.LinkedIngredientID,
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create product")
		return
	}

	if err := database.WithContext(ctx).
		Preload("LinkedIngredient").
		First(&product, product.ID).Error; err != nil {
		applog.Error(ctx, "failed to reload created product", "error", err, "id", product.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var existing models.Product
	if err := database.WithContext(ctx).First(&existing, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product for update", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateProductPayload(payload); err != nil {
		applog.Debug(ctx, "product update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"name":                 strings.TrimSpace(payload.Name),
		"category":             strings.TrimSpace(payload.Category),
		"kind":                 payload.Kind,
		"dine_in_price":        payload.DineInPrice,
		"delivery_price":       payload.DeliveryPrice,
		"linked_ingredient_id": payload.LinkedIngredientID,
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update product", "error", err, "id", productID)
		writeJSONError(w, http.StatusBadRequest, "unable to update product")
		return
	}

	if err := database.WithContext(ctx).
		Preload("LinkedIngredient").
		First(&existing, productID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(existing))
}

func deleteProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	if err := database.WithContext(ctx).Delete(&models.Product{}, productID).Error; err != nil {
		applog.Error(ctx, "failed to delete product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectProduct(product models.Product) productResponse {
	response := productResponse{
		ID:                 product.ID,
		Name:               product.Name,
		Category:           product.Category,
		Kind:               product.Kind,
		DineInPrice:        product.DineInPrice,
		DeliveryPrice:      product.DeliveryPrice,
		LinkedIngredientID: product.LinkedIngredientID,
		CreatedAt:          product.CreatedAt,
		UpdatedAt:          product.UpdatedAt,
	}

	if product.LinkedIngredient != nil {
		response.LinkedIngredient = &productIngredientSummary{
			ID:   product.LinkedIngredient.ID,
			Name: strings.TrimSpace(product.LinkedIngredient.Name),
			Unit: product.LinkedIngredient.Unit,
		}
	}

	return response
}

func validateProductPayload(payload productRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}

	hasIngredient := payload.LinkedIngredientID != nil && *payload.LinkedIngredientID != 0

	switch payload.Kind {
	case models.ProductKindResale:
		if !hasIngredient {
			return errors.New("a resale product requires linked_ingredient_id")
		}
	case models.ProductKindRecipe:
		if hasIngredient {
			return errors.New("a recipe product must not set linked_ingredient_id")
		}
	default:
		return errors.New("kind must be resale or recipe")
	}
	return nil
}
