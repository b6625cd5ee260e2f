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
	"menucost/internal/units"
	"menucost/models"
)

type recipeItemRequest struct {
	ProductID    uint    `json:"product_id"`
	SortOrder    int     `json:"sort_order"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	IngredientID *uint   `json:"ingredient_id"`
	SubProductID *uint   `json:"sub_product_id"`
}

type itemIngredientSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type itemProductSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type recipeItemResponse struct {
	ID           uint                   `json:"id"`
	ProductID    uint                   `json:"product_id"`
	SortOrder    int                    `json:"sort_order"`
	Quantity     float64                `json:"quantity"`
	Unit         string                 `json:"unit"`
	IngredientID *uint                  `json:"ingredient_id,omitempty"`
	SubProductID *uint                  `json:"sub_product_id,omitempty"`
	Ingredient   *itemIngredientSummary `json:"ingredient,omitempty"`
	SubProduct   *itemProductSummary    `json:"sub_product,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// RecipeItemResource handles CRUD interactions for recipe composition rows.
func RecipeItemResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe item request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/recipe-items")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipeItems(w, r)
		case http.MethodPost:
			createRecipeItem(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe item identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	itemID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipeItem(w, r, itemID)
	case http.MethodPut:
		updateRecipeItem(w, r, itemID)
	case http.MethodDelete:
		deleteRecipeItem(w, r, itemID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipeItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.RecipeItem

	query := database.WithContext(ctx).
		Preload("Ingredient").
		Preload("SubProduct").
		Order("product_id asc, sort_order asc, id asc")

	if productParam := strings.TrimSpace(r.URL.Query().Get("product_id")); productParam != "" {
		if idValue, err := strconv.ParseUint(productParam, 10, 64); err == nil {
			query = query.Where("product_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipe items", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe items")
		return
	}

	responses := make([]recipeItemResponse, 0, len(results))
	for _, item := range results {
		responses = append(responses, projectRecipeItem(item))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showRecipeItem(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	var item models.RecipeItem
	if err := database.WithContext(ctx).
		Preload("Ingredient").
		Preload("SubProduct").
		First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeItem(item))
}

func createRecipeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe item create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRecipeItemPayload(payload); err != nil {
		applog.Debug(ctx, "recipe item validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := models.RecipeItem{
		ProductID:    payload.ProductID,
		SortOrder:    payload.SortOrder,
		Quantity:     payload.Quantity,
		Unit:         units.Normalize(payload.Unit),
		IngredientID: payload.IngredientID,
		SubProductID: payload.SubProductID,
	}

	if err := database.WithContext(ctx).Create(&item).Error; err != nil {
		applog.Error(ctx, "failed to create recipe item", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create recipe item")
		return
	}

	if err := database.WithContext(ctx).
		Preload("Ingredient").
		Preload("SubProduct").
		First(&item, item.ID).Error; err != nil {
		applog.Error(ctx, "failed to reload created recipe item", "error", err, "id", item.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipeItem(item))
}

func updateRecipeItem(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	var existing models.RecipeItem
	if err := database.WithContext(ctx).First(&existing, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe item for update", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}

	var payload recipeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe item update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRecipeItemPayload(payload); err != nil {
		applog.Debug(ctx, "recipe item update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"product_id":     payload.ProductID,
		"sort_order":     payload.SortOrder,
		"quantity":       payload.Quantity,
		"unit":           units.Normalize(payload.Unit),
		"ingredient_id":  payload.IngredientID,
		"sub_product_id": payload.SubProductID,
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusBadRequest, "unable to update recipe item")
		return
	}

	if err := database.WithContext(ctx).
		Preload("Ingredient").
		Preload("SubProduct").
		First(&existing, itemID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeItem(existing))
}

func deleteRecipeItem(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	if err := database.WithContext(ctx).Delete(&models.RecipeItem{}, itemID).Error; err != nil {
		applog.Error(ctx, "failed to delete recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectRecipeItem(item models.RecipeItem) recipeItemResponse {
	response := recipeItemResponse{
		ID:           item.ID,
		ProductID:    item.ProductID,
		SortOrder:    item.SortOrder,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		IngredientID: item.IngredientID,
		SubProductID: item.SubProductID,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}

	if item.Ingredient != nil {
		response.Ingredient = &itemIngredientSummary{
			ID:   item.Ingredient.ID,
			Name: strings.TrimSpace(item.Ingredient.Name),
			Unit: item.Ingredient.Unit,
		}
	}

	if item.SubProduct != nil {
		response.SubProduct = &itemProductSummary{
			ID:   item.SubProduct.ID,
			Name: strings.TrimSpace(item.SubProduct.Name),
			Kind: item.SubProduct.Kind,
		}
	}

	return response
}

func validateRecipeItemPayload(payload recipeItemRequest) error {
	if payload.ProductID == 0 {
		return errors.New("product_id is required")
	}
	if payload.Quantity <= 0 {
		return errors.New("quantity must be greater than zero")
	}

	hasIngredient := payload.IngredientID != nil && *payload.IngredientID != 0
	hasSubProduct := payload.SubProductID != nil && *payload.SubProductID != 0

	if hasIngredient && hasSubProduct {
		return errors.New("only one of ingredient_id or sub_product_id may be set")
	}
	if !hasIngredient && !hasSubProduct {
		return errors.New("either ingredient_id or sub_product_id must be provided")
	}

	if hasIngredient && strings.TrimSpace(payload.Unit) == "" {
		return errors.New("unit is required for ingredient rows")
	}
	return nil
}
