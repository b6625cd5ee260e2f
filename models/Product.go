package models

import (
	"gorm.io/gorm"
)

// Product kinds. A resale product sells exactly one unit of a linked
// ingredient; a recipe product is composed of RecipeItem rows.
const (
	ProductKindResale = "resale"
	ProductKindRecipe = "recipe"
)

type Product struct {
	gorm.Model
	Name          string  `gorm:"not null" json:"name"`
	Category      string  `json:"category"`
	Kind          string  `gorm:"not null;default:recipe" json:"kind"`
	DineInPrice   float64 `json:"dine_in_price"`
	DeliveryPrice float64 `json:"delivery_price"`

	// Set only when Kind is resale; recipe products carry Items instead.
	LinkedIngredientID *uint       `json:"linked_ingredient_id,omitempty"`
	LinkedIngredient   *Ingredient `gorm:"foreignKey:LinkedIngredientID" json:"linked_ingredient,omitempty"`

	Items []RecipeItem `gorm:"foreignKey:ProductID" json:"items,omitempty"`
}
