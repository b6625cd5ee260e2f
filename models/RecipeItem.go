package models

import (
	"gorm.io/gorm"
)

// RecipeItem is one composition row of a recipe product. Quantity is read in
// Unit when the row references an ingredient; when it references a
// sub-product it is a dimensionless multiplier (how many units of that
// product go into one unit of the parent) and Unit is ignored.
//
// Nothing in the schema stops the sub-product edges from forming a cycle;
// the costing engine has to tolerate that.
type RecipeItem struct {
	gorm.Model
	ProductID uint    `gorm:"not null;index" json:"product_id"` // Parent Product
	SortOrder int     `json:"sort_order"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
	Unit      string  `json:"unit"`

	// --- Line link ---
	// One of these will be non-null, the other will be null.
	IngredientID *uint `json:"ingredient_id,omitempty"`
	SubProductID *uint `json:"sub_product_id,omitempty"`

	// --- Preloadable data ---
	// Pointers so the referenced record can be absent.
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	SubProduct *Product    `gorm:"foreignKey:SubProductID" json:"sub_product,omitempty"`
}
