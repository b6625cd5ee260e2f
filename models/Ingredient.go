package models

import (
	"gorm.io/gorm"
)

// Ingredient is a purchasable raw material. PricePerUnit is the amount
// charged for exactly one Unit, where Unit is one of the supported metric
// symbols (kg, g, lt, ml).
type Ingredient struct {
	gorm.Model
	Name         string  `gorm:"uniqueIndex;not null" json:"name"`
	Category     string  `json:"category"`
	Unit         string  `gorm:"not null" json:"unit"`
	PricePerUnit float64 `gorm:"not null" json:"price_per_unit"`
}
