package handlers

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"menucost/models"
)

// setupTestDatabase opens a fresh in-memory catalogue and wires it into the
// handler package for the duration of one test.
func setupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Product{},
		&models.RecipeItem{},
	); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	Configure(db)
	t.Cleanup(func() {
		Configure(nil)
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string, price float64) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, Unit: unit, PricePerUnit: price}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("seed ingredient %q: %v", name, err)
	}
	return ingredient
}

func seedProduct(t *testing.T, db *gorm.DB, name, kind string, linkedIngredientID *uint) models.Product {
	t.Helper()
	product := models.Product{Name: name, Kind: kind, LinkedIngredientID: linkedIngredientID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product %q: %v", name, err)
	}
	return product
}

func seedIngredientRow(t *testing.T, db *gorm.DB, productID, ingredientID uint, quantity float64, unit string) models.RecipeItem {
	t.Helper()
	row := models.RecipeItem{ProductID: productID, Quantity: quantity, Unit: unit, IngredientID: &ingredientID}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed ingredient row: %v", err)
	}
	return row
}

func seedSubProductRow(t *testing.T, db *gorm.DB, productID, subProductID uint, multiplier float64) models.RecipeItem {
	t.Helper()
	row := models.RecipeItem{ProductID: productID, Quantity: multiplier, SubProductID: &subProductID}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed sub-product row: %v", err)
	}
	return row
}
