package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "menucost/internal/log"
	"menucost/internal/units"
	"menucost/models"
)

// New returns an in-memory sqlite database seeded with a representative
// restaurant catalogue, including a nested sub-recipe and a resale product.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:menucost-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Product{},
		&models.RecipeItem{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock catalogue")

	ingredients := []*models.Ingredient{
		{Name: "Flour", Category: "Pantry", Unit: units.Kilogram, PricePerUnit: 1.20},
		{Name: "Whole Milk", Category: "Dairy", Unit: units.Liter, PricePerUnit: 0.90},
		{Name: "Mozzarella", Category: "Dairy", Unit: units.Kilogram, PricePerUnit: 7.80},
		{Name: "Tomato Sauce", Category: "Pantry", Unit: units.Liter, PricePerUnit: 3.40},
		{Name: "Olive Oil", Category: "Pantry", Unit: units.Liter, PricePerUnit: 6.50},
		{Name: "Espresso Beans", Category: "Coffee", Unit: units.Kilogram, PricePerUnit: 18.00},
		{Name: "Sparkling Water", Category: "Beverages", Unit: units.Liter, PricePerUnit: 1.10},
	}
	for _, ingredient := range ingredients {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}
	flour, milk, mozzarella, sauce, oil, espresso, water :=
		ingredients[0], ingredients[1], ingredients[2], ingredients[3], ingredients[4], ingredients[5], ingredients[6]

	dough := &models.Product{
		Name: "Pizza Dough", Category: "Components", Kind: models.ProductKindRecipe,
	}
	margherita := &models.Product{
		Name: "Pizza Margherita", Category: "Mains", Kind: models.ProductKindRecipe,
		DineInPrice: 9.50, DeliveryPrice: 11.00,
	}
	latte := &models.Product{
		Name: "Caffe Latte", Category: "Coffee", Kind: models.ProductKindRecipe,
		DineInPrice: 3.20, DeliveryPrice: 3.80,
	}
	bottledWater := &models.Product{
		Name: "Sparkling Water 500ml", Category: "Beverages", Kind: models.ProductKindResale,
		DineInPrice: 2.50, DeliveryPrice: 2.90,
		LinkedIngredientID: &water.ID,
	}
	for _, product := range []*models.Product{dough, margherita, latte, bottledWater} {
		if err := db.WithContext(ctx).Create(product).Error; err != nil {
			return err
		}
	}

	rows := []*models.RecipeItem{
		{ProductID: dough.ID, SortOrder: 1, Quantity: 250, Unit: units.Gram, IngredientID: &flour.ID},
		{ProductID: dough.ID, SortOrder: 2, Quantity: 10, Unit: units.Milliliter, IngredientID: &oil.ID},

		{ProductID: margherita.ID, SortOrder: 1, Quantity: 1, SubProductID: &dough.ID},
		{ProductID: margherita.ID, SortOrder: 2, Quantity: 100, Unit: units.Milliliter, IngredientID: &sauce.ID},
		{ProductID: margherita.ID, SortOrder: 3, Quantity: 120, Unit: units.Gram, IngredientID: &mozzarella.ID},

		{ProductID: latte.ID, SortOrder: 1, Quantity: 18, Unit: units.Gram, IngredientID: &espresso.ID},
		{ProductID: latte.ID, SortOrder: 2, Quantity: 0.18, Unit: units.Liter, IngredientID: &milk.ID},
	}
	for _, row := range rows {
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}

	return nil
}
