package handler

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmagro-system/internal/database"
	"farmagro-system/internal/database/models"
	"farmagro-system/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateProductNormalizesPrice(t *testing.T) {
	db := newTestDB(t)
	s := NewInventoryHandler(db, nil)

	product, err := s.CreateProduct(context.Background(), CreateProductRequest{
		Name:         "Urea",
		Type:         "fertilizer",
		PricePerUnit: "266.5",
		Unit:         "bag",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.PricePerUnit != "266.50" {
		t.Errorf("PricePerUnit = %s, want 266.50", product.PricePerUnit)
	}
}

func TestCreateProductRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	s := NewInventoryHandler(db, nil)

	_, err := s.CreateProduct(context.Background(), CreateProductRequest{
		Name:         "Mystery",
		Type:         "herbicide",
		PricePerUnit: "10.00",
		Unit:         "bottle",
	})
	if !errors.Is(err, utils.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestListLowStockBoundary(t *testing.T) {
	db := newTestDB(t)
	s := NewInventoryHandler(db, nil)

	seed := []models.Product{
		{Name: "At level", Type: models.ProductTypeFertilizer, PricePerUnit: "10.00", Unit: "bag", StockQuantity: 5, ReorderLevel: 5},
		{Name: "Below level", Type: models.ProductTypePesticide, PricePerUnit: "10.00", Unit: "bottle", StockQuantity: 2, ReorderLevel: 5},
		{Name: "Above level", Type: models.ProductTypeInsecticide, PricePerUnit: "10.00", Unit: "bottle", StockQuantity: 9, ReorderLevel: 5},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	products, err := s.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}
	// Products at exactly the reorder level count as low.
	names := map[string]bool{}
	for _, p := range products {
		names[p.Name] = true
	}
	if !names["At level"] || !names["Below level"] {
		t.Errorf("unexpected low-stock set: %v", names)
	}
}

func TestAdjustStock(t *testing.T) {
	db := newTestDB(t)
	s := NewInventoryHandler(db, nil)

	product := models.Product{
		Name:          "DAP",
		Type:          models.ProductTypeFertilizer,
		PricePerUnit:  "1350.00",
		Unit:          "bag",
		StockQuantity: 10,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	ctx := context.Background()

	updated, err := s.AdjustStock(ctx, product.ID, AdjustStockRequest{Delta: -4, Reason: "damaged bags"})
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if updated.StockQuantity != 6 {
		t.Errorf("StockQuantity = %d, want 6", updated.StockQuantity)
	}

	if _, err := s.AdjustStock(ctx, product.ID, AdjustStockRequest{Delta: -7}); !errors.Is(err, utils.ErrValidation) {
		t.Errorf("below zero: err = %v, want ErrValidation", err)
	}

	// Rejected adjustment leaves the stored quantity alone.
	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if reloaded.StockQuantity != 6 {
		t.Errorf("StockQuantity = %d after rejected adjustment, want 6", reloaded.StockQuantity)
	}
}

func TestUpdateProductPatchesOnlyGivenFields(t *testing.T) {
	db := newTestDB(t)
	s := NewInventoryHandler(db, nil)

	brand := "IFFCO"
	product, err := s.CreateProduct(context.Background(), CreateProductRequest{
		Name:         "Urea",
		Type:         "fertilizer",
		Brand:        &brand,
		PricePerUnit: "266.50",
		Unit:         "bag",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	newPrice := "280.00"
	updated, err := s.UpdateProduct(context.Background(), product.ID, UpdateProductRequest{
		PricePerUnit: &newPrice,
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.PricePerUnit != "280.00" {
		t.Errorf("PricePerUnit = %s, want 280.00", updated.PricePerUnit)
	}
	if updated.Name != "Urea" || updated.Brand == nil || *updated.Brand != "IFFCO" {
		t.Errorf("untouched fields changed: name=%s brand=%v", updated.Name, updated.Brand)
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	db := newTestDB(t)
	s := NewInventoryHandler(db, nil)

	if err := s.DeleteProduct(context.Background(), 42); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
