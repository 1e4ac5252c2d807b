package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
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

// decimalEqual compares monetary strings numerically: values re-read from the
// sqlite test database lose trailing zeros to NUMERIC column affinity.
func decimalEqual(got, want string) bool {
	g, gErr := decimal.NewFromString(got)
	w, wErr := decimal.NewFromString(want)
	return gErr == nil && wErr == nil && g.Equal(w)
}

func seedFarmerAndProduct(t *testing.T, db *gorm.DB) (models.Farmer, models.Product) {
	t.Helper()
	farmer := models.Farmer{Name: "Ramesh Patil"}
	if err := db.Create(&farmer).Error; err != nil {
		t.Fatalf("create farmer: %v", err)
	}
	product := models.Product{
		Name:          "Urea",
		Type:          models.ProductTypeFertilizer,
		PricePerUnit:  "266.50",
		Unit:          "bag",
		StockQuantity: 40,
		ReorderLevel:  10,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return farmer, product
}

func TestCreateBillRecomputesTotals(t *testing.T) {
	db := newTestDB(t)
	s := NewBillingHandler(db, nil)
	farmer, product := seedFarmerAndProduct(t, db)

	bill, err := s.CreateBill(context.Background(), CreateBillRequest{
		BillNumber:     "FB-2024-0001",
		FarmerID:       farmer.ID,
		DiscountAmount: "33.00",
		Items: []CreateBillItemRequest{
			{ProductID: product.ID, Quantity: 3, UnitPrice: "266.50"},
			{ProductID: product.ID, Quantity: 1, UnitPrice: "120.00"},
		},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	if bill.TotalAmount != "919.50" {
		t.Errorf("TotalAmount = %s, want 919.50", bill.TotalAmount)
	}
	if bill.FinalAmount != "886.50" {
		t.Errorf("FinalAmount = %s, want 886.50", bill.FinalAmount)
	}
	if bill.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("PaymentStatus = %s, want pending", bill.PaymentStatus)
	}

	var items []models.BillItem
	if err := db.Where("bill_id = ?", bill.ID).Order("id").Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if !decimalEqual(items[0].TotalPrice, "799.50") {
		t.Errorf("items[0].TotalPrice = %s, want 799.50", items[0].TotalPrice)
	}
}

func TestCreateBillDoesNotTouchStock(t *testing.T) {
	db := newTestDB(t)
	s := NewBillingHandler(db, nil)
	farmer, product := seedFarmerAndProduct(t, db)

	_, err := s.CreateBill(context.Background(), CreateBillRequest{
		BillNumber: "FB-2024-0002",
		FarmerID:   farmer.ID,
		Items: []CreateBillItemRequest{
			{ProductID: product.ID, Quantity: 5, UnitPrice: "266.50"},
		},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if reloaded.StockQuantity != 40 {
		t.Errorf("StockQuantity = %d, want 40 (billing never moves stock)", reloaded.StockQuantity)
	}
}

func TestCreateBillRejectsExcessDiscount(t *testing.T) {
	db := newTestDB(t)
	s := NewBillingHandler(db, nil)
	farmer, product := seedFarmerAndProduct(t, db)

	_, err := s.CreateBill(context.Background(), CreateBillRequest{
		BillNumber:     "FB-2024-0003",
		FarmerID:       farmer.ID,
		DiscountAmount: "500.00",
		Items: []CreateBillItemRequest{
			{ProductID: product.ID, Quantity: 1, UnitPrice: "100.00"},
		},
	})
	if !errors.Is(err, utils.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCreateBillUnknownFarmer(t *testing.T) {
	db := newTestDB(t)
	s := NewBillingHandler(db, nil)
	_, product := seedFarmerAndProduct(t, db)

	_, err := s.CreateBill(context.Background(), CreateBillRequest{
		BillNumber: "FB-2024-0004",
		FarmerID:   999,
		Items: []CreateBillItemRequest{
			{ProductID: product.ID, Quantity: 1, UnitPrice: "100.00"},
		},
	})
	if !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListPendingBillsIncludesPartial(t *testing.T) {
	db := newTestDB(t)
	s := NewBillingHandler(db, nil)
	farmer, _ := seedFarmerAndProduct(t, db)

	for i, status := range []models.PaymentStatus{
		models.PaymentStatusPending,
		models.PaymentStatusPartial,
		models.PaymentStatusPaid,
	} {
		bill := models.Bill{
			BillNumber:    "FB-2024-010" + string(rune('0'+i)),
			FarmerID:      farmer.ID,
			TotalAmount:   "100.00",
			FinalAmount:   "100.00",
			PaymentStatus: status,
		}
		if err := db.Create(&bill).Error; err != nil {
			t.Fatalf("create bill: %v", err)
		}
	}

	bills, err := s.ListPendingBills(context.Background())
	if err != nil {
		t.Fatalf("ListPendingBills: %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("len(bills) = %d, want 2", len(bills))
	}
	for _, bill := range bills {
		if bill.PaymentStatus == models.PaymentStatusPaid {
			t.Errorf("paid bill %s in pending list", bill.BillNumber)
		}
	}
}

func TestUpdateBillStatusValidatesEnum(t *testing.T) {
	db := newTestDB(t)
	s := NewBillingHandler(db, nil)
	farmer, _ := seedFarmerAndProduct(t, db)

	bill := models.Bill{
		BillNumber:    "FB-2024-0200",
		FarmerID:      farmer.ID,
		TotalAmount:   "100.00",
		FinalAmount:   "100.00",
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := db.Create(&bill).Error; err != nil {
		t.Fatalf("create bill: %v", err)
	}

	updated, err := s.UpdateBillStatus(context.Background(), bill.ID, "paid")
	if err != nil {
		t.Fatalf("UpdateBillStatus: %v", err)
	}
	if updated.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("PaymentStatus = %s, want paid", updated.PaymentStatus)
	}

	if _, err := s.UpdateBillStatus(context.Background(), bill.ID, "settled"); !errors.Is(err, utils.ErrValidation) {
		t.Errorf("unknown status: err = %v, want ErrValidation", err)
	}
}
