package handler

import (
	"context"
	"errors"
	"testing"
	"time"

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

func seedBill(t *testing.T, db *gorm.DB, number string, farmerID int64, amount string, status models.PaymentStatus, created time.Time) {
	t.Helper()
	bill := models.Bill{
		BillNumber:    number,
		FarmerID:      farmerID,
		TotalAmount:   amount,
		FinalAmount:   amount,
		PaymentStatus: status,
		CreatedAt:     created,
	}
	if err := db.Create(&bill).Error; err != nil {
		t.Fatalf("create bill: %v", err)
	}
}

func TestSalesReportFiltersAndTotals(t *testing.T) {
	db := newTestDB(t)
	s := NewReportingHandler(db, nil)

	farmer := models.Farmer{Name: "Ramesh Patil"}
	if err := db.Create(&farmer).Error; err != nil {
		t.Fatalf("create farmer: %v", err)
	}

	seedBill(t, db, "FB-1", farmer.ID, "500.00", models.PaymentStatusPaid,
		time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC))
	seedBill(t, db, "FB-2", farmer.ID, "300.00", models.PaymentStatusPending,
		time.Date(2024, time.February, 10, 10, 0, 0, 0, time.UTC))
	seedBill(t, db, "FB-3", farmer.ID, "200.00", models.PaymentStatusPaid,
		time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))

	report, err := s.SalesReport(context.Background(), ReportQuery{
		DateFrom: "2024-01-01",
		DateTo:   "2024-02-28",
	})
	if err != nil {
		t.Fatalf("SalesReport: %v", err)
	}

	if report.TotalRevenue != "500.00" {
		t.Errorf("TotalRevenue = %s, want 500.00", report.TotalRevenue)
	}
	if report.BillCount != 2 {
		t.Errorf("BillCount = %d, want 2", report.BillCount)
	}
}

func TestSalesReportRejectsBadDates(t *testing.T) {
	db := newTestDB(t)
	s := NewReportingHandler(db, nil)

	_, err := s.SalesReport(context.Background(), ReportQuery{DateFrom: "15-01-2024"})
	if !errors.Is(err, utils.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	s := NewReportingHandler(db, nil)

	farmer := models.Farmer{Name: "Ramesh Patil"}
	if err := db.Create(&farmer).Error; err != nil {
		t.Fatalf("create farmer: %v", err)
	}
	account := models.CustomerAccount{FarmerID: farmer.ID, CurrentBalance: "750.00", InterestRate: "2.00"}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	product := models.Product{
		Name: "Urea", Type: models.ProductTypeFertilizer,
		PricePerUnit: "266.50", Unit: "bag",
		StockQuantity: 3, ReorderLevel: 5,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	seedBill(t, db, "FB-1", farmer.ID, "750.00", models.PaymentStatusPending, time.Now())

	pastDue := time.Now().AddDate(0, 0, -10)
	overdue := models.Bill{
		BillNumber:    "FB-2",
		FarmerID:      farmer.ID,
		TotalAmount:   "100.00",
		FinalAmount:   "100.00",
		PaymentStatus: models.PaymentStatusPartial,
		DueDate:       &pastDue,
	}
	if err := db.Create(&overdue).Error; err != nil {
		t.Fatalf("create overdue bill: %v", err)
	}

	stats, err := s.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	if stats.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d, want 1", stats.TotalProducts)
	}
	if stats.LowStockProducts != 1 {
		t.Errorf("LowStockProducts = %d, want 1", stats.LowStockProducts)
	}
	if stats.TotalFarmers != 1 {
		t.Errorf("TotalFarmers = %d, want 1", stats.TotalFarmers)
	}
	if stats.PendingBills != 2 {
		t.Errorf("PendingBills = %d, want 2", stats.PendingBills)
	}
	if stats.OverdueBills != 1 {
		t.Errorf("OverdueBills = %d, want 1", stats.OverdueBills)
	}
	if stats.TotalOutstanding != "750.00" {
		t.Errorf("TotalOutstanding = %s, want 750.00", stats.TotalOutstanding)
	}
	if stats.TotalRevenue != "0.00" {
		t.Errorf("TotalRevenue = %s, want 0.00 with no paid bills", stats.TotalRevenue)
	}
}

func TestDashboardStatsEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	s := NewReportingHandler(db, nil)

	stats, err := s.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalProducts != 0 || stats.TotalFarmers != 0 || stats.PendingBills != 0 {
		t.Errorf("expected zero counters, got %+v", stats)
	}
	if stats.TotalOutstanding != "0.00" {
		t.Errorf("TotalOutstanding = %s, want 0.00", stats.TotalOutstanding)
	}
}
