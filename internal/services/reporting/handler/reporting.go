package handler

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"farmagro-system/internal/database/models"
	"farmagro-system/internal/services/reporting"
	"farmagro-system/internal/utils"
)

const (
	DASHBOARD_CACHE_KEY = "reports:dashboard"
	CACHE_TTL_SHORT     = 5 * time.Minute
)

type ReportingHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewReportingHandler(db *gorm.DB, redisClient *redis.Client) *ReportingHandler {
	return &ReportingHandler{db: db, redis: redisClient}
}

type ReportQuery struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status"`
}

type SalesReportResponse struct {
	reporting.Report
	ProductCount int64 `json:"product_count"`
	FarmerCount  int64 `json:"farmer_count"`
}

// SalesReport loads the bill history newest first and folds it into a report.
func (s *ReportingHandler) SalesReport(ctx context.Context, query ReportQuery) (*SalesReportResponse, error) {
	filter := reporting.Filter{Status: query.Status}
	if query.DateFrom != "" {
		t, err := time.Parse("2006-01-02", query.DateFrom)
		if err != nil {
			return nil, utils.ValidationErrorf("invalid date_from format, expected YYYY-MM-DD: %s", query.DateFrom)
		}
		filter.DateFrom = &t
	}
	if query.DateTo != "" {
		t, err := time.Parse("2006-01-02", query.DateTo)
		if err != nil {
			return nil, utils.ValidationErrorf("invalid date_to format, expected YYYY-MM-DD: %s", query.DateTo)
		}
		filter.DateTo = &t
	}

	var bills []models.Bill
	if err := s.db.WithContext(ctx).
		Preload("Farmer").
		Preload("BillItems").
		Preload("BillItems.Product").
		Order("created_at DESC").
		Find(&bills).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	resp := SalesReportResponse{Report: reporting.Aggregate(bills, filter)}
	s.db.WithContext(ctx).Model(&models.Product{}).Count(&resp.ProductCount)
	s.db.WithContext(ctx).Model(&models.Farmer{}).Count(&resp.FarmerCount)
	return &resp, nil
}

type DashboardStats struct {
	TotalProducts    int64  `json:"total_products"`
	LowStockProducts int64  `json:"low_stock_products"`
	TotalFarmers     int64  `json:"total_farmers"`
	PendingBills     int64  `json:"pending_bills"`
	OverdueBills     int64  `json:"overdue_bills"`
	TotalRevenue     string `json:"total_revenue"`
	TotalOutstanding string `json:"total_outstanding"`
	PaymentsReceived string `json:"payments_received"`
}

// DashboardStats gathers the landing-page counters as pure reductions over
// a fresh snapshot. Individual read failures are logged and leave that
// counter at zero instead of failing the whole response.
func (s *ReportingHandler) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, DASHBOARD_CACHE_KEY).Result(); err == nil {
			var stats DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats := DashboardStats{
		TotalRevenue:     "0.00",
		TotalOutstanding: "0.00",
		PaymentsReceived: "0.00",
	}

	s.db.WithContext(ctx).Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.WithContext(ctx).Model(&models.Product{}).
		Where("stock_quantity <= reorder_level").
		Count(&stats.LowStockProducts)
	s.db.WithContext(ctx).Model(&models.Farmer{}).Count(&stats.TotalFarmers)
	s.db.WithContext(ctx).Model(&models.Bill{}).
		Where("payment_status IN ?", []string{"pending", "partial"}).
		Count(&stats.PendingBills)
	s.db.WithContext(ctx).Model(&models.Bill{}).
		Where("due_date < ? AND payment_status <> ?", time.Now(), models.PaymentStatusPaid).
		Count(&stats.OverdueBills)

	var bills []models.Bill
	if err := s.db.WithContext(ctx).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Find(&bills).Error; err != nil {
		log.Printf("dashboard: bill fetch failed: %v", err)
	} else {
		revenue := decimal.Zero
		for _, bill := range bills {
			if amount, err := decimal.NewFromString(bill.FinalAmount); err == nil {
				revenue = revenue.Add(amount)
			}
		}
		stats.TotalRevenue = revenue.StringFixed(2)
	}

	var accounts []models.CustomerAccount
	if err := s.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		log.Printf("dashboard: account fetch failed: %v", err)
	} else {
		outstanding := decimal.Zero
		for _, account := range accounts {
			if balance, err := decimal.NewFromString(account.CurrentBalance); err == nil {
				outstanding = outstanding.Add(balance)
			}
		}
		stats.TotalOutstanding = outstanding.StringFixed(2)
	}

	var payments []models.Payment
	if err := s.db.WithContext(ctx).Find(&payments).Error; err != nil {
		log.Printf("dashboard: payment fetch failed: %v", err)
	} else {
		received := decimal.Zero
		for _, payment := range payments {
			if amount, err := decimal.NewFromString(payment.AmountPaid); err == nil {
				received = received.Add(amount)
			}
		}
		stats.PaymentsReceived = received.StringFixed(2)
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			s.redis.Set(ctx, DASHBOARD_CACHE_KEY, data, CACHE_TTL_SHORT)
		}
	}

	return &stats, nil
}
