package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"farmagro-system/internal/database/models"
	"farmagro-system/internal/services/events"
	reporting "farmagro-system/internal/services/reporting/handler"
	"farmagro-system/internal/utils"
)

const (
	PENDING_BILLS_CACHE_KEY = "billing:pending"
	CACHE_TTL_SHORT         = 5 * time.Minute
)

type BillingHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	events *events.Publisher
}

func NewBillingHandler(db *gorm.DB, redisClient *redis.Client) *BillingHandler {
	return &BillingHandler{
		db:     db,
		redis:  redisClient,
		events: events.NewPublisher(redisClient),
	}
}

func (s *BillingHandler) invalidateBillCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	// Bill writes feed revenue and overdue counters on the dashboard.
	_ = s.redis.Del(ctx, PENDING_BILLS_CACHE_KEY, reporting.DASHBOARD_CACHE_KEY)
}

type CreateBillItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,min=1"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type CreateBillRequest struct {
	BillNumber     string                  `json:"bill_number" binding:"required"`
	FarmerID       int64                   `json:"farmer_id" binding:"required"`
	DiscountAmount string                  `json:"discount_amount"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	Items          []CreateBillItemRequest `json:"items" binding:"required,min=1"`
}

type ListBillsQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
	Status   *string `form:"status,omitempty"`
	FarmerID *int64  `form:"farmer_id,omitempty"`
}

// CreateBill writes the bill and its items in one transaction. Line totals
// and the bill totals are always recomputed here, never taken from the
// request, so the stored arithmetic cannot drift.
func (s *BillingHandler) CreateBill(ctx context.Context, req CreateBillRequest) (*models.Bill, error) {
	discount := decimal.Zero
	if req.DiscountAmount != "" {
		var err error
		discount, err = decimal.NewFromString(req.DiscountAmount)
		if err != nil {
			return nil, utils.ValidationErrorf("invalid discount_amount format: %s", req.DiscountAmount)
		}
		if discount.IsNegative() {
			return nil, utils.ValidationErrorf("discount_amount must not be negative")
		}
	}

	var farmer models.Farmer
	if err := s.db.WithContext(ctx).First(&farmer, req.FarmerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("farmer %d", req.FarmerID)
		}
		return nil, utils.StoreError(err)
	}

	total := decimal.Zero
	items := make([]models.BillItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, utils.ValidationErrorf("quantity must be greater than 0")
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, utils.ValidationErrorf("invalid unit_price format: %s", item.UnitPrice)
		}
		if unitPrice.IsNegative() {
			return nil, utils.ValidationErrorf("unit_price must not be negative")
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		total = total.Add(lineTotal)

		items = append(items, models.BillItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice.StringFixed(2),
			TotalPrice: lineTotal.StringFixed(2),
		})
	}

	finalAmount := total.Sub(discount)
	if finalAmount.IsNegative() {
		return nil, utils.ValidationErrorf("discount %s exceeds bill total %s",
			discount.StringFixed(2), total.StringFixed(2))
	}

	bill := models.Bill{
		BillNumber:     req.BillNumber,
		FarmerID:       req.FarmerID,
		TotalAmount:    total.StringFixed(2),
		DiscountAmount: discount.StringFixed(2),
		FinalAmount:    finalAmount.StringFixed(2),
		PaymentStatus:  models.PaymentStatusPending,
		DueDate:        req.DueDate,
		BillItems:      items,
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Create cascades into BillItems through the association.
	if err := tx.Create(&bill).Error; err != nil {
		tx.Rollback()
		return nil, utils.StoreError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateBillCaches(ctx)
	s.events.Publish(ctx, events.TableBills, events.ActionInsert, bill.ID)

	bill.Farmer = &farmer
	return &bill, nil
}

func (s *BillingHandler) GetBill(ctx context.Context, id int64) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.WithContext(ctx).
		Preload("Farmer").
		Preload("BillItems.Product").
		First(&bill, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("bill %d", id)
		}
		return nil, utils.StoreError(err)
	}
	return &bill, nil
}

func (s *BillingHandler) ListBills(ctx context.Context, q ListBillsQuery) ([]models.Bill, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Bill{})
	if q.Status != nil {
		status := models.PaymentStatus(*q.Status)
		if !status.IsValid() {
			return nil, 0, utils.ValidationErrorf("unknown payment status: %s", *q.Status)
		}
		query = query.Where("payment_status = ?", status)
	}
	if q.FarmerID != nil {
		query = query.Where("farmer_id = ?", *q.FarmerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.StoreError(err)
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	var bills []models.Bill
	if err := query.
		Preload("Farmer").
		Preload("BillItems.Product").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&bills).Error; err != nil {
		return nil, 0, utils.StoreError(err)
	}

	return bills, total, nil
}

// ListPendingBills returns open bills (pending or partial), newest first.
func (s *BillingHandler) ListPendingBills(ctx context.Context) ([]models.Bill, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, PENDING_BILLS_CACHE_KEY).Result(); err == nil {
			var bills []models.Bill
			if json.Unmarshal([]byte(cached), &bills) == nil {
				return bills, nil
			}
		}
	}

	var bills []models.Bill
	if err := s.db.WithContext(ctx).
		Preload("Farmer").
		Where("payment_status IN ?", []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusPartial}).
		Order("created_at DESC").
		Find(&bills).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(bills); err == nil {
			_ = s.redis.Set(ctx, PENDING_BILLS_CACHE_KEY, data, CACHE_TTL_SHORT)
		}
	}
	return bills, nil
}

func (s *BillingHandler) UpdateBillStatus(ctx context.Context, id int64, status string) (*models.Bill, error) {
	paymentStatus := models.PaymentStatus(status)
	if !paymentStatus.IsValid() {
		return nil, utils.ValidationErrorf("unknown payment status: %s", status)
	}

	var bill models.Bill
	if err := s.db.WithContext(ctx).First(&bill, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("bill %d", id)
		}
		return nil, utils.StoreError(err)
	}

	bill.PaymentStatus = paymentStatus
	if err := s.db.WithContext(ctx).Save(&bill).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateBillCaches(ctx)
	s.events.Publish(ctx, events.TableBills, events.ActionUpdate, bill.ID)

	return &bill, nil
}
