package handler

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"farmagro-system/internal/database/models"
	"farmagro-system/internal/services/events"
	reporting "farmagro-system/internal/services/reporting/handler"
	"farmagro-system/internal/utils"
)

type LedgerHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	events *events.Publisher
}

func NewLedgerHandler(db *gorm.DB, redisClient *redis.Client) *LedgerHandler {
	return &LedgerHandler{
		db:     db,
		redis:  redisClient,
		events: events.NewPublisher(redisClient),
	}
}

// Ledger writes move balances and payment totals shown on the dashboard.
func (s *LedgerHandler) invalidateDashboardCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, reporting.DASHBOARD_CACHE_KEY)
}
// AccrualResult reports one AccrueInterest call. Applied is false when the
// balance was not positive; that outcome is informational, not an error.
type AccrualResult struct {
	Applied        bool                    `json:"applied"`
	Message        string                  `json:"message"`
	InterestAmount string                  `json:"interest_amount,omitempty"`
	Account        *models.CustomerAccount `json:"account,omitempty"`
	Charge         *models.InterestCharge  `json:"charge,omitempty"`
}

// AccrueInterest adds one month of simple interest to a positive balance:
// interest = balance * rate / 100. The InterestCharge append and the balance
// update commit together or not at all.
func (s *LedgerHandler) AccrueInterest(ctx context.Context, farmerID int64) (*AccrualResult, error) {
	var account models.CustomerAccount
	if err := s.db.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("customer account for farmer %d", farmerID)
		}
		return nil, utils.StoreError(err)
	}

	balance, err := decimal.NewFromString(account.CurrentBalance)
	if err != nil {
		return nil, utils.StoreError(err)
	}

	if balance.LessThanOrEqual(decimal.Zero) {
		return &AccrualResult{
			Applied: false,
			Message: "No outstanding balance for interest calculation",
			Account: &account,
		}, nil
	}

	rate, err := decimal.NewFromString(account.InterestRate)
	if err != nil {
		return nil, utils.StoreError(err)
	}

	interestAmount := balance.Mul(rate).Div(decimal.NewFromInt(100))
	newBalance := balance.Add(interestAmount)

	charge := models.InterestCharge{
		FarmerID:        farmerID,
		PrincipalAmount: balance.StringFixed(2),
		InterestAmount:  interestAmount.StringFixed(2),
		InterestRate:    account.InterestRate,
		ChargeDate:      time.Now(),
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&charge).Error; err != nil {
		tx.Rollback()
		return nil, utils.StoreError(err)
	}

	account.CurrentBalance = newBalance.StringFixed(2)
	account.UpdatedAt = time.Now()
	if err := tx.Save(&account).Error; err != nil {
		tx.Rollback()
		return nil, utils.StoreError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateDashboardCache(ctx)
	s.events.Publish(ctx, events.TableInterestCharges, events.ActionInsert, charge.ID)
	s.events.Publish(ctx, events.TableAccounts, events.ActionUpdate, account.ID)

	return &AccrualResult{
		Applied:        true,
		Message:        "Interest calculated and added",
		InterestAmount: interestAmount.StringFixed(2),
		Account:        &account,
		Charge:         &charge,
	}, nil
}

type RecordPaymentRequest struct {
	FarmerID      int64   `json:"farmer_id" binding:"required"`
	BillID        *int64  `json:"bill_id,omitempty"`
	AmountPaid    string  `json:"amount_paid" binding:"required"`
	PaymentMethod string  `json:"payment_method"`
	Notes         *string `json:"notes,omitempty"`
}

// RecordPayment appends a payment row. It does not change the customer
// balance or the bill status; receipts are entered and reviewed separately.
func (s *LedgerHandler) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*models.Payment, error) {
	amount, err := decimal.NewFromString(req.AmountPaid)
	if err != nil {
		return nil, utils.ValidationErrorf("invalid amount_paid format: %s", req.AmountPaid)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ValidationErrorf("amount_paid must be greater than 0")
	}

	var farmer models.Farmer
	if err := s.db.WithContext(ctx).First(&farmer, req.FarmerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("farmer %d", req.FarmerID)
		}
		return nil, utils.StoreError(err)
	}

	if req.BillID != nil {
		var bill models.Bill
		if err := s.db.WithContext(ctx).First(&bill, *req.BillID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, utils.NotFoundErrorf("bill %d", *req.BillID)
			}
			return nil, utils.StoreError(err)
		}
		if bill.FarmerID != req.FarmerID {
			return nil, utils.ValidationErrorf("bill %d does not belong to farmer %d", *req.BillID, req.FarmerID)
		}
	}

	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}

	payment := models.Payment{
		BillID:        req.BillID,
		FarmerID:      req.FarmerID,
		AmountPaid:    amount.StringFixed(2),
		PaymentMethod: method,
		PaymentDate:   time.Now(),
		Notes:         req.Notes,
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateDashboardCache(ctx)
	s.events.Publish(ctx, events.TablePayments, events.ActionInsert, payment.ID)

	payment.Farmer = &farmer
	return &payment, nil
}

func (s *LedgerHandler) GetAccount(ctx context.Context, farmerID int64) (*models.CustomerAccount, error) {
	var account models.CustomerAccount
	if err := s.db.WithContext(ctx).
		Preload("Farmer").
		Where("farmer_id = ?", farmerID).
		First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("customer account for farmer %d", farmerID)
		}
		return nil, utils.StoreError(err)
	}
	return &account, nil
}

// ListAccounts returns all credit accounts, largest balance first, matching
// the outstanding-balances view.
func (s *LedgerHandler) ListAccounts(ctx context.Context) ([]models.CustomerAccount, error) {
	var accounts []models.CustomerAccount
	if err := s.db.WithContext(ctx).
		Preload("Farmer").
		Order("current_balance DESC").
		Find(&accounts).Error; err != nil {
		return nil, utils.StoreError(err)
	}
	return accounts, nil
}

type UpdateAccountTermsRequest struct {
	InterestRate     *string `json:"interest_rate,omitempty"`
	TotalCreditLimit *string `json:"total_credit_limit,omitempty"`
}

func (s *LedgerHandler) UpdateAccountTerms(ctx context.Context, farmerID int64, req UpdateAccountTermsRequest) (*models.CustomerAccount, error) {
	var account models.CustomerAccount
	if err := s.db.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("customer account for farmer %d", farmerID)
		}
		return nil, utils.StoreError(err)
	}

	if req.InterestRate != nil {
		rate, err := decimal.NewFromString(*req.InterestRate)
		if err != nil || rate.IsNegative() {
			return nil, utils.ValidationErrorf("invalid interest_rate: %s", *req.InterestRate)
		}
		account.InterestRate = rate.StringFixed(2)
	}
	if req.TotalCreditLimit != nil {
		limit, err := decimal.NewFromString(*req.TotalCreditLimit)
		if err != nil || limit.IsNegative() {
			return nil, utils.ValidationErrorf("invalid total_credit_limit: %s", *req.TotalCreditLimit)
		}
		account.TotalCreditLimit = limit.StringFixed(2)
	}

	if err := s.db.WithContext(ctx).Save(&account).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateDashboardCache(ctx)
	s.events.Publish(ctx, events.TableAccounts, events.ActionUpdate, account.ID)

	return &account, nil
}

func (s *LedgerHandler) ListPayments(ctx context.Context, farmerID *int64) ([]models.Payment, error) {
	query := s.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Bill").
		Order("created_at DESC")
	if farmerID != nil {
		query = query.Where("farmer_id = ?", *farmerID)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, utils.StoreError(err)
	}
	return payments, nil
}

func (s *LedgerHandler) ListInterestCharges(ctx context.Context, farmerID int64) ([]models.InterestCharge, error) {
	var charges []models.InterestCharge
	if err := s.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("charge_date DESC").
		Find(&charges).Error; err != nil {
		return nil, utils.StoreError(err)
	}
	return charges, nil
}
