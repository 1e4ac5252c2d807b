package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"farmagro-system/internal/database/models"
	"farmagro-system/internal/services/events"
	reporting "farmagro-system/internal/services/reporting/handler"
	"farmagro-system/internal/utils"
)

const (
	FARMERS_CACHE_KEY = "customer:farmers"
	CACHE_TTL_SHORT   = 5 * time.Minute

	defaultPageSize = 10
)

// Default monthly interest rate for newly provisioned credit accounts.
const defaultInterestRate = "2.00"

type CustomerHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	events *events.Publisher
}

func NewCustomerHandler(db *gorm.DB, redisClient *redis.Client) *CustomerHandler {
	return &CustomerHandler{
		db:     db,
		redis:  redisClient,
		events: events.NewPublisher(redisClient),
	}
}

func (s *CustomerHandler) invalidateFarmerCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	// Farmer writes also stale the dashboard counters.
	_ = s.redis.Del(ctx, FARMERS_CACHE_KEY, reporting.DASHBOARD_CACHE_KEY)
}

type CreateFarmerRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	Village      *string `json:"village,omitempty"`
	District     *string `json:"district,omitempty"`
	State        *string `json:"state,omitempty"`
	Pincode      *string `json:"pincode,omitempty"`
	AadharNumber *string `json:"aadhar_number,omitempty"`
}

type UpdateFarmerRequest struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	Village      *string `json:"village,omitempty"`
	District     *string `json:"district,omitempty"`
	State        *string `json:"state,omitempty"`
	Pincode      *string `json:"pincode,omitempty"`
	AadharNumber *string `json:"aadhar_number,omitempty"`
}

type ListFarmersQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=10"`
	SearchTerm *string `form:"search,omitempty"`
}

// CreateFarmer writes the farmer and its zero-balance credit account in one
// transaction so every farmer always has a ledger head.
func (s *CustomerHandler) CreateFarmer(ctx context.Context, req CreateFarmerRequest) (*models.Farmer, error) {
	if req.Name == "" {
		return nil, utils.ValidationErrorf("farmer name is required")
	}

	farmer := models.Farmer{
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		Village:      req.Village,
		District:     req.District,
		State:        req.State,
		Pincode:      req.Pincode,
		AadharNumber: req.AadharNumber,
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&farmer).Error; err != nil {
		tx.Rollback()
		return nil, utils.StoreError(err)
	}

	account := models.CustomerAccount{
		FarmerID:         farmer.ID,
		TotalCreditLimit: "0.00",
		CurrentBalance:   "0.00",
		InterestRate:     defaultInterestRate,
	}
	if err := tx.Create(&account).Error; err != nil {
		tx.Rollback()
		return nil, utils.StoreError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateFarmerCaches(ctx)
	s.events.Publish(ctx, events.TableFarmers, events.ActionInsert, farmer.ID)
	s.events.Publish(ctx, events.TableAccounts, events.ActionInsert, account.ID)

	farmer.Account = &account
	return &farmer, nil
}

func (s *CustomerHandler) GetFarmer(ctx context.Context, id int64) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.db.WithContext(ctx).Preload("Account").First(&farmer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("farmer %d", id)
		}
		return nil, utils.StoreError(err)
	}
	return &farmer, nil
}

// farmerPage is the cached shape for the default farmer listing.
type farmerPage struct {
	Farmers []models.Farmer `json:"farmers"`
	Total   int64           `json:"total"`
}

func (s *CustomerHandler) ListFarmers(ctx context.Context, q ListFarmersQuery) ([]models.Farmer, int64, error) {
	cacheable := q.SearchTerm == nil && q.Page <= 1 &&
		(q.PageSize == 0 || q.PageSize == defaultPageSize)

	if cacheable && s.redis != nil {
		if cached, err := s.redis.Get(ctx, FARMERS_CACHE_KEY).Result(); err == nil {
			var page farmerPage
			if json.Unmarshal([]byte(cached), &page) == nil {
				return page.Farmers, page.Total, nil
			}
		}
	}

	query := s.db.WithContext(ctx).Model(&models.Farmer{})
	if q.SearchTerm != nil && *q.SearchTerm != "" {
		searchTerm := "%" + *q.SearchTerm + "%"
		query = query.Where("name LIKE ? OR village LIKE ? OR phone LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.StoreError(err)
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	var farmers []models.Farmer
	if err := query.Order("name").Offset((page - 1) * pageSize).Limit(pageSize).Find(&farmers).Error; err != nil {
		return nil, 0, utils.StoreError(err)
	}

	if cacheable && s.redis != nil {
		if data, err := json.Marshal(farmerPage{Farmers: farmers, Total: total}); err == nil {
			_ = s.redis.Set(ctx, FARMERS_CACHE_KEY, data, CACHE_TTL_SHORT)
		}
	}

	return farmers, total, nil
}

func (s *CustomerHandler) UpdateFarmer(ctx context.Context, id int64, req UpdateFarmerRequest) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.db.WithContext(ctx).First(&farmer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("farmer %d", id)
		}
		return nil, utils.StoreError(err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, utils.ValidationErrorf("farmer name must not be empty")
		}
		farmer.Name = *req.Name
	}
	if req.Phone != nil {
		farmer.Phone = req.Phone
	}
	if req.Address != nil {
		farmer.Address = req.Address
	}
	if req.Village != nil {
		farmer.Village = req.Village
	}
	if req.District != nil {
		farmer.District = req.District
	}
	if req.State != nil {
		farmer.State = req.State
	}
	if req.Pincode != nil {
		farmer.Pincode = req.Pincode
	}
	if req.AadharNumber != nil {
		farmer.AadharNumber = req.AadharNumber
	}

	if err := s.db.WithContext(ctx).Save(&farmer).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateFarmerCaches(ctx)
	s.events.Publish(ctx, events.TableFarmers, events.ActionUpdate, farmer.ID)

	return &farmer, nil
}

func (s *CustomerHandler) DeleteFarmer(ctx context.Context, id int64) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Delete(&models.Farmer{}, id)
	if result.Error != nil {
		tx.Rollback()
		return utils.StoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.NotFoundErrorf("farmer %d", id)
	}

	if err := tx.Where("farmer_id = ?", id).Delete(&models.CustomerAccount{}).Error; err != nil {
		tx.Rollback()
		return utils.StoreError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.StoreError(err)
	}

	s.invalidateFarmerCaches(ctx)
	s.events.Publish(ctx, events.TableFarmers, events.ActionDelete, id)

	return nil
}
