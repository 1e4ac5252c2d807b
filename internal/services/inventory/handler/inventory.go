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
	PRODUCTS_CACHE_KEY  = "inventory:products"
	LOW_STOCK_CACHE_KEY = "inventory:low-stock"
	CACHE_TTL_SHORT     = 5 * time.Minute

	defaultPageSize = 10
)

type InventoryHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	events *events.Publisher
}

func NewInventoryHandler(db *gorm.DB, redisClient *redis.Client) *InventoryHandler {
	return &InventoryHandler{
		db:     db,
		redis:  redisClient,
		events: events.NewPublisher(redisClient),
	}
}

func (s *InventoryHandler) invalidateProductCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	// Product writes also stale the dashboard counters.
	_ = s.redis.Del(ctx, PRODUCTS_CACHE_KEY, LOW_STOCK_CACHE_KEY, reporting.DASHBOARD_CACHE_KEY)
}

type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	Brand         *string `json:"brand,omitempty"`
	Description   *string `json:"description,omitempty"`
	PricePerUnit  string  `json:"price_per_unit" binding:"required"`
	Unit          string  `json:"unit" binding:"required"`
	StockQuantity int32   `json:"stock_quantity"`
	ReorderLevel  int32   `json:"reorder_level"`
}

type UpdateProductRequest struct {
	Name          *string `json:"name,omitempty"`
	Type          *string `json:"type,omitempty"`
	Brand         *string `json:"brand,omitempty"`
	Description   *string `json:"description,omitempty"`
	PricePerUnit  *string `json:"price_per_unit,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	StockQuantity *int32  `json:"stock_quantity,omitempty"`
	ReorderLevel  *int32  `json:"reorder_level,omitempty"`
}

type ListProductsQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=10"`
	Type       *string `form:"type,omitempty"`
	SearchTerm *string `form:"search,omitempty"`
}

func parseAmount(value, field string) (decimal.Decimal, error) {
	amt, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, utils.ValidationErrorf("invalid %s format: %s", field, value)
	}
	if amt.IsNegative() {
		return decimal.Zero, utils.ValidationErrorf("%s must not be negative", field)
	}
	return amt, nil
}

func (s *InventoryHandler) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	productType := models.ProductType(req.Type)
	if !productType.IsValid() {
		return nil, utils.ValidationErrorf("unknown product type: %s", req.Type)
	}
	price, err := parseAmount(req.PricePerUnit, "price_per_unit")
	if err != nil {
		return nil, err
	}
	if req.StockQuantity < 0 || req.ReorderLevel < 0 {
		return nil, utils.ValidationErrorf("stock_quantity and reorder_level must not be negative")
	}

	product := models.Product{
		Name:          req.Name,
		Type:          productType,
		Brand:         req.Brand,
		Description:   req.Description,
		PricePerUnit:  price.StringFixed(2),
		Unit:          req.Unit,
		StockQuantity: req.StockQuantity,
		ReorderLevel:  req.ReorderLevel,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateProductCaches(ctx)
	s.events.Publish(ctx, events.TableProducts, events.ActionInsert, product.ID)

	return &product, nil
}

func (s *InventoryHandler) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("product %d", id)
		}
		return nil, utils.StoreError(err)
	}
	return &product, nil
}

// productPage is the cached shape for the default product listing; caching
// the total alongside the rows keeps the hit path free of count queries.
type productPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func (s *InventoryHandler) ListProducts(ctx context.Context, q ListProductsQuery) ([]models.Product, int64, error) {
	cacheable := q.Type == nil && q.SearchTerm == nil && q.Page <= 1 &&
		(q.PageSize == 0 || q.PageSize == defaultPageSize)

	if cacheable && s.redis != nil {
		if cached, err := s.redis.Get(ctx, PRODUCTS_CACHE_KEY).Result(); err == nil {
			var page productPage
			if json.Unmarshal([]byte(cached), &page) == nil {
				return page.Products, page.Total, nil
			}
		}
	}

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if q.Type != nil {
		query = query.Where("type = ?", *q.Type)
	}
	if q.SearchTerm != nil && *q.SearchTerm != "" {
		searchTerm := "%" + *q.SearchTerm + "%"
		query = query.Where("name LIKE ? OR brand LIKE ?", searchTerm, searchTerm)
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

	var products []models.Product
	if err := query.Order("name").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		return nil, 0, utils.StoreError(err)
	}

	if cacheable && s.redis != nil {
		if data, err := json.Marshal(productPage{Products: products, Total: total}); err == nil {
			_ = s.redis.Set(ctx, PRODUCTS_CACHE_KEY, data, CACHE_TTL_SHORT)
		}
	}

	return products, total, nil
}

func (s *InventoryHandler) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("product %d", id)
		}
		return nil, utils.StoreError(err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Type != nil {
		productType := models.ProductType(*req.Type)
		if !productType.IsValid() {
			return nil, utils.ValidationErrorf("unknown product type: %s", *req.Type)
		}
		product.Type = productType
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.PricePerUnit != nil {
		price, err := parseAmount(*req.PricePerUnit, "price_per_unit")
		if err != nil {
			return nil, err
		}
		product.PricePerUnit = price.StringFixed(2)
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, utils.ValidationErrorf("stock_quantity must not be negative")
		}
		product.StockQuantity = *req.StockQuantity
	}
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return nil, utils.ValidationErrorf("reorder_level must not be negative")
		}
		product.ReorderLevel = *req.ReorderLevel
	}

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateProductCaches(ctx)
	s.events.Publish(ctx, events.TableProducts, events.ActionUpdate, product.ID)

	return &product, nil
}

func (s *InventoryHandler) DeleteProduct(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return utils.StoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.NotFoundErrorf("product %d", id)
	}

	s.invalidateProductCaches(ctx)
	s.events.Publish(ctx, events.TableProducts, events.ActionDelete, id)

	return nil
}

// ListLowStock returns products at or below their reorder level.
func (s *InventoryHandler) ListLowStock(ctx context.Context) ([]models.Product, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, LOW_STOCK_CACHE_KEY).Result(); err == nil {
			var products []models.Product
			if json.Unmarshal([]byte(cached), &products) == nil {
				return products, nil
			}
		}
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("stock_quantity <= reorder_level").
		Order("stock_quantity").
		Find(&products).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(products); err == nil {
			_ = s.redis.Set(ctx, LOW_STOCK_CACHE_KEY, data, CACHE_TTL_SHORT)
		}
	}
	return products, nil
}

type AdjustStockRequest struct {
	Delta  int32  `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// AdjustStock applies a manual stock correction. Billing never calls this;
// stock only moves through explicit adjustments.
func (s *InventoryHandler) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (*models.Product, error) {
	if req.Delta == 0 {
		return nil, utils.ValidationErrorf("delta must not be zero")
	}

	var product models.Product

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&product, id).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("product %d", id)
		}
		return nil, utils.StoreError(err)
	}

	newQuantity := product.StockQuantity + req.Delta
	if newQuantity < 0 {
		tx.Rollback()
		return nil, utils.ValidationErrorf("stock cannot go below zero (current %d, delta %d)",
			product.StockQuantity, req.Delta)
	}

	product.StockQuantity = newQuantity
	product.UpdatedAt = time.Now()

	if err := tx.Save(&product).Error; err != nil {
		tx.Rollback()
		return nil, utils.StoreError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.StoreError(err)
	}

	s.invalidateProductCaches(ctx)
	s.events.Publish(ctx, events.TableProducts, events.ActionUpdate, product.ID)

	return &product, nil
}
