package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inventory "farmagro-system/internal/services/inventory/handler"
)

type InventoryHTTPHandler struct {
	inventory *inventory.InventoryHandler
}

func NewInventoryHTTPHandler(inventoryHandler *inventory.InventoryHandler) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		inventory: inventoryHandler,
	}
}

func (s *InventoryHTTPHandler) CreateProduct(c *gin.Context) {
	var req inventory.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := s.inventory.CreateProduct(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, product)
}

func (s *InventoryHTTPHandler) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := s.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, product)
}

func (s *InventoryHTTPHandler) ListProducts(c *gin.Context) {
	var query inventory.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}

	products, total, err := s.inventory.ListProducts(c.Request.Context(), query)
	if err != nil {
		serviceError(c, err)
		return
	}

	successWithMeta(c, products, query.Page, query.PageSize, total)
}

func (s *InventoryHTTPHandler) UpdateProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req inventory.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := s.inventory.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, product)
}

func (s *InventoryHTTPHandler) DeleteProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := s.inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	success(c, gin.H{"deleted": true})
}

func (s *InventoryHTTPHandler) ListLowStock(c *gin.Context) {
	products, err := s.inventory.ListLowStock(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, products)
}

func (s *InventoryHTTPHandler) AdjustStock(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := s.inventory.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, product)
}
