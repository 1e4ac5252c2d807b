package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customer "farmagro-system/internal/services/customer/handler"
)

type CustomerHTTPHandler struct {
	customer *customer.CustomerHandler
}

func NewCustomerHTTPHandler(customerHandler *customer.CustomerHandler) *CustomerHTTPHandler {
	return &CustomerHTTPHandler{
		customer: customerHandler,
	}
}

func (s *CustomerHTTPHandler) CreateFarmer(c *gin.Context) {
	var req customer.CreateFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	farmer, err := s.customer.CreateFarmer(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, farmer)
}

func (s *CustomerHTTPHandler) GetFarmer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	farmer, err := s.customer.GetFarmer(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, farmer)
}

func (s *CustomerHTTPHandler) ListFarmers(c *gin.Context) {
	var query customer.ListFarmersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}

	farmers, total, err := s.customer.ListFarmers(c.Request.Context(), query)
	if err != nil {
		serviceError(c, err)
		return
	}

	successWithMeta(c, farmers, query.Page, query.PageSize, total)
}

func (s *CustomerHTTPHandler) UpdateFarmer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	var req customer.UpdateFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	farmer, err := s.customer.UpdateFarmer(c.Request.Context(), id, req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, farmer)
}

func (s *CustomerHTTPHandler) DeleteFarmer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	if err := s.customer.DeleteFarmer(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	success(c, gin.H{"deleted": true})
}
