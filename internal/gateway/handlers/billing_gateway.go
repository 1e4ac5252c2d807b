package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	billing "farmagro-system/internal/services/billing/handler"
)

type BillingHTTPHandler struct {
	billing *billing.BillingHandler
}

func NewBillingHTTPHandler(billingHandler *billing.BillingHandler) *BillingHTTPHandler {
	return &BillingHTTPHandler{
		billing: billingHandler,
	}
}

func (s *BillingHTTPHandler) CreateBill(c *gin.Context) {
	var req billing.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	bill, err := s.billing.CreateBill(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, bill)
}

func (s *BillingHTTPHandler) GetBill(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid bill ID")
		return
	}

	bill, err := s.billing.GetBill(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, bill)
}

func (s *BillingHTTPHandler) ListBills(c *gin.Context) {
	var query billing.ListBillsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}

	bills, total, err := s.billing.ListBills(c.Request.Context(), query)
	if err != nil {
		serviceError(c, err)
		return
	}

	successWithMeta(c, bills, query.Page, query.PageSize, total)
}

func (s *BillingHTTPHandler) ListPendingBills(c *gin.Context) {
	bills, err := s.billing.ListPendingBills(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, bills)
}

type updateBillStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func (s *BillingHTTPHandler) UpdateBillStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid bill ID")
		return
	}

	var req updateBillStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	bill, err := s.billing.UpdateBillStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, bill)
}
