package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ledger "farmagro-system/internal/services/ledger/handler"
)

type LedgerHTTPHandler struct {
	ledger *ledger.LedgerHandler
}

func NewLedgerHTTPHandler(ledgerHandler *ledger.LedgerHandler) *LedgerHTTPHandler {
	return &LedgerHTTPHandler{
		ledger: ledgerHandler,
	}
}

func (s *LedgerHTTPHandler) AccrueInterest(c *gin.Context) {
	farmerID, err := parseIDParam(c, "farmer_id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	result, err := s.ledger.AccrueInterest(c.Request.Context(), farmerID)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, result)
}

func (s *LedgerHTTPHandler) RecordPayment(c *gin.Context) {
	var req ledger.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	payment, err := s.ledger.RecordPayment(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, payment)
}

func (s *LedgerHTTPHandler) GetAccount(c *gin.Context) {
	farmerID, err := parseIDParam(c, "farmer_id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	account, err := s.ledger.GetAccount(c.Request.Context(), farmerID)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, account)
}

func (s *LedgerHTTPHandler) ListAccounts(c *gin.Context) {
	accounts, err := s.ledger.ListAccounts(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, accounts)
}

func (s *LedgerHTTPHandler) UpdateAccountTerms(c *gin.Context) {
	farmerID, err := parseIDParam(c, "farmer_id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	var req ledger.UpdateAccountTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	account, err := s.ledger.UpdateAccountTerms(c.Request.Context(), farmerID, req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, account)
}

func (s *LedgerHTTPHandler) ListPayments(c *gin.Context) {
	payments, err := s.ledger.ListPayments(c.Request.Context(), parseInt64Query(c, "farmer_id"))
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, payments)
}

func (s *LedgerHTTPHandler) ListInterestCharges(c *gin.Context) {
	farmerID, err := parseIDParam(c, "farmer_id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid farmer ID")
		return
	}

	charges, err := s.ledger.ListInterestCharges(c.Request.Context(), farmerID)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, charges)
}
