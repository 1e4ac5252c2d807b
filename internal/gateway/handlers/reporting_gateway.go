package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reporting "farmagro-system/internal/services/reporting/handler"
)

type ReportingHTTPHandler struct {
	reporting *reporting.ReportingHandler
}

func NewReportingHTTPHandler(reportingHandler *reporting.ReportingHandler) *ReportingHTTPHandler {
	return &ReportingHTTPHandler{
		reporting: reportingHandler,
	}
}

func (s *ReportingHTTPHandler) SalesReport(c *gin.Context) {
	var query reporting.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}

	report, err := s.reporting.SalesReport(c.Request.Context(), query)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, report)
}

func (s *ReportingHTTPHandler) DashboardStats(c *gin.Context) {
	stats, err := s.reporting.DashboardStats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, stats)
}
