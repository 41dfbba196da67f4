package handler

import (
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the aggregated ledger views.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// FiatDashboard handles GET /api/v1/fiat/dashboard.
func (h *DashboardHandler) FiatDashboard(c *gin.Context) {
	dash, err := h.reportingSvc.FiatDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dash)
}

// CryptoDashboard handles GET /api/v1/crypto/dashboard.
func (h *DashboardHandler) CryptoDashboard(c *gin.Context) {
	dash, err := h.reportingSvc.CryptoDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dash)
}

// Oversight handles GET /api/v1/admin/transactions — all rows, both ledgers.
func (h *DashboardHandler) Oversight(c *gin.Context) {
	report, err := h.reportingSvc.Oversight(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}
