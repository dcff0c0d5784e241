package handler

import (
	"net/http"

	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// DashboardHandler serves aggregate inventory statistics
type DashboardHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(led *ledger.Ledger, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		ledger: led,
		logger: log,
	}
}

// GetStats returns totals for the inventory dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.ledger.Stats()
	httputil.JSON(w, http.StatusOK, stats)
}
