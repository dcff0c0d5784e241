package handler

import (
	"net/http"

	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// StockHandler handles manual stock adjustments
type StockHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(led *ledger.Ledger, log *logger.Logger) *StockHandler {
	return &StockHandler{
		ledger: led,
		logger: log,
	}
}

type updateStockRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required,oneof=increase decrease"`
	Reason    string `json:"reason"`
	OrderID   string `json:"order_id"`
}

// Update applies a stock increase or decrease
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	err := h.ledger.UpdateStock(r.Context(), ledger.UpdateStockRequest{
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		Type:      ledger.StockUpdateType(req.Type),
		Reason:    req.Reason,
		OrderID:   req.OrderID,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.ledger.Item(req.VariantID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}
