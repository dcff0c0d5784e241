package handler

import (
	"net/http"

	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// ReservationHandler handles the cart lifecycle: reserve, release, purchase
type ReservationHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(led *ledger.Ledger, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		ledger: led,
		logger: log,
	}
}

type cartLine struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type cartRequest struct {
	Items []cartLine `json:"items" validate:"required,min=1,dive"`
}

type purchaseRequest struct {
	Items   []cartLine `json:"items" validate:"required,min=1,dive"`
	OrderID string     `json:"order_id" validate:"required"`
}

func toCartItems(lines []cartLine) []ledger.CartItem {
	items := make([]ledger.CartItem, len(lines))
	for i, line := range lines {
		items[i] = ledger.CartItem{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		}
	}
	return items
}

// Reserve places a hold on every cart line, all-or-nothing
func (h *ReservationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.ledger.ReserveStock(r.Context(), toCartItems(req.Items)); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{
		"reserved": len(req.Items),
	})
}

// Release frees previously reserved stock
func (h *ReservationHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.ledger.ReleaseReservedStock(r.Context(), toCartItems(req.Items)); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Purchase records a completed order
func (h *ReservationHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.ledger.ProcessPurchase(r.Context(), toCartItems(req.Items), req.OrderID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"order_id": req.OrderID,
	})
}
