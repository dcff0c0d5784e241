package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// AlertHandler handles alert endpoints
type AlertHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(led *ledger.Ledger, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		ledger: led,
		logger: log,
	}
}

// List lists alerts, filtered by acknowledgement state and type
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	var acknowledged *bool
	if ack := r.URL.Query().Get("acknowledged"); ack != "" {
		a := ack == "true"
		acknowledged = &a
	}

	alertType := ledger.AlertType(r.URL.Query().Get("type"))

	alerts := h.ledger.Alerts(acknowledged, alertType)

	httputil.JSON(w, http.StatusOK, alerts)
}

// Acknowledge acknowledges an alert
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.ledger.AcknowledgeAlert(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
