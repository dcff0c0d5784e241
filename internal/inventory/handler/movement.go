package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// MovementHandler handles audit log endpoints
type MovementHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(led *ledger.Ledger, log *logger.Logger) *MovementHandler {
	return &MovementHandler{
		ledger: led,
		logger: log,
	}
}

// List returns the full audit log, newest first
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListByVariant returns the audit log for one variant, newest first
func (h *MovementHandler) ListByVariant(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "variantID"))
}

func (h *MovementHandler) list(w http.ResponseWriter, r *http.Request, variantID string) {
	movements := h.ledger.Movements(variantID)
	total := int64(len(movements))

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 0 && limit < len(movements) {
		movements = movements[:limit]
	}

	httputil.JSONWithMeta(w, http.StatusOK, movements, &httputil.Meta{
		Total:   total,
		PerPage: limit,
	})
}

// ExportCSV streams the audit log as a CSV download for offline review
func (h *MovementHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	movements := h.ledger.Movements(r.URL.Query().Get("variant_id"))

	filename := fmt.Sprintf("stock-movements-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "variant_id", "type", "quantity", "previous_stock", "new_stock", "reason", "order_id", "timestamp"})

	for _, m := range movements {
		cw.Write([]string{
			m.ID,
			m.VariantID,
			string(m.Type),
			strconv.Itoa(m.Quantity),
			strconv.Itoa(m.PreviousStock),
			strconv.Itoa(m.NewStock),
			m.Reason,
			m.OrderID,
			m.Timestamp.Format(time.RFC3339),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error().Err(err).Msg("failed to write movements CSV")
	}
}
