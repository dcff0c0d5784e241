package handler

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// ItemHandler handles inventory item queries
type ItemHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(led *ledger.Ledger, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		ledger: led,
		logger: log,
	}
}

// List returns all inventory items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.ledger.Items()

	sort.Slice(items, func(i, j int) bool {
		return items[i].VariantID < items[j].VariantID
	})

	httputil.JSON(w, http.StatusOK, items)
}

// Get returns one inventory item by variant ID
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")

	item, err := h.ledger.Item(variantID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}
