package handler

import (
	"net/http"

	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// CatalogHandler handles catalog initialization
type CatalogHandler struct {
	ledger *ledger.Ledger
	logger *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(led *ledger.Ledger, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		ledger: led,
		logger: log,
	}
}

type initializeRequest struct {
	Products []initializeProduct `json:"products" validate:"required,min=1,dive"`
}

type initializeProduct struct {
	ID       string              `json:"id" validate:"required"`
	Variants []initializeVariant `json:"variants" validate:"required,min=1,dive"`
}

type initializeVariant struct {
	ID    string `json:"id" validate:"required"`
	SKU   string `json:"sku"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// Initialize seeds the ledger from the catalog
func (h *CatalogHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	products := make([]ledger.Product, len(req.Products))
	for i, p := range req.Products {
		variants := make([]ledger.ProductVariant, len(p.Variants))
		for j, v := range p.Variants {
			variants[j] = ledger.ProductVariant{
				ID:    v.ID,
				SKU:   v.SKU,
				Stock: v.Stock,
			}
		}
		products[i] = ledger.Product{ID: p.ID, Variants: variants}
	}

	if err := h.ledger.InitializeInventory(r.Context(), products); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"initialized": len(products),
	})
}
