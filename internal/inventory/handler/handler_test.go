package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklight/stocklight-backend/internal/inventory/handler"
	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/internal/inventory/store"
	"github.com/stocklight/stocklight-backend/pkg/httputil"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// newTestRouter builds a router over a fresh in-memory ledger, mirroring the
// service's route table minus auth.
func newTestRouter(t *testing.T) (*chi.Mux, *ledger.Ledger) {
	t.Helper()
	log := logger.New("test", "test")

	led := ledger.NewLedger(store.NewMemoryStore(), "", nil, log)
	require.NoError(t, led.Load(context.Background()))

	catalogHandler := handler.NewCatalogHandler(led, log)
	itemHandler := handler.NewItemHandler(led, log)
	stockHandler := handler.NewStockHandler(led, log)
	reservationHandler := handler.NewReservationHandler(led, log)
	movementHandler := handler.NewMovementHandler(led, log)
	alertHandler := handler.NewAlertHandler(led, log)
	dashboardHandler := handler.NewDashboardHandler(led, log)

	r := chi.NewRouter()
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Post("/catalog/initialize", catalogHandler.Initialize)
		r.Post("/stock/update", stockHandler.Update)
		r.Put("/alerts/{id}/acknowledge", alertHandler.Acknowledge)
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Get("/{variantID}", itemHandler.Get)
			r.Get("/{variantID}/movements", movementHandler.ListByVariant)
		})
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", movementHandler.List)
			r.Get("/export", movementHandler.ExportCSV)
		})
		r.Post("/reservations", reservationHandler.Reserve)
		r.Post("/reservations/release", reservationHandler.Release)
		r.Post("/purchases", reservationHandler.Purchase)
		r.Get("/alerts", alertHandler.List)
		r.Get("/stats", dashboardHandler.GetStats)
	})

	return r, led
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func seedCatalog(t *testing.T, router http.Handler) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/catalog/initialize", `{
		"products": [
			{"id": "shirt", "variants": [
				{"id": "shirt-s", "sku": "SH-S", "stock": 10},
				{"id": "shirt-m", "sku": "SH-M", "stock": 30}
			]},
			{"id": "mug", "variants": [
				{"id": "mug-std", "sku": "MG-1", "stock": 0}
			]}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// ============================================================================
// CATALOG TESTS
// ============================================================================

func TestCatalogInitialize(t *testing.T) {
	t.Run("seeds the ledger", func(t *testing.T) {
		router, led := newTestRouter(t)
		seedCatalog(t, router)
		assert.Len(t, led.Items(), 3)
	})

	t.Run("rejects an empty product list", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/catalog/initialize", `{"products": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/catalog/initialize", `{
			"products": [{"id": "p", "variants": [{"id": "v", "stock": -1}]}]
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/catalog/initialize", `{notjson`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// ============================================================================
// ITEM TESTS
// ============================================================================

func TestItemEndpoints(t *testing.T) {
	t.Run("list returns items sorted by variant", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodGet, "/api/v1/inventory/items/", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		items, err := json.Marshal(resp.Data)
		require.NoError(t, err)

		var decoded []ledger.InventoryItem
		require.NoError(t, json.Unmarshal(items, &decoded))
		require.Len(t, decoded, 3)
		assert.Equal(t, "mug-std", decoded[0].VariantID)
		assert.Equal(t, "shirt-s", decoded[2].VariantID)
	})

	t.Run("get returns one item", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodGet, "/api/v1/inventory/items/shirt-m", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		data, _ := json.Marshal(resp.Data)
		var item ledger.InventoryItem
		require.NoError(t, json.Unmarshal(data, &item))
		assert.Equal(t, 30, item.CurrentStock)
		assert.Equal(t, "SH-M", item.SKU)
	})

	t.Run("get of an unknown variant is 404", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodGet, "/api/v1/inventory/items/ghost", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		resp := decodeResponse(t, rec)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})
}

// ============================================================================
// STOCK UPDATE TESTS
// ============================================================================

func TestStockUpdateEndpoint(t *testing.T) {
	t.Run("returns the refreshed item", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/stock/update", `{
			"variant_id": "shirt-s", "quantity": 5, "type": "increase", "reason": "restock"
		}`)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		data, _ := json.Marshal(resp.Data)
		var item ledger.InventoryItem
		require.NoError(t, json.Unmarshal(data, &item))
		assert.Equal(t, 15, item.CurrentStock)
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/stock/update", `{
			"variant_id": "shirt-s", "quantity": 5, "type": "teleport"
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown variant is 404", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/stock/update", `{
			"variant_id": "ghost", "quantity": 5, "type": "increase"
		}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// ============================================================================
// RESERVATION AND PURCHASE TESTS
// ============================================================================

func TestReservationEndpoints(t *testing.T) {
	t.Run("reserve succeeds for a valid cart", func(t *testing.T) {
		router, led := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/reservations", `{
			"items": [{"variant_id": "shirt-s", "quantity": 2}]
		}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		item, err := led.Item("shirt-s")
		require.NoError(t, err)
		assert.Equal(t, 2, item.ReservedStock)
	})

	t.Run("insufficient stock is 409 with per line details", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/reservations", `{
			"items": [
				{"variant_id": "shirt-s", "quantity": 2},
				{"variant_id": "mug-std", "quantity": 1}
			]
		}`)
		assert.Equal(t, http.StatusConflict, rec.Code)

		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "mug-std")
		assert.NotContains(t, resp.Error.Details, "shirt-s")
	})

	t.Run("release returns no content", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		doRequest(t, router, http.MethodPost, "/api/v1/inventory/reservations", `{
			"items": [{"variant_id": "shirt-s", "quantity": 2}]
		}`)
		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/reservations/release", `{
			"items": [{"variant_id": "shirt-s", "quantity": 2}]
		}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("purchase requires an order id", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/purchases", `{
			"items": [{"variant_id": "shirt-s", "quantity": 1}]
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("purchase decrements stock", func(t *testing.T) {
		router, led := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/purchases", `{
			"items": [{"variant_id": "shirt-m", "quantity": 3}], "order_id": "ord-1"
		}`)
		require.Equal(t, http.StatusOK, rec.Code)

		item, err := led.Item("shirt-m")
		require.NoError(t, err)
		assert.Equal(t, 27, item.CurrentStock)
	})
}

// ============================================================================
// MOVEMENT TESTS
// ============================================================================

func TestMovementEndpoints(t *testing.T) {
	t.Run("lists are newest first and respect limit", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		for _, body := range []string{
			`{"variant_id": "shirt-s", "quantity": 1, "type": "increase"}`,
			`{"variant_id": "shirt-s", "quantity": 2, "type": "increase"}`,
			`{"variant_id": "shirt-m", "quantity": 3, "type": "increase"}`,
		} {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/stock/update", body)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := doRequest(t, router, http.MethodGet, "/api/v1/inventory/movements/?limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		data, _ := json.Marshal(resp.Data)
		var movements []ledger.StockMovement
		require.NoError(t, json.Unmarshal(data, &movements))
		require.Len(t, movements, 2)
		assert.Equal(t, "shirt-m", movements[0].VariantID)

		// meta reports the unfiltered total alongside the page size
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(3), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.PerPage)

		rec = doRequest(t, router, http.MethodGet, "/api/v1/inventory/items/shirt-s/movements", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp = decodeResponse(t, rec)
		data, _ = json.Marshal(resp.Data)
		require.NoError(t, json.Unmarshal(data, &movements))
		require.Len(t, movements, 2)
		assert.Equal(t, 2, movements[0].Quantity)
	})

	t.Run("export returns a CSV attachment", func(t *testing.T) {
		router, _ := newTestRouter(t)
		seedCatalog(t, router)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/inventory/stock/update",
			`{"variant_id": "shirt-s", "quantity": 1, "type": "increase"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, router, http.MethodGet, "/api/v1/inventory/movements/export", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock-movements-")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "id,variant_id,type"))
		assert.Contains(t, lines[1], "shirt-s")
	})
}

// ============================================================================
// ALERT TESTS
// ============================================================================

func TestAlertEndpoints(t *testing.T) {
	t.Run("filters by acknowledged and type", func(t *testing.T) {
		router, led := newTestRouter(t)
		seedCatalog(t, router) // mug-std starts out of stock

		rec := doRequest(t, router, http.MethodGet, "/api/v1/inventory/alerts?acknowledged=false&type=out_of_stock", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		data, _ := json.Marshal(resp.Data)
		var alerts []ledger.InventoryAlert
		require.NoError(t, json.Unmarshal(data, &alerts))
		require.Len(t, alerts, 1)
		assert.Equal(t, "mug-std", alerts[0].VariantID)

		// acknowledge and re-filter
		rec = doRequest(t, router, http.MethodPut, "/api/v1/inventory/alerts/"+alerts[0].ID+"/acknowledge", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, router, http.MethodGet, "/api/v1/inventory/alerts?acknowledged=false", "")
		resp = decodeResponse(t, rec)
		data, _ = json.Marshal(resp.Data)
		require.NoError(t, json.Unmarshal(data, &alerts))
		assert.Empty(t, alerts)

		assert.Len(t, led.Alerts(nil, ""), 1)
	})

	t.Run("acknowledging an unknown alert is 404", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doRequest(t, router, http.MethodPut, "/api/v1/inventory/alerts/nope/acknowledge", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// ============================================================================
// DASHBOARD TESTS
// ============================================================================

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	seedCatalog(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/inventory/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var stats ledger.Stats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 3, stats.TotalVariants)
	assert.Equal(t, 40, stats.TotalCurrentStock)
	assert.Equal(t, 1, stats.OutOfStockCount)
}
