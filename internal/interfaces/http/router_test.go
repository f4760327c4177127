package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "stock-ledger-test"
)

type fakeSlip struct{}

func (fakeSlip) GenerateTransferSlip(_ context.Context, data inventory.SlipData) ([]byte, error) {
	return []byte("%PDF-1.3 " + data.Transfer.TransferNumber), nil
}

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

// newTestServer arma el router real sobre el store en memoria con bodegas w1, w2 y el producto p1.
func newTestServer(t *testing.T, slip inventory.SlipGenerator) *testServer {
	t.Helper()
	store := memory.NewStore()
	now := time.Now().UTC()
	store.AddWarehouse(entity.Warehouse{ID: "w1", Name: "Principal", Active: true, CreatedAt: now})
	store.AddWarehouse(entity.Warehouse{ID: "w2", Name: "Sucursal", Active: true, CreatedAt: now})
	store.AddProduct(entity.Product{ID: "p1", SKU: "P-1", Name: "Tornillo", UnitMeasure: "UND", Cost: decimal.NewFromInt(4)})

	txRunner := memory.NewTxRunner(store)
	repos := store.Repos()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        inventory.NewLedgerUseCase(txRunner, repos.Movements, nil, nil),
		Stock:         inventory.NewStockUseCase(txRunner, repos.Stocks, repos.Products, nil, nil),
		Replenishment: inventory.NewReplenishmentUseCase(repos.Stocks),
		Transfers:     inventory.NewTransferUseCase(txRunner, repos.Transfers, repos.Stocks, memory.NewNumberGenerator(store), nil, nil, nil),
		SlipGenerator: slip,
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
	})
	return &testServer{app: app, store: store}
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Issue(testJWTSecret, testIssuer, time.Hour, identity(role))
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func identity(role string) pkgjwt.Identity {
	return pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: role}
}

func (s *testServer) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testServer) stockIn(t *testing.T, warehouseID string, qty int64) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero, map[string]any{
		"product_id": "p1", "warehouse_id": warehouseID, "type": "STOCK_IN", "quantity": qty,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_RegistrarYListar(t *testing.T) {
	s := newTestServer(t, nil)
	s.stockIn(t, "w1", 12)

	resp := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, map[string]any{
		"product_id": "p1", "warehouse_id": "w1", "type": "SALE", "quantity": 5, "reference_type": "SALE", "reference_id": "FV-9",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	mv := decode[dto.MovementResponse](t, resp)
	assert.True(t, mv.Quantity.Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, testUserID, mv.CreatedBy)

	resp = s.do(t, http.MethodGet, "/api/inventory/movements?product_id=p1&type=SALE", apphttp.RoleVendedor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "FV-9", list.Items[0].ReferenceID)
	assert.Equal(t, 50, list.Page.Limit)
}

func TestMovements_ErroresDeDominio(t *testing.T) {
	s := newTestServer(t, nil)
	s.stockIn(t, "w1", 2)

	resp := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, map[string]any{
		"product_id": "p1", "warehouse_id": "w1", "type": "TELEPORT", "quantity": 1,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MOVEMENT_TYPE", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, map[string]any{
		"product_id": "p1", "warehouse_id": "w1", "type": "SALE", "quantity": 3,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, map[string]any{
		"product_id": "p-x", "warehouse_id": "w1", "type": "STOCK_IN", "quantity": 3,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestStock_ConsultaYUmbrales(t *testing.T) {
	s := newTestServer(t, nil)
	s.stockIn(t, "w1", 3)

	resp := s.do(t, http.MethodGet, "/api/inventory/stock?product_id=p1&warehouse_id=w1", apphttp.RoleVendedor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	st := decode[dto.StockResponse](t, resp)
	assert.True(t, st.OnHand.Equal(decimal.NewFromInt(3)))

	resp = s.do(t, http.MethodGet, "/api/inventory/stock?product_id=p1&warehouse_id=w2", apphttp.RoleVendedor, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/inventory/stock/thresholds", apphttp.RoleBodeguero, map[string]any{
		"warehouse_id": "w1", "product_id": "p1", "min_level": 1, "reorder_point": 5,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/inventory/low-stock?warehouse_id=w1", apphttp.RoleVendedor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	low := decode[[]dto.LowStockResponse](t, resp)
	require.Len(t, low, 1)
	assert.Equal(t, "Tornillo", low[0].ProductName)

	resp = s.do(t, http.MethodGet, "/api/inventory/reconciliation/p1", apphttp.RoleBodeguero, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "la conciliación es solo para admin")
	resp = s.do(t, http.MethodGet, "/api/inventory/reconciliation/p1", apphttp.RoleAdmin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ReconciliationResponse](t, resp).Consistent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfers_FlujoCompletoPorHTTP(t *testing.T) {
	s := newTestServer(t, fakeSlip{})
	s.stockIn(t, "w1", 50)

	resp := s.do(t, http.MethodPost, "/api/transfers", apphttp.RoleVendedor, map[string]any{
		"from_warehouse_id": "w1", "to_warehouse_id": "w2",
		"items": []map[string]any{{"product_id": "p1", "quantity": 30}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	tr := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, "PENDING", tr.Status)
	path := "/api/transfers/" + strconv.FormatInt(tr.ID, 10)

	resp = s.do(t, http.MethodPost, path+"/approve", apphttp.RoleVendedor, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "vendedor no aprueba")

	for _, step := range []string{"approve", "ship", "complete"} {
		resp = s.do(t, http.MethodPost, path+"/"+step, apphttp.RoleBodeguero, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, step)
		tr = decode[dto.TransferResponse](t, resp)
	}
	assert.Equal(t, "COMPLETED", tr.Status)
	assert.Equal(t, testUserID, tr.ReceivedBy)

	dst, ok := s.store.Stock(entity.StockKey{WarehouseID: "w2", ProductID: "p1"})
	require.True(t, ok)
	assert.True(t, dst.OnHand.Equal(decimal.NewFromInt(30)))

	resp = s.do(t, http.MethodPost, path+"/cancel", apphttp.RoleAdmin, map[string]any{"reason": "tarde"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodGet, path+"/slip", apphttp.RoleVendedor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), tr.TransferNumber)
}

func TestTransfers_AprobacionSinStockDevuelveFaltantes(t *testing.T) {
	s := newTestServer(t, nil)
	s.stockIn(t, "w1", 3)

	resp := s.do(t, http.MethodPost, "/api/transfers", apphttp.RoleAdmin, map[string]any{
		"from_warehouse_id": "w1", "to_warehouse_id": "w2",
		"items": []map[string]any{{"product_id": "p1", "quantity": 5}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	tr := decode[dto.TransferResponse](t, resp)

	resp = s.do(t, http.MethodPost, "/api/transfers/"+strconv.FormatInt(tr.ID, 10)+"/approve", apphttp.RoleAdmin, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	errResp := decode[struct {
		Code    string            `json:"code"`
		Details []dto.ShortageDTO `json:"details"`
	}](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	require.Len(t, errResp.Details, 1)
	assert.True(t, errResp.Details[0].Available.Equal(decimal.NewFromInt(3)))
}

func TestTransfers_ValidacionesYConsultas(t *testing.T) {
	s := newTestServer(t, nil)
	s.stockIn(t, "w1", 10)

	resp := s.do(t, http.MethodPost, "/api/transfers", apphttp.RoleAdmin, map[string]any{
		"from_warehouse_id": "w1", "to_warehouse_id": "w1",
		"items": []map[string]any{{"product_id": "p1", "quantity": 1}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/transfers/validate-availability", apphttp.RoleVendedor, map[string]any{
		"warehouse_id": "w1", "items": []map[string]any{{"product_id": "p1", "quantity": 11}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	avail := decode[dto.AvailabilityResponse](t, resp)
	assert.False(t, avail.Available)
	require.Len(t, avail.Shortages, 1)

	resp = s.do(t, http.MethodGet, "/api/transfers/number", apphttp.RoleVendedor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Regexp(t, `^TRF-\d{8}-\d{5}$`, decode[dto.TransferNumberResponse](t, resp).TransferNumber)

	resp = s.do(t, http.MethodGet, "/api/transfers/abc", apphttp.RoleVendedor, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/api/transfers/999", apphttp.RoleVendedor, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/transfers/1/slip", apphttp.RoleVendedor, nil)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/transfers?status=PENDING", apphttp.RoleVendedor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.TransferListResponse](t, resp).Items)
}
