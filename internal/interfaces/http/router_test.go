package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/application/sales"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

type api struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T, salesPerMinute int) *api {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: testBranchID, Name: "Centro"}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "p1", SKU: "CAFE", Name: "Café", Price: decimal.NewFromInt(10), Cost: decimal.NewFromInt(4), TrackInventory: true,
	}))

	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.Locations(), store.Movements(), store.Balances(), 30)
	saleUC := sales.NewSaleUseCase(store, ledger, memory.NewSaleSequence(), store.Sales(), store.Payments(),
		store.Products(), store.Locations(), logger.Nop(), sales.Config{NumberPrefix: "SAL", MaxAttempts: 3})
	receipts := sales.NewReceiptUseCase(store.Sales(), store.Payments(), store.Products(), store.Locations(),
		pdf.NewReceiptGenerator(language.Spanish))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:      usecase.NewProductUseCase(store.Products()),
		LocationUC:     usecase.NewLocationUseCase(store.Locations()),
		Ledger:         ledger,
		Replenishment:  inventory.NewReplenishmentUseCase(store.Balances()),
		Sales:          saleUC,
		Receipts:       receipts,
		JWTSecret:      testJWTSecret,
		SalesPerMinute: salesPerMinute,
	})
	return &api{app: app, store: store}
}

func (a *api) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	header := ""
	if role != "" {
		header = tokenForRole(t, role)
	}
	return a.doAuth(t, method, path, header, body)
}

// doAuth envía la petición con el header Authorization tal cual.
func (a *api) doAuth(t *testing.T, method, path, authHeader string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (a *api) purchase(t *testing.T, qty int) {
	t.Helper()
	resp, raw := a.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, map[string]any{
		"item_id":     "p1",
		"location_id": testBranchID,
		"kind":        "inbound-purchase",
		"quantity":    qty,
		"unit_cost":   4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
}

func (a *api) sell(t *testing.T, qty int) (*http.Response, []byte) {
	t.Helper()
	return a.do(t, http.MethodPost, "/api/sales", apphttp.RoleCashier, map[string]any{
		"lines": []map[string]any{{"product_id": "p1", "quantity": qty}},
	})
}

func (a *api) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	resp, raw := a.do(t, http.MethodGet, "/api/inventory/balances?itemId=p1&locationId="+testBranchID, apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	list := decode[dto.BalanceListResponse](t, raw)
	require.Len(t, list.Items, 1)
	return list.Items[0].Quantity
}

// ─── Autenticación ────────────────────────────────────────────────────────────

func TestRouter_SinToken_Retorna401(t *testing.T) {
	a := newAPI(t, 0)
	resp, _ := a.do(t, http.MethodGet, "/api/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── Flujo de venta ───────────────────────────────────────────────────────────

func TestRouter_VentaPagoYDevolucion(t *testing.T) {
	a := newAPI(t, 0)
	a.purchase(t, 10)

	resp, raw := a.sell(t, 2)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	sale := decode[dto.SaleResponse](t, raw)
	assert.True(t, strings.HasPrefix(sale.SaleNumber, "SAL-"), sale.SaleNumber)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(20)), sale.Total.String())
	assert.Equal(t, testBranchID, sale.BranchID)
	assert.Equal(t, testUserID, sale.CashierID)
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(8)))

	resp, raw = a.do(t, http.MethodPost, "/api/sales/"+sale.ID+"/payments", apphttp.RoleCashier, map[string]any{
		"splits": []map[string]any{
			{"amount": 15, "method": "cash"},
			{"amount": 5, "method": "card"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	paid := decode[dto.SplitPaymentResponse](t, raw)
	assert.Equal(t, string(entity.PaymentPaid), paid.Sale.PaymentStatus)
	assert.Len(t, paid.Payments, 2)

	resp, raw = a.do(t, http.MethodPost, "/api/sales/"+sale.ID+"/refund", apphttp.RoleSupervisor, map[string]any{
		"reason": "cliente insatisfecho",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	refund := decode[dto.RefundResponse](t, raw)
	assert.Equal(t, string(entity.PaymentRefunded), refund.Original.PaymentStatus)
	assert.Equal(t, string(entity.SaleKindReturn), refund.Return.Kind)
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(10)))
}

func TestRouter_VentaSinLineas_Retorna400ConCampos(t *testing.T) {
	a := newAPI(t, 0)
	resp, raw := a.do(t, http.MethodPost, "/api/sales", apphttp.RoleCashier, map[string]any{"lines": []any{}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.NotEmpty(t, body.Fields)
}

func TestRouter_StockInsuficiente_Retorna400(t *testing.T) {
	a := newAPI(t, 0)
	a.purchase(t, 1)

	resp, raw := a.sell(t, 5)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, raw).Code)
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(1)), "la venta fallida no debe tocar el saldo")
}

func TestRouter_VentaInexistente_Retorna404(t *testing.T) {
	a := newAPI(t, 0)
	resp, raw := a.do(t, http.MethodGet, "/api/sales/no-existe", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)
}

// ─── Eliminación (administrador) ──────────────────────────────────────────────

func TestRouter_EliminarVenta_SoloAdmin(t *testing.T) {
	a := newAPI(t, 0)
	a.purchase(t, 5)
	_, raw := a.sell(t, 2)
	sale := decode[dto.SaleResponse](t, raw)

	resp, _ := a.do(t, http.MethodDelete, "/api/sales/"+sale.ID, apphttp.RoleCashier, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = a.do(t, http.MethodDelete, "/api/sales/"+sale.ID, apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(raw))
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(5)), "eliminar la venta debe reponer el stock")

	resp, _ = a.do(t, http.MethodGet, "/api/sales/"+sale.ID, apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ─── Límite de ventas ─────────────────────────────────────────────────────────

func TestRouter_LimiteDeVentas_Retorna429(t *testing.T) {
	a := newAPI(t, 1)
	a.purchase(t, 10)

	resp, raw := a.sell(t, 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = a.sell(t, 1)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decode[dto.ErrorResponse](t, raw).Code)
}

// ─── Comprobante ──────────────────────────────────────────────────────────────

func TestRouter_Comprobante_RetornaPDF(t *testing.T) {
	a := newAPI(t, 0)
	a.purchase(t, 3)
	_, raw := a.sell(t, 1)
	sale := decode[dto.SaleResponse](t, raw)

	resp, body := a.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", apphttp.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), sale.SaleNumber)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

// ─── Catálogo ─────────────────────────────────────────────────────────────────

func TestRouter_CrearProducto_YConsultar(t *testing.T) {
	a := newAPI(t, 0)
	resp, raw := a.do(t, http.MethodPost, "/api/products", apphttp.RoleAdmin, map[string]any{
		"sku": "TE", "name": "Té verde", "price": 8, "cost": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[map[string]any](t, raw)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp, raw = a.do(t, http.MethodGet, "/api/products/"+id, apphttp.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "TE", decode[map[string]any](t, raw)["sku"])
}
