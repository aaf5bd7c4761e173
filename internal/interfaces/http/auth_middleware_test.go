package http_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	apphttp "github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-pos/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testBranchID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "pos-ledger-test"
	testExpMin    = 60
)

func identity(role string) pkgjwt.Identity {
	return pkgjwt.Identity{UserID: testUserID, BranchID: testBranchID, Role: role}
}

// bearer firma la identidad con el secreto indicado y arma el header.
func bearer(t *testing.T, secret string, id pkgjwt.Identity, expMinutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, id, testIssuer, expMinutes)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return bearer(t, testJWTSecret, identity(role), testExpMin)
}

// paidSale registra una venta de una unidad y la paga completa.
func (a *api) paidSale(t *testing.T) dto.SaleResponse {
	t.Helper()
	a.purchase(t, 5)
	resp, raw := a.sell(t, 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	sale := decode[dto.SaleResponse](t, raw)

	resp, raw = a.do(t, http.MethodPost, "/api/sales/"+sale.ID+"/payments", apphttp.RoleCashier, map[string]any{
		"splits": []map[string]any{{"amount": 10, "method": "cash"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return sale
}

func (a *api) refund(t *testing.T, saleID, role string) (*http.Response, []byte) {
	t.Helper()
	return a.do(t, http.MethodPost, "/api/sales/"+saleID+"/refund", role, map[string]any{"reason": "devolución"})
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad: los claims del token llegan a la venta
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ClaimsDelTokenDefinenCajeroYSucursal(t *testing.T) {
	a := newAPI(t, 0)
	const otherBranch = "00000000-0000-0000-0000-0000000000b2"
	require.NoError(t, a.store.Locations().Create(t.Context(), &entity.Location{ID: otherBranch, Name: "Norte"}))

	resp, raw := a.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, map[string]any{
		"item_id": "p1", "location_id": otherBranch, "kind": "inbound-purchase", "quantity": 3, "unit_cost": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	cashier := pkgjwt.Identity{UserID: "cajero-norte", BranchID: otherBranch, Role: apphttp.RoleCashier}
	resp, raw = a.doAuth(t, http.MethodPost, "/api/sales", bearer(t, testJWTSecret, cashier, testExpMin), map[string]any{
		"lines": []map[string]any{{"product_id": "p1", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	sale := decode[dto.SaleResponse](t, raw)
	assert.Equal(t, "cajero-norte", sale.CashierID)
	assert.Equal(t, otherBranch, sale.BranchID)

	b, err := a.store.Balances().Get(t.Context(), "p1", otherBranch)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.Quantity.Equal(decimal.NewFromInt(1)), "el stock sale de la sucursal del token")
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles en rutas de ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_ReembolsoCajeroBloqueado(t *testing.T) {
	a := newAPI(t, 0)
	sale := a.paidSale(t)

	resp, raw := a.refund(t, sale.ID, apphttp.RoleCashier)
	require.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = a.do(t, http.MethodGet, "/api/sales/"+sale.ID, apphttp.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, string(entity.PaymentPaid), decode[dto.SaleResponse](t, raw).PaymentStatus)
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(4)), "el reembolso rechazado no repone stock")
}

func TestRequireRole_ReembolsoSupervisorYAdmin(t *testing.T) {
	for _, role := range []string{apphttp.RoleSupervisor, apphttp.RoleAdmin} {
		t.Run(role, func(t *testing.T) {
			a := newAPI(t, 0)
			sale := a.paidSale(t)

			resp, raw := a.refund(t, sale.ID, role)
			require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
			assert.Equal(t, string(entity.PaymentRefunded), decode[dto.RefundResponse](t, raw).Original.PaymentStatus)
			assert.True(t, a.balance(t).Equal(decimal.NewFromInt(5)))
		})
	}
}

func TestRequireRole_EliminarVentaCajeroYSupervisorBloqueados(t *testing.T) {
	a := newAPI(t, 0)
	a.purchase(t, 5)
	_, raw := a.sell(t, 2)
	sale := decode[dto.SaleResponse](t, raw)

	for _, role := range []string{apphttp.RoleCashier, apphttp.RoleSupervisor} {
		resp, raw := a.do(t, http.MethodDelete, "/api/sales/"+sale.ID, role, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, role)
		assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)
	}
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(3)))
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	a := newAPI(t, 0)
	a.purchase(t, 5)

	resp, raw := a.doAuth(t, http.MethodPost, "/api/sales", bearer(t, testJWTSecret, identity(""), testExpMin), map[string]any{
		"lines": []map[string]any{{"product_id": "p1", "quantity": 1}},
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decode[dto.ErrorResponse](t, raw).Code)
	assert.True(t, a.balance(t).Equal(decimal.NewFromInt(5)), "la venta rechazada no descuenta stock")
}

func TestRequireRole_RolDesconocido_Retorna403(t *testing.T) {
	a := newAPI(t, 0)
	resp, raw := a.doAuth(t, http.MethodGet, "/api/sales", bearer(t, testJWTSecret, identity("bodeguero"), testExpMin), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tokens rechazados por AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokensInvalidos_Retornan401(t *testing.T) {
	cases := []struct {
		name   string
		header func(t *testing.T) string
		code   string
	}{
		{"expirado", func(t *testing.T) string { return bearer(t, testJWTSecret, identity(apphttp.RoleAdmin), -1) }, "INVALID_TOKEN"},
		{"secreto incorrecto", func(t *testing.T) string { return bearer(t, "otro-secret", identity(apphttp.RoleAdmin), testExpMin) }, "INVALID_TOKEN"},
		{"malformado", func(*testing.T) string { return "Bearer token.invalido.aqui" }, "INVALID_TOKEN"},
		{"esquema distinto", func(t *testing.T) string { return "Basic " + tokenForRole(t, apphttp.RoleAdmin)[len("Bearer "):] }, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAPI(t, 0)
			resp, raw := a.doAuth(t, http.MethodGet, "/api/sales", tc.header(t), nil)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, raw).Code)
		})
	}
}
