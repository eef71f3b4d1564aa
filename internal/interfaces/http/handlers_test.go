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

	"github.com/jhoicas/Reagentes-api/internal/application/auth"
	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
	"github.com/jhoicas/Reagentes-api/internal/application/report"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/export"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Reagentes-api/internal/interfaces/http"
	"github.com/jhoicas/Reagentes-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildAPI arma la API completa sobre el store en memoria con un admin inicial.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	_, err := authUC.EnsureAdmin(context.Background(), "admin", "admin1234", "admin@lab.local")
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:   authUC,
		Orders:   inventory.NewOrderQueue(store.Orders()),
		Recorder: inventory.NewMovementRecorder(memory.NewTxRunner(store), store.Inbound(), store.Outbound(), nil, logger.Nop()),
		Queries:  report.NewQueryUseCase(store.Lots(), store.Orders(), store.Inbound(), report.DefaultCriticalThreshold),
		Reports: report.NewReportUseCase(store.Lots(), store.Orders(), store.Inbound(), store.Outbound(),
			export.NewXLSXExporter(), export.NewPDFExporter("Laboratorio")),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
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

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.LoginResponse](t, resp).Token
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo pedido → entrada → salida
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PedidoEntradaYSalida(t *testing.T) {
	app := buildAPI(t)
	token := login(t, app, "admin", "admin1234")

	resp := call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{
		ReagentName: "Cloreto de Sódio", NominalQuantity: "500g", OrderDate: "2024-05-02",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, "open", order.Status)

	resp = call(t, app, http.MethodPost, "/api/inbound", token, dto.CreateInboundRequest{
		OrderID: &order.ID, Brand: "Synth", Location: "Estante A1", Packages: 10, ReceivedAt: "2024-05-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inb := decode[dto.InboundResponse](t, resp)
	assert.Equal(t, "Cloreto de Sódio", inb.ReagentName)
	assert.True(t, inb.Quantity.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "g", inb.Unit)

	open := decode[dto.ListResponse[dto.OrderResponse]](t, call(t, app, http.MethodGet, "/api/orders/open", token, nil))
	assert.Equal(t, 0, open.Total, "el pedido atendido queda cerrado")

	lots := decode[dto.ListResponse[dto.LotResponse]](t, call(t, app, http.MethodGet, "/api/lots?brand=synth", token, nil))
	require.Equal(t, 1, lots.Total)
	assert.Equal(t, "Estante A1", lots.Items[0].Location)
	assert.Equal(t, 10, lots.Items[0].Packages)

	// Salida mayor al stock
	resp = call(t, app, http.MethodPost, "/api/outbound", token, dto.CreateOutboundRequest{
		ReagentName: "cloreto de sodio", NominalSize: "500g", Brand: "SYNTH", Quantity: decimal.NewFromInt(6000),
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	stockErr := decode[dto.StockErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", stockErr.Code)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(5000)))

	// Reactivo inexistente
	resp = call(t, app, http.MethodPost, "/api/outbound", token, dto.CreateOutboundRequest{
		ReagentName: "Benzeno", NominalSize: "1L", Brand: "Merck", Quantity: decimal.NewFromInt(1),
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/outbound", token, dto.CreateOutboundRequest{
		InboundID: &inb.ID, Quantity: decimal.NewFromInt(1500), Notes: "titulação",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.OutboundResponse](t, resp)
	assert.Equal(t, "Estante A1", out.Location)

	summary := decode[dto.SummaryResponse](t, call(t, app, http.MethodGet, "/api/lots/summary", token, nil))
	assert.Equal(t, 1, summary.TotalLots)
	assert.True(t, summary.TotalQuantity.Equal(decimal.NewFromInt(3500)))

	// La entrada tiene una salida asociada: no se puede eliminar
	resp = call(t, app, http.MethodDelete, "/api/inbound/1", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/outbound/1", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	lot := decode[dto.LotResponse](t, call(t, app, http.MethodGet, "/api/lots/1", token, nil))
	assert.True(t, lot.Quantity.Equal(decimal.NewFromInt(5000)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SoloAutorOAdminEditan(t *testing.T) {
	app := buildAPI(t)
	admin := login(t, app, "admin", "admin1234")

	resp := call(t, app, http.MethodPost, "/api/users", admin, dto.CreateUserRequest{Username: "ana", Password: "segura123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ana := login(t, app, "ana", "segura123")

	resp = call(t, app, http.MethodPost, "/api/orders", admin, dto.CreateOrderRequest{
		ReagentName: "Acetona", NominalQuantity: "1L", OrderDate: "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	newName := "Acetona P.A."
	resp = call(t, app, http.MethodPut, "/api/orders/1", ana, dto.UpdateOrderRequest{ReagentName: &newName})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/orders/1", admin, dto.UpdateOrderRequest{ReagentName: &newName})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, newName, decode[dto.OrderResponse](t, resp).ReagentName)

	resp = call(t, app, http.MethodGet, "/api/users", ana, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/users", admin, dto.CreateUserRequest{Username: "ana", Password: "otra-clave"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_ErroresDeEntrada(t *testing.T) {
	app := buildAPI(t)
	token := login(t, app, "admin", "admin1234")

	resp := call(t, app, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/inbound", token, dto.CreateInboundRequest{
		ReagentName: "Etanol", NominalSize: "1L", Location: "Inflamáveis", Packages: 1, ReceivedAt: "2024-05-10",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "brand")

	resp = call(t, app, http.MethodPost, "/api/inbound", token, dto.CreateInboundRequest{
		OrderID: ptr(int64(99)), Brand: "Synth", Location: "A1", Packages: 1, ReceivedAt: "2024-05-10",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ORDER_NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodGet, "/api/orders/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/orders?status=pendiente", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/lots?min_quantity=mucho", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/lots/search?name=benzeno", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/reports", token, dto.GenerateReportRequest{Type: "relatorio"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ReportesYExportacion(t *testing.T) {
	app := buildAPI(t)
	token := login(t, app, "admin", "admin1234")

	resp := call(t, app, http.MethodPost, "/api/inbound", token, dto.CreateInboundRequest{
		ReagentName: "Etanol Absoluto", NominalSize: "1L", Brand: "Synth", Location: "Inflamáveis", Packages: 3, ReceivedAt: "2024-05-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/reports", token, dto.GenerateReportRequest{Type: "stock"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[dto.ReportResponse](t, resp)
	assert.Equal(t, 1, rep.Total)
	assert.Equal(t, "Etanol Absoluto", rep.Rows[0][1])

	resp = call(t, app, http.MethodGet, "/api/reports/stock/export?format=xlsx", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), `attachment; filename="stock_`))

	resp = call(t, app, http.MethodGet, "/api/reports/inbound_history/export?format=pdf", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	resp = call(t, app, http.MethodGet, "/api/reports/stock/export?format=docx", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func ptr[T any](v T) *T { return &v }
