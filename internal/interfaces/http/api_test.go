package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/accounts"
	"github.com/jhoicas/farmacia-pos/internal/application/auth"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/receipt"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/farmacia-pos/internal/interfaces/http"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

type fakePDF struct{}

func (fakePDF) Render(context.Context, string, []string) ([]byte, error) {
	return []byte("%PDF-1.3 fake"), nil
}

type testEnv struct {
	app   *fiber.App
	store *memory.Store
}

// newEnv arma la API completa sobre el store en memoria con dos productos,
// una cliente y un funcionario sin PIN.
func newEnv(t *testing.T, jwtSecret string) testEnv {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()
	store := memory.NewStore()
	repos := store.Repos()
	now := time.Now()
	require.NoError(t, repos.Employees.Create(ctx, &entity.Employee{ID: "e1", Name: "RITA", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "c1", Name: "MARIA", FolderCode: "A12", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p1", Description: "DIPIRONA 500MG", Barcode: "789001", SalePrice: decimal.RequireFromString("10.00"), CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p2", Description: "SORO", SalePrice: decimal.RequireFromString("3.00"), Generic: true, CreatedAt: now, UpdatedAt: now}))

	receipts := receipt.NewService(repos.Movements, repos.Clients, nil, fakePDF{},
		config.StoreConfig{Name: "FARMACIA CENTRAL", Footer: "OBRIGADO"},
		config.PrinterConfig{Columns: 48}, log)
	base := config.DBConfig{Host: "db", Port: 5432, User: "farma", Password: "segredo", DBName: "farmacia", SSLMode: "disable"}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		ClientUC:   usecase.NewClientUseCase(repos.Clients, store, log),
		EmployeeUC: usecase.NewEmployeeUseCase(repos.Employees, store, log),
		ProductUC:  usecase.NewProductUseCase(repos.Products, store, log),
		MovementUC: usecase.NewMovementUseCase(repos.Movements, store, log),
		DBConfigUC: usecase.NewDBConfigUseCase(base, config.NewDBFile(filepath.Join(t.TempDir(), "db.yaml")), nil, log),
		Sales:      sales.NewService(repos, store, receipts, nil, log),
		Accounts:   accounts.NewService(repos, store, receipts, nil, config.LedgerConfig{ChargeCurrentPrice: true}, log),
		Receipts:   receipts,
		AuthUC:     auth.NewAuthUseCase(repos.Employees, auth.JWTConfig{Secret: jwtSecret, ExpMinutes: 60, Issuer: "farmacia-pos-test"}),
		JWTSecret:  jwtSecret,
	})
	return testEnv{app: app, store: store}
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) (*http.Response, []byte) {
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
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, raw, &e)
	return e.Code
}

func TestClientes_CRUDYBorradoLogico(t *testing.T) {
	env := newEnv(t, "")

	resp, body := env.do(t, "POST", "/api/clientes", map[string]string{"name": "João da Silva", "cpf": "123"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	var created dto.ClientResponse
	decode(t, body, &created)
	assert.NotEmpty(t, created.ID)

	resp, body = env.do(t, "POST", "/api/clientes", map[string]string{"name": "Outro", "cpf": "123"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errorCode(t, body))

	resp, body = env.do(t, "GET", "/api/clientes?field=name&q=joao", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list dto.ClientListResponse
	decode(t, body, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	resp, body = env.do(t, "GET", "/api/clientes?field=senha&q=x", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, _ = env.do(t, "DELETE", "/api/clientes/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, body = env.do(t, "GET", "/api/clientes?deleted=true", nil)
	decode(t, body, &list)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].Deleted)

	resp, _ = env.do(t, "POST", "/api/clientes/"+created.ID+"/restore", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.do(t, "GET", "/api/clientes/nao-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, _ = env.do(t, "PUT", "/api/clientes/nao-existe", map[string]string{"name": "X"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProdutos_Barcode(t *testing.T) {
	env := newEnv(t, "")

	resp, body := env.do(t, "GET", "/api/produtos/barcode/789001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, body, &p)
	assert.Equal(t, "p1", p.ID)

	resp, _ = env.do(t, "GET", "/api/produtos/barcode/000", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func registerFiado(t *testing.T, env testEnv) dto.SaleResponse {
	t.Helper()
	resp, body := env.do(t, "POST", "/api/vendas", map[string]interface{}{
		"client_id":    "c1",
		"employee_id":  "e1",
		"payment_type": "fiado",
		"items": []map[string]interface{}{
			{"product_id": "p1", "quantity": "2"},
			{"barcode": "", "product_id": "p2", "quantity": 1},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleResponse
	decode(t, body, &sale)
	return sale
}

func TestVendas_RegistroConsultaYCupom(t *testing.T) {
	env := newEnv(t, "")
	sale := registerFiado(t, env)
	assert.Equal(t, entity.PaymentCredit, sale.PaymentType)
	assert.True(t, decimal.RequireFromString("23.00").Equal(sale.Total))
	assert.False(t, sale.Paid)
	require.Len(t, sale.Rows, 2)

	code := strconv.FormatInt(sale.Code, 10)

	resp, body := env.do(t, "GET", "/api/vendas/"+code, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got dto.SaleResponse
	decode(t, body, &got)
	assert.Len(t, got.Rows, 2)

	resp, body = env.do(t, "GET", "/api/vendas?paid=false", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list dto.SaleListResponse
	decode(t, body, &list)
	assert.Equal(t, 1, list.Page.Total)

	resp, body = env.do(t, "GET", "/api/vendas/"+code+"/cupom?format=text", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "CUPOM NAO FISCAL")
	assert.Contains(t, string(body), "A PAGAR")

	resp, body = env.do(t, "GET", "/api/vendas/"+code+"/cupom", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEOctetStream, resp.Header.Get("Content-Type"))
	assert.Equal(t, []byte{0x1b, '@'}, body[:2])

	resp, body = env.do(t, "GET", "/api/vendas/"+code+"/cupom?format=base64", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rr dto.ReceiptResponse
	decode(t, body, &rr)
	assert.Equal(t, receipt.KindSale, rr.Kind)
	assert.NotEmpty(t, rr.Data)

	resp, _ = env.do(t, "GET", "/api/vendas/"+code+"/cupom?format=xml", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, "GET", "/api/vendas/"+code+"/cupom.pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = env.do(t, "POST", "/api/vendas/"+code+"/imprimir", nil)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "PRINTER_UNAVAILABLE", errorCode(t, body))

	resp, _ = env.do(t, "GET", "/api/vendas/999999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, "GET", "/api/vendas/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestVendas_Validacion(t *testing.T) {
	env := newEnv(t, "")

	resp, body := env.do(t, "POST", "/api/vendas", map[string]interface{}{
		"employee_id":  "e1",
		"payment_type": "FIADO",
		"items":        []map[string]interface{}{{"product_id": "p1", "quantity": "1"}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, _ = env.do(t, "POST", "/api/vendas", map[string]interface{}{
		"employee_id":  "e1",
		"payment_type": "CHEQUE",
		"items":        []map[string]interface{}{{"product_id": "p1", "quantity": "1"}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/api/vendas?from=2024-13-01", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestContas_PagarCupomYEstorno(t *testing.T) {
	env := newEnv(t, "")
	sale := registerFiado(t, env)

	resp, body := env.do(t, "GET", "/api/contas", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var balances dto.BalanceListResponse
	decode(t, body, &balances)
	require.Len(t, balances.Items, 1)
	assert.Equal(t, "c1", balances.Items[0].ClientID)
	assert.Equal(t, "A12", balances.Items[0].FolderCode)
	assert.True(t, decimal.RequireFromString("23.00").Equal(balances.Items[0].Due))

	resp, body = env.do(t, "GET", "/api/contas/c1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var account dto.ClientAccountResponse
	decode(t, body, &account)
	assert.Len(t, account.Rows, 2)

	resp, _ = env.do(t, "GET", "/api/contas/nao-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, "GET", "/api/contas/c1/cupom", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "sin pagos todavía")

	resp, body = env.do(t, "POST", "/api/contas/pagar", map[string]interface{}{"client_id": "c1", "print": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	var settled dto.SettlementResponse
	decode(t, body, &settled)
	assert.True(t, decimal.RequireFromString("23.00").Equal(settled.TotalPaid))
	assert.NotEmpty(t, settled.PrintError)

	resp, body = env.do(t, "POST", "/api/contas/pagar", map[string]interface{}{"client_id": "c1"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	resp, body = env.do(t, "GET", "/api/contas/c1/cupom?format=text", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "COMPROVANTE DE PAGAMENTO")
	assert.Contains(t, string(body), "TOTAL PAGO")

	rowID := sale.Rows[0].ID
	resp, body = env.do(t, "PUT", "/api/movimentos/"+rowID, map[string]string{"quantity": "5"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_PAID", errorCode(t, body))

	resp, body = env.do(t, "POST", "/api/contas/estornar", map[string]interface{}{"movement_ids": []string{rowID}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.True(t, strings.Contains(string(body), rowID))

	resp, body = env.do(t, "GET", "/api/movimentos?paid=false&client_id=c1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var movs dto.MovementListResponse
	decode(t, body, &movs)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, rowID, movs.Items[0].ID)
}

func TestCascadaNombreCliente(t *testing.T) {
	env := newEnv(t, "")
	sale := registerFiado(t, env)

	resp, _ := env.do(t, "PUT", "/api/clientes/c1", map[string]string{"name": "MARIA JOSE"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := env.do(t, "GET", "/api/movimentos/"+sale.Rows[0].ID, nil)
	var m dto.MovementResponse
	decode(t, body, &m)
	assert.Equal(t, "MARIA JOSE", m.ClientName)
}

func TestConfigDB_OcultaPassword(t *testing.T) {
	env := newEnv(t, "")

	resp, body := env.do(t, "GET", "/api/config/db", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "segredo")
	var cfg dto.DBConfigResponse
	decode(t, body, &cfg)
	assert.True(t, cfg.PasswordSet)
	assert.Equal(t, "env", cfg.Source)

	resp, body = env.do(t, "PUT", "/api/config/db", map[string]interface{}{"host": "10.0.0.5", "port": 5432, "user": "farma", "name": "farmacia"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	decode(t, body, &cfg)
	assert.True(t, cfg.Restart)
	assert.Equal(t, "10.0.0.5", cfg.Host)

	resp, _ = env.do(t, "PUT", "/api/config/db", map[string]interface{}{"host": "", "user": "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuth_LoginConPINYRutasProtegidas(t *testing.T) {
	env := newEnv(t, testJWTSecret)

	resp, body := env.do(t, "GET", "/api/clientes", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, body))

	resp, _ = env.do(t, "GET", "/api/clientes", nil, "Authorization", "Bearer token.invalido.aqui")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// e1 no tiene PIN
	resp, _ = env.do(t, "POST", "/api/auth/login", map[string]string{"employee_id": "e1", "pin": "1234"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	ctx := context.Background()
	hash, err := usecase.HashPIN("4321")
	require.NoError(t, err)
	e1, err := env.store.Repos().Employees.GetByID(ctx, "e1")
	require.NoError(t, err)
	e1.PINHash = hash
	require.NoError(t, env.store.Repos().Employees.Update(ctx, e1))

	resp, _ = env.do(t, "POST", "/api/auth/login", map[string]string{"employee_id": "e1", "pin": "0000"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body = env.do(t, "POST", "/api/auth/login", map[string]string{"employee_id": "e1", "pin": "4321"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	var login dto.LoginResponse
	decode(t, body, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "RITA", login.Employee.Name)

	resp, _ = env.do(t, "GET", "/api/clientes", nil, "Authorization", "Bearer "+login.Token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// el funcionario del token se usa cuando la venta no lo informa
	resp, body = env.do(t, "POST", "/api/vendas", map[string]interface{}{
		"payment_type": "PIX",
		"items":        []map[string]interface{}{{"product_id": "p2", "quantity": "1"}},
	}, "Authorization", "Bearer "+login.Token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleResponse
	decode(t, body, &sale)
	assert.Equal(t, "e1", sale.EmployeeID)
	assert.True(t, sale.Paid)
}

func TestAuth_LoginDeshabilitadoSinSecret(t *testing.T) {
	env := newEnv(t, "")
	resp, body := env.do(t, "POST", "/api/auth/login", map[string]string{"employee_id": "e1", "pin": "1234"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}
