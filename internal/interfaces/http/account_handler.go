package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/accounts"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/receipt"
)

// AccountHandler contas a receber (fiado).
type AccountHandler struct {
	accounts *accounts.Service
	receipts *receipt.Service
}

func NewAccountHandler(a *accounts.Service, r *receipt.Service) *AccountHandler {
	return &AccountHandler{accounts: a, receipts: r}
}

// Balances godoc
// @Summary      Saldos fiado abiertos por cliente
// @Tags         contas
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Param        field   query  string  false  "Columna: client_name, folder_code"
// @Param        q       query  string  false  "Texto buscado"
// @Success      200     {object}  dto.BalanceListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/contas [get]
func (h *AccountHandler) Balances(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.accounts.Balances(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Account godoc
// @Summary      Filas abiertas del cliente con el monto a cobrar
// @Tags         contas
// @Security     Bearer
// @Produce      json
// @Param        clientId  path  string  true  "ID del cliente"
// @Success      200       {object}  dto.ClientAccountResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/contas/{clientId} [get]
func (h *AccountHandler) Account(c *fiber.Ctx) error {
	out, err := h.accounts.Account(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "cliente no encontrado")
	}
	return c.JSON(out)
}

// Settle godoc
// @Summary      Registrar pago de fiado
// @Description  Sin movement_ids se pagan todas las filas abiertas del cliente.
// @Tags         contas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettleRequest  true  "Pago"
// @Success      200   {object}  dto.SettlementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/contas/pagar [post]
func (h *AccountHandler) Settle(c *fiber.Ctx) error {
	var in dto.SettleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.EmployeeID == "" {
		in.EmployeeID = GetEmployeeID(c)
	}
	out, err := h.accounts.Settle(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reopen godoc
// @Summary      Estornar pago de filas fiado
// @Tags         contas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReopenRequest  true  "Filas"
// @Success      200   {object}  map[string][]dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/contas/estornar [post]
func (h *AccountHandler) Reopen(c *fiber.Ctx) error {
	var in dto.ReopenRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.accounts.Reopen(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": out})
}

// Receipt godoc
// @Summary      Comprobante del último pago del cliente
// @Tags         contas
// @Security     Bearer
// @Produce      octet-stream,plain,json
// @Param        clientId  path   string  true   "ID del cliente"
// @Param        format    query  string  false  "bytes | text | base64"  default(bytes)
// @Success      200       {object}  dto.ReceiptResponse  "con format=base64"
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/contas/{clientId}/cupom [get]
func (h *AccountHandler) Receipt(c *fiber.Ctx) error {
	r, err := h.receipts.Payment(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return writeError(c, err)
	}
	return writeReceipt(c, r)
}

// ReceiptPDF godoc
// @Summary      Comprobante del último pago en PDF
// @Tags         contas
// @Security     Bearer
// @Produce      application/pdf
// @Param        clientId  path  string  true  "ID del cliente"
// @Success      200
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/contas/{clientId}/cupom.pdf [get]
func (h *AccountHandler) ReceiptPDF(c *fiber.Ctx) error {
	r, err := h.receipts.Payment(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return writeError(c, err)
	}
	return writePDF(c, r, h.receipts)
}
