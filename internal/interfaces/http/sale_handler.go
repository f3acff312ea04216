package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/receipt"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
)

// SaleHandler registro y consulta de ventas, y sus cupons.
type SaleHandler struct {
	sales    *sales.Service
	receipts *receipt.Service
}

func NewSaleHandler(s *sales.Service, r *receipt.Service) *SaleHandler {
	return &SaleHandler{sales: s, receipts: r}
}

// Register godoc
// @Summary      Registrar venta
// @Description  Crea una fila por ítem con el mismo código. FIADO exige cliente y deja las filas abiertas;
// @Description  las demás formas de pago nacen pagadas. Con print=true el cupom se imprime tras confirmar
// @Description  y un fallo de impresión se informa en print_error sin deshacer la venta.
// @Tags         vendas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/vendas [post]
func (h *SaleHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.EmployeeID == "" {
		in.EmployeeID = GetEmployeeID(c)
	}
	out, err := h.sales.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Param        client_id  query  string  false  "Cliente"
// @Param        paid       query  bool    false  "Todas las filas pagadas"
// @Param        from       query  string  false  "Desde (AAAA-MM-DD o RFC3339)"
// @Param        to         query  string  false  "Hasta, inclusive"
// @Success      200        {object}  dto.SaleListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/vendas [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	lq, err := listQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	q := dto.SaleQuery{Limit: lq.Limit, Offset: lq.Offset, ClientID: c.Query("client_id")}
	if q.Paid, err = queryBool(c, "paid"); err != nil {
		return writeError(c, err)
	}
	if q.From, q.To, err = queryRange(c); err != nil {
		return writeError(c, err)
	}
	out, err := h.sales.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Venta con sus filas
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        code  path  int  true  "Código de venta"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vendas/{code} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	code, err := paramCode(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.sales.Get(c.UserContext(), code)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "venta no encontrada")
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Cupom de la venta
// @Tags         vendas
// @Security     Bearer
// @Produce      octet-stream,plain,json
// @Param        code    path   int     true   "Código de venta"
// @Param        format  query  string  false  "bytes | text | base64"  default(bytes)
// @Success      200     {object}  dto.ReceiptResponse  "con format=base64"
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/vendas/{code}/cupom [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	code, err := paramCode(c)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.receipts.Sale(c.UserContext(), code)
	if err != nil {
		return writeError(c, err)
	}
	return writeReceipt(c, r)
}

// ReceiptPDF godoc
// @Summary      Cupom de la venta en PDF (80 mm)
// @Tags         vendas
// @Security     Bearer
// @Produce      application/pdf
// @Param        code  path  int  true  "Código de venta"
// @Success      200
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vendas/{code}/cupom.pdf [get]
func (h *SaleHandler) ReceiptPDF(c *fiber.Ctx) error {
	code, err := paramCode(c)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.receipts.Sale(c.UserContext(), code)
	if err != nil {
		return writeError(c, err)
	}
	return writePDF(c, r, h.receipts)
}

// Print godoc
// @Summary      Imprimir (o reimprimir) el cupom
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        code  path  int  true  "Código de venta"
// @Success      200   {object}  dto.PrintResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/vendas/{code}/imprimir [post]
func (h *SaleHandler) Print(c *fiber.Ctx) error {
	code, err := paramCode(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.receipts.PrintCode(c.UserContext(), code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
