package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
)

// MovementHandler consulta y corrección de filas del libro.
type MovementHandler struct {
	uc *usecase.MovementUseCase
}

func NewMovementHandler(uc *usecase.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movimentos
// @Security     Bearer
// @Produce      json
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Param        code         query  int     false  "Código de venta"
// @Param        client_id    query  string  false  "Cliente"
// @Param        employee_id  query  string  false  "Funcionario"
// @Param        paid         query  bool    false  "Pagado"
// @Param        from         query  string  false  "Desde (AAAA-MM-DD o RFC3339)"
// @Param        to           query  string  false  "Hasta, inclusive"
// @Param        field        query  string  false  "Columna: product_description, product_barcode, client_name, employee_name, payment_type, code, total"
// @Param        q            query  string  false  "Texto buscado"
// @Success      200          {object}  dto.MovementListResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/movimentos [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	lq, err := listQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	q := dto.MovementQuery{ListQuery: lq, ClientID: c.Query("client_id"), EmployeeID: c.Query("employee_id")}
	if q.Code, err = queryInt64(c, "code"); err != nil {
		return writeError(c, err)
	}
	if q.Paid, err = queryBool(c, "paid"); err != nil {
		return writeError(c, err)
	}
	if q.From, q.To, err = queryRange(c); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movimentos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimentos/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "movimiento no encontrado")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Corregir cantidad, precio o descuento de una fila abierta
// @Tags         movimentos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "fila pagada"
// @Router       /api/movimentos/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Quitar una fila abierta de su venta
// @Tags         movimentos
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "fila pagada"
// @Router       /api/movimentos/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
