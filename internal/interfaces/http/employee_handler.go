package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
)

// EmployeeHandler cadastro de funcionarios.
type EmployeeHandler struct {
	uc *usecase.EmployeeUseCase
}

func NewEmployeeHandler(uc *usecase.EmployeeUseCase) *EmployeeHandler {
	return &EmployeeHandler{uc: uc}
}

// Create godoc
// @Summary      Crear funcionario
// @Tags         funcionarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEmployeeRequest  true  "Nombre y PIN opcional"
// @Success      201   {object}  dto.EmployeeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/funcionarios [post]
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener funcionario
// @Tags         funcionarios
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del funcionario"
// @Success      200  {object}  dto.EmployeeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/funcionarios/{id} [get]
func (h *EmployeeHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "funcionario no encontrado")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar funcionarios
// @Tags         funcionarios
// @Security     Bearer
// @Produce      json
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Param        field    query  string  false  "Columna: name"
// @Param        q        query  string  false  "Texto buscado"
// @Param        deleted  query  bool    false  "Listar borrados"
// @Success      200      {object}  dto.EmployeeListResponse
// @Router       /api/funcionarios [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar funcionario
// @Description  Un cambio de nombre se propaga a los movimientos. pin "" quita el PIN.
// @Tags         funcionarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del funcionario"
// @Param        body  body  dto.UpdateEmployeeRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.EmployeeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/funcionarios/{id} [put]
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateEmployeeRequest
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
// @Summary      Borrado lógico de funcionario
// @Tags         funcionarios
// @Security     Bearer
// @Param        id   path  string  true  "ID del funcionario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/funcionarios/{id} [delete]
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restore godoc
// @Summary      Restaurar funcionario
// @Tags         funcionarios
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del funcionario"
// @Success      200  {object}  dto.EmployeeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/funcionarios/{id}/restore [post]
func (h *EmployeeHandler) Restore(c *fiber.Ctx) error {
	out, err := h.uc.Restore(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
