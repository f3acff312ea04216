package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
)

// DBConfigHandler parámetros de conexión a la base (pantalla de instalación).
type DBConfigHandler struct {
	uc *usecase.DBConfigUseCase
}

func NewDBConfigHandler(uc *usecase.DBConfigUseCase) *DBConfigHandler {
	return &DBConfigHandler{uc: uc}
}

// Get godoc
// @Summary      Parámetros actuales de la base (contraseña oculta)
// @Tags         config
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DBConfigResponse
// @Router       /api/config/db [get]
func (h *DBConfigHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Guardar parámetros de la base
// @Description  Se aplican al reiniciar el servidor. Contraseña vacía conserva la actual.
// @Tags         config
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DBConfigRequest  true  "Parámetros"
// @Success      200   {object}  dto.DBConfigResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/config/db [put]
func (h *DBConfigHandler) Save(c *fiber.Ctx) error {
	var in dto.DBConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Save(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Test godoc
// @Summary      Probar conexión con los parámetros enviados
// @Tags         config
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DBConfigRequest  true  "Parámetros"
// @Success      200   {object}  dto.DBTestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/config/db/test [post]
func (h *DBConfigHandler) Test(c *fiber.Ctx) error {
	var in dto.DBConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Test(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
