package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
)

// Locals keys del funcionario autenticado.
const (
	LocalEmployeeID   = "employee_id"
	LocalEmployeeName = "employee_name"
)

// AuthMiddleware valida el Bearer Token JWT y deja el funcionario en c.Locals.
// Con jwtSecret vacío la API queda abierta (instalación de un solo caixa).
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if jwtSecret == "" {
			return c.Next()
		}
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalEmployeeID, claims.EmployeeID)
		c.Locals(LocalEmployeeName, claims.Name)
		return c.Next()
	}
}

// GetEmployeeID devuelve el funcionario del token ("" sin autenticación).
func GetEmployeeID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalEmployeeID).(string)
	return s
}
