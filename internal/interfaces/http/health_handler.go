package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger verifica la conexión a la base.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler GET /health. Sin pinger (driver memory) responde siempre ok.
func HealthHandler(db Pinger, driver string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "driver": driver}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
			status["database"] = "ok"
		}
		return c.JSON(status)
	}
}
