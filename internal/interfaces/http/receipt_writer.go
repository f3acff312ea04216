package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/receipt"
	"github.com/jhoicas/farmacia-pos/internal/domain"
)

// writeReceipt format=bytes (por defecto), text o base64.
func writeReceipt(c *fiber.Ctx, r *receipt.Receipt) error {
	switch c.Query("format", "bytes") {
	case "bytes", "raw":
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, r.FileName("bin")))
		return c.Send(r.Data)
	case "text":
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(r.Preview)
	case "base64":
		return c.JSON(r.ToResponse())
	}
	return writeError(c, fmt.Errorf("%w: format debe ser bytes, text o base64", domain.ErrInvalidInput))
}

func writePDF(c *fiber.Ctx, r *receipt.Receipt, svc *receipt.Service) error {
	pdf, err := svc.PDF(c.UserContext(), r)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, r.FileName("pdf")))
	return c.Send(pdf)
}
