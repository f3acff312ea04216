package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
)

const dateOnly = "2006-01-02"

// listQuery limit, offset, field, q y deleted.
func listQuery(c *fiber.Ctx) (dto.ListQuery, error) {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fmt.Errorf("%w: parámetros de consulta: %v", domain.ErrInvalidInput, err)
	}
	q.Normalize()
	return q, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser true o false", domain.ErrInvalidInput, key)
	}
	return &b, nil
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser numérico", domain.ErrInvalidInput, key)
	}
	return &n, nil
}

// queryTime acepta RFC3339 o fecha sola. Una fecha sola como límite superior
// incluye el día entero.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateOnly, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser AAAA-MM-DD o RFC3339", domain.ErrInvalidInput, key)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func queryRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = queryTime(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(c, "to", true); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: to anterior a from", domain.ErrInvalidInput)
	}
	return from, to, nil
}

func paramCode(c *fiber.Ctx) (int64, error) {
	code, err := strconv.ParseInt(c.Params("code"), 10, 64)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("%w: código de venta inválido", domain.ErrInvalidInput)
	}
	return code, nil
}
