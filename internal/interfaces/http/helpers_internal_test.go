package http

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x", domain.ErrInvalidInput), fiber.StatusBadRequest, "VALIDATION"},
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{fmt.Errorf("fila: %w", domain.ErrAlreadyPaid), fiber.StatusConflict, "ALREADY_PAID"},
		{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("lp: %w", domain.ErrPrinterUnavailable), fiber.StatusBadGateway, "PRINTER_UNAVAILABLE"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := errorStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

// rangeApp expone queryRange para probarlo con peticiones reales.
func rangeApp(got *[2]*time.Time) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		from, to, err := queryRange(c)
		if err != nil {
			return writeError(c, err)
		}
		got[0], got[1] = from, to
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestQueryRange_FechaSolaIncluyeElDia(t *testing.T) {
	var got [2]*time.Time
	resp, err := rangeApp(&got).Test(httptest.NewRequest("GET", "/?from=2024-05-01&to=2024-05-31", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	require.NotNil(t, got[0])
	require.NotNil(t, got[1])
	assert.True(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local).Equal(*got[0]))
	assert.True(t, time.Date(2024, 5, 31, 23, 59, 59, 999999999, time.Local).Equal(*got[1]))
}

func TestQueryRange_RFC3339YErrores(t *testing.T) {
	var got [2]*time.Time
	app := rangeApp(&got)

	resp, err := app.Test(httptest.NewRequest("GET", "/?to=2024-05-31T10:00:00Z", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Nil(t, got[0])
	require.NotNil(t, got[1])
	assert.True(t, time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC).Equal(*got[1]), "RFC3339 no se extiende")

	for _, q := range []string{"/?from=31/05/2024", "/?from=2024-06-02&to=2024-06-01"} {
		resp, err = app.Test(httptest.NewRequest("GET", q, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, q)
	}
}
