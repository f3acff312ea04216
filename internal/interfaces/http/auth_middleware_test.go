package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/farmacia-pos/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/farmacia-pos/pkg/jwt"
)

func whoAmIApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(apphttp.AuthMiddleware(secret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(apphttp.GetEmployeeID(c))
	})
	return app
}

func TestAuthMiddleware_TokenValido(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "func-9", "Rita", "farmacia-pos", 5)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := whoAmIApp(testJWTSecret).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "func-9", string(buf[:n]))
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	other, err := pkgjwt.Generate("otra-clave", "func-9", "Rita", "farmacia-pos", 5)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"sin header":   "",
		"sin Bearer":   "Token abc",
		"token vacío":  "Bearer   ",
		"firma ajena":  "Bearer " + other,
		"token basura": "Bearer a.b.c",
	} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := whoAmIApp(testJWTSecret).Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestAuthMiddleware_SinSecretPasaDeLargo(t *testing.T) {
	resp, err := whoAmIApp("").Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
