package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/farmacia-pos/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate("segredo", "func-1", "Maria", "farmacia-pos", 5)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse("segredo", tok)
	require.NoError(t, err)
	assert.Equal(t, "func-1", claims.EmployeeID)
	assert.Equal(t, "Maria", claims.Name)
	assert.Equal(t, "farmacia-pos", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("segredo", "func-1", "Maria", "farmacia-pos", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("segredo", "func-1", "Maria", "farmacia-pos", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("segredo", tok)
	assert.Error(t, err)
}

func TestGenerate_SinSecret(t *testing.T) {
	_, err := pkgjwt.Generate("", "func-1", "Maria", "farmacia-pos", 5)
	assert.Error(t, err)
}
