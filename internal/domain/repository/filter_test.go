package repository_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

func TestSearchFields_Resolve(t *testing.T) {
	field, kind, err := repository.ProductSearch.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "description", field)
	assert.Equal(t, repository.FieldText, kind)

	_, kind, err = repository.ProductSearch.Resolve("generic")
	require.NoError(t, err)
	assert.Equal(t, repository.FieldBool, kind)

	_, _, err = repository.ClientSearch.Resolve("senha; drop table")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFieldKind_Parse(t *testing.T) {
	v, err := repository.FieldNumber.Parse("12,50")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(v.(decimal.Decimal)))

	v, err = repository.FieldBool.Parse("true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = repository.FieldNumber.Parse("abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	v, err = repository.FieldText.Parse("  maria ")
	require.NoError(t, err)
	assert.Equal(t, "maria", v)
}
