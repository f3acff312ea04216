package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "Farmacia Sao Joao", Fold("Farmácia São João"))
	assert.Equal(t, "CARTAO", Fold("CARTÃO"))
	assert.Equal(t, "sem acento", Fold("sem acento"))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("José da Conceição", "conceicao"))
	assert.True(t, ContainsFold("DIPIRONA", "pir"))
	assert.False(t, ContainsFold("Amoxicilina", "dipirona"))
}
