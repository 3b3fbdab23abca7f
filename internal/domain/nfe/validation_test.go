package nfe_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
)

func TestValidarJustificativa(t *testing.T) {
	assert.NoError(t, nfe.ValidarJustificativa("Erro na digitação dos itens"))

	assert.ErrorIs(t, nfe.ValidarJustificativa("curta demais"), domain.ErrJustificativaCurta)
	assert.ErrorIs(t, nfe.ValidarJustificativa(""), domain.ErrJustificativaCurta)

	// Espaços não contam para o mínimo.
	assert.ErrorIs(t, nfe.ValidarJustificativa("   abc          "), domain.ErrJustificativaCurta)

	longa := strings.Repeat("x", 256)
	assert.ErrorIs(t, nfe.ValidarJustificativa(longa), domain.ErrInvalidInput)
}

func TestValidarChave(t *testing.T) {
	assert.NoError(t, nfe.ValidarChave(chaveEsperada))

	// DV trocado.
	adulterada := chaveEsperada[:43] + "9"
	assert.ErrorIs(t, nfe.ValidarChave(adulterada), domain.ErrInvalidInput)

	assert.ErrorIs(t, nfe.ValidarChave("123"), domain.ErrInvalidInput)
	assert.ErrorIs(t, nfe.ValidarChave(strings.Repeat("A", 44)), domain.ErrInvalidInput)
}

func TestNormalizarTexto(t *testing.T) {
	assert.Equal(t, "Sao Paulo", nfe.NormalizarTexto("São Paulo", 60))
	assert.Equal(t, "PAO FRANCES", nfe.NormalizarTexto("PÃO  FRANCÊS", 60))
	assert.Equal(t, "abc", nfe.NormalizarTexto("  abc  ", 60))
	assert.Equal(t, "abcde", nfe.NormalizarTexto("abcdefgh", 5))
	assert.Equal(t, "", nfe.NormalizarTexto("", 10))
}
