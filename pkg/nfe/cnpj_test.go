package nfe_test

import (
	"testing"

	"github.com/lojafacil/pdv-fiscal/pkg/nfe"
	"github.com/stretchr/testify/assert"
)

// CNPJ de exemplo clássico da Receita: 11.222.333/0001-81 (dígitos 8 e 1).
func TestValidarCNPJ_Valido(t *testing.T) {
	assert.NoError(t, nfe.ValidarCNPJ("11222333000181"))
	assert.NoError(t, nfe.ValidarCNPJ("11.222.333/0001-81"),
		"pontuação deve ser ignorada na validação")
}

func TestValidarCNPJ_DigitoVerificadorErrado(t *testing.T) {
	assert.Error(t, nfe.ValidarCNPJ("11222333000182"),
		"segundo dígito verificador trocado deve ser rejeitado")
	assert.Error(t, nfe.ValidarCNPJ("11222333000191"),
		"primeiro dígito verificador trocado deve ser rejeitado")
}

func TestValidarCNPJ_TamanhoErrado(t *testing.T) {
	assert.Error(t, nfe.ValidarCNPJ("1122233300018"))
	assert.Error(t, nfe.ValidarCNPJ(""))
}

func TestValidarCNPJ_TodosDigitosIguais(t *testing.T) {
	assert.Error(t, nfe.ValidarCNPJ("00000000000000"),
		"sequência repetida passa no módulo 11 mas não é um CNPJ real")
}

func TestSomenteDigitos(t *testing.T) {
	assert.Equal(t, "11222333000181", nfe.SomenteDigitos("11.222.333/0001-81"))
	assert.Equal(t, "", nfe.SomenteDigitos("abc"))
}
