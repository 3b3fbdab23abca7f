package nfe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestGerarChave_VetorExato valida que a chave de acesso reproduz, dígito por
// dígito, o vetor de referência calculado manualmente pelo módulo 11.
//
// Prefixo (43 dígitos):
//
//	cUF    = 35           (SP)
//	AAMM   = 2311         (emissão em novembro/2023)
//	CNPJ   = 11222333000181
//	mod    = 65           (NFC-e)
//	serie  = 001
//	nNF    = 000000042
//	tpEmis = 1
//	cNF    = 12345678
//
// Soma ponderada (pesos 2..9 da direita para a esquerda) = 469;
// 469 mod 11 = 7; DV = 11 - 7 = 4.
// ──────────────────────────────────────────────────────────────────────────────

const chaveEsperada = "35" + "2311" + "11222333000181" + "65" + "001" + "000000042" + "1" + "12345678" + "4"

func paramsReferencia() *nfe.ChaveParams {
	return &nfe.ChaveParams{
		UF:             "SP",
		Emissao:        time.Date(2023, time.November, 29, 14, 30, 0, 0, time.UTC),
		CNPJ:           "11.222.333/0001-81",
		Modelo:         65,
		Serie:          1,
		Numero:         42,
		TipoEmissao:    1,
		CodigoNumerico: 12345678,
	}
}

func TestGerarChave_VetorExato(t *testing.T) {
	svc := nfe.NewChaveAcessoService()

	chave, err := svc.Gerar(paramsReferencia())
	require.NoError(t, err)
	require.Len(t, chave, 44, "a chave de acesso tem sempre 44 dígitos")
	assert.Equal(t, chaveEsperada, chave,
		"a chave deve coincidir exatamente com o vetor de referência")
}

// TestGerarChave_Deterministica verifica que o mesmo cNF reproduz a mesma
// chave — requisito para retentativas que reaproveitam o código numérico.
func TestGerarChave_Deterministica(t *testing.T) {
	svc := nfe.NewChaveAcessoService()

	c1, err1 := svc.Gerar(paramsReferencia())
	c2, err2 := svc.Gerar(paramsReferencia())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, c1, c2)
}

// TestCalcularDV_PerturbacaoMudaDV altera um único dígito do prefixo e confere
// que o DV muda (pesos 2..9 nunca são múltiplos de 11, então a soma ponderada
// módulo 11 sempre se desloca).
func TestCalcularDV_PerturbacaoMudaDV(t *testing.T) {
	prefixo := chaveEsperada[:43]

	dvOriginal, err := nfe.CalcularDV(prefixo)
	require.NoError(t, err)
	require.Equal(t, byte('4'), dvOriginal)

	// Primeiro dígito 3 -> 4: soma 469+4 = 473 = 11*43, resto 0, DV 0.
	p1 := "4" + prefixo[1:]
	dv1, err := nfe.CalcularDV(p1)
	require.NoError(t, err)
	assert.Equal(t, byte('0'), dv1)
	assert.NotEqual(t, dvOriginal, dv1)

	// Último dígito do cNF 8 -> 9: soma 471, resto 9, DV 2.
	p2 := prefixo[:42] + "9"
	dv2, err := nfe.CalcularDV(p2)
	require.NoError(t, err)
	assert.Equal(t, byte('2'), dv2)
	assert.NotEqual(t, dvOriginal, dv2)
}

// TestGerarChave_CNPJCurtoPreenchidoComZeros garante o zero à esquerda no CNPJ.
func TestGerarChave_CNPJCurtoPreenchidoComZeros(t *testing.T) {
	svc := nfe.NewChaveAcessoService()
	p := paramsReferencia()
	p.CNPJ = "181"

	chave, err := svc.Gerar(p)
	require.NoError(t, err)
	assert.Equal(t, "00000000000181", chave[6:20],
		"CNPJ curto deve ocupar 14 posições com zeros à esquerda")

	// O DV devolvido deve conferir com o recálculo sobre o próprio prefixo.
	dv, err := nfe.CalcularDV(chave[:43])
	require.NoError(t, err)
	assert.Equal(t, dv, chave[43])
}

// TestGerarChave_AAMMVemDaEmissao usa uma emissão antiga para provar que o
// AAMM não é derivado do relógio.
func TestGerarChave_AAMMVemDaEmissao(t *testing.T) {
	svc := nfe.NewChaveAcessoService()
	p := paramsReferencia()
	p.Emissao = time.Date(2019, time.February, 3, 8, 0, 0, 0, time.UTC)

	chave, err := svc.Gerar(p)
	require.NoError(t, err)
	assert.Equal(t, "1902", chave[2:6])
}

// ── Erros de validação ────────────────────────────────────────────────────────

func TestGerarChave_ErroUFDesconhecida(t *testing.T) {
	svc := nfe.NewChaveAcessoService()
	p := paramsReferencia()
	p.UF = "XX"
	_, err := svc.Gerar(p)
	assert.Error(t, err)
}

func TestGerarChave_ErroModeloInvalido(t *testing.T) {
	svc := nfe.NewChaveAcessoService()
	p := paramsReferencia()
	p.Modelo = 60
	_, err := svc.Gerar(p)
	assert.Error(t, err)
}

func TestGerarChave_ErroNumeroForaDoIntervalo(t *testing.T) {
	svc := nfe.NewChaveAcessoService()
	p := paramsReferencia()
	p.Numero = 0
	_, err := svc.Gerar(p)
	assert.Error(t, err)
}

func TestCalcularDV_ErroTamanho(t *testing.T) {
	_, err := nfe.CalcularDV("123")
	assert.Error(t, err)
}

func TestGerarCodigoNumerico_OitoDigitosNoMaximo(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := nfe.GerarCodigoNumerico()
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 99999999)
	}
}
