// Package nfe contém catálogos e validações alinhados ao layout da
// Nota Fiscal Eletrônica 4.00 (Manual de Orientação do Contribuinte).
package nfe

// =============================================================================
// Tabela de UF — código IBGE usado em cUF e na chave de acesso
// =============================================================================

// CodigoUF mapeia a sigla da UF para o código IBGE de dois dígitos.
var CodigoUF = map[string]int{
	"RO": 11, "AC": 12, "AM": 13, "RR": 14, "PA": 15, "AP": 16, "TO": 17,
	"MA": 21, "PI": 22, "CE": 23, "RN": 24, "PB": 25, "PE": 26, "AL": 27, "SE": 28, "BA": 29,
	"MG": 31, "ES": 32, "RJ": 33, "SP": 35,
	"PR": 41, "SC": 42, "RS": 43,
	"MS": 50, "MT": 51, "GO": 52, "DF": 53,
}

// =============================================================================
// Meios de pagamento (tPag) — códigos de uso frequente no PDV
// =============================================================================

const (
	PagamentoDinheiro      = "01" // Dinheiro
	PagamentoCheque        = "02" // Cheque
	PagamentoCartaoCredito = "03" // Cartão de Crédito
	PagamentoCartaoDebito  = "04" // Cartão de Débito
	PagamentoCreditoLoja   = "05" // Crédito Loja
	PagamentoPIX           = "17" // Pagamento Instantâneo (PIX)
	PagamentoOutros        = "99" // Outros
)

// MeiosPagamentoValidos códigos tPag aceitos pelo builder.
var MeiosPagamentoValidos = map[string]bool{
	PagamentoDinheiro: true, PagamentoCheque: true,
	PagamentoCartaoCredito: true, PagamentoCartaoDebito: true,
	PagamentoCreditoLoja: true, PagamentoPIX: true, PagamentoOutros: true,
}

// MeioExigeCartao indica se o tPag carrega o grupo card (bandeira/autorização).
func MeioExigeCartao(tPag string) bool {
	return tPag == PagamentoCartaoCredito || tPag == PagamentoCartaoDebito
}

// =============================================================================
// Códigos de situação tributária usados como default pelo builder
// =============================================================================

const (
	CSOSNSemCredito = "102" // Simples Nacional: tributada sem permissão de crédito
	CSTICMSIntegral = "00"  // Regime normal: tributada integralmente
	CSTPISAliquota  = "01"  // PIS tributável, alíquota básica
	OrigemNacional  = "0"
)

// =============================================================================
// Limites de texto livre do layout 4.00 (campos truncados, nunca rejeitados)
// =============================================================================

const (
	MaxDescricaoItem = 120 // xProd
	MaxRazaoSocial   = 60  // xNome
	MaxLogradouro    = 60  // xLgr
	MaxJustificativa = 255 // xJust do evento de cancelamento
	MinJustificativa = 15
)
