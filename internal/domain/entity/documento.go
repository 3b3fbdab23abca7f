package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modelos de documento fiscal.
const (
	ModeloNFe  = 55 // Nota Fiscal Eletrônica (operações entre empresas)
	ModeloNFCe = 65 // NFC-e, cupom fiscal de consumidor final
)

// Ambientes SEFAZ (tpAmb).
const (
	AmbienteProducao    = "1"
	AmbienteHomologacao = "2"
)

// Estados terminais (e intermediários persistidos) de uma emissão.
const (
	EstadoAutorizado    = "AUTORIZADO"    // SEFAZ autorizou; número consumido
	EstadoRejeitado     = "REJEITADO"     // rejeição de negócio; número liberado para reuso
	EstadoIndeterminado = "INDETERMINADO" // falha de transporte; desfecho só via consulta por chave
	EstadoCancelado     = "CANCELADO"     // evento 110111 registrado após a autorização
)

// SemGTIN é o valor sentinela do campo cEAN quando o produto não tem código de barras.
const SemGTIN = "SEM GTIN"

// ItemVenda é uma linha do documento com a classificação tributária fornecida
// pelo chamador. O núcleo nunca recalcula regra fiscal, apenas totaliza.
type ItemVenda struct {
	Codigo        string // código interno (cProd)
	GTIN          string // código de barras ou vazio (vira "SEM GTIN")
	Descricao     string
	NCM           string
	CFOP          string
	Unidade       string
	Quantidade    decimal.Decimal
	ValorUnitario decimal.Decimal
	ValorTotal    decimal.Decimal // aceito como veio; tolerância de arredondamento é do chamador

	// ICMS
	Origem       string // 0 = nacional
	CSTICMS      string // regime normal (ex: "00")
	CSOSN        string // Simples Nacional (ex: "102")
	AliquotaICMS decimal.Decimal

	// PIS/COFINS
	CSTPIS         string
	AliquotaPIS    decimal.Decimal
	CSTCOFINS      string
	AliquotaCOFINS decimal.Decimal

	// IBS/CBS (opcional, reforma tributária)
	CSTIBSCBS   string
	AliquotaIBS decimal.Decimal
	AliquotaCBS decimal.Decimal
}

// Pagamento é uma entrada do grupo pag (um detPag por meio de pagamento).
type Pagamento struct {
	Meio        string // código tPag (ver pkg/nfe catálogos)
	Valor       decimal.Decimal
	Bandeira    string // tBand, cartões
	Autorizacao string // cAut, cartões
}

// Totais agregados do documento (ICMSTot).
type Totais struct {
	BaseICMS      decimal.Decimal
	ValorICMS     decimal.Decimal
	ValorPIS      decimal.Decimal
	ValorCOFINS   decimal.Decimal
	ValorIBS      decimal.Decimal
	ValorCBS      decimal.Decimal
	ValorProdutos decimal.Decimal
	ValorTotal    decimal.Decimal
}

// DocumentoFiscal é a raiz do agregado montado pelo builder. Construído a cada
// tentativa de emissão e nunca mutado após a assinatura.
type DocumentoFiscal struct {
	Ambiente     string // tpAmb
	Modelo       int    // 55 | 65
	Serie        int
	Numero       int64
	Emissao      time.Time
	Chave        string // 44 dígitos
	Empresa      *Empresa
	Destinatario *Destinatario // opcional
	Itens        []ItemVenda
	Pagamentos   []Pagamento
	Totais       Totais
}

// ResultadoSefaz é o desfecho normalizado de uma chamada ao webservice.
// Nunca persistido pelo núcleo; quem decide guardar é o chamador.
type ResultadoSefaz struct {
	Aceito         bool
	CodigoStatus   string // cStat verbatim
	Mensagem       string // xMotivo verbatim
	Protocolo      string // nProt, quando autorizado
	ChaveRetornada string // chNFe ecoada pela SEFAZ
	RecebidoEm     time.Time
	RespostaBruta  []byte // payload para diagnóstico/auditoria
}

// StatusServico é o resultado da consulta de status do webservice.
type StatusServico struct {
	Online   bool
	Codigo   string
	Mensagem string
}

// DocumentoEmitido é o registro persistido de uma tentativa de emissão.
type DocumentoEmitido struct {
	ID           string
	EmpresaID    string
	Modelo       int
	Serie        int
	Numero       int64
	Chave        string
	Estado       string // ver constantes Estado*
	XMLAssinado  string
	Protocolo    string
	CodigoStatus string
	Mensagem     string
	QRCode       string
	URLConsulta  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
