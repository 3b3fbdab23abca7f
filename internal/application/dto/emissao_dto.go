package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmitirNotaRequest body para POST /api/notas. A classificação tributária de
// cada item vem pronta do chamador (PDV); o serviço só totaliza e transmite.
type EmitirNotaRequest struct {
	Modelo       int                  `json:"modelo"` // 55 | 65
	Serie        int                  `json:"serie"`
	Destinatario *DestinatarioRequest `json:"destinatario,omitempty"`
	Itens        []ItemNotaRequest    `json:"itens"`
	Pagamentos   []PagamentoRequest   `json:"pagamentos"`
}

// DestinatarioRequest comprador identificado (opcional na NFC-e).
type DestinatarioRequest struct {
	CPF  string `json:"cpf,omitempty"`
	CNPJ string `json:"cnpj,omitempty"`
	Nome string `json:"nome,omitempty"`
}

// ItemNotaRequest linha da venda com classificação tributária.
type ItemNotaRequest struct {
	Codigo        string          `json:"codigo"`
	GTIN          string          `json:"gtin,omitempty"`
	Descricao     string          `json:"descricao"`
	NCM           string          `json:"ncm"`
	CFOP          string          `json:"cfop"`
	Unidade       string          `json:"unidade,omitempty"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	ValorTotal    decimal.Decimal `json:"valor_total"`

	Origem       string          `json:"origem,omitempty"`
	CSTICMS      string          `json:"cst_icms,omitempty"`
	CSOSN        string          `json:"csosn,omitempty"`
	AliquotaICMS decimal.Decimal `json:"aliquota_icms"`

	CSTPIS         string          `json:"cst_pis,omitempty"`
	AliquotaPIS    decimal.Decimal `json:"aliquota_pis"`
	CSTCOFINS      string          `json:"cst_cofins,omitempty"`
	AliquotaCOFINS decimal.Decimal `json:"aliquota_cofins"`

	CSTIBSCBS   string          `json:"cst_ibs_cbs,omitempty"`
	AliquotaIBS decimal.Decimal `json:"aliquota_ibs"`
	AliquotaCBS decimal.Decimal `json:"aliquota_cbs"`
}

// PagamentoRequest entrada do grupo pag (um detPag por meio).
type PagamentoRequest struct {
	Meio        string          `json:"meio"` // código tPag
	Valor       decimal.Decimal `json:"valor"`
	Bandeira    string          `json:"bandeira,omitempty"`
	Autorizacao string          `json:"autorizacao,omitempty"`
}

// NotaResponse desfecho de uma emissão (ou consulta de documento emitido).
type NotaResponse struct {
	Chave        string    `json:"chave"`
	Estado       string    `json:"estado"` // AUTORIZADO|REJEITADO|INDETERMINADO|CANCELADO
	Modelo       int       `json:"modelo"`
	Serie        int       `json:"serie"`
	Numero       int64     `json:"numero"`
	Protocolo    string    `json:"protocolo,omitempty"`
	CodigoStatus string    `json:"codigo_status,omitempty"` // cStat verbatim da SEFAZ
	Mensagem     string    `json:"mensagem,omitempty"`
	QRCode       string    `json:"qrcode,omitempty"` // payload do QR (NFC-e)
	URLConsulta  string    `json:"url_consulta,omitempty"`
	EmitidaEm    time.Time `json:"emitida_em"`
}

// CancelarNotaRequest body para POST /api/notas/:chave/cancelamento.
type CancelarNotaRequest struct {
	Justificativa string `json:"justificativa" validate:"required,min=15,max=255"`
}

// StatusSefazResponse resultado da consulta de status do webservice.
type StatusSefazResponse struct {
	Online   bool   `json:"online"`
	Codigo   string `json:"codigo"`
	Mensagem string `json:"mensagem"`
}
