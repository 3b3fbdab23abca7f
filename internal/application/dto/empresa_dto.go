package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnderecoDTO endereço fiscal do emitente (enderEmit).
type EnderecoDTO struct {
	Logradouro      string `json:"logradouro"`
	Numero          string `json:"numero"`
	Bairro          string `json:"bairro"`
	CodigoMunicipio string `json:"codigo_municipio"` // IBGE, 7 dígitos
	Municipio       string `json:"municipio"`
	UF              string `json:"uf"`
	CEP             string `json:"cep"`
}

// CreateEmpresaRequest body para POST /api/empresas.
type CreateEmpresaRequest struct {
	CNPJ              string          `json:"cnpj" validate:"required"`
	RazaoSocial       string          `json:"razao_social" validate:"required"`
	NomeFantasia      string          `json:"nome_fantasia,omitempty"`
	InscricaoEstadual string          `json:"inscricao_estadual" validate:"required"`
	RegimeTributario  int             `json:"regime_tributario" validate:"required,oneof=1 2 3"`
	Endereco          EnderecoDTO     `json:"endereco"`
	IBSCBSHabilitado  bool            `json:"ibs_cbs_habilitado"`
	AliquotaIBSPadrao decimal.Decimal `json:"aliquota_ibs_padrao"`
	AliquotaCBSPadrao decimal.Decimal `json:"aliquota_cbs_padrao"`
}

// EmpresaResponse empresa em respostas.
type EmpresaResponse struct {
	ID                string          `json:"id"`
	CNPJ              string          `json:"cnpj"`
	RazaoSocial       string          `json:"razao_social"`
	NomeFantasia      string          `json:"nome_fantasia,omitempty"`
	InscricaoEstadual string          `json:"inscricao_estadual"`
	RegimeTributario  int             `json:"regime_tributario"`
	Endereco          EnderecoDTO     `json:"endereco"`
	IBSCBSHabilitado  bool            `json:"ibs_cbs_habilitado"`
	AliquotaIBSPadrao decimal.Decimal `json:"aliquota_ibs_padrao"`
	AliquotaCBSPadrao decimal.Decimal `json:"aliquota_cbs_padrao"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
