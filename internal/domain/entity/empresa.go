package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regimes tributários (CRT) conforme layout NF-e 4.00.
const (
	RegimeSimples        = 1 // Simples Nacional
	RegimeSimplesExcesso = 2 // Simples Nacional, excesso de sublimite de receita
	RegimeNormal         = 3 // Regime Normal
)

// Endereco é o endereço fiscal do emitente (enderEmit no XML).
type Endereco struct {
	Logradouro      string
	Numero          string
	Bairro          string
	CodigoMunicipio string // código IBGE de 7 dígitos (cMun)
	Municipio       string
	UF              string // sigla (SP, RS...)
	CEP             string
}

// Empresa é o perfil fiscal do emitente. Snapshot imutável para o núcleo de
// emissão: fornecido pelo cadastro da aplicação, somente leitura aqui.
type Empresa struct {
	ID                string
	CNPJ              string
	RazaoSocial       string
	NomeFantasia      string
	InscricaoEstadual string
	RegimeTributario  int // ver constantes Regime*
	Endereco          Endereco
	IBSCBSHabilitado  bool            // reforma tributária: emitir grupo IBS/CBS por item
	AliquotaIBSPadrao decimal.Decimal // usada quando o item não traz alíquota própria
	AliquotaCBSPadrao decimal.Decimal
	Status            string // active, suspended, inactive
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Destinatario identifica o comprador (opcional na NFC-e).
type Destinatario struct {
	CPF  string // preenchido para pessoa física
	CNPJ string // preenchido para pessoa jurídica
	Nome string
}
