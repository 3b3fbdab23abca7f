package sefaz_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz"
)

const chaveTeste = "35231111222333000181650010000000421123456784"

func documentoTeste(regime int) *entity.DocumentoFiscal {
	item := entity.ItemVenda{
		Codigo:        "SKU-001",
		GTIN:          entity.SemGTIN,
		Descricao:     "Cafe torrado 500g",
		NCM:           "09012100",
		CFOP:          "5102",
		Unidade:       "UN",
		Quantidade:    decimal.NewFromInt(2),
		ValorUnitario: decimal.RequireFromString("25.50"),
		ValorTotal:    decimal.RequireFromString("51.00"),
		Origem:        "0",
	}
	if regime == entity.RegimeNormal {
		item.CSTICMS = "00"
		item.AliquotaICMS = decimal.NewFromInt(18)
	} else {
		item.CSOSN = "102"
	}
	doc := &entity.DocumentoFiscal{
		Ambiente: entity.AmbienteHomologacao,
		Modelo:   entity.ModeloNFCe,
		Serie:    1,
		Numero:   42,
		Emissao:  time.Date(2023, time.November, 29, 14, 30, 0, 0, time.FixedZone("BRT", -3*3600)),
		Chave:    chaveTeste,
		Empresa: &entity.Empresa{
			CNPJ:              "11222333000181",
			RazaoSocial:       "Mercearia Sao Jorge LTDA",
			InscricaoEstadual: "123456789012",
			RegimeTributario:  regime,
			Endereco: entity.Endereco{
				Logradouro: "Rua das Flores", Numero: "100", Bairro: "Centro",
				CodigoMunicipio: "3550308", Municipio: "Sao Paulo", UF: "SP", CEP: "01001-000",
			},
		},
		Itens:      []entity.ItemVenda{item},
		Pagamentos: []entity.Pagamento{{Meio: "01", Valor: decimal.RequireFromString("51.00")}},
		Totais: entity.Totais{
			ValorProdutos: decimal.RequireFromString("51.00"),
			ValorTotal:    decimal.RequireFromString("51.00"),
		},
	}
	return doc
}

func TestBuild_EstruturaBasica(t *testing.T) {
	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(documentoTeste(entity.RegimeSimples))
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">`)
	assert.Contains(t, texto, `<infNFe Id="NFe`+chaveTeste+`" versao="4.00">`)
	assert.NotContains(t, texto, "<?xml", "o prolog fica de fora; quem embrulha decide")

	// Ordem dos grupos conforme o schema.
	ordem := []string{"<ide>", "<emit>", "<det ", "<total>", "<transp>", "<pag>"}
	ultimo := -1
	for _, marca := range ordem {
		idx := strings.Index(texto, marca)
		require.NotEqual(t, -1, idx, "grupo %s ausente", marca)
		assert.Greater(t, idx, ultimo, "grupo %s fora de ordem", marca)
		ultimo = idx
	}
}

func TestBuild_IdeDerivadoDaChave(t *testing.T) {
	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(documentoTeste(entity.RegimeSimples))
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<cNF>12345678</cNF>", "cNF sai da chave, não de novo sorteio")
	assert.Contains(t, texto, "<cDV>4</cDV>")
	assert.Contains(t, texto, "<tpEmis>1</tpEmis>")
	assert.Contains(t, texto, "<cUF>35</cUF>")
	assert.Contains(t, texto, "<mod>65</mod>")
	assert.Contains(t, texto, "<tpAmb>2</tpAmb>")
	assert.Contains(t, texto, "<dhEmi>2023-11-29T14:30:00-03:00</dhEmi>")
}

func TestBuild_RamoSimplesNacional(t *testing.T) {
	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(documentoTeste(entity.RegimeSimples))
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<ICMSSN102>")
	assert.Contains(t, texto, "<CSOSN>102</CSOSN>")
	assert.NotContains(t, texto, "<ICMS00>")
	assert.Contains(t, texto, "<CRT>1</CRT>")
}

func TestBuild_RamoRegimeNormal(t *testing.T) {
	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(documentoTeste(entity.RegimeNormal))
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<ICMS00>")
	assert.Contains(t, texto, "<CST>00</CST>")
	assert.Contains(t, texto, "<pICMS>18.00</pICMS>")
	assert.Contains(t, texto, "<vICMS>9.18</vICMS>")
	assert.NotContains(t, texto, "<ICMSSN102>")
	assert.Contains(t, texto, "<CRT>3</CRT>")
}

func TestBuild_DestinatarioHomologacao(t *testing.T) {
	doc := documentoTeste(entity.RegimeSimples)
	doc.Destinatario = &entity.Destinatario{CPF: "123.456.789-09", Nome: "Cliente Real"}

	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(doc)
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<CPF>12345678909</CPF>")
	assert.Contains(t, texto, sefaz.XNomeHomologacao,
		"em homologação o nome real do destinatário é substituído")
	assert.NotContains(t, texto, "Cliente Real")
}

func TestBuild_DestinatarioProducaoMantemNome(t *testing.T) {
	doc := documentoTeste(entity.RegimeSimples)
	doc.Ambiente = entity.AmbienteProducao
	doc.Destinatario = &entity.Destinatario{CPF: "12345678909", Nome: "Cliente Real"}

	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<xNome>Cliente Real</xNome>")
}

func TestBuild_PagamentoCartaoComGrupoCard(t *testing.T) {
	doc := documentoTeste(entity.RegimeSimples)
	doc.Pagamentos = []entity.Pagamento{{
		Meio: "03", Valor: decimal.RequireFromString("51.00"),
		Bandeira: "01", Autorizacao: "AUT123",
	}}

	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(doc)
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<tPag>03</tPag>")
	assert.Contains(t, texto, "<card>")
	assert.Contains(t, texto, "<tBand>01</tBand>")
	assert.Contains(t, texto, "<cAut>AUT123</cAut>")
}

func TestBuild_TotaisNoICMSTot(t *testing.T) {
	doc := documentoTeste(entity.RegimeNormal)
	doc.Totais.BaseICMS = decimal.RequireFromString("51.00")
	doc.Totais.ValorICMS = decimal.RequireFromString("9.18")

	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(doc)
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<vBC>51.00</vBC>")
	assert.Contains(t, texto, "<vProd>51.00</vProd>")
	assert.Contains(t, texto, "<vNF>51.00</vNF>")
}

func TestBuild_GrupoIBSCBSQuandoHabilitado(t *testing.T) {
	doc := documentoTeste(entity.RegimeSimples)
	doc.Empresa.IBSCBSHabilitado = true
	doc.Itens[0].AliquotaIBS = decimal.RequireFromString("0.10")
	doc.Itens[0].AliquotaCBS = decimal.RequireFromString("0.90")
	doc.Totais.ValorIBS = decimal.RequireFromString("0.05")
	doc.Totais.ValorCBS = decimal.RequireFromString("0.46")

	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(doc)
	require.NoError(t, err)

	texto := string(out)
	assert.Contains(t, texto, "<IBSCBS>")
	assert.Contains(t, texto, "<pIBS>0.1000</pIBS>")
	assert.Contains(t, texto, "<pCBS>0.9000</pCBS>")

	// O totalizador sai junto com os grupos por item.
	assert.Contains(t, texto, "<IBSCBSTot>")
	assert.Contains(t, texto, "<vBCIBSCBS>51.00</vBCIBSCBS>")
	assert.Contains(t, texto, "<vIBS>0.05</vIBS>")
	assert.Contains(t, texto, "<vCBS>0.46</vCBS>")
}

func TestBuild_SemIBSCBSQuandoDesabilitado(t *testing.T) {
	b := sefaz.NewXMLBuilderService()
	out, err := b.Build(documentoTeste(entity.RegimeSimples))
	require.NoError(t, err)

	texto := string(out)
	assert.NotContains(t, texto, "<IBSCBS>")
	assert.NotContains(t, texto, "<IBSCBSTot>")
}

func TestBuild_ChaveInvalida(t *testing.T) {
	doc := documentoTeste(entity.RegimeSimples)
	doc.Chave = "123"

	b := sefaz.NewXMLBuilderService()
	_, err := b.Build(doc)
	assert.Error(t, err)
}
