package signer_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz/signer"
)

func TestCanonicalizar_RemoveBarulho(t *testing.T) {
	entrada := []byte("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<!-- comentario -->\n" +
		"<a>\n  <b>x</b>\n  <c></c>\n</a>")

	saida, err := signer.Canonicalizar(entrada)
	require.NoError(t, err)

	texto := string(saida)
	assert.NotContains(t, texto, "<?xml", "o prolog não entra no digest")
	assert.NotContains(t, texto, "comentario")
	assert.NotContains(t, texto, "\n", "espaços entre elementos são descartados")
	assert.Contains(t, texto, "<b>x</b>")
	assert.Contains(t, texto, "<c></c>", "tag vazia sai na forma expandida")
}

func TestCanonicalizar_OrdenaAtributos(t *testing.T) {
	saida, err := signer.Canonicalizar([]byte(`<a zeta="2" alfa="1"></a>`))
	require.NoError(t, err)
	assert.Equal(t, `<a alfa="1" zeta="2"></a>`, string(saida))
}

func TestCanonicalizar_Deterministica(t *testing.T) {
	entrada := []byte(`<doc b="2" a="1"><filho attr="v">texto</filho></doc>`)
	s1, err := signer.Canonicalizar(entrada)
	require.NoError(t, err)
	s2, err := signer.Canonicalizar(entrada)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestExtrairElementoPorID_HerdaNamespaceDaRaiz(t *testing.T) {
	doc := etree.NewDocument()
	err := doc.ReadFromString(`<NFe xmlns="http://www.portalfiscal.inf.br/nfe">` +
		`<infNFe Id="NFe123" versao="4.00"><ide><cUF>35</cUF></ide></infNFe></NFe>`)
	require.NoError(t, err)

	sub, err := signer.ExtrairElementoPorID(doc, "NFe123")
	require.NoError(t, err)

	texto := string(sub)
	assert.Contains(t, texto, `xmlns="http://www.portalfiscal.inf.br/nfe"`,
		"o xmlns default herdado deve acompanhar o subtree extraído")
	assert.Contains(t, texto, `Id="NFe123"`)
	assert.NotContains(t, texto, "<NFe ", "apenas o subtree, sem o elemento raiz")
}

func TestExtrairElementoPorID_NaoEncontrado(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<a><b/></a>`))

	_, err := signer.ExtrairElementoPorID(doc, "inexistente")
	assert.Error(t, err)
}
