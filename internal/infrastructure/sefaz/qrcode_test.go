package sefaz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz"
)

func TestPayload_FormatoEHash(t *testing.T) {
	svc := sefaz.NewQRCodeService()

	payload, err := svc.Payload(chaveTeste, entity.AmbienteHomologacao, "000001", "SEGREDO-CSC")
	require.NoError(t, err)

	partes := strings.Split(payload, "|")
	require.Len(t, partes, 5, "chave|versão|tpAmb|idCSC|hash")
	assert.Equal(t, chaveTeste, partes[0])
	assert.Equal(t, "2", partes[1])
	assert.Equal(t, "2", partes[2])
	assert.Equal(t, "000001", partes[3])
	assert.Len(t, partes[4], 40, "SHA-1 em hexadecimal")
	assert.Equal(t, strings.ToUpper(partes[4]), partes[4], "hash em maiúsculas")
	assert.NotContains(t, payload, "SEGREDO-CSC", "o CSC nunca aparece no payload")
}

func TestPayload_CSCMudaOHash(t *testing.T) {
	svc := sefaz.NewQRCodeService()

	p1, err := svc.Payload(chaveTeste, "1", "000001", "csc-a")
	require.NoError(t, err)
	p2, err := svc.Payload(chaveTeste, "1", "000001", "csc-b")
	require.NoError(t, err)

	assert.Equal(t, p1[:len(p1)-40], p2[:len(p2)-40], "a sequência visível é a mesma")
	assert.NotEqual(t, p1, p2, "CSC diferente gera hash diferente")
}

func TestPayload_Deterministico(t *testing.T) {
	svc := sefaz.NewQRCodeService()
	p1, err := svc.Payload(chaveTeste, "1", "000001", "csc")
	require.NoError(t, err)
	p2, err := svc.Payload(chaveTeste, "1", "000001", "csc")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestPayload_Validacoes(t *testing.T) {
	svc := sefaz.NewQRCodeService()

	_, err := svc.Payload("123", "1", "000001", "csc")
	assert.Error(t, err, "chave curta")

	_, err = svc.Payload(chaveTeste, "1", "", "csc")
	assert.Error(t, err, "idCSC obrigatório")

	_, err = svc.Payload(chaveTeste, "1", "000001", "")
	assert.Error(t, err, "CSC obrigatório")
}

func TestURL_MontaSobreABase(t *testing.T) {
	svc := sefaz.NewQRCodeService()
	url, err := svc.URL("https://www.homologacao.nfce.fazenda.sp.gov.br/qrcode",
		chaveTeste, "2", "000001", "csc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://www.homologacao.nfce.fazenda.sp.gov.br/qrcode?p="+chaveTeste+"|"))
}

func TestInserirInfNFeSupl_PosicaoAposInfNFe(t *testing.T) {
	b := sefaz.NewXMLBuilderService()
	xmlDoc, err := b.Build(documentoTeste(entity.RegimeSimples))
	require.NoError(t, err)

	out, err := sefaz.InserirInfNFeSupl(xmlDoc, "https://exemplo/qrcode?p=abc", "https://exemplo/consulta")
	require.NoError(t, err)

	texto := string(out)
	idxInf := strings.Index(texto, "</infNFe>")
	idxSupl := strings.Index(texto, "<infNFeSupl>")
	require.NotEqual(t, -1, idxInf)
	require.NotEqual(t, -1, idxSupl)
	assert.Greater(t, idxSupl, idxInf, "infNFeSupl entra depois do infNFe")
	assert.Contains(t, texto, "<qrCode>https://exemplo/qrcode?p=abc</qrCode>")
	assert.Contains(t, texto, "<urlChave>https://exemplo/consulta</urlChave>")
}

func TestInserirInfNFeSupl_SemInfNFe(t *testing.T) {
	_, err := sefaz.InserirInfNFeSupl([]byte("<outro/>"), "q", "u")
	assert.Error(t, err)
}
