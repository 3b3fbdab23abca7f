package sefaz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz"
)

func TestResolverEndpoint_SPNativo(t *testing.T) {
	url, err := sefaz.ResolverEndpoint("SP", entity.ModeloNFCe, entity.AmbienteProducao, sefaz.OperacaoAutorizacao)
	require.NoError(t, err)
	assert.Equal(t, "https://nfce.fazenda.sp.gov.br/ws/NFeAutorizacao4.asmx", url)

	url, err = sefaz.ResolverEndpoint("SP", entity.ModeloNFe, entity.AmbienteHomologacao, sefaz.OperacaoStatusServico)
	require.NoError(t, err)
	assert.Equal(t, "https://homologacao.nfe.fazenda.sp.gov.br/ws/NFeStatusServico4.asmx", url)
}

func TestResolverEndpoint_DemaisUFsCaemNaSVRS(t *testing.T) {
	for _, uf := range []string{"RS", "SC", "RJ", "DF", "AC"} {
		url, err := sefaz.ResolverEndpoint(uf, entity.ModeloNFCe, entity.AmbienteProducao, sefaz.OperacaoAutorizacao)
		require.NoError(t, err, uf)
		assert.True(t, strings.Contains(url, "svrs.rs.gov.br"), "UF %s deve rotear para a SVRS: %s", uf, url)
	}
}

func TestResolverEndpoint_HomologacaoTemHostProprio(t *testing.T) {
	prod, err := sefaz.ResolverEndpoint("RS", entity.ModeloNFCe, entity.AmbienteProducao, sefaz.OperacaoConsultaProtocolo)
	require.NoError(t, err)
	hml, err := sefaz.ResolverEndpoint("RS", entity.ModeloNFCe, entity.AmbienteHomologacao, sefaz.OperacaoConsultaProtocolo)
	require.NoError(t, err)
	assert.NotEqual(t, prod, hml)
	assert.Contains(t, hml, "homologacao.")
}

func TestResolverEndpoint_TodasUFsTodasOperacoes(t *testing.T) {
	operacoes := []string{
		sefaz.OperacaoAutorizacao, sefaz.OperacaoStatusServico,
		sefaz.OperacaoConsultaProtocolo, sefaz.OperacaoRecepcaoEvento,
	}
	for uf := range mapaUFs() {
		for _, op := range operacoes {
			url, err := sefaz.ResolverEndpoint(uf, entity.ModeloNFe, entity.AmbienteProducao, op)
			require.NoError(t, err, "%s/%s", uf, op)
			assert.True(t, strings.HasPrefix(url, "https://"), url)
		}
	}
}

func mapaUFs() map[string]bool {
	ufs := map[string]bool{}
	for _, uf := range []string{
		"RO", "AC", "AM", "RR", "PA", "AP", "TO", "MA", "PI", "CE", "RN", "PB",
		"PE", "AL", "SE", "BA", "MG", "ES", "RJ", "SP", "PR", "SC", "RS", "MS",
		"MT", "GO", "DF",
	} {
		ufs[uf] = true
	}
	return ufs
}

func TestResolverEndpoint_EntradasInvalidas(t *testing.T) {
	_, err := sefaz.ResolverEndpoint("XX", entity.ModeloNFe, "1", sefaz.OperacaoAutorizacao)
	assert.Error(t, err)

	_, err = sefaz.ResolverEndpoint("SP", 60, "1", sefaz.OperacaoAutorizacao)
	assert.Error(t, err)

	_, err = sefaz.ResolverEndpoint("SP", entity.ModeloNFe, "3", sefaz.OperacaoAutorizacao)
	assert.Error(t, err)

	_, err = sefaz.ResolverEndpoint("SP", entity.ModeloNFe, "1", "OperacaoInexistente")
	assert.Error(t, err)
}

func TestURLConsultaQR(t *testing.T) {
	assert.Contains(t, sefaz.URLConsultaQR("SP", entity.AmbienteProducao), "nfce.fazenda.sp.gov.br")
	assert.Contains(t, sefaz.URLConsultaQR("SP", entity.AmbienteHomologacao), "homologacao")
	assert.Contains(t, sefaz.URLConsultaQR("RS", entity.AmbienteProducao), "svrs.rs.gov.br")
}
