package sefaz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Respostas reduzidas no formato devolvido pelos webservices (elemento de
// retorno embrulhado no envelope SOAP 1.2 e no *Result da operação).
const envelopeAutorizado = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
 <soap:Body>
  <nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeAutorizacao4">
   <retEnviNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
    <tpAmb>2</tpAmb><verAplic>SP_NFCE_4.00</verAplic>
    <cStat>104</cStat><xMotivo>Lote processado</xMotivo><cUF>35</cUF>
    <protNFe versao="4.00">
     <infProt>
      <tpAmb>2</tpAmb><verAplic>SP_NFCE_4.00</verAplic>
      <chNFe>35231111222333000181650010000000421123456784</chNFe>
      <dhRecbto>2023-11-29T14:30:05-03:00</dhRecbto>
      <nProt>135230009876543</nProt>
      <cStat>100</cStat><xMotivo>Autorizado o uso da NF-e</xMotivo>
     </infProt>
    </protNFe>
   </retEnviNFe>
  </nfeResultMsg>
 </soap:Body>
</soap:Envelope>`

const envelopeRejeitado = `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
 <soap:Body>
  <nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeAutorizacao4">
   <retEnviNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
    <tpAmb>2</tpAmb><verAplic>SP_NFCE_4.00</verAplic>
    <cStat>104</cStat><xMotivo>Lote processado</xMotivo><cUF>35</cUF>
    <protNFe versao="4.00">
     <infProt>
      <chNFe>35231111222333000181650010000000421123456784</chNFe>
      <cStat>539</cStat><xMotivo>Rejeicao: Duplicidade de NF-e</xMotivo>
     </infProt>
    </protNFe>
   </retEnviNFe>
  </nfeResultMsg>
 </soap:Body>
</soap:Envelope>`

func TestParseRetEnviNFe_Autorizado(t *testing.T) {
	c := &ClienteSOAP{}
	res := c.parseRetEnviNFe([]byte(envelopeAutorizado))

	assert.True(t, res.Aceito)
	assert.Equal(t, "100", res.CodigoStatus, "o desfecho vem do protocolo, não do lote")
	assert.Equal(t, "Autorizado o uso da NF-e", res.Mensagem)
	assert.Equal(t, "135230009876543", res.Protocolo)
	assert.Equal(t, "35231111222333000181650010000000421123456784", res.ChaveRetornada)
	assert.NotEmpty(t, res.RespostaBruta)
}

func TestParseRetEnviNFe_Rejeitado(t *testing.T) {
	c := &ClienteSOAP{}
	res := c.parseRetEnviNFe([]byte(envelopeRejeitado))

	assert.False(t, res.Aceito)
	assert.Equal(t, "539", res.CodigoStatus)
	assert.Contains(t, res.Mensagem, "Duplicidade")
	assert.Empty(t, res.Protocolo)
}

func TestParseRetEnviNFe_RespostaMalformada(t *testing.T) {
	c := &ClienteSOAP{}
	res := c.parseRetEnviNFe([]byte("<html>erro de gateway</html>"))

	assert.False(t, res.Aceito, "resposta malformada nunca é aceite")
	assert.Equal(t, []byte("<html>erro de gateway</html>"), res.RespostaBruta,
		"o payload bruto é preservado para diagnóstico")
}

func TestDesempacotar_StatusServico(t *testing.T) {
	envelope := `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope"><soap:Body>
	 <nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeStatusServico4">
	  <retConsStatServ xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
	   <tpAmb>2</tpAmb><cStat>107</cStat><xMotivo>Servico em Operacao</xMotivo><cUF>35</cUF><tMed>1</tMed>
	  </retConsStatServ>
	 </nfeResultMsg>
	</soap:Body></soap:Envelope>`

	var ret retConsStatServ
	require.NoError(t, desempacotar([]byte(envelope), "retConsStatServ", &ret))
	assert.Equal(t, "107", ret.CStat)
	assert.Equal(t, "Servico em Operacao", ret.XMotivo)
	assert.Equal(t, "1", ret.TMed)
}

func TestDesempacotar_ElementoAusente(t *testing.T) {
	err := desempacotar([]byte("<a><b/></a>"), "retEnviNFe", &retEnviNFe{})
	assert.Error(t, err)
}

func TestDesempacotar_EventoCancelamento(t *testing.T) {
	envelope := `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope"><soap:Body>
	 <nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeRecepcaoEvento4">
	  <retEnvEvento xmlns="http://www.portalfiscal.inf.br/nfe" versao="1.00">
	   <idLote>1</idLote><tpAmb>2</tpAmb><cOrgao>35</cOrgao>
	   <cStat>128</cStat><xMotivo>Lote de Evento Processado</xMotivo>
	   <retEvento versao="1.00"><infEvento>
	    <tpAmb>2</tpAmb><cOrgao>35</cOrgao>
	    <cStat>135</cStat><xMotivo>Evento registrado e vinculado a NF-e</xMotivo>
	    <chNFe>35231111222333000181650010000000421123456784</chNFe>
	    <tpEvento>110111</tpEvento><nSeqEvento>1</nSeqEvento>
	    <nProt>135230001112223</nProt>
	   </infEvento></retEvento>
	  </retEnvEvento>
	 </nfeResultMsg>
	</soap:Body></soap:Envelope>`

	var ret retEnvEvento
	require.NoError(t, desempacotar([]byte(envelope), "retEnvEvento", &ret))
	require.Len(t, ret.RetEvento, 1)
	assert.Equal(t, "135", ret.RetEvento[0].InfEvento.CStat)
	assert.Equal(t, "110111", ret.RetEvento[0].InfEvento.TpEvento)
	assert.Equal(t, "135230001112223", ret.RetEvento[0].InfEvento.NProt)
}
