// Cliente SOAP 1.2 dos webservices NF-e 4.00 com autenticação TLS mútua.
// Toda falha de transporte embrulha domain.ErrConexaoSefaz: o chamador decide
// se o desfecho é indeterminado. Resposta que não parseia nunca derruba a
// chamada; vira resultado não aceito com o payload bruto preservado.

package sefaz

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	domnfe "github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

const (
	soapNS       = "http://www.w3.org/2003/05/soap-envelope"
	wsdlBase     = "http://www.portalfiscal.inf.br/nfe/wsdl/"
	contentSOAP  = "application/soap+xml; charset=utf-8"
	respMaxBytes = 4 << 20
)

// Códigos cStat que mudam o fluxo de emissão.
const (
	CStatAutorizado      = "100" // Autorizado o uso da NF-e
	CStatLoteProcessado  = "104" // Lote processado (resposta síncrona embrulha o protNFe)
	CStatServicoOK       = "107" // Serviço em operação
	CStatCancelamentoOK  = "135" // Evento registrado e vinculado à NF-e
	CStatCancelamentoOK2 = "155" // Evento registrado fora do prazo regulamentar
)

// TipoEventoCancelamento é o tpEvento do cancelamento.
const TipoEventoCancelamento = "110111"

// ClienteSOAP fala com o autorizador da UF. Uma instância por sessão de
// emissão (o certificado fica preso na configuração TLS do transporte).
type ClienteSOAP struct {
	httpClient *http.Client
	cert       *pkgnfe.CertificadoDigital
	assinador  pkgnfe.Assinador
	uf         string
	modelo     int
	ambiente   string
}

// NewClienteSOAP monta o cliente com TLS mútuo usando o certificado A1.
// O timeout de 60 s acomoda a autorização síncrona; operações de consulta
// devem passar um context com prazo menor.
func NewClienteSOAP(cert *pkgnfe.CertificadoDigital, assinador pkgnfe.Assinador, uf string, modelo int, ambiente string) (*ClienteSOAP, error) {
	if cert == nil || cert.ChavePrivada == nil {
		return nil, fmt.Errorf("sefaz: certificado com chave privada é obrigatório para TLS mútuo")
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert.TLSCertificate()},
			MinVersion:   tls.VersionTLS12,
		},
	}
	return &ClienteSOAP{
		httpClient: &http.Client{Transport: transport, Timeout: 60 * time.Second},
		cert:       cert,
		assinador:  assinador,
		uf:         uf,
		modelo:     modelo,
		ambiente:   ambiente,
	}, nil
}

// ── Operações ─────────────────────────────────────────────────────────────────

// EnviarLote envia o XML assinado em um lote síncrono (indSinc=1) e devolve o
// desfecho normalizado. err não nulo significa falha de transporte.
func (c *ClienteSOAP) EnviarLote(ctx context.Context, xmlAssinado []byte, idLote string) (*entity.ResultadoSefaz, error) {
	var sb strings.Builder
	sb.WriteString(`<enviNFe xmlns="` + NsNFe + `" versao="` + VersaoLayout + `">`)
	sb.WriteString(`<idLote>` + idLote + `</idLote>`)
	sb.WriteString(`<indSinc>1</indSinc>`)
	sb.Write(xmlAssinado)
	sb.WriteString(`</enviNFe>`)

	raw, err := c.post(ctx, OperacaoAutorizacao, sb.String())
	if err != nil {
		return nil, err
	}
	return c.parseRetEnviNFe(raw), nil
}

// ConsultarStatus consulta a disponibilidade do autorizador da UF.
func (c *ClienteSOAP) ConsultarStatus(ctx context.Context) (*entity.StatusServico, error) {
	cuf := strconv.Itoa(pkgnfe.CodigoUF[c.uf])
	payload := `<consStatServ xmlns="` + NsNFe + `" versao="` + VersaoLayout + `">` +
		`<tpAmb>` + c.ambiente + `</tpAmb><cUF>` + cuf + `</cUF><xServ>STATUS</xServ></consStatServ>`

	raw, err := c.post(ctx, OperacaoStatusServico, payload)
	if err != nil {
		return nil, err
	}

	var ret retConsStatServ
	if err := desempacotar(raw, "retConsStatServ", &ret); err != nil {
		return &entity.StatusServico{Online: false, Mensagem: "resposta SOAP inesperada"}, nil
	}
	return &entity.StatusServico{
		Online:   ret.CStat == CStatServicoOK,
		Codigo:   ret.CStat,
		Mensagem: ret.XMotivo,
	}, nil
}

// ConsultarPorChave consulta a situação atual de um documento. É a operação
// que resolve emissões indeterminadas, então valida a chave localmente antes
// de gastar rede.
func (c *ClienteSOAP) ConsultarPorChave(ctx context.Context, chave string) (*entity.ResultadoSefaz, error) {
	if err := domnfe.ValidarChave(chave); err != nil {
		return nil, err
	}
	payload := `<consSitNFe xmlns="` + NsNFe + `" versao="` + VersaoLayout + `">` +
		`<tpAmb>` + c.ambiente + `</tpAmb><xServ>CONSULTAR</xServ><chNFe>` + chave + `</chNFe></consSitNFe>`

	raw, err := c.post(ctx, OperacaoConsultaProtocolo, payload)
	if err != nil {
		return nil, err
	}

	var ret retConsSitNFe
	if err := desempacotar(raw, "retConsSitNFe", &ret); err != nil {
		return resultadoBruto(raw), nil
	}
	res := &entity.ResultadoSefaz{
		Aceito:         ret.CStat == CStatAutorizado,
		CodigoStatus:   ret.CStat,
		Mensagem:       ret.XMotivo,
		ChaveRetornada: ret.ChNFe,
		RecebidoEm:     time.Now(),
		RespostaBruta:  raw,
	}
	if ret.ProtNFe != nil {
		res.Protocolo = ret.ProtNFe.InfProt.NProt
		if res.ChaveRetornada == "" {
			res.ChaveRetornada = ret.ProtNFe.InfProt.ChNFe
		}
	}
	return res, nil
}

// Cancelar registra o evento de cancelamento (tpEvento 110111) do documento
// autorizado. A justificativa é validada localmente; o evento é assinado com
// o mesmo certificado da emissão.
func (c *ClienteSOAP) Cancelar(ctx context.Context, chave, protocolo, justificativa string) (*entity.ResultadoSefaz, error) {
	if err := domnfe.ValidarChave(chave); err != nil {
		return nil, err
	}
	if err := domnfe.ValidarJustificativa(justificativa); err != nil {
		return nil, err
	}
	if protocolo == "" {
		return nil, fmt.Errorf("%w: protocolo de autorização é obrigatório para cancelar", domain.ErrInvalidInput)
	}

	eventoAssinado, err := c.montarEventoCancelamento(chave, protocolo, justificativa)
	if err != nil {
		return nil, err
	}

	idLote := strconv.FormatInt(time.Now().UnixMilli(), 10)
	var sb strings.Builder
	sb.WriteString(`<envEvento xmlns="` + NsNFe + `" versao="1.00">`)
	sb.WriteString(`<idLote>` + idLote + `</idLote>`)
	sb.Write(eventoAssinado)
	sb.WriteString(`</envEvento>`)

	raw, err := c.post(ctx, OperacaoRecepcaoEvento, sb.String())
	if err != nil {
		return nil, err
	}

	var ret retEnvEvento
	if err := desempacotar(raw, "retEnvEvento", &ret); err != nil {
		return resultadoBruto(raw), nil
	}
	res := &entity.ResultadoSefaz{
		CodigoStatus:  ret.CStat,
		Mensagem:      ret.XMotivo,
		RecebidoEm:    time.Now(),
		RespostaBruta: raw,
	}
	if len(ret.RetEvento) > 0 {
		inf := ret.RetEvento[0].InfEvento
		res.CodigoStatus = inf.CStat
		res.Mensagem = inf.XMotivo
		res.Protocolo = inf.NProt
		res.ChaveRetornada = inf.ChNFe
		res.Aceito = inf.CStat == CStatCancelamentoOK || inf.CStat == CStatCancelamentoOK2
	}
	return res, nil
}

// montarEventoCancelamento constrói e assina o <evento> do cancelamento.
// O Id do infEvento segue o padrão "ID" + tpEvento + chave + nSeqEvento(2).
func (c *ClienteSOAP) montarEventoCancelamento(chave, protocolo, justificativa string) ([]byte, error) {
	xJust := domnfe.NormalizarTexto(justificativa, pkgnfe.MaxJustificativa)
	cOrgao := strconv.Itoa(pkgnfe.CodigoUF[c.uf])
	id := "ID" + TipoEventoCancelamento + chave + "01"

	var sb strings.Builder
	sb.WriteString(`<evento xmlns="` + NsNFe + `" versao="1.00">`)
	sb.WriteString(`<infEvento Id="` + id + `">`)
	sb.WriteString(`<cOrgao>` + cOrgao + `</cOrgao>`)
	sb.WriteString(`<tpAmb>` + c.ambiente + `</tpAmb>`)
	sb.WriteString(`<CNPJ>` + pkgnfe.SomenteDigitos(c.cert.CNPJ) + `</CNPJ>`)
	sb.WriteString(`<chNFe>` + chave + `</chNFe>`)
	sb.WriteString(`<dhEvento>` + time.Now().Format("2006-01-02T15:04:05-07:00") + `</dhEvento>`)
	sb.WriteString(`<tpEvento>` + TipoEventoCancelamento + `</tpEvento>`)
	sb.WriteString(`<nSeqEvento>1</nSeqEvento>`)
	sb.WriteString(`<verEvento>1.00</verEvento>`)
	sb.WriteString(`<detEvento versao="1.00">`)
	sb.WriteString(`<descEvento>Cancelamento</descEvento>`)
	sb.WriteString(`<nProt>` + protocolo + `</nProt>`)
	sb.WriteString(`<xJust>` + xJust + `</xJust>`)
	sb.WriteString(`</detEvento>`)
	sb.WriteString(`</infEvento>`)
	sb.WriteString(`</evento>`)

	assinado, err := c.assinador.Assinar([]byte(sb.String()), c.cert)
	if err != nil {
		return nil, fmt.Errorf("sefaz: assinar evento de cancelamento: %w", err)
	}
	return assinado, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

// post embrulha o payload no envelope SOAP 1.2 e entrega ao webservice.
func (c *ClienteSOAP) post(ctx context.Context, operacao, payload string) ([]byte, error) {
	url, err := ResolverEndpoint(c.uf, c.modelo, c.ambiente, operacao)
	if err != nil {
		return nil, err
	}

	envelope := `<soap12:Envelope xmlns:soap12="` + soapNS + `">` +
		`<soap12:Body>` +
		`<nfeDadosMsg xmlns="` + wsdlBase + operacao + `">` + payload + `</nfeDadosMsg>` +
		`</soap12:Body></soap12:Envelope>`

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("sefaz: criar request: %w", err)
	}
	req.Header.Set("Content-Type", contentSOAP+`; action="`+wsdlBase+operacao+`/nfeDadosMsg"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConexaoSefaz, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConexaoSefaz, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, respMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: ler resposta: %v", domain.ErrConexaoSefaz, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d do webservice %s", domain.ErrConexaoSefaz, resp.StatusCode, operacao)
	}
	return raw, nil
}

// parseRetEnviNFe normaliza a resposta da autorização. Com indSinc=1 o
// protNFe chega embrulhado no retEnviNFe (lote 104); o desfecho do documento
// é o cStat do protocolo, não o do lote.
func (c *ClienteSOAP) parseRetEnviNFe(raw []byte) *entity.ResultadoSefaz {
	var ret retEnviNFe
	if err := desempacotar(raw, "retEnviNFe", &ret); err != nil {
		return resultadoBruto(raw)
	}
	res := &entity.ResultadoSefaz{
		CodigoStatus:  ret.CStat,
		Mensagem:      ret.XMotivo,
		RecebidoEm:    time.Now(),
		RespostaBruta: raw,
	}
	if ret.ProtNFe != nil {
		inf := ret.ProtNFe.InfProt
		res.CodigoStatus = inf.CStat
		res.Mensagem = inf.XMotivo
		res.Protocolo = inf.NProt
		res.ChaveRetornada = inf.ChNFe
		res.Aceito = inf.CStat == CStatAutorizado
	}
	return res
}

// resultadoBruto devolve um resultado não aceito preservando a resposta para
// diagnóstico (nunca aborta o fluxo por resposta malformada).
func resultadoBruto(raw []byte) *entity.ResultadoSefaz {
	return &entity.ResultadoSefaz{
		Aceito:        false,
		Mensagem:      "resposta SOAP inesperada do webservice",
		RecebidoEm:    time.Now(),
		RespostaBruta: raw,
	}
}

// desempacotar localiza o elemento de resposta pelo nome local em qualquer
// profundidade do envelope e o decodifica em out.
func desempacotar(raw []byte, local string, out interface{}) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return fmt.Errorf("sefaz: parsear envelope: %w", err)
	}
	el := buscarPorTag(doc.Root(), local)
	if el == nil {
		return fmt.Errorf("sefaz: elemento %s ausente na resposta", local)
	}
	sub := etree.NewDocument()
	sub.SetRoot(el.Copy())
	txt, err := sub.WriteToBytes()
	if err != nil {
		return err
	}
	dec := xml.NewDecoder(bytes.NewReader(txt))
	return dec.Decode(out)
}

func buscarPorTag(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Tag == local {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := buscarPorTag(child, local); found != nil {
			return found
		}
	}
	return nil
}
