// Estruturas de resposta dos webservices NF-e 4.00. Os campos espelham o
// schema oficial (leiauteNFe); cStat e xMotivo são preservados verbatim.

package sefaz

import "encoding/xml"

// retEnviNFe resposta da autorização síncrona (NFeAutorizacao4).
type retEnviNFe struct {
	XMLName  xml.Name `xml:"retEnviNFe"`
	TpAmb    string   `xml:"tpAmb"`
	VerAplic string   `xml:"verAplic"`
	CStat    string   `xml:"cStat"`
	XMotivo  string   `xml:"xMotivo"`
	CUF      string   `xml:"cUF"`
	DhRecbto string   `xml:"dhRecbto"`
	ProtNFe  *protNFe `xml:"protNFe"`
}

// protNFe protocolo de autorização/denegação de um documento.
type protNFe struct {
	InfProt infProt `xml:"infProt"`
}

type infProt struct {
	TpAmb    string `xml:"tpAmb"`
	VerAplic string `xml:"verAplic"`
	ChNFe    string `xml:"chNFe"`
	DhRecbto string `xml:"dhRecbto"`
	NProt    string `xml:"nProt"`
	DigVal   string `xml:"digVal"`
	CStat    string `xml:"cStat"`
	XMotivo  string `xml:"xMotivo"`
}

// retConsStatServ resposta da consulta de status (NFeStatusServico4).
type retConsStatServ struct {
	XMLName  xml.Name `xml:"retConsStatServ"`
	TpAmb    string   `xml:"tpAmb"`
	VerAplic string   `xml:"verAplic"`
	CStat    string   `xml:"cStat"`
	XMotivo  string   `xml:"xMotivo"`
	CUF      string   `xml:"cUF"`
	DhRecbto string   `xml:"dhRecbto"`
	TMed     string   `xml:"tMed"`
}

// retConsSitNFe resposta da consulta por chave (NFeConsultaProtocolo4).
type retConsSitNFe struct {
	XMLName  xml.Name `xml:"retConsSitNFe"`
	TpAmb    string   `xml:"tpAmb"`
	VerAplic string   `xml:"verAplic"`
	CStat    string   `xml:"cStat"`
	XMotivo  string   `xml:"xMotivo"`
	CUF      string   `xml:"cUF"`
	ChNFe    string   `xml:"chNFe"`
	ProtNFe  *protNFe `xml:"protNFe"`
}

// retEnvEvento resposta do registro de eventos (NFeRecepcaoEvento4).
type retEnvEvento struct {
	XMLName   xml.Name    `xml:"retEnvEvento"`
	IDLote    string      `xml:"idLote"`
	TpAmb     string      `xml:"tpAmb"`
	VerAplic  string      `xml:"verAplic"`
	COrgao    string      `xml:"cOrgao"`
	CStat     string      `xml:"cStat"`
	XMotivo   string      `xml:"xMotivo"`
	RetEvento []retEvento `xml:"retEvento"`
}

type retEvento struct {
	InfEvento infEventoRet `xml:"infEvento"`
}

type infEventoRet struct {
	TpAmb       string `xml:"tpAmb"`
	VerAplic    string `xml:"verAplic"`
	COrgao      string `xml:"cOrgao"`
	CStat       string `xml:"cStat"`
	XMotivo     string `xml:"xMotivo"`
	ChNFe       string `xml:"chNFe"`
	TpEvento    string `xml:"tpEvento"`
	NSeqEvento  string `xml:"nSeqEvento"`
	DhRegEvento string `xml:"dhRegEvento"`
	NProt       string `xml:"nProt"`
}
