package sefaz

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// Namespaces do layout NF-e 4.00.
const (
	NsNFe = "http://www.portalfiscal.inf.br/nfe"

	VersaoLayout = "4.00"
	VersaoApp    = "pdv-fiscal 1.0"
)

// XNomeHomologacao substitui o nome do destinatário em ambiente de homologação
// (exigência do layout; documentos de teste não podem parecer fiscais).
const XNomeHomologacao = "NF-E EMITIDA EM AMBIENTE DE HOMOLOGACAO - SEM VALOR FISCAL"

// XMLBuilderService serializa o DocumentoFiscal no XML <NFe> do layout 4.00,
// pronto para receber infNFeSupl (NFC-e) e a assinatura digital.
type XMLBuilderService struct{}

// NewXMLBuilderService cria o serviço.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build gera o XML compacto do documento (sem prolog, sem assinatura).
// A ordem dos grupos segue o schema: ide, emit, dest?, det+, total, transp, pag.
func (s *XMLBuilderService) Build(doc *entity.DocumentoFiscal) ([]byte, error) {
	if doc == nil || doc.Empresa == nil {
		return nil, fmt.Errorf("sefaz: documento ou empresa ausente")
	}
	if len(doc.Chave) != 44 {
		return nil, fmt.Errorf("sefaz: chave de acesso inválida: %q", doc.Chave)
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	root := xml.StartElement{
		Name: xml.Name{Local: "NFe"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: NsNFe}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	infNFe := xml.StartElement{
		Name: xml.Name{Local: "infNFe"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "Id"}, Value: "NFe" + doc.Chave},
			{Name: xml.Name{Local: "versao"}, Value: VersaoLayout},
		},
	}
	_ = enc.EncodeToken(infNFe)

	s.writeIde(enc, doc)
	s.writeEmit(enc, doc.Empresa)
	s.writeDest(enc, doc)
	for i, item := range doc.Itens {
		s.writeDet(enc, doc, i+1, &item)
	}
	s.writeTotal(enc, doc)
	s.writeTransp(enc)
	s.writePag(enc, doc.Pagamentos)

	_ = enc.EncodeToken(infNFe.End())
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeIde grupo de identificação. cDV e cNF saem da própria chave para que o
// XML nunca divirja do que foi alocado.
func (s *XMLBuilderService) writeIde(enc *xml.Encoder, doc *entity.DocumentoFiscal) {
	abrir(enc, "ide")
	w(enc, "cUF", strconv.Itoa(pkgnfe.CodigoUF[doc.Empresa.Endereco.UF]))
	w(enc, "cNF", doc.Chave[35:43])
	w(enc, "natOp", "VENDA")
	w(enc, "mod", strconv.Itoa(doc.Modelo))
	w(enc, "serie", strconv.Itoa(doc.Serie))
	w(enc, "nNF", strconv.FormatInt(doc.Numero, 10))
	w(enc, "dhEmi", doc.Emissao.Format("2006-01-02T15:04:05-07:00"))
	w(enc, "tpNF", "1") // saída
	w(enc, "idDest", "1")
	w(enc, "cMunFG", doc.Empresa.Endereco.CodigoMunicipio)
	if doc.Modelo == entity.ModeloNFCe {
		w(enc, "tpImp", "4") // DANFE NFC-e
	} else {
		w(enc, "tpImp", "1")
	}
	w(enc, "tpEmis", doc.Chave[34:35])
	w(enc, "cDV", doc.Chave[43:])
	w(enc, "tpAmb", doc.Ambiente)
	w(enc, "finNFe", "1")
	w(enc, "indFinal", "1")
	if doc.Modelo == entity.ModeloNFCe {
		w(enc, "indPres", "1") // operação presencial
	} else {
		w(enc, "indPres", "9")
	}
	w(enc, "procEmi", "0")
	w(enc, "verProc", VersaoApp)
	fechar(enc, "ide")
}

func (s *XMLBuilderService) writeEmit(enc *xml.Encoder, emp *entity.Empresa) {
	abrir(enc, "emit")
	w(enc, "CNPJ", pkgnfe.SomenteDigitos(emp.CNPJ))
	w(enc, "xNome", emp.RazaoSocial)
	if emp.NomeFantasia != "" {
		w(enc, "xFant", emp.NomeFantasia)
	}
	abrir(enc, "enderEmit")
	w(enc, "xLgr", emp.Endereco.Logradouro)
	w(enc, "nro", emp.Endereco.Numero)
	w(enc, "xBairro", emp.Endereco.Bairro)
	w(enc, "cMun", emp.Endereco.CodigoMunicipio)
	w(enc, "xMun", emp.Endereco.Municipio)
	w(enc, "UF", emp.Endereco.UF)
	w(enc, "CEP", pkgnfe.SomenteDigitos(emp.Endereco.CEP))
	w(enc, "cPais", "1058")
	w(enc, "xPais", "BRASIL")
	fechar(enc, "enderEmit")
	w(enc, "IE", pkgnfe.SomenteDigitos(emp.InscricaoEstadual))
	w(enc, "CRT", strconv.Itoa(emp.RegimeTributario))
	fechar(enc, "emit")
}

// writeDest destinatário opcional (NFC-e pode sair sem identificação). Em
// homologação o nome é substituído pelo texto fixo exigido no layout.
func (s *XMLBuilderService) writeDest(enc *xml.Encoder, doc *entity.DocumentoFiscal) {
	dest := doc.Destinatario
	if dest == nil {
		return
	}
	abrir(enc, "dest")
	switch {
	case dest.CNPJ != "":
		w(enc, "CNPJ", pkgnfe.SomenteDigitos(dest.CNPJ))
	case dest.CPF != "":
		w(enc, "CPF", pkgnfe.SomenteDigitos(dest.CPF))
	}
	nome := dest.Nome
	if doc.Ambiente == entity.AmbienteHomologacao {
		nome = XNomeHomologacao
	}
	if nome != "" {
		w(enc, "xNome", nome)
	}
	if doc.Modelo == entity.ModeloNFCe {
		w(enc, "indIEDest", "9") // não contribuinte
	}
	fechar(enc, "dest")
}

func (s *XMLBuilderService) writeDet(enc *xml.Encoder, doc *entity.DocumentoFiscal, nItem int, item *entity.ItemVenda) {
	det := xml.StartElement{
		Name: xml.Name{Local: "det"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "nItem"}, Value: strconv.Itoa(nItem)}},
	}
	_ = enc.EncodeToken(det)

	abrir(enc, "prod")
	w(enc, "cProd", item.Codigo)
	w(enc, "cEAN", item.GTIN)
	w(enc, "xProd", item.Descricao)
	w(enc, "NCM", item.NCM)
	w(enc, "CFOP", item.CFOP)
	w(enc, "uCom", item.Unidade)
	w(enc, "qCom", item.Quantidade.StringFixed(4))
	w(enc, "vUnCom", item.ValorUnitario.StringFixed(4))
	w(enc, "vProd", item.ValorTotal.StringFixed(2))
	w(enc, "cEANTrib", item.GTIN)
	w(enc, "uTrib", item.Unidade)
	w(enc, "qTrib", item.Quantidade.StringFixed(4))
	w(enc, "vUnTrib", item.ValorUnitario.StringFixed(4))
	w(enc, "indTot", "1")
	fechar(enc, "prod")

	abrir(enc, "imposto")
	s.writeICMS(enc, item)
	s.writePISCOFINS(enc, item)
	if doc.Empresa.IBSCBSHabilitado {
		s.writeIBSCBS(enc, item)
	}
	fechar(enc, "imposto")

	_ = enc.EncodeToken(det.End())
}

// writeICMS ramifica pelo conteúdo do item: CSOSN presente indica Simples
// Nacional (grupo ICMSSN102, sem valores); CST indica regime normal (ICMS00).
func (s *XMLBuilderService) writeICMS(enc *xml.Encoder, item *entity.ItemVenda) {
	abrir(enc, "ICMS")
	if item.CSOSN != "" {
		abrir(enc, "ICMSSN102")
		w(enc, "orig", item.Origem)
		w(enc, "CSOSN", item.CSOSN)
		fechar(enc, "ICMSSN102")
	} else {
		abrir(enc, "ICMS00")
		w(enc, "orig", item.Origem)
		w(enc, "CST", item.CSTICMS)
		w(enc, "modBC", "3") // valor da operação
		w(enc, "vBC", item.ValorTotal.StringFixed(2))
		w(enc, "pICMS", item.AliquotaICMS.StringFixed(2))
		w(enc, "vICMS", item.ValorTotal.Mul(item.AliquotaICMS).Div(decimal.NewFromInt(100)).Round(2).StringFixed(2))
		fechar(enc, "ICMS00")
	}
	fechar(enc, "ICMS")
}

func (s *XMLBuilderService) writePISCOFINS(enc *xml.Encoder, item *entity.ItemVenda) {
	if item.CSTPIS != "" {
		abrir(enc, "PIS")
		abrir(enc, "PISAliq")
		w(enc, "CST", item.CSTPIS)
		w(enc, "vBC", item.ValorTotal.StringFixed(2))
		w(enc, "pPIS", item.AliquotaPIS.StringFixed(2))
		w(enc, "vPIS", item.ValorTotal.Mul(item.AliquotaPIS).Div(decimal.NewFromInt(100)).Round(2).StringFixed(2))
		fechar(enc, "PISAliq")
		fechar(enc, "PIS")
	}
	if item.CSTCOFINS != "" {
		abrir(enc, "COFINS")
		abrir(enc, "COFINSAliq")
		w(enc, "CST", item.CSTCOFINS)
		w(enc, "vBC", item.ValorTotal.StringFixed(2))
		w(enc, "pCOFINS", item.AliquotaCOFINS.StringFixed(2))
		w(enc, "vCOFINS", item.ValorTotal.Mul(item.AliquotaCOFINS).Div(decimal.NewFromInt(100)).Round(2).StringFixed(2))
		fechar(enc, "COFINSAliq")
		fechar(enc, "COFINS")
	}
}

// writeIBSCBS grupo opcional da reforma tributária (emissão antecipada, só
// quando a empresa habilitou).
func (s *XMLBuilderService) writeIBSCBS(enc *xml.Encoder, item *entity.ItemVenda) {
	abrir(enc, "IBSCBS")
	if item.CSTIBSCBS != "" {
		w(enc, "CST", item.CSTIBSCBS)
	}
	abrir(enc, "gIBSCBS")
	w(enc, "vBC", item.ValorTotal.StringFixed(2))
	w(enc, "pIBS", item.AliquotaIBS.StringFixed(4))
	w(enc, "vIBS", item.ValorTotal.Mul(item.AliquotaIBS).Div(decimal.NewFromInt(100)).Round(2).StringFixed(2))
	w(enc, "pCBS", item.AliquotaCBS.StringFixed(4))
	w(enc, "vCBS", item.ValorTotal.Mul(item.AliquotaCBS).Div(decimal.NewFromInt(100)).Round(2).StringFixed(2))
	fechar(enc, "gIBSCBS")
	fechar(enc, "IBSCBS")
}

func (s *XMLBuilderService) writeTotal(enc *xml.Encoder, doc *entity.DocumentoFiscal) {
	t := doc.Totais
	abrir(enc, "total")
	abrir(enc, "ICMSTot")
	w(enc, "vBC", t.BaseICMS.StringFixed(2))
	w(enc, "vICMS", t.ValorICMS.StringFixed(2))
	w(enc, "vICMSDeson", "0.00")
	w(enc, "vFCP", "0.00")
	w(enc, "vBCST", "0.00")
	w(enc, "vST", "0.00")
	w(enc, "vFCPST", "0.00")
	w(enc, "vFCPSTRet", "0.00")
	w(enc, "vProd", t.ValorProdutos.StringFixed(2))
	w(enc, "vFrete", "0.00")
	w(enc, "vSeg", "0.00")
	w(enc, "vDesc", "0.00")
	w(enc, "vII", "0.00")
	w(enc, "vIPI", "0.00")
	w(enc, "vIPIDevol", "0.00")
	w(enc, "vPIS", t.ValorPIS.StringFixed(2))
	w(enc, "vCOFINS", t.ValorCOFINS.StringFixed(2))
	w(enc, "vOutro", "0.00")
	w(enc, "vNF", t.ValorTotal.StringFixed(2))
	fechar(enc, "ICMSTot")
	// Totalizador IBS/CBS acompanha os grupos por item: ou saem todos, ou nenhum.
	if doc.Empresa.IBSCBSHabilitado {
		abrir(enc, "IBSCBSTot")
		w(enc, "vBCIBSCBS", t.ValorProdutos.StringFixed(2))
		abrir(enc, "gIBS")
		w(enc, "vIBS", t.ValorIBS.StringFixed(2))
		fechar(enc, "gIBS")
		abrir(enc, "gCBS")
		w(enc, "vCBS", t.ValorCBS.StringFixed(2))
		fechar(enc, "gCBS")
		fechar(enc, "IBSCBSTot")
	}
	fechar(enc, "total")
}

func (s *XMLBuilderService) writeTransp(enc *xml.Encoder) {
	abrir(enc, "transp")
	w(enc, "modFrete", "9") // sem ocorrência de transporte
	fechar(enc, "transp")
}

func (s *XMLBuilderService) writePag(enc *xml.Encoder, pagamentos []entity.Pagamento) {
	abrir(enc, "pag")
	for _, p := range pagamentos {
		abrir(enc, "detPag")
		w(enc, "tPag", p.Meio)
		w(enc, "vPag", p.Valor.StringFixed(2))
		if pkgnfe.MeioExigeCartao(p.Meio) && (p.Bandeira != "" || p.Autorizacao != "") {
			abrir(enc, "card")
			w(enc, "tpIntegra", "1")
			if p.Bandeira != "" {
				w(enc, "tBand", p.Bandeira)
			}
			if p.Autorizacao != "" {
				w(enc, "cAut", p.Autorizacao)
			}
			fechar(enc, "card")
		}
		fechar(enc, "detPag")
	}
	fechar(enc, "pag")
}

func abrir(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func fechar(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func w(enc *xml.Encoder, local, value string) {
	abrir(enc, local)
	_ = enc.EncodeToken(xml.CharData(value))
	fechar(enc, local)
}
