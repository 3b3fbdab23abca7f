// Geração do payload do QR Code da NFC-e (versão 2 do QR, emissão online) e
// inserção do grupo infNFeSupl no XML.

package sefaz

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// VersaoQRCode é a versão do layout do QR Code.
const VersaoQRCode = "2"

// QRCodeService calcula o hash de autenticidade do QR Code a partir do CSC
// (Código de Segurança do Contribuinte) e monta a URL final.
type QRCodeService struct{}

// NewQRCodeService cria o serviço.
func NewQRCodeService() *QRCodeService {
	return &QRCodeService{}
}

// Payload monta a sequência "chave|versão|tpAmb|idCSC" e anexa o hash SHA-1
// (hex maiúsculo) calculado sobre a sequência concatenada ao CSC. O CSC em si
// nunca aparece no payload.
func (s *QRCodeService) Payload(chave, tpAmb, idCSC, csc string) (string, error) {
	if len(chave) != 44 {
		return "", fmt.Errorf("sefaz: chave de acesso inválida para QR Code: %q", chave)
	}
	if idCSC == "" || csc == "" {
		return "", fmt.Errorf("sefaz: CSC e idCSC são obrigatórios para NFC-e")
	}
	seq := chave + "|" + VersaoQRCode + "|" + tpAmb + "|" + idCSC
	sum := sha1.Sum([]byte(seq + csc))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	return seq + "|" + hash, nil
}

// URL monta a URL completa do QR Code sobre a base da UF.
func (s *QRCodeService) URL(base, chave, tpAmb, idCSC, csc string) (string, error) {
	payload, err := s.Payload(chave, tpAmb, idCSC, csc)
	if err != nil {
		return "", err
	}
	return base + "?p=" + payload, nil
}

// InserirInfNFeSupl injeta <infNFeSupl> com qrCode e urlChave logo após o
// infNFe. Deve rodar antes da assinatura: o grupo fica fora do infNFe (não
// entra no digest), mas o schema exige infNFeSupl antes de Signature.
func InserirInfNFeSupl(xmlBytes []byte, qrURL, urlChave string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("sefaz: parsear XML para infNFeSupl: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("sefaz: documento sem raiz")
	}
	infNFe := root.SelectElement("infNFe")
	if infNFe == nil {
		return nil, fmt.Errorf("sefaz: XML sem infNFe")
	}

	supl := etree.NewElement("infNFeSupl")
	supl.CreateElement("qrCode").SetText(qrURL)
	supl.CreateElement("urlChave").SetText(urlChave)
	root.InsertChildAt(infNFe.Index()+1, supl)

	doc.WriteSettings.CanonicalEndTags = true
	return doc.WriteToBytes()
}
