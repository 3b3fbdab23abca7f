// Serviço de assinatura digital enveloped do layout NF-e 4.00.
// Anexa <Signature> como último filho da raiz, referenciando o infNFe por Id.

package signer

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// DigitalSignatureService implementa pkg/nfe.Assinador com o perfil fixo do
// layout: C14N 1.0, digest SHA-1, assinatura RSA-SHA1, transform enveloped.
type DigitalSignatureService struct{}

// NewDigitalSignatureService cria o serviço.
func NewDigitalSignatureService() *DigitalSignatureService {
	return &DigitalSignatureService{}
}

// Assinar localiza o elemento com atributo Id (infNFe ou infEvento), calcula o
// digest do subtree canônico e injeta a assinatura como último filho da raiz.
func (s *DigitalSignatureService) Assinar(xmlBytes []byte, cert *pkgnfe.CertificadoDigital) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("sefaz: XML vazio")
	}
	if cert == nil || cert.ChavePrivada == nil || cert.Certificado == nil {
		return nil, fmt.Errorf("sefaz: certificado incompleto para assinatura")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("sefaz: parsear XML: %w", err)
	}
	id, err := localizarID(doc)
	if err != nil {
		return nil, err
	}

	// 1) Digest SHA-1 do subtree canônico referenciado por URI="#id"
	subtree, err := ExtrairElementoPorID(doc, id)
	if err != nil {
		return nil, err
	}
	canonico, err := Canonicalizar(subtree)
	if err != nil {
		return nil, err
	}
	digest := sha1.Sum(canonico)
	digestB64 := base64.StdEncoding.EncodeToString(digest[:])

	// 2) SignedInfo canônico assinado com RSA-SHA1
	signedInfoXML := buildSignedInfo(id, digestB64)
	canonicoSI, err := Canonicalizar([]byte(signedInfoXML))
	if err != nil {
		return nil, err
	}
	hashSI := sha1.Sum(canonicoSI)
	assinatura, err := rsa.SignPKCS1v15(nil, cert.ChavePrivada, crypto.SHA1, hashSI[:])
	if err != nil {
		return nil, fmt.Errorf("sefaz: assinar SignedInfo: %w", err)
	}

	// 3) Signature completa com o certificado em KeyInfo
	signatureXML := buildSignature(signedInfoXML,
		base64.StdEncoding.EncodeToString(assinatura),
		base64.StdEncoding.EncodeToString(cert.Certificado.Raw))

	// 4) Injeção como último filho da raiz (após infNFeSupl, quando houver)
	return injetarAssinatura(doc, signatureXML)
}

// localizarID procura o atributo Id do elemento assinável (prefixo "NFe" para
// documentos, "ID" para eventos).
func localizarID(doc *etree.Document) (string, error) {
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("sefaz: documento sem raiz")
	}
	var id string
	var achar func(el *etree.Element)
	achar = func(el *etree.Element) {
		if id != "" {
			return
		}
		if attr := el.SelectAttr("Id"); attr != nil && attr.Value != "" {
			id = attr.Value
			return
		}
		for _, child := range el.ChildElements() {
			achar(child)
		}
	}
	achar(root)
	if id == "" {
		return "", domain.ErrElementoAssinavel
	}
	return id, nil
}

// buildSignedInfo monta o SignedInfo com o namespace declarado explicitamente:
// o mesmo texto serve para o digest da assinatura e para a verificação.
func buildSignedInfo(id, digestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<SignedInfo xmlns="` + NamespaceDS + `">`)
	sb.WriteString(`<CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<SignatureMethod Algorithm="` + AlgRSASHA1 + `"/>`)
	sb.WriteString(`<Reference URI="#` + id + `">`)
	sb.WriteString(`<Transforms>`)
	sb.WriteString(`<Transform Algorithm="` + TransformEnveloped + `"/>`)
	sb.WriteString(`<Transform Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`</Transforms>`)
	sb.WriteString(`<DigestMethod Algorithm="` + AlgSHA1 + `"/>`)
	sb.WriteString(`<DigestValue>` + digestB64 + `</DigestValue>`)
	sb.WriteString(`</Reference>`)
	sb.WriteString(`</SignedInfo>`)
	return sb.String()
}

func buildSignature(signedInfoXML, signatureValueB64, certB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<Signature xmlns="` + NamespaceDS + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<SignatureValue>` + signatureValueB64 + `</SignatureValue>`)
	sb.WriteString(`<KeyInfo><X509Data><X509Certificate>` + certB64 + `</X509Certificate></X509Data></KeyInfo>`)
	sb.WriteString(`</Signature>`)
	return sb.String()
}

func injetarAssinatura(doc *etree.Document, signatureXML string) ([]byte, error) {
	root := doc.Root()
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("sefaz: parsear Signature: %w", err)
	}
	sigRoot := sigDoc.Root()
	if sigRoot == nil {
		return nil, fmt.Errorf("sefaz: Signature sem raiz")
	}
	root.AddChild(sigRoot)

	var out bytes.Buffer
	doc.WriteSettings.CanonicalEndTags = true
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("sefaz: serializar XML assinado: %w", err)
	}
	return out.Bytes(), nil
}

// Verificar confere a assinatura de um XML assinado: recomputa o digest do
// subtree referenciado e valida SignatureValue contra o certificado embutido.
// Usado em diagnóstico e testes; a SEFAZ faz a verificação oficial.
func (s *DigitalSignatureService) Verificar(xmlAssinado []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlAssinado); err != nil {
		return fmt.Errorf("sefaz: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("sefaz: documento sem raiz")
	}
	sig := root.SelectElement("Signature")
	if sig == nil {
		return fmt.Errorf("sefaz: XML sem elemento Signature")
	}

	digestEl := sig.FindElement("./SignedInfo/Reference/DigestValue")
	sigValEl := sig.SelectElement("SignatureValue")
	certEl := sig.FindElement("./KeyInfo/X509Data/X509Certificate")
	refEl := sig.FindElement("./SignedInfo/Reference")
	if digestEl == nil || sigValEl == nil || certEl == nil || refEl == nil {
		return fmt.Errorf("sefaz: Signature incompleta")
	}
	uri := refEl.SelectAttrValue("URI", "")
	id := strings.TrimPrefix(uri, "#")

	// Digest do subtree (a assinatura é removida antes por ser enveloped;
	// aqui ela nunca está dentro do elemento referenciado).
	subtree, err := ExtrairElementoPorID(doc, id)
	if err != nil {
		return err
	}
	canonico, err := Canonicalizar(subtree)
	if err != nil {
		return err
	}
	digest := sha1.Sum(canonico)
	if base64.StdEncoding.EncodeToString(digest[:]) != strings.TrimSpace(digestEl.Text()) {
		return fmt.Errorf("sefaz: DigestValue não confere com o conteúdo assinado")
	}

	// SignatureValue sobre o SignedInfo canônico
	siDoc := etree.NewDocument()
	siDoc.SetRoot(sig.SelectElement("SignedInfo").Copy())
	if siDoc.Root().SelectAttr("xmlns") == nil {
		siDoc.Root().CreateAttr("xmlns", NamespaceDS)
	}
	siDoc.WriteSettings.CanonicalEndTags = true
	siBytes, err := siDoc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("sefaz: serializar SignedInfo: %w", err)
	}
	canonicoSI, err := Canonicalizar(siBytes)
	if err != nil {
		return err
	}
	hashSI := sha1.Sum(canonicoSI)

	certDER, err := base64.StdEncoding.DecodeString(strings.TrimSpace(certEl.Text()))
	if err != nil {
		return fmt.Errorf("sefaz: decodificar X509Certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return fmt.Errorf("sefaz: parsear certificado embutido: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("sefaz: certificado embutido não é RSA")
	}
	sigVal, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sigValEl.Text()))
	if err != nil {
		return fmt.Errorf("sefaz: decodificar SignatureValue: %w", err)
	}
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA1, hashSI[:], sigVal); err != nil {
		return fmt.Errorf("sefaz: assinatura inválida: %w", err)
	}
	return nil
}

var _ pkgnfe.Assinador = (*DigitalSignatureService)(nil)
