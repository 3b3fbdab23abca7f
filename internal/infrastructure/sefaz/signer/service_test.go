package signer_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz/signer"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// certificadoTeste gera um par RSA com certificado autoassinado no formato de
// subject usado pelos e-CNPJ ICP-Brasil (CN "RAZAO SOCIAL:CNPJ").
func certificadoTeste(t *testing.T) *pkgnfe.CertificadoDigital {
	t.Helper()

	chave, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1742),
		Subject: pkix.Name{
			CommonName:         "EMPRESA TESTE LTDA:11222333000181",
			Organization:       []string{"ICP-Brasil"},
			OrganizationalUnit: []string{"AC TESTE"},
		},
		NotBefore:   time.Now().Add(-time.Hour),
		NotAfter:    time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &chave.PublicKey, chave)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &pkgnfe.CertificadoDigital{
		ChavePrivada: chave,
		Certificado:  cert,
		CNPJ:         pkgnfe.ExtrairCNPJSubject(cert),
		ValidoDe:     cert.NotBefore,
		ValidoAte:    cert.NotAfter,
		Serial:       cert.SerialNumber.Text(16),
	}
}

const chaveTeste = "35231111222333000181650010000000421123456784"

func xmlDocumentoTeste() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<NFe xmlns="http://www.portalfiscal.inf.br/nfe">` +
		`<infNFe Id="NFe` + chaveTeste + `" versao="4.00">` +
		`<ide><cUF>35</cUF><mod>65</mod><serie>1</serie><nNF>42</nNF></ide>` +
		`<emit><CNPJ>11222333000181</CNPJ><xNome>Empresa Teste</xNome></emit>` +
		`</infNFe>` +
		`</NFe>`)
}

func TestAssinar_EVerificar(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	cert := certificadoTeste(t)

	assinado, err := svc.Assinar(xmlDocumentoTeste(), cert)
	require.NoError(t, err)

	texto := string(assinado)
	assert.Contains(t, texto, `<Signature xmlns="`+signer.NamespaceDS+`">`)
	assert.Contains(t, texto, `URI="#NFe`+chaveTeste+`"`)
	assert.Contains(t, texto, signer.AlgRSASHA1)
	assert.Contains(t, texto, signer.AlgSHA1)
	assert.Contains(t, texto, signer.TransformEnveloped)
	// A assinatura entra após o conteúdo do documento (último filho da raiz).
	assert.Less(t, strings.Index(texto, "</infNFe>"), strings.Index(texto, "<Signature"),
		"Signature deve ser o último filho da raiz")

	assert.NoError(t, svc.Verificar(assinado))
}

func TestVerificar_DetectaAdulteracao(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	cert := certificadoTeste(t)

	assinado, err := svc.Assinar(xmlDocumentoTeste(), cert)
	require.NoError(t, err)

	adulterado := strings.Replace(string(assinado), "<nNF>42</nNF>", "<nNF>43</nNF>", 1)
	require.NotEqual(t, string(assinado), adulterado)

	assert.Error(t, svc.Verificar([]byte(adulterado)),
		"mudar o conteúdo assinado deve invalidar o digest")
}

func TestAssinar_SemElementoComID(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	cert := certificadoTeste(t)

	_, err := svc.Assinar([]byte(`<NFe xmlns="http://www.portalfiscal.inf.br/nfe"><infNFe versao="4.00"/></NFe>`), cert)
	assert.ErrorIs(t, err, domain.ErrElementoAssinavel)
}

func TestAssinar_XMLVazio(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	_, err := svc.Assinar(nil, certificadoTeste(t))
	assert.Error(t, err)
}

func TestAssinar_Deterministico(t *testing.T) {
	// RSA PKCS#1 v1.5 é determinístico: mesmo documento e chave, mesma saída.
	svc := signer.NewDigitalSignatureService()
	cert := certificadoTeste(t)

	a1, err := svc.Assinar(xmlDocumentoTeste(), cert)
	require.NoError(t, err)
	a2, err := svc.Assinar(xmlDocumentoTeste(), cert)
	require.NoError(t, err)

	assert.Equal(t, string(a1), string(a2))
}

func TestExtrairCNPJSubject_DoCertificadoTeste(t *testing.T) {
	cert := certificadoTeste(t)
	assert.Equal(t, "11222333000181", cert.CNPJ)
	assert.True(t, cert.CNPJConfere("11.222.333/0001-81"))
	assert.False(t, cert.CNPJConfere("99999999000191"))
}
