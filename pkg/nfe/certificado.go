package nfe

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"strings"
	"time"
)

// CertificadoDigital agrupa a chave privada, o certificado público e os
// metadados derivados de um certificado A1 (ICP-Brasil). Criado uma vez por
// sessão de emissão; imutável após a carga e compartilhável entre séries.
type CertificadoDigital struct {
	ChavePrivada *rsa.PrivateKey
	Certificado  *x509.Certificate
	CNPJ         string // CNPJ do titular, extraído do subject
	ValidoDe     time.Time
	ValidoAte    time.Time
	Serial       string // número de série em hexadecimal
}

// TLSCertificate monta o tls.Certificate para autenticação mútua com a SEFAZ.
func (c *CertificadoDigital) TLSCertificate() tls.Certificate {
	return tls.Certificate{
		Certificate: [][]byte{c.Certificado.Raw},
		PrivateKey:  c.ChavePrivada,
		Leaf:        c.Certificado,
	}
}

// Expirado informa se o certificado já venceu na data dada.
func (c *CertificadoDigital) Expirado(agora time.Time) bool {
	return agora.After(c.ValidoAte)
}

// AindaNaoValido informa se o certificado ainda não entrou em vigência.
func (c *CertificadoDigital) AindaNaoValido(agora time.Time) bool {
	return agora.Before(c.ValidoDe)
}

// DiasParaExpirar devolve os dias restantes de validade (negativo se vencido).
// A emissão pode prosseguir a critério da aplicação, mas o valor deve ser
// exibido ao operador.
func (c *CertificadoDigital) DiasParaExpirar(agora time.Time) int {
	return int(c.ValidoAte.Sub(agora).Hours() / 24)
}

// CNPJConfere compara o CNPJ do titular com o da empresa emitente
// (comparação somente por dígitos).
func (c *CertificadoDigital) CNPJConfere(cnpjEmpresa string) bool {
	return c.CNPJ != "" && SomenteDigitos(c.CNPJ) == SomenteDigitos(cnpjEmpresa)
}

// ExtrairCNPJSubject extrai o CNPJ do CN de um certificado ICP-Brasil
// (e-CNPJ usa "RAZAO SOCIAL:99999999999999"). Devolve vazio se não encontrado.
func ExtrairCNPJSubject(cert *x509.Certificate) string {
	cn := cert.Subject.CommonName
	if idx := strings.LastIndex(cn, ":"); idx != -1 {
		digits := SomenteDigitos(cn[idx+1:])
		if len(digits) == 14 {
			return digits
		}
	}
	// Alguns emissores colocam o CNPJ em OU ao invés do CN.
	for _, ou := range cert.Subject.OrganizationalUnit {
		digits := SomenteDigitos(ou)
		if len(digits) == 14 {
			return digits
		}
	}
	return ""
}
