// Carga do certificado A1 (PKCS#12) usado para assinar documentos e para o
// TLS mútuo com a SEFAZ.

package signer

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// LoadFromFile carrega um certificado A1 de um arquivo .pfx/.p12.
func LoadFromFile(path, senha string) (*pkgnfe.CertificadoDigital, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: ler %s: %v", domain.ErrArquivoCertificado, path, err)
	}
	return LoadFromBytes(data, senha)
}

// LoadFromBytes decodifica o arquivo PKCS#12 (bruto ou em Base64, como chega
// de uploads) e extrai chave, certificado e metadados. Senha incorreta devolve
// domain.ErrSenhaCertificado; arquivo corrompido, domain.ErrArquivoCertificado.
func LoadFromBytes(data []byte, senha string) (*pkgnfe.CertificadoDigital, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: arquivo vazio", domain.ErrArquivoCertificado)
	}
	// Base64 de upload costuma vir quebrado em linhas; remove o espaçamento
	// antes de tentar decodificar.
	limpo := strings.Join(strings.Fields(string(data)), "")
	if decoded, err := base64.StdEncoding.DecodeString(limpo); err == nil {
		data = decoded
	}

	priv, cert, err := pkcs12.Decode(data, senha)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, domain.ErrSenhaCertificado
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrArquivoCertificado, err)
	}

	chave, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: a chave privada deve ser RSA", domain.ErrArquivoCertificado)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok || !pub.Equal(&chave.PublicKey) {
		return nil, domain.ErrChaveNaoCorresponde
	}

	return &pkgnfe.CertificadoDigital{
		ChavePrivada: chave,
		Certificado:  cert,
		CNPJ:         pkgnfe.ExtrairCNPJSubject(cert),
		ValidoDe:     cert.NotBefore,
		ValidoAte:    cert.NotAfter,
		Serial:       cert.SerialNumber.Text(16),
	}, nil
}
