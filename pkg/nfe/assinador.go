// Package nfe: interface para assinatura digital de documentos XML (xmldsig enveloped).

package nfe

// Assinador assina um XML fiscal e devolve o XML com o nó Signature embutido
// como último filho da raiz, referenciando o elemento com atributo Id.
type Assinador interface {
	// Assinar recebe o XML do documento (sem assinatura) e o certificado com
	// chave privada, e retorna o XML com a assinatura enveloped anexada.
	Assinar(xmlBytes []byte, cert *CertificadoDigital) ([]byte, error)
}
