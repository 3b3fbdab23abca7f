// Constantes da assinatura digital enveloped exigida pelo layout NF-e 4.00
// (xmldsig com RSA-SHA1, perfil fixo do Manual de Orientação do Contribuinte).

package signer

const (
	NamespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA1         = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	AlgSHA1            = "http://www.w3.org/2000/09/xmldsig#sha1"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// PrefixoIDInfNFe é o prefixo do atributo Id do elemento assinado
// (Id = "NFe" + chave de acesso; a Reference da assinatura usa "#" + Id).
const PrefixoIDInfNFe = "NFe"
