package emissao

import (
	"context"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// ClienteSefaz define o porte de saída para o autorizador da UF. A
// implementação concreta usa SOAP 1.2 com TLS mútuo; testes injetam um fake.
type ClienteSefaz interface {
	// EnviarLote submete o XML assinado em lote síncrono. Erro não nulo é
	// falha de transporte (domain.ErrConexaoSefaz): o desfecho fica
	// indeterminado e o número NÃO volta ao contador.
	EnviarLote(ctx context.Context, xmlAssinado []byte, idLote string) (*entity.ResultadoSefaz, error)
	// ConsultarStatus verifica a disponibilidade do webservice.
	ConsultarStatus(ctx context.Context) (*entity.StatusServico, error)
	// ConsultarPorChave consulta a situação definitiva de um documento.
	ConsultarPorChave(ctx context.Context, chave string) (*entity.ResultadoSefaz, error)
	// Cancelar registra o evento de cancelamento de um documento autorizado.
	Cancelar(ctx context.Context, chave, protocolo, justificativa string) (*entity.ResultadoSefaz, error)
}

// FabricaClienteSefaz cria o cliente para um certificado e destino. O cliente
// carrega o certificado na configuração TLS, então cada empresa usa o seu.
type FabricaClienteSefaz func(cert *pkgnfe.CertificadoDigital, uf string, modelo int, ambiente string) (ClienteSefaz, error)

// CarregadorCertificado abre o arquivo A1 da empresa. A implementação vive em
// infrastructure/sefaz/signer.
type CarregadorCertificado func(caminho, senha string) (*pkgnfe.CertificadoDigital, error)
