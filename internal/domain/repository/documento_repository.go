package repository

import (
	"context"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
)

// DocumentoRepository define o porte de persistência das emissões.
// Cada tentativa enviada à SEFAZ vira um registro; o estado evolui conforme
// o desfecho (AUTORIZADO, REJEITADO, INDETERMINADO).
type DocumentoRepository interface {
	Create(ctx context.Context, doc *entity.DocumentoEmitido) error
	GetByChave(ctx context.Context, chave string) (*entity.DocumentoEmitido, error)
	UpdateEstado(ctx context.Context, chave, estado, protocolo, codigoStatus, mensagem string) error
	ListPendentes(ctx context.Context, empresaID string, limit int) ([]*entity.DocumentoEmitido, error)
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.DocumentoEmitido, error)
}
