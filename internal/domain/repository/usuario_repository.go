package repository

import (
	"context"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
)

// UsuarioRepository define o porte de persistência dos operadores do PDV.
type UsuarioRepository interface {
	Create(ctx context.Context, usuario *entity.Usuario) error
	GetByID(ctx context.Context, id string) (*entity.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*entity.Usuario, error)
	Update(ctx context.Context, usuario *entity.Usuario) error
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Usuario, error)
}
