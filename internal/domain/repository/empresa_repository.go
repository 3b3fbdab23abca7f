package repository

import (
	"context"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
)

// EmpresaRepository define o porte de persistência do emitente.
type EmpresaRepository interface {
	Create(ctx context.Context, empresa *entity.Empresa) error
	GetByID(ctx context.Context, id string) (*entity.Empresa, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.Empresa, error)
	Update(ctx context.Context, empresa *entity.Empresa) error
	List(ctx context.Context, limit, offset int) ([]*entity.Empresa, error)
}
