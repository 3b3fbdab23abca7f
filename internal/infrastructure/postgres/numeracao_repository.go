package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/repository"
)

var _ repository.NumeracaoRepository = (*NumeracaoRepo)(nil)

// NumeracaoRepo implementa o contador de numeração fiscal sobre PostgreSQL.
// A coluna numero_alocado guarda a reserva corrente (NULL = série livre); o
// upsert condicional garante atomicidade entre processos sem lock explícito.
type NumeracaoRepo struct {
	pool *pgxpool.Pool
}

// NewNumeracaoRepository constrói o repositório.
func NewNumeracaoRepository(pool *pgxpool.Pool) *NumeracaoRepo {
	return &NumeracaoRepo{pool: pool}
}

// AlocarProximo reserva ultimo_numero+1 para a série. Se já existe reserva em
// aberto, devolve domain.ErrSerieOcupada (outra emissão em andamento).
func (r *NumeracaoRepo) AlocarProximo(ctx context.Context, empresaID string, modelo, serie int) (int64, error) {
	const q = `
		INSERT INTO series_numeracao (empresa_id, modelo, serie, ultimo_numero, numero_alocado)
		VALUES ($1, $2, $3, 0, 1)
		ON CONFLICT (empresa_id, modelo, serie) DO UPDATE
		SET numero_alocado = series_numeracao.ultimo_numero + 1
		WHERE series_numeracao.numero_alocado IS NULL
		RETURNING numero_alocado`
	var numero int64
	err := r.pool.QueryRow(ctx, q, empresaID, modelo, serie).Scan(&numero)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrSerieOcupada
		}
		return 0, fmt.Errorf("alocar número da série: %w", err)
	}
	return numero, nil
}

// Confirmar consome a reserva: avança ultimo_numero e limpa a alocação.
func (r *NumeracaoRepo) Confirmar(ctx context.Context, empresaID string, modelo, serie int, numero int64) error {
	const q = `
		UPDATE series_numeracao
		SET ultimo_numero = $4, numero_alocado = NULL
		WHERE empresa_id = $1 AND modelo = $2 AND serie = $3 AND numero_alocado = $4`
	tag, err := r.pool.Exec(ctx, q, empresaID, modelo, serie, numero)
	if err != nil {
		return fmt.Errorf("confirmar número da série: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: número %d não está alocado nesta série", domain.ErrConflict, numero)
	}
	return nil
}

// Liberar desfaz a reserva sem avançar o contador: o mesmo número sai na
// próxima alocação.
func (r *NumeracaoRepo) Liberar(ctx context.Context, empresaID string, modelo, serie int, numero int64) error {
	const q = `
		UPDATE series_numeracao
		SET numero_alocado = NULL
		WHERE empresa_id = $1 AND modelo = $2 AND serie = $3 AND numero_alocado = $4`
	tag, err := r.pool.Exec(ctx, q, empresaID, modelo, serie, numero)
	if err != nil {
		return fmt.Errorf("liberar número da série: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: número %d não está alocado nesta série", domain.ErrConflict, numero)
	}
	return nil
}
