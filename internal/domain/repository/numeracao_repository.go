package repository

import "context"

// NumeracaoRepository define o porte do contador de numeração fiscal.
// Cada {empresa, modelo, série} tem um contador monotônico; a implementação
// vive em infrastructure.
//
// Contrato de alocação:
//
//   - AlocarProximo reserva o próximo número da série. Enquanto a reserva não
//     for confirmada ou liberada, novas alocações na mesma série devolvem
//     domain.ErrSerieOcupada.
//   - Confirmar consome a reserva em definitivo (autorização ou pendência que
//     preserva o número).
//   - Liberar devolve o número ao contador para a próxima tentativa (rejeição
//     de negócio). Nunca libere após autorização: número autorizado é consumido.
type NumeracaoRepository interface {
	AlocarProximo(ctx context.Context, empresaID string, modelo, serie int) (int64, error)
	Confirmar(ctx context.Context, empresaID string, modelo, serie int, numero int64) error
	Liberar(ctx context.Context, empresaID string, modelo, serie int, numero int64) error
}
