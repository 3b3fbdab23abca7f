package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	"github.com/lojafacil/pdv-fiscal/internal/domain/repository"
)

var _ repository.DocumentoRepository = (*DocumentoRepo)(nil)

// DocumentoRepo implementa DocumentoRepository sobre PostgreSQL. A chave de
// acesso é única: duas tentativas com a mesma chave indicam bug no sorteio do
// cNF e viram domain.ErrConflict.
type DocumentoRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentoRepository constrói o repositório.
func NewDocumentoRepository(pool *pgxpool.Pool) *DocumentoRepo {
	return &DocumentoRepo{pool: pool}
}

const colunasDocumento = `
	id, empresa_id, modelo, serie, numero, chave, estado, xml_assinado,
	protocolo, codigo_status, mensagem, qrcode, url_consulta, created_at, updated_at`

func (r *DocumentoRepo) Create(ctx context.Context, d *entity.DocumentoEmitido) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO documentos_emitidos (` + colunasDocumento + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	_, err := r.pool.Exec(ctx, q,
		d.ID, d.EmpresaID, d.Modelo, d.Serie, d.Numero, d.Chave, d.Estado,
		d.XMLAssinado, d.Protocolo, d.CodigoStatus, d.Mensagem, d.QRCode, d.URLConsulta,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: chave %s já registrada", domain.ErrConflict, d.Chave)
		}
		return fmt.Errorf("insert documento: %w", err)
	}
	return nil
}

func (r *DocumentoRepo) GetByChave(ctx context.Context, chave string) (*entity.DocumentoEmitido, error) {
	const q = `SELECT ` + colunasDocumento + ` FROM documentos_emitidos WHERE chave = $1`
	d, err := scanDocumento(r.pool.QueryRow(ctx, q, chave))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get documento por chave: %w", err)
	}
	return d, nil
}

func (r *DocumentoRepo) UpdateEstado(ctx context.Context, chave, estado, protocolo, codigoStatus, mensagem string) error {
	const q = `
		UPDATE documentos_emitidos
		SET estado = $2, protocolo = $3, codigo_status = $4, mensagem = $5, updated_at = now()
		WHERE chave = $1`
	tag, err := r.pool.Exec(ctx, q, chave, estado, protocolo, codigoStatus, mensagem)
	if err != nil {
		return fmt.Errorf("update estado do documento: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPendentes devolve as emissões indeterminadas mais antigas primeiro,
// para a rotina de resolução de pendências.
func (r *DocumentoRepo) ListPendentes(ctx context.Context, empresaID string, limit int) ([]*entity.DocumentoEmitido, error) {
	const q = `
		SELECT ` + colunasDocumento + `
		FROM documentos_emitidos
		WHERE empresa_id = $1 AND estado = $2
		ORDER BY created_at ASC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, q, empresaID, entity.EstadoIndeterminado, limit)
	if err != nil {
		return nil, fmt.Errorf("list pendentes: %w", err)
	}
	defer rows.Close()
	return coletarDocumentos(rows)
}

func (r *DocumentoRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.DocumentoEmitido, error) {
	const q = `
		SELECT ` + colunasDocumento + `
		FROM documentos_emitidos
		WHERE empresa_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documentos: %w", err)
	}
	defer rows.Close()
	return coletarDocumentos(rows)
}

func coletarDocumentos(rows pgx.Rows) ([]*entity.DocumentoEmitido, error) {
	var list []*entity.DocumentoEmitido
	for rows.Next() {
		d, err := scanDocumento(rows)
		if err != nil {
			return nil, fmt.Errorf("scan documento: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func scanDocumento(row pgxScanner) (*entity.DocumentoEmitido, error) {
	var d entity.DocumentoEmitido
	err := row.Scan(
		&d.ID, &d.EmpresaID, &d.Modelo, &d.Serie, &d.Numero, &d.Chave, &d.Estado,
		&d.XMLAssinado, &d.Protocolo, &d.CodigoStatus, &d.Mensagem, &d.QRCode,
		&d.URLConsulta, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
