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
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

var _ repository.EmpresaRepository = (*EmpresaRepo)(nil)

// EmpresaRepo implementa EmpresaRepository sobre PostgreSQL.
type EmpresaRepo struct {
	pool *pgxpool.Pool
}

// NewEmpresaRepository constrói o repositório.
func NewEmpresaRepository(pool *pgxpool.Pool) *EmpresaRepo {
	return &EmpresaRepo{pool: pool}
}

const colunasEmpresa = `
	id, cnpj, razao_social, nome_fantasia, inscricao_estadual, regime_tributario,
	logradouro, numero, bairro, codigo_municipio, municipio, uf, cep,
	ibs_cbs_habilitado, aliquota_ibs_padrao, aliquota_cbs_padrao,
	status, created_at, updated_at`

func (r *EmpresaRepo) Create(ctx context.Context, e *entity.Empresa) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO empresas (` + colunasEmpresa + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())`
	_, err := r.pool.Exec(ctx, q,
		e.ID, pkgnfe.SomenteDigitos(e.CNPJ), e.RazaoSocial, e.NomeFantasia,
		e.InscricaoEstadual, e.RegimeTributario,
		e.Endereco.Logradouro, e.Endereco.Numero, e.Endereco.Bairro,
		e.Endereco.CodigoMunicipio, e.Endereco.Municipio, e.Endereco.UF, e.Endereco.CEP,
		e.IBSCBSHabilitado, e.AliquotaIBSPadrao, e.AliquotaCBSPadrao, e.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: CNPJ já cadastrado", domain.ErrConflict)
		}
		return fmt.Errorf("insert empresa: %w", err)
	}
	return nil
}

func (r *EmpresaRepo) GetByID(ctx context.Context, id string) (*entity.Empresa, error) {
	const q = `SELECT ` + colunasEmpresa + ` FROM empresas WHERE id = $1`
	e, err := scanEmpresa(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get empresa por id: %w", err)
	}
	return e, nil
}

func (r *EmpresaRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Empresa, error) {
	const q = `SELECT ` + colunasEmpresa + ` FROM empresas WHERE cnpj = $1`
	e, err := scanEmpresa(r.pool.QueryRow(ctx, q, pkgnfe.SomenteDigitos(cnpj)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get empresa por cnpj: %w", err)
	}
	return e, nil
}

func (r *EmpresaRepo) Update(ctx context.Context, e *entity.Empresa) error {
	const q = `
		UPDATE empresas
		SET razao_social = $2, nome_fantasia = $3, inscricao_estadual = $4,
		    regime_tributario = $5, logradouro = $6, numero = $7, bairro = $8,
		    codigo_municipio = $9, municipio = $10, uf = $11, cep = $12,
		    ibs_cbs_habilitado = $13, aliquota_ibs_padrao = $14, aliquota_cbs_padrao = $15,
		    status = $16, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		e.ID, e.RazaoSocial, e.NomeFantasia, e.InscricaoEstadual, e.RegimeTributario,
		e.Endereco.Logradouro, e.Endereco.Numero, e.Endereco.Bairro,
		e.Endereco.CodigoMunicipio, e.Endereco.Municipio, e.Endereco.UF, e.Endereco.CEP,
		e.IBSCBSHabilitado, e.AliquotaIBSPadrao, e.AliquotaCBSPadrao, e.Status,
	)
	if err != nil {
		return fmt.Errorf("update empresa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmpresaRepo) List(ctx context.Context, limit, offset int) ([]*entity.Empresa, error) {
	const q = `SELECT ` + colunasEmpresa + ` FROM empresas ORDER BY razao_social LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list empresas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Empresa
	for rows.Next() {
		e, err := scanEmpresa(rows)
		if err != nil {
			return nil, fmt.Errorf("scan empresa: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanEmpresa(row pgxScanner) (*entity.Empresa, error) {
	var e entity.Empresa
	err := row.Scan(
		&e.ID, &e.CNPJ, &e.RazaoSocial, &e.NomeFantasia, &e.InscricaoEstadual, &e.RegimeTributario,
		&e.Endereco.Logradouro, &e.Endereco.Numero, &e.Endereco.Bairro,
		&e.Endereco.CodigoMunicipio, &e.Endereco.Municipio, &e.Endereco.UF, &e.Endereco.CEP,
		&e.IBSCBSHabilitado, &e.AliquotaIBSPadrao, &e.AliquotaCBSPadrao,
		&e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
