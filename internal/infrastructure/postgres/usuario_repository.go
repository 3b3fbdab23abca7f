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

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementa UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	pool *pgxpool.Pool
}

// NewUsuarioRepository constrói o repositório.
func NewUsuarioRepository(pool *pgxpool.Pool) *UsuarioRepo {
	return &UsuarioRepo{pool: pool}
}

const colunasUsuario = `
	id, empresa_id, email, password_hash, nome, role, status, created_at, updated_at`

func (r *UsuarioRepo) Create(ctx context.Context, u *entity.Usuario) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO usuarios (` + colunasUsuario + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.pool.Exec(ctx, q,
		u.ID, u.EmpresaID, u.Email, u.PasswordHash, u.Nome, u.Role, u.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

func (r *UsuarioRepo) GetByID(ctx context.Context, id string) (*entity.Usuario, error) {
	const q = `SELECT ` + colunasUsuario + ` FROM usuarios WHERE id = $1`
	u, err := scanUsuario(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get usuario por id: %w", err)
	}
	return u, nil
}

func (r *UsuarioRepo) GetByEmail(ctx context.Context, email string) (*entity.Usuario, error) {
	const q = `SELECT ` + colunasUsuario + ` FROM usuarios WHERE email = $1`
	u, err := scanUsuario(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get usuario por email: %w", err)
	}
	return u, nil
}

func (r *UsuarioRepo) Update(ctx context.Context, u *entity.Usuario) error {
	const q = `
		UPDATE usuarios
		SET email = $2, password_hash = $3, nome = $4, role = $5, status = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, u.ID, u.Email, u.PasswordHash, u.Nome, u.Role, u.Status)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UsuarioRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Usuario, error) {
	const q = `
		SELECT ` + colunasUsuario + ` FROM usuarios
		WHERE empresa_id = $1 ORDER BY nome LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()
	var list []*entity.Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUsuario(row pgxScanner) (*entity.Usuario, error) {
	var u entity.Usuario
	err := row.Scan(&u.ID, &u.EmpresaID, &u.Email, &u.PasswordHash, &u.Nome,
		&u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
