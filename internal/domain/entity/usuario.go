package entity

import "time"

// Papéis válidos para Usuario.
const (
	RoleAdmin    = "administrador"
	RoleOperador = "operador_caixa"
)

// Usuario representa um operador do sistema (pertence a uma Empresa).
type Usuario struct {
	ID           string
	EmpresaID    string
	Email        string
	PasswordHash string // hash bcrypt, nunca em claro no domínio após persistir
	Nome         string
	Role         string // administrador, operador_caixa
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
