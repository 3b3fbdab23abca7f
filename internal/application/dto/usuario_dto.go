package dto

import "time"

// RegisterRequest entrada para registro de operador (password em claro, o use
// case faz o hash).
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	EmpresaID string `json:"empresa_id" validate:"required,uuid"`
	Nome      string `json:"nome" validate:"omitempty,max=200"`
	Role      string `json:"role" validate:"omitempty,oneof=administrador operador_caixa"`
}

// UsuarioResponse saída de um usuário (sem password).
type UsuarioResponse struct {
	ID        string    `json:"id"`
	EmpresaID string    `json:"empresa_id"`
	Email     string    `json:"email"`
	Nome      string    `json:"nome"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse saída com token JWT.
type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario UsuarioResponse `json:"usuario"`
}
