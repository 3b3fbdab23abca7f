package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lojafacil/pdv-fiscal/internal/application/auth"
	"github.com/lojafacil/pdv-fiscal/internal/application/cadastro"
	"github.com/lojafacil/pdv-fiscal/internal/application/emissao"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	"github.com/lojafacil/pdv-fiscal/internal/domain/repository"
)

// RouterDeps dependências do router.
type RouterDeps struct {
	EmpresaUC     *cadastro.EmpresaUseCase
	AuthUC        *auth.AuthUseCase
	Orchestrator  *emissao.Orchestrator
	DocumentoRepo repository.DocumentoRepository
	JWTSecret     string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Cadastro de emitentes (somente administrador)
	empresas := protected.Group("/empresas", RequireRole(entity.RoleAdmin))
	empresaHandler := NewEmpresaHandler(deps.EmpresaUC)
	empresas.Post("/", empresaHandler.Create)
	empresas.Get("/", empresaHandler.List)
	empresas.Get("/:id", empresaHandler.GetByID)

	// Emissão fiscal (operador de caixa ou administrador)
	notas := protected.Group("/notas", RequireRole(entity.RoleAdmin, entity.RoleOperador))
	emissaoHandler := NewEmissaoHandler(deps.Orchestrator)
	documentoHandler := NewDocumentoHandler(deps.DocumentoRepo)
	notas.Post("/", emissaoHandler.Emitir)
	notas.Get("/", documentoHandler.List)
	notas.Get("/:chave", documentoHandler.GetByChave)
	notas.Post("/:chave/cancelamento", emissaoHandler.Cancelar)
	notas.Post("/:chave/resolucao", emissaoHandler.ResolverPendencia)

	// Status do autorizador
	sefazGroup := protected.Group("/sefaz", RequireRole(entity.RoleAdmin, entity.RoleOperador))
	sefazGroup.Get("/status", emissaoHandler.StatusSefaz)
}
