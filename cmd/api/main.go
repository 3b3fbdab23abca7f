package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lojafacil/pdv-fiscal/internal/application/auth"
	"github.com/lojafacil/pdv-fiscal/internal/application/cadastro"
	"github.com/lojafacil/pdv-fiscal/internal/application/emissao"
	domnfe "github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/postgres"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz/signer"
	httpRouter "github.com/lojafacil/pdv-fiscal/internal/interfaces/http"
	"github.com/lojafacil/pdv-fiscal/pkg/config"
	"github.com/lojafacil/pdv-fiscal/pkg/logger"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("uf", cfg.Sefaz.UF).
		Str("ambiente", cfg.Sefaz.Ambiente).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com PostgreSQL")
	}
	defer pool.Close()

	empresaRepo := postgres.NewEmpresaRepository(pool)
	usuarioRepo := postgres.NewUsuarioRepository(pool)
	numeracaoRepo := postgres.NewNumeracaoRepository(pool)
	documentoRepo := postgres.NewDocumentoRepository(pool)

	montador := domnfe.NewMontadorDocumento()
	xmlBuilder := sefaz.NewXMLBuilderService()
	qrcodeSvc := sefaz.NewQRCodeService()
	assinador := signer.NewDigitalSignatureService()

	// Cada sessão de envio abre um cliente com o certificado da empresa (TLS
	// mútuo), por isso o orquestrador recebe uma fábrica e não uma instância.
	novoCliente := func(cert *pkgnfe.CertificadoDigital, uf string, modelo int, ambiente string) (emissao.ClienteSefaz, error) {
		return sefaz.NewClienteSOAP(cert, assinador, uf, modelo, ambiente)
	}

	orquestrador := emissao.NewOrchestrator(
		empresaRepo, numeracaoRepo, documentoRepo,
		montador, xmlBuilder, qrcodeSvc, assinador,
		signer.LoadFromFile, novoCliente,
		emissao.ConfigSefaz{
			UF:            cfg.Sefaz.UF,
			Ambiente:      cfg.Sefaz.Ambiente,
			CSC:           cfg.Sefaz.CSC,
			CSCID:         cfg.Sefaz.CSCID,
			CertArquivo:   cfg.Sefaz.CertArquivo,
			CertSenha:     cfg.Sefaz.CertSenha,
			AvisoDiasCert: cfg.Sefaz.AvisoDiasCert,
		},
		log.Zerolog(),
	)

	empresaUC := cadastro.NewEmpresaUseCase(empresaRepo)
	authUC := auth.NewAuthUseCase(usuarioRepo, empresaRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// O envio à SEFAZ pode levar até o timeout do cliente SOAP (60s);
		// a escrita da resposta precisa sobreviver a isso.
		WriteTimeout: time.Second * 90,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PDV Fiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmpresaUC:     empresaUC,
		AuthUC:        authUC,
		Orchestrator:  orquestrador,
		DocumentoRepo: documentoRepo,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("aplicação finalizada")
}
