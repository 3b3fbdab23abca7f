package emissao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	domnfe "github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
	"github.com/lojafacil/pdv-fiscal/internal/domain/repository"
	"github.com/lojafacil/pdv-fiscal/internal/infrastructure/sefaz"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// ConfigSefaz parametriza a sessão de emissão de uma instalação do PDV.
type ConfigSefaz struct {
	UF            string // UF do autorizador (normalmente a do emitente)
	Ambiente      string // tpAmb: "1" produção, "2" homologação
	CSC           string // Código de Segurança do Contribuinte (NFC-e)
	CSCID         string // identificador do CSC
	CertArquivo   string // caminho do .pfx/.p12
	CertSenha     string
	AvisoDiasCert int // alerta quando a validade restante for menor (0 = 30)
}

// RequisicaoEmissao é a venda pronta para virar documento fiscal.
type RequisicaoEmissao struct {
	EmpresaID    string
	Modelo       int // 55 | 65
	Serie        int
	Destinatario *entity.Destinatario
	Itens        []entity.ItemVenda
	Pagamentos   []entity.Pagamento
}

// ResultadoEmissao é o desfecho de uma tentativa de emissão.
type ResultadoEmissao struct {
	Estado       string // AUTORIZADO, REJEITADO ou INDETERMINADO
	Chave        string
	Modelo       int
	Numero       int64
	Serie        int
	Protocolo    string
	CodigoStatus string
	Mensagem     string
	QRCode       string
	URLConsulta  string
	XMLAssinado  string
}

// Orchestrator conduz o ciclo completo de emissão:
//
//	certificado → alocar número → montar → XML → QR (NFC-e) → assinar → enviar → desfecho
//
// O contrato do contador é o coração do fluxo: confirma no sucesso E na
// indeterminação (o número pode ter sido consumido pela SEFAZ), libera apenas
// na rejeição de negócio e em falhas locais anteriores ao envio.
type Orchestrator struct {
	empresaRepo   repository.EmpresaRepository
	numeracaoRepo repository.NumeracaoRepository
	documentoRepo repository.DocumentoRepository

	montador   *domnfe.MontadorDocumento
	xmlBuilder *sefaz.XMLBuilderService
	qrcode     *sefaz.QRCodeService
	assinador  pkgnfe.Assinador

	carregarCert CarregadorCertificado
	novoCliente  FabricaClienteSefaz
	config       ConfigSefaz
	log          zerolog.Logger

	// serializa emissões por {empresa, modelo, série} dentro do processo;
	// o contador no banco protege entre processos.
	mu     sync.Mutex
	series map[string]*sync.Mutex
}

// NewOrchestrator constrói o orquestrador com todas as dependências.
func NewOrchestrator(
	empresaRepo repository.EmpresaRepository,
	numeracaoRepo repository.NumeracaoRepository,
	documentoRepo repository.DocumentoRepository,
	montador *domnfe.MontadorDocumento,
	xmlBuilder *sefaz.XMLBuilderService,
	qrcode *sefaz.QRCodeService,
	assinador pkgnfe.Assinador,
	carregarCert CarregadorCertificado,
	novoCliente FabricaClienteSefaz,
	config ConfigSefaz,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		empresaRepo:   empresaRepo,
		numeracaoRepo: numeracaoRepo,
		documentoRepo: documentoRepo,
		montador:      montador,
		xmlBuilder:    xmlBuilder,
		qrcode:        qrcode,
		assinador:     assinador,
		carregarCert:  carregarCert,
		novoCliente:   novoCliente,
		config:        config,
		log:           log,
	}
}

// Emitir executa uma tentativa de emissão do começo ao fim. Erros locais
// (validação, certificado, montagem) devolvem o número ao contador; depois do
// envio o desfecho é sempre um dos três estados persistidos.
func (o *Orchestrator) Emitir(ctx context.Context, req *RequisicaoEmissao) (*ResultadoEmissao, error) {
	empresa, err := o.empresaRepo.GetByID(ctx, req.EmpresaID)
	if err != nil {
		return nil, fmt.Errorf("emissao: carregar empresa: %w", err)
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 1. Certificado antes de tudo: falha aqui não pode queimar número
	// ═══════════════════════════════════════════════════════════════════════════
	cert, err := o.certificadoValido(empresa)
	if err != nil {
		return nil, err
	}

	destravar := o.travarSerie(req.EmpresaID, req.Modelo, req.Serie)
	defer destravar()

	// ═══════════════════════════════════════════════════════════════════════════
	// 2. Alocação do número (reserva; confirmada ou liberada adiante)
	// ═══════════════════════════════════════════════════════════════════════════
	numero, err := o.numeracaoRepo.AlocarProximo(ctx, req.EmpresaID, req.Modelo, req.Serie)
	if err != nil {
		return nil, fmt.Errorf("emissao: alocar número: %w", err)
	}
	liberar := func() {
		if lerr := o.numeracaoRepo.Liberar(ctx, req.EmpresaID, req.Modelo, req.Serie, numero); lerr != nil {
			o.log.Error().Err(lerr).Int64("numero", numero).Msg("falha ao liberar número da série")
		}
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 3. Montagem do documento e da chave de acesso
	// ═══════════════════════════════════════════════════════════════════════════
	doc, err := o.montador.Montar(&domnfe.MontagemParams{
		Empresa:        empresa,
		Destinatario:   req.Destinatario,
		Itens:          req.Itens,
		Pagamentos:     req.Pagamentos,
		Ambiente:       o.config.Ambiente,
		Modelo:         req.Modelo,
		Serie:          req.Serie,
		Numero:         numero,
		Emissao:        time.Now(),
		CodigoNumerico: -1, // sortear cNF novo para esta tentativa
	})
	if err != nil {
		liberar()
		return nil, err
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 4. XML, QR Code (NFC-e) e assinatura
	// ═══════════════════════════════════════════════════════════════════════════
	xmlDoc, err := o.xmlBuilder.Build(doc)
	if err != nil {
		liberar()
		return nil, fmt.Errorf("emissao: serializar XML: %w", err)
	}

	var qrURL, urlChave string
	if req.Modelo == entity.ModeloNFCe {
		base := sefaz.URLConsultaQR(o.config.UF, o.config.Ambiente)
		qrURL, err = o.qrcode.URL(base, doc.Chave, o.config.Ambiente, o.config.CSCID, o.config.CSC)
		if err != nil {
			liberar()
			return nil, err
		}
		urlChave = sefaz.URLConsultaChave(o.config.UF, o.config.Ambiente)
		xmlDoc, err = sefaz.InserirInfNFeSupl(xmlDoc, qrURL, urlChave)
		if err != nil {
			liberar()
			return nil, fmt.Errorf("emissao: inserir infNFeSupl: %w", err)
		}
	}

	xmlAssinado, err := o.assinador.Assinar(xmlDoc, cert)
	if err != nil {
		liberar()
		return nil, fmt.Errorf("emissao: assinar documento: %w", err)
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 5. Envio e desfecho
	// ═══════════════════════════════════════════════════════════════════════════
	cliente, err := o.novoCliente(cert, o.config.UF, req.Modelo, o.config.Ambiente)
	if err != nil {
		liberar()
		return nil, fmt.Errorf("emissao: criar cliente SEFAZ: %w", err)
	}

	idLote := strconv.FormatInt(time.Now().UnixMilli(), 10)
	resultado, envioErr := cliente.EnviarLote(ctx, xmlAssinado, idLote)

	res := &ResultadoEmissao{
		Chave:       doc.Chave,
		Modelo:      req.Modelo,
		Numero:      numero,
		Serie:       req.Serie,
		QRCode:      qrURL,
		URLConsulta: urlChave,
		XMLAssinado: string(xmlAssinado),
	}

	switch {
	case envioErr != nil:
		// Falha de transporte: a SEFAZ pode ter recebido e autorizado. O
		// número fica consumido e o desfecho sai depois por consulta.
		if !errors.Is(envioErr, domain.ErrConexaoSefaz) {
			liberar()
			return nil, envioErr
		}
		res.Estado = entity.EstadoIndeterminado
		res.Mensagem = envioErr.Error()
		o.confirmar(ctx, req, numero)
		o.log.Warn().Str("chave", doc.Chave).Err(envioErr).Msg("emissão indeterminada: falha de transporte")

	case resultado.Aceito:
		res.Estado = entity.EstadoAutorizado
		res.Protocolo = resultado.Protocolo
		res.CodigoStatus = resultado.CodigoStatus
		res.Mensagem = resultado.Mensagem
		o.confirmar(ctx, req, numero)
		o.log.Info().Str("chave", doc.Chave).Str("protocolo", res.Protocolo).Msg("documento autorizado")

	default:
		res.Estado = entity.EstadoRejeitado
		res.CodigoStatus = resultado.CodigoStatus
		res.Mensagem = resultado.Mensagem
		liberar()
		o.log.Warn().Str("chave", doc.Chave).Str("cstat", res.CodigoStatus).Str("motivo", res.Mensagem).Msg("documento rejeitado")
	}

	o.persistir(ctx, req, res)
	return res, nil
}

// ResolverPendencia consulta a SEFAZ pela chave de um documento em estado
// INDETERMINADO e fixa o desfecho definitivo.
func (o *Orchestrator) ResolverPendencia(ctx context.Context, empresaID, chave string) (*ResultadoEmissao, error) {
	registro, err := o.documentoRepo.GetByChave(ctx, chave)
	if err != nil {
		return nil, err
	}
	if registro.Estado != entity.EstadoIndeterminado {
		return nil, fmt.Errorf("%w: documento %s não está indeterminado (estado %s)",
			domain.ErrConflict, chave, registro.Estado)
	}

	empresa, err := o.empresaRepo.GetByID(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	cert, err := o.certificadoValido(empresa)
	if err != nil {
		return nil, err
	}
	cliente, err := o.novoCliente(cert, o.config.UF, registro.Modelo, o.config.Ambiente)
	if err != nil {
		return nil, err
	}

	consultaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	situacao, err := cliente.ConsultarPorChave(consultaCtx, chave)
	if err != nil {
		// Continua indeterminado; nada muda.
		return nil, err
	}

	res := &ResultadoEmissao{
		Chave:        chave,
		Modelo:       registro.Modelo,
		Numero:       registro.Numero,
		Serie:        registro.Serie,
		Protocolo:    situacao.Protocolo,
		CodigoStatus: situacao.CodigoStatus,
		Mensagem:     situacao.Mensagem,
	}
	if situacao.Aceito {
		res.Estado = entity.EstadoAutorizado
	} else {
		// A SEFAZ não conhece (ou rejeitou) o documento. O número já foi
		// confirmado na indeterminação; a lacuna na numeração é aceitável.
		res.Estado = entity.EstadoRejeitado
	}
	if err := o.documentoRepo.UpdateEstado(ctx, chave, res.Estado, res.Protocolo, res.CodigoStatus, res.Mensagem); err != nil {
		o.log.Error().Err(err).Str("chave", chave).Msg("falha ao persistir desfecho da pendência")
	}
	o.log.Info().Str("chave", chave).Str("estado", res.Estado).Msg("pendência resolvida")
	return res, nil
}

// Cancelar registra o evento de cancelamento de um documento autorizado.
func (o *Orchestrator) Cancelar(ctx context.Context, empresaID, chave, justificativa string) (*ResultadoEmissao, error) {
	if err := domnfe.ValidarJustificativa(justificativa); err != nil {
		return nil, err
	}
	registro, err := o.documentoRepo.GetByChave(ctx, chave)
	if err != nil {
		return nil, err
	}
	if registro.Estado != entity.EstadoAutorizado {
		return nil, fmt.Errorf("%w: só documento autorizado pode ser cancelado (estado %s)",
			domain.ErrConflict, registro.Estado)
	}

	empresa, err := o.empresaRepo.GetByID(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	cert, err := o.certificadoValido(empresa)
	if err != nil {
		return nil, err
	}
	cliente, err := o.novoCliente(cert, o.config.UF, registro.Modelo, o.config.Ambiente)
	if err != nil {
		return nil, err
	}

	resultado, err := cliente.Cancelar(ctx, chave, registro.Protocolo, justificativa)
	if err != nil {
		return nil, err
	}

	res := &ResultadoEmissao{
		Chave:        chave,
		Modelo:       registro.Modelo,
		Numero:       registro.Numero,
		Serie:        registro.Serie,
		Protocolo:    resultado.Protocolo,
		CodigoStatus: resultado.CodigoStatus,
		Mensagem:     resultado.Mensagem,
	}
	if resultado.Aceito {
		res.Estado = entity.EstadoCancelado
		if err := o.documentoRepo.UpdateEstado(ctx, chave, entity.EstadoCancelado, resultado.Protocolo, resultado.CodigoStatus, resultado.Mensagem); err != nil {
			o.log.Error().Err(err).Str("chave", chave).Msg("falha ao persistir cancelamento")
		}
		o.log.Info().Str("chave", chave).Msg("documento cancelado")
	} else {
		res.Estado = registro.Estado // permanece autorizado
		o.log.Warn().Str("chave", chave).Str("cstat", resultado.CodigoStatus).Msg("cancelamento não aceito")
	}
	return res, nil
}

// StatusServico consulta a disponibilidade do autorizador com o certificado
// da empresa.
func (o *Orchestrator) StatusServico(ctx context.Context, empresaID string, modelo int) (*entity.StatusServico, error) {
	empresa, err := o.empresaRepo.GetByID(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	cert, err := o.certificadoValido(empresa)
	if err != nil {
		return nil, err
	}
	cliente, err := o.novoCliente(cert, o.config.UF, modelo, o.config.Ambiente)
	if err != nil {
		return nil, err
	}
	statusCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return cliente.ConsultarStatus(statusCtx)
}

// ── helpers privados ──────────────────────────────────────────────────────────

// certificadoValido carrega o A1 e aplica as validações de vigência e de
// titularidade. Validade próxima do fim só gera aviso.
func (o *Orchestrator) certificadoValido(empresa *entity.Empresa) (*pkgnfe.CertificadoDigital, error) {
	cert, err := o.carregarCert(o.config.CertArquivo, o.config.CertSenha)
	if err != nil {
		return nil, err
	}
	agora := time.Now()
	if cert.Expirado(agora) {
		return nil, domain.ErrCertificadoExpirado
	}
	if cert.AindaNaoValido(agora) {
		return nil, domain.ErrCertificadoFuturo
	}
	if !cert.CNPJConfere(empresa.CNPJ) {
		return nil, domain.ErrCNPJCertificado
	}
	aviso := o.config.AvisoDiasCert
	if aviso <= 0 {
		aviso = 30
	}
	if dias := cert.DiasParaExpirar(agora); dias <= aviso {
		o.log.Warn().Int("dias", dias).Str("cnpj", cert.CNPJ).Msg("certificado digital próximo do vencimento")
	}
	return cert, nil
}

func (o *Orchestrator) travarSerie(empresaID string, modelo, serie int) func() {
	chave := fmt.Sprintf("%s|%d|%d", empresaID, modelo, serie)
	o.mu.Lock()
	if o.series == nil {
		o.series = make(map[string]*sync.Mutex)
	}
	m, ok := o.series[chave]
	if !ok {
		m = &sync.Mutex{}
		o.series[chave] = m
	}
	o.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (o *Orchestrator) confirmar(ctx context.Context, req *RequisicaoEmissao, numero int64) {
	if err := o.numeracaoRepo.Confirmar(ctx, req.EmpresaID, req.Modelo, req.Serie, numero); err != nil {
		o.log.Error().Err(err).Int64("numero", numero).Msg("falha ao confirmar número da série")
	}
}

func (o *Orchestrator) persistir(ctx context.Context, req *RequisicaoEmissao, res *ResultadoEmissao) {
	registro := &entity.DocumentoEmitido{
		EmpresaID:    req.EmpresaID,
		Modelo:       req.Modelo,
		Serie:        res.Serie,
		Numero:       res.Numero,
		Chave:        res.Chave,
		Estado:       res.Estado,
		XMLAssinado:  res.XMLAssinado,
		Protocolo:    res.Protocolo,
		CodigoStatus: res.CodigoStatus,
		Mensagem:     res.Mensagem,
		QRCode:       res.QRCode,
		URLConsulta:  res.URLConsulta,
	}
	if err := o.documentoRepo.Create(ctx, registro); err != nil {
		o.log.Error().Err(err).Str("chave", res.Chave).Msg("falha ao persistir registro da emissão")
	}
}
