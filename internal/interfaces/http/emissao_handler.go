package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lojafacil/pdv-fiscal/internal/application/dto"
	"github.com/lojafacil/pdv-fiscal/internal/application/emissao"
	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	domnfe "github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
)

// EmissaoHandler expõe o ciclo de vida fiscal: emitir, consultar, cancelar e
// resolver pendência.
type EmissaoHandler struct {
	orq *emissao.Orchestrator
}

// NewEmissaoHandler constrói o handler de emissão.
func NewEmissaoHandler(orq *emissao.Orchestrator) *EmissaoHandler {
	return &EmissaoHandler{orq: orq}
}

// Emitir executa uma emissão completa.
// POST /api/notas
func (h *EmissaoHandler) Emitir(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.EmitirNotaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.Modelo != entity.ModeloNFe && in.Modelo != entity.ModeloNFCe {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "modelo deve ser 55 ou 65"})
	}
	if in.Serie <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "serie deve ser positiva"})
	}

	res, err := h.orq.Emitir(c.Context(), &emissao.RequisicaoEmissao{
		EmpresaID:    empresaID,
		Modelo:       in.Modelo,
		Serie:        in.Serie,
		Destinatario: toDestinatario(in.Destinatario),
		Itens:        toItens(in.Itens),
		Pagamentos:   toPagamentos(in.Pagamentos),
	})
	if err != nil {
		return respostaErroEmissao(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toNotaResponse(res, time.Now()))
}

// Cancelar registra o evento de cancelamento de um documento autorizado.
// POST /api/notas/:chave/cancelamento
func (h *EmissaoHandler) Cancelar(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	chave := c.Params("chave")
	if err := domnfe.ValidarChave(chave); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "chave de acesso inválida"})
	}
	var in dto.CancelarNotaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	res, err := h.orq.Cancelar(c.Context(), empresaID, chave, in.Justificativa)
	if err != nil {
		return respostaErroEmissao(c, err)
	}
	return c.JSON(toNotaResponse(res, time.Now()))
}

// ResolverPendencia consulta a SEFAZ pela chave e fixa o desfecho de uma
// emissão indeterminada.
// POST /api/notas/:chave/resolucao
func (h *EmissaoHandler) ResolverPendencia(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	chave := c.Params("chave")
	if err := domnfe.ValidarChave(chave); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "chave de acesso inválida"})
	}
	res, err := h.orq.ResolverPendencia(c.Context(), empresaID, chave)
	if err != nil {
		return respostaErroEmissao(c, err)
	}
	return c.JSON(toNotaResponse(res, time.Now()))
}

// StatusSefaz consulta a disponibilidade do autorizador.
// GET /api/sefaz/status
func (h *EmissaoHandler) StatusSefaz(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	modelo := c.QueryInt("modelo", entity.ModeloNFCe)
	status, err := h.orq.StatusServico(c.Context(), empresaID, modelo)
	if err != nil {
		return respostaErroEmissao(c, err)
	}
	return c.JSON(dto.StatusSefazResponse{
		Online:   status.Online,
		Codigo:   status.Codigo,
		Mensagem: status.Mensagem,
	})
}

// respostaErroEmissao traduz erros de domínio em códigos HTTP.
func respostaErroEmissao(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSemItens),
		errors.Is(err, domain.ErrSemPagamentos),
		errors.Is(err, domain.ErrJustificativaCurta),
		errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrSerieOcupada):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SERIE_OCUPADA", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrCertificadoExpirado),
		errors.Is(err, domain.ErrCertificadoFuturo),
		errors.Is(err, domain.ErrCNPJCertificado),
		errors.Is(err, domain.ErrSenhaCertificado),
		errors.Is(err, domain.ErrArquivoCertificado),
		errors.Is(err, domain.ErrChaveNaoCorresponde):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CERTIFICADO", Message: err.Error()})
	case errors.Is(err, domain.ErrConexaoSefaz):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SEFAZ_INDISPONIVEL", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toDestinatario(in *dto.DestinatarioRequest) *entity.Destinatario {
	if in == nil {
		return nil
	}
	return &entity.Destinatario{CPF: in.CPF, CNPJ: in.CNPJ, Nome: in.Nome}
}

func toItens(in []dto.ItemNotaRequest) []entity.ItemVenda {
	out := make([]entity.ItemVenda, 0, len(in))
	for _, i := range in {
		out = append(out, entity.ItemVenda{
			Codigo:         i.Codigo,
			GTIN:           i.GTIN,
			Descricao:      i.Descricao,
			NCM:            i.NCM,
			CFOP:           i.CFOP,
			Unidade:        i.Unidade,
			Quantidade:     i.Quantidade,
			ValorUnitario:  i.ValorUnitario,
			ValorTotal:     i.ValorTotal,
			Origem:         i.Origem,
			CSTICMS:        i.CSTICMS,
			CSOSN:          i.CSOSN,
			AliquotaICMS:   i.AliquotaICMS,
			CSTPIS:         i.CSTPIS,
			AliquotaPIS:    i.AliquotaPIS,
			CSTCOFINS:      i.CSTCOFINS,
			AliquotaCOFINS: i.AliquotaCOFINS,
			CSTIBSCBS:      i.CSTIBSCBS,
			AliquotaIBS:    i.AliquotaIBS,
			AliquotaCBS:    i.AliquotaCBS,
		})
	}
	return out
}

func toPagamentos(in []dto.PagamentoRequest) []entity.Pagamento {
	out := make([]entity.Pagamento, 0, len(in))
	for _, p := range in {
		out = append(out, entity.Pagamento{
			Meio:        p.Meio,
			Valor:       p.Valor,
			Bandeira:    p.Bandeira,
			Autorizacao: p.Autorizacao,
		})
	}
	return out
}

func toNotaResponse(res *emissao.ResultadoEmissao, em time.Time) dto.NotaResponse {
	return dto.NotaResponse{
		Chave:        res.Chave,
		Estado:       res.Estado,
		Modelo:       res.Modelo,
		Serie:        res.Serie,
		Numero:       res.Numero,
		Protocolo:    res.Protocolo,
		CodigoStatus: res.CodigoStatus,
		Mensagem:     res.Mensagem,
		QRCode:       res.QRCode,
		URLConsulta:  res.URLConsulta,
		EmitidaEm:    em,
	}
}
