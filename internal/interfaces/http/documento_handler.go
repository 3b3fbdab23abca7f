package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lojafacil/pdv-fiscal/internal/application/dto"
	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	domnfe "github.com/lojafacil/pdv-fiscal/internal/domain/nfe"
	"github.com/lojafacil/pdv-fiscal/internal/domain/repository"
)

// DocumentoHandler consulta documentos já emitidos (registro local, não vai à
// SEFAZ).
type DocumentoHandler struct {
	repo repository.DocumentoRepository
}

// NewDocumentoHandler constrói o handler de consulta.
func NewDocumentoHandler(repo repository.DocumentoRepository) *DocumentoHandler {
	return &DocumentoHandler{repo: repo}
}

// GetByChave devolve o registro de uma emissão.
// GET /api/notas/:chave
func (h *DocumentoHandler) GetByChave(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	chave := c.Params("chave")
	if err := domnfe.ValidarChave(chave); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "chave de acesso inválida"})
	}
	registro, err := h.repo.GetByChave(c.Context(), chave)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "documento não encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if registro.EmpresaID != empresaID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "documento de outra empresa"})
	}
	return c.JSON(toDocumentoResponse(registro))
}

// List devolve as emissões da empresa, mais recentes primeiro.
// GET /api/notas
func (h *DocumentoHandler) List(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginação inválida"})
	}
	page.DefaultPage()
	registros, err := h.repo.ListByEmpresa(c.Context(), empresaID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.NotaResponse, 0, len(registros))
	for _, r := range registros {
		out = append(out, toDocumentoResponse(r))
	}
	return c.JSON(out)
}

func toDocumentoResponse(r *entity.DocumentoEmitido) dto.NotaResponse {
	return dto.NotaResponse{
		Chave:        r.Chave,
		Estado:       r.Estado,
		Modelo:       r.Modelo,
		Serie:        r.Serie,
		Numero:       r.Numero,
		Protocolo:    r.Protocolo,
		CodigoStatus: r.CodigoStatus,
		Mensagem:     r.Mensagem,
		QRCode:       r.QRCode,
		URLConsulta:  r.URLConsulta,
		EmitidaEm:    r.CreatedAt,
	}
}
