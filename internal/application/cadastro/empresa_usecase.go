package cadastro

import (
	"context"
	"fmt"

	"github.com/lojafacil/pdv-fiscal/internal/application/dto"
	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	"github.com/lojafacil/pdv-fiscal/internal/domain/repository"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// EmpresaUseCase cadastro do emitente. O perfil fiscal gravado aqui é o
// snapshot que o núcleo de emissão lê a cada nota.
type EmpresaUseCase struct {
	repo repository.EmpresaRepository
}

// NewEmpresaUseCase constrói o caso de uso com o porto de persistência.
func NewEmpresaUseCase(repo repository.EmpresaRepository) *EmpresaUseCase {
	return &EmpresaUseCase{repo: repo}
}

// Create cadastra um novo emitente. Devolve domain.ErrInvalidInput se o CNPJ
// não passa nos dígitos verificadores e domain.ErrConflict se já existe.
func (uc *EmpresaUseCase) Create(ctx context.Context, in dto.CreateEmpresaRequest) (*dto.EmpresaResponse, error) {
	cnpj := pkgnfe.SomenteDigitos(in.CNPJ)
	if err := pkgnfe.ValidarCNPJ(cnpj); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if in.RegimeTributario < entity.RegimeSimples || in.RegimeTributario > entity.RegimeNormal {
		return nil, domain.ErrInvalidInput
	}
	empresa := &entity.Empresa{
		CNPJ:              cnpj,
		RazaoSocial:       in.RazaoSocial,
		NomeFantasia:      in.NomeFantasia,
		InscricaoEstadual: in.InscricaoEstadual,
		RegimeTributario:  in.RegimeTributario,
		Endereco:          toEndereco(in.Endereco),
		IBSCBSHabilitado:  in.IBSCBSHabilitado,
		AliquotaIBSPadrao: in.AliquotaIBSPadrao,
		AliquotaCBSPadrao: in.AliquotaCBSPadrao,
		Status:            "active",
	}
	if err := uc.repo.Create(ctx, empresa); err != nil {
		return nil, err
	}
	return toEmpresaResponse(empresa), nil
}

// GetByID obtém uma empresa por ID.
func (uc *EmpresaUseCase) GetByID(ctx context.Context, id string) (*dto.EmpresaResponse, error) {
	empresa, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEmpresaResponse(empresa), nil
}

// List lista empresas com paginação.
func (uc *EmpresaUseCase) List(ctx context.Context, limit, offset int) ([]*dto.EmpresaResponse, error) {
	empresas, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EmpresaResponse, 0, len(empresas))
	for _, e := range empresas {
		out = append(out, toEmpresaResponse(e))
	}
	return out, nil
}

func toEndereco(in dto.EnderecoDTO) entity.Endereco {
	return entity.Endereco{
		Logradouro:      in.Logradouro,
		Numero:          in.Numero,
		Bairro:          in.Bairro,
		CodigoMunicipio: in.CodigoMunicipio,
		Municipio:       in.Municipio,
		UF:              in.UF,
		CEP:             in.CEP,
	}
}

func toEmpresaResponse(e *entity.Empresa) *dto.EmpresaResponse {
	if e == nil {
		return nil
	}
	return &dto.EmpresaResponse{
		ID:                e.ID,
		CNPJ:              e.CNPJ,
		RazaoSocial:       e.RazaoSocial,
		NomeFantasia:      e.NomeFantasia,
		InscricaoEstadual: e.InscricaoEstadual,
		RegimeTributario:  e.RegimeTributario,
		Endereco: dto.EnderecoDTO{
			Logradouro:      e.Endereco.Logradouro,
			Numero:          e.Endereco.Numero,
			Bairro:          e.Endereco.Bairro,
			CodigoMunicipio: e.Endereco.CodigoMunicipio,
			Municipio:       e.Endereco.Municipio,
			UF:              e.Endereco.UF,
			CEP:             e.Endereco.CEP,
		},
		IBSCBSHabilitado:  e.IBSCBSHabilitado,
		AliquotaIBSPadrao: e.AliquotaIBSPadrao,
		AliquotaCBSPadrao: e.AliquotaCBSPadrao,
		Status:            e.Status,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
