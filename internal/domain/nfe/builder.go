// Montagem do documento fiscal: transforma a requisição de venda em um
// DocumentoFiscal canônico com totais calculados. Transformação pura — sem
// rede, sem relógio, sem persistência.

package nfe

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// MontagemParams agrupa as entradas do builder. Empresa é snapshot somente
// leitura; Itens e Pagamentos chegam na ordem em que devem sair no XML.
type MontagemParams struct {
	Empresa        *entity.Empresa
	Destinatario   *entity.Destinatario // opcional (NFC-e sem identificação)
	Itens          []entity.ItemVenda
	Pagamentos     []entity.Pagamento
	Ambiente       string // tpAmb
	Modelo         int    // 55 | 65
	Serie          int
	Numero         int64
	Emissao        time.Time
	CodigoNumerico int // cNF; negativo = sortear
}

// MontadorDocumento monta o DocumentoFiscal e sua chave de acesso.
type MontadorDocumento struct {
	chaves *ChaveAcessoService
}

// NewMontadorDocumento cria o montador.
func NewMontadorDocumento() *MontadorDocumento {
	return &MontadorDocumento{chaves: NewChaveAcessoService()}
}

// Montar valida a requisição, normaliza os textos, calcula os totais e deriva
// a chave de acesso. A variação por regime tributário (Simples x Normal) é
// decidida exclusivamente por Empresa.RegimeTributario:
//
//   - CRT 1/2: itens saem com CSOSN (sem crédito), ICMS não entra nos totais.
//   - CRT 3:   itens saem com CST, vBC e vICMS somados no ICMSTot.
func (m *MontadorDocumento) Montar(p *MontagemParams) (*entity.DocumentoFiscal, error) {
	if p == nil || p.Empresa == nil {
		return nil, fmt.Errorf("nfe: empresa emitente é obrigatória")
	}
	if len(p.Itens) == 0 {
		return nil, domain.ErrSemItens
	}
	if len(p.Pagamentos) == 0 {
		return nil, domain.ErrSemPagamentos
	}

	simples := p.Empresa.RegimeTributario == entity.RegimeSimples ||
		p.Empresa.RegimeTributario == entity.RegimeSimplesExcesso

	itens := make([]entity.ItemVenda, len(p.Itens))
	var totais entity.Totais
	for i, it := range p.Itens {
		item := it // cópia; o builder nunca muta a requisição do chamador
		item.Descricao = NormalizarTexto(item.Descricao, pkgnfe.MaxDescricaoItem)
		if item.GTIN == "" {
			item.GTIN = entity.SemGTIN
		}
		if item.Unidade == "" {
			item.Unidade = "UN"
		}
		if item.Origem == "" {
			item.Origem = pkgnfe.OrigemNacional
		}
		if simples {
			if item.CSOSN == "" {
				item.CSOSN = pkgnfe.CSOSNSemCredito
			}
			item.CSTICMS = ""
		} else {
			if item.CSTICMS == "" {
				item.CSTICMS = pkgnfe.CSTICMSIntegral
			}
			item.CSOSN = ""
			totais.BaseICMS = totais.BaseICMS.Add(item.ValorTotal)
			totais.ValorICMS = totais.ValorICMS.Add(
				item.ValorTotal.Mul(item.AliquotaICMS).Div(decimal.NewFromInt(100)).Round(2))
		}
		totais.ValorPIS = totais.ValorPIS.Add(
			item.ValorTotal.Mul(item.AliquotaPIS).Div(decimal.NewFromInt(100)).Round(2))
		totais.ValorCOFINS = totais.ValorCOFINS.Add(
			item.ValorTotal.Mul(item.AliquotaCOFINS).Div(decimal.NewFromInt(100)).Round(2))

		if p.Empresa.IBSCBSHabilitado {
			aliqIBS := item.AliquotaIBS
			if aliqIBS.IsZero() {
				aliqIBS = p.Empresa.AliquotaIBSPadrao
			}
			aliqCBS := item.AliquotaCBS
			if aliqCBS.IsZero() {
				aliqCBS = p.Empresa.AliquotaCBSPadrao
			}
			item.AliquotaIBS = aliqIBS
			item.AliquotaCBS = aliqCBS
			totais.ValorIBS = totais.ValorIBS.Add(
				item.ValorTotal.Mul(aliqIBS).Div(decimal.NewFromInt(100)).Round(2))
			totais.ValorCBS = totais.ValorCBS.Add(
				item.ValorTotal.Mul(aliqCBS).Div(decimal.NewFromInt(100)).Round(2))
		}

		totais.ValorProdutos = totais.ValorProdutos.Add(item.ValorTotal)
		itens[i] = item
	}
	totais.ValorTotal = totais.ValorProdutos

	pagamentos := make([]entity.Pagamento, len(p.Pagamentos))
	for i, pg := range p.Pagamentos {
		pag := pg
		if pag.Meio == "" || !pkgnfe.MeiosPagamentoValidos[pag.Meio] {
			pag.Meio = pkgnfe.PagamentoOutros
		}
		pagamentos[i] = pag
	}

	var dest *entity.Destinatario
	if p.Destinatario != nil {
		d := *p.Destinatario
		d.Nome = NormalizarTexto(d.Nome, pkgnfe.MaxRazaoSocial)
		dest = &d
	}

	chave, err := m.chaves.Gerar(&ChaveParams{
		UF:             p.Empresa.Endereco.UF,
		Emissao:        p.Emissao,
		CNPJ:           p.Empresa.CNPJ,
		Modelo:         p.Modelo,
		Serie:          p.Serie,
		Numero:         p.Numero,
		TipoEmissao:    TipoEmissaoNormal,
		CodigoNumerico: p.CodigoNumerico,
	})
	if err != nil {
		return nil, fmt.Errorf("nfe: gerar chave de acesso: %w", err)
	}

	return &entity.DocumentoFiscal{
		Ambiente:     p.Ambiente,
		Modelo:       p.Modelo,
		Serie:        p.Serie,
		Numero:       p.Numero,
		Emissao:      p.Emissao,
		Chave:        chave,
		Empresa:      p.Empresa,
		Destinatario: dest,
		Itens:        itens,
		Pagamentos:   pagamentos,
		Totais:       totais,
	}, nil
}
