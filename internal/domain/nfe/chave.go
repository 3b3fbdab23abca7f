// Package nfe: geração da chave de acesso de 44 dígitos (NF-e/NFC-e, layout 4.00).
// Composição: cUF(2) AAMM(4) CNPJ(14) mod(2) serie(3) nNF(9) tpEmis(1) cNF(8) cDV(1).
// Dígito verificador: módulo 11 com pesos cíclicos 2..9 da direita para a esquerda.

package nfe

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// TipoEmissaoNormal é o tpEmis padrão (emissão normal, sem contingência).
const TipoEmissaoNormal = 1

// ChaveParams contém os dados da chave de acesso na ordem exigida pelo layout.
type ChaveParams struct {
	UF             string    // sigla da UF do emitente (SP, RS...)
	Emissao        time.Time // data de emissão; AAMM sai daqui, nunca de "agora"
	CNPJ           string    // CNPJ do emitente (com ou sem pontuação)
	Modelo         int       // 55 = NF-e, 65 = NFC-e
	Serie          int       // 0..999
	Numero         int64     // 1..999999999
	TipoEmissao    int       // 0 assume TipoEmissaoNormal
	CodigoNumerico int       // cNF de 8 dígitos; negativo = gerar aleatório
}

// ChaveAcessoService deriva a chave de acesso e seu dígito verificador.
// Determinístico para entradas idênticas (retentativas reutilizam o mesmo cNF).
type ChaveAcessoService struct{}

// NewChaveAcessoService cria o serviço.
func NewChaveAcessoService() *ChaveAcessoService {
	return &ChaveAcessoService{}
}

// Gerar monta os 43 dígitos do prefixo, calcula o DV e devolve a chave completa.
// CNPJ com menos de 14 dígitos é completado com zeros à esquerda; série e
// número são preenchidos para 3 e 9 posições.
func (s *ChaveAcessoService) Gerar(p *ChaveParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("nfe: ChaveParams é obrigatório")
	}
	cuf, ok := pkgnfe.CodigoUF[p.UF]
	if !ok {
		return "", fmt.Errorf("nfe: UF desconhecida %q", p.UF)
	}
	if p.Emissao.IsZero() {
		return "", fmt.Errorf("nfe: data de emissão é obrigatória")
	}
	if p.Modelo != 55 && p.Modelo != 65 {
		return "", fmt.Errorf("nfe: modelo deve ser 55 ou 65, recebido %d", p.Modelo)
	}
	if p.Serie < 0 || p.Serie > 999 {
		return "", fmt.Errorf("nfe: série fora do intervalo 0..999: %d", p.Serie)
	}
	if p.Numero < 1 || p.Numero > 999999999 {
		return "", fmt.Errorf("nfe: número fora do intervalo 1..999999999: %d", p.Numero)
	}
	cnpj := pkgnfe.SomenteDigitos(p.CNPJ)
	if cnpj == "" || len(cnpj) > 14 {
		return "", fmt.Errorf("nfe: CNPJ inválido para a chave: %q", p.CNPJ)
	}
	tpEmis := p.TipoEmissao
	if tpEmis == 0 {
		tpEmis = TipoEmissaoNormal
	}
	cnf := p.CodigoNumerico
	if cnf < 0 {
		cnf = GerarCodigoNumerico()
	}
	if cnf > 99999999 {
		return "", fmt.Errorf("nfe: código numérico deve ter no máximo 8 dígitos: %d", cnf)
	}

	prefixo := fmt.Sprintf("%02d%s%014s%02d%03d%09d%d%08d",
		cuf,
		p.Emissao.Format("0601"), // AAMM da emissão
		cnpj,
		p.Modelo,
		p.Serie,
		p.Numero,
		tpEmis,
		cnf,
	)
	dv, err := CalcularDV(prefixo)
	if err != nil {
		return "", err
	}
	return prefixo + string(dv), nil
}

// CalcularDV calcula o dígito verificador módulo 11 dos 43 dígitos do prefixo.
// Pesos 2..9 aplicados ciclicamente a partir do dígito mais à direita;
// DV = 0 quando o resto é menor que 2, senão 11 - resto.
func CalcularDV(prefixo string) (byte, error) {
	if len(prefixo) != 43 {
		return 0, fmt.Errorf("nfe: prefixo da chave deve ter 43 dígitos, tem %d", len(prefixo))
	}
	var soma int
	peso := 2
	for i := len(prefixo) - 1; i >= 0; i-- {
		d := prefixo[i]
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("nfe: prefixo da chave contém caractere não numérico %q", d)
		}
		soma += int(d-'0') * peso
		peso++
		if peso > 9 {
			peso = 2
		}
	}
	resto := soma % 11
	if resto < 2 {
		return '0', nil
	}
	return byte('0' + (11 - resto)), nil
}

// GerarCodigoNumerico sorteia um cNF de 8 dígitos (crypto/rand).
// Cada nova tentativa de emissão usa um cNF novo; retentativas que precisam
// reproduzir a mesma chave passam o valor anterior em ChaveParams.
func GerarCodigoNumerico() int {
	n, err := rand.Int(rand.Reader, big.NewInt(100000000))
	if err != nil {
		// rand.Reader não falha em condições normais; zero ainda é um cNF válido.
		return 0
	}
	return int(n.Int64())
}
