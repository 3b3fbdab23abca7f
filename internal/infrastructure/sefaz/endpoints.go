// Resolução de endpoints dos webservices SEFAZ (versão 4.00 dos serviços).
// UFs com autorizador próprio usam seus endpoints; as demais caem na SVRS
// (Sefaz Virtual do Rio Grande do Sul). Função pura, sem rede.

package sefaz

import (
	"fmt"

	"github.com/lojafacil/pdv-fiscal/internal/domain/entity"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// Operações dos webservices.
const (
	OperacaoAutorizacao       = "NFeAutorizacao4"
	OperacaoStatusServico     = "NFeStatusServico4"
	OperacaoConsultaProtocolo = "NFeConsultaProtocolo4"
	OperacaoRecepcaoEvento    = "NFeRecepcaoEvento4"
)

var operacoesValidas = map[string]bool{
	OperacaoAutorizacao:       true,
	OperacaoStatusServico:     true,
	OperacaoConsultaProtocolo: true,
	OperacaoRecepcaoEvento:    true,
}

// caminhos dos serviços na SVRS (o host varia por modelo e ambiente).
var caminhoSVRS = map[string]string{
	OperacaoAutorizacao:       "/ws/NfeAutorizacao/NFeAutorizacao4.asmx",
	OperacaoStatusServico:     "/ws/NfeStatusServico/NfeStatusServico4.asmx",
	OperacaoConsultaProtocolo: "/ws/NfeConsulta/NfeConsulta4.asmx",
	OperacaoRecepcaoEvento:    "/ws/recepcaoevento/recepcaoevento4.asmx",
}

// ufsComAutorizadorProprio emitem pelos próprios webservices; as demais UFs
// usam a SVRS. (AM, BA, GO, MG, MS, MT, PE, PR, SP mantêm autorizador próprio;
// aqui resolvemos nativamente SP e delegamos o restante à SVRS.)
var ufsComAutorizadorProprio = map[string]bool{"SP": true}

// ResolverEndpoint devolve a URL do webservice para a UF, modelo, ambiente e
// operação. Erro apenas para entrada inválida; toda UF conhecida tem rota.
func ResolverEndpoint(uf string, modelo int, ambiente, operacao string) (string, error) {
	if _, ok := pkgnfe.CodigoUF[uf]; !ok {
		return "", fmt.Errorf("sefaz: UF desconhecida %q", uf)
	}
	if modelo != entity.ModeloNFe && modelo != entity.ModeloNFCe {
		return "", fmt.Errorf("sefaz: modelo inválido %d", modelo)
	}
	if ambiente != entity.AmbienteProducao && ambiente != entity.AmbienteHomologacao {
		return "", fmt.Errorf("sefaz: ambiente inválido %q", ambiente)
	}
	if !operacoesValidas[operacao] {
		return "", fmt.Errorf("sefaz: operação desconhecida %q", operacao)
	}

	if ufsComAutorizadorProprio[uf] {
		return endpointSP(modelo, ambiente, operacao), nil
	}
	return endpointSVRS(modelo, ambiente, operacao), nil
}

func endpointSP(modelo int, ambiente, operacao string) string {
	host := "nfe.fazenda.sp.gov.br"
	if modelo == entity.ModeloNFCe {
		host = "nfce.fazenda.sp.gov.br"
	}
	if ambiente == entity.AmbienteHomologacao {
		host = "homologacao." + host
	}
	caminho := map[string]string{
		OperacaoAutorizacao:       "/ws/NFeAutorizacao4.asmx",
		OperacaoStatusServico:     "/ws/NFeStatusServico4.asmx",
		OperacaoConsultaProtocolo: "/ws/NFeConsultaProtocolo4.asmx",
		OperacaoRecepcaoEvento:    "/ws/NFeRecepcaoEvento4.asmx",
	}[operacao]
	return "https://" + host + caminho
}

func endpointSVRS(modelo int, ambiente, operacao string) string {
	host := "nfe.svrs.rs.gov.br"
	if modelo == entity.ModeloNFCe {
		host = "nfce.svrs.rs.gov.br"
	}
	if ambiente == entity.AmbienteHomologacao {
		host = "homologacao." + host
	}
	return "https://" + host + caminhoSVRS[operacao]
}

// URLConsultaQR devolve a base da URL do QR Code da NFC-e para a UF/ambiente.
func URLConsultaQR(uf, ambiente string) string {
	if uf == "SP" {
		if ambiente == entity.AmbienteHomologacao {
			return "https://www.homologacao.nfce.fazenda.sp.gov.br/qrcode"
		}
		return "https://www.nfce.fazenda.sp.gov.br/qrcode"
	}
	// A SVRS usa o mesmo portal de QR Code para os dois ambientes.
	return "https://dfe-portal.svrs.rs.gov.br/NFCE/QRCode"
}

// URLConsultaChave devolve o endereço de consulta pública por chave de acesso
// (campo urlChave do infNFeSupl).
func URLConsultaChave(uf, ambiente string) string {
	if uf == "SP" {
		if ambiente == entity.AmbienteHomologacao {
			return "https://www.homologacao.nfce.fazenda.sp.gov.br/consulta"
		}
		return "https://www.nfce.fazenda.sp.gov.br/consulta"
	}
	return "https://dfe-portal.svrs.rs.gov.br/NFCE/Consulta"
}
