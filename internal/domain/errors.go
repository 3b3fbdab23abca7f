package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound     = errors.New("recurso não encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("não autorizado")
	ErrForbidden    = errors.New("acesso negado")
	ErrConflict     = errors.New("conflito com o estado atual")
	ErrUserNotFound = errors.New("usuário não encontrado")
	ErrEmailExists  = errors.New("o email já está cadastrado")

	// Emissão fiscal — validação de entrada (recuperável corrigindo a requisição).
	ErrSemItens           = errors.New("documento sem itens")
	ErrSemPagamentos      = errors.New("documento sem pagamentos")
	ErrJustificativaCurta = errors.New("justificativa de cancelamento deve ter no mínimo 15 caracteres")

	// Material criptográfico — fatal para a tentativa, exige intervenção do operador.
	ErrSenhaCertificado    = errors.New("senha do certificado incorreta")
	ErrArquivoCertificado  = errors.New("arquivo de certificado inválido (sem chave privada ou certificado)")
	ErrCertificadoExpirado = errors.New("certificado digital expirado")
	ErrCertificadoFuturo   = errors.New("certificado digital ainda não é válido")
	ErrCNPJCertificado     = errors.New("CNPJ do certificado não corresponde ao da empresa emitente")
	ErrChaveNaoCorresponde = errors.New("chave privada não corresponde ao certificado")

	// Assinatura — defeito de montagem, nunca retentado.
	ErrElementoAssinavel = errors.New("elemento assinável com atributo Id não encontrado")

	// Transporte — única categoria retentável, e somente via consulta por chave.
	ErrConexaoSefaz = errors.New("falha de conexão com a SEFAZ")

	// Numeração — série com emissão em andamento.
	ErrSerieOcupada = errors.New("já existe uma emissão em andamento para a série")
)
