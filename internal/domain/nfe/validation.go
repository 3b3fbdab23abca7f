// Validações de domínio da emissão fiscal. Rodam antes de qualquer operação
// criptográfica ou de rede — falha aqui é sempre recuperável pelo chamador.

package nfe

import (
	"fmt"
	"strings"

	"github.com/lojafacil/pdv-fiscal/internal/domain"
	pkgnfe "github.com/lojafacil/pdv-fiscal/pkg/nfe"
)

// ValidarJustificativa confere o tamanho da justificativa do evento de
// cancelamento (mínimo 15 e máximo 255 caracteres, após trim).
func ValidarJustificativa(justificativa string) error {
	j := strings.TrimSpace(justificativa)
	if len([]rune(j)) < pkgnfe.MinJustificativa {
		return domain.ErrJustificativaCurta
	}
	if len([]rune(j)) > pkgnfe.MaxJustificativa {
		return fmt.Errorf("%w: máximo de %d caracteres", domain.ErrInvalidInput, pkgnfe.MaxJustificativa)
	}
	return nil
}

// ValidarChave confere o formato da chave de acesso (44 dígitos + DV correto).
func ValidarChave(chave string) error {
	if len(chave) != 44 {
		return fmt.Errorf("%w: chave de acesso deve ter 44 dígitos", domain.ErrInvalidInput)
	}
	dv, err := CalcularDV(chave[:43])
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if chave[43] != dv {
		return fmt.Errorf("%w: dígito verificador da chave não confere", domain.ErrInvalidInput)
	}
	return nil
}
