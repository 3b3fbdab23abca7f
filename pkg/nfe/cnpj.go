package nfe

import (
	"fmt"
	"unicode"
)

// Pesos dos dois dígitos verificadores do CNPJ (módulo 11, Receita Federal).
// Aplicam-se da esquerda para a direita sobre os 12 (resp. 13) primeiros dígitos.
var (
	cnpjPesosDV1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjPesosDV2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidarCNPJ valida o CNPJ (com ou sem pontuação) pelos dois dígitos
// verificadores do módulo 11. Aceita "11.222.333/0001-81" ou "11222333000181".
func ValidarCNPJ(cnpj string) error {
	digits := SomenteDigitos(cnpj)
	if len(digits) != 14 {
		return fmt.Errorf("nfe: CNPJ deve ter 14 dígitos, foram encontrados %d", len(digits))
	}
	if todosIguais(digits) {
		return fmt.Errorf("nfe: CNPJ com todos os dígitos iguais é inválido")
	}
	dv1 := cnpjDigito(digits[:12], cnpjPesosDV1[:])
	if digits[12] != dv1 {
		return fmt.Errorf("nfe: primeiro dígito verificador do CNPJ inválido: esperado %c, recebido %c", dv1, digits[12])
	}
	dv2 := cnpjDigito(digits[:13], cnpjPesosDV2[:])
	if digits[13] != dv2 {
		return fmt.Errorf("nfe: segundo dígito verificador do CNPJ inválido: esperado %c, recebido %c", dv2, digits[13])
	}
	return nil
}

func cnpjDigito(base string, pesos []int) byte {
	var soma int
	for i := 0; i < len(base); i++ {
		soma += int(base[i]-'0') * pesos[i]
	}
	resto := soma % 11
	if resto < 2 {
		return '0'
	}
	return byte('0' + (11 - resto))
}

func todosIguais(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// SomenteDigitos remove tudo que não for dígito 0-9 (CNPJ, CPF, CEP).
func SomenteDigitos(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
