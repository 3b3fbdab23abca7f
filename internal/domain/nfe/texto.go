package nfe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeAcentos decompõe (NFD) e descarta as marcas de combinação, recompondo
// em NFC. "São Paulo" vira "Sao Paulo" — a SEFAZ rejeita caracteres fora do
// conjunto básico em vários campos de texto livre.
var removeAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizarTexto prepara texto livre para o XML fiscal: remove acentos,
// colapsa espaços consecutivos e trunca em max runas. Nunca devolve erro —
// a regra do protocolo é "nunca emitir XML inválido", não rejeitar entrada.
func NormalizarTexto(s string, max int) string {
	limpo, _, err := transform.String(removeAcentos, s)
	if err != nil {
		limpo = s
	}
	limpo = strings.Join(strings.Fields(limpo), " ")
	if max > 0 {
		r := []rune(limpo)
		if len(r) > max {
			limpo = string(r[:max])
		}
	}
	return limpo
}
