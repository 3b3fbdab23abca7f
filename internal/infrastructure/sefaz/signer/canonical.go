// Canonicalização C14N usada no cálculo de digest e na assinatura.
// O perfil do layout NF-e dispensa comentários, instruções de processamento e
// texto composto apenas de espaços entre elementos; o filtro abaixo descarta
// esses tokens antes de entregar o fluxo ao canonicalizador.

package signer

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
)

// tokensSemRuido envolve um xml.Decoder descartando tokens irrelevantes para
// o digest: CharData só de espaços, comentários, prolog e diretivas.
type tokensSemRuido struct {
	dec *xml.Decoder
}

func (r *tokensSemRuido) RawToken() (xml.Token, error) {
	for {
		tok, err := r.dec.RawToken()
		if err != nil {
			return tok, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		}
		return tok, nil
	}
}

// Canonicalizar aplica C14N 1.0 (sem comentários) sobre o XML dado.
// Atributos saem em ordem canônica e tags vazias na forma <a></a>.
func Canonicalizar(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(&tokensSemRuido{dec: dec})
	if err != nil {
		return nil, fmt.Errorf("sefaz: canonicalizar XML: %w", err)
	}
	return out, nil
}

// ExtrairElementoPorID localiza o elemento cujo atributo Id vale id e devolve
// sua serialização isolada, com o xmlns default herdado da raiz replicado no
// elemento extraído (a extração não pode mudar o namespace efetivo).
func ExtrairElementoPorID(doc *etree.Document, id string) ([]byte, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("sefaz: documento sem raiz")
	}
	alvo := buscarPorID(root, id)
	if alvo == nil {
		return nil, fmt.Errorf("sefaz: elemento com Id=%q não encontrado", id)
	}

	copia := alvo.Copy()
	if copia.SelectAttr("xmlns") == nil {
		if ns := root.SelectAttr("xmlns"); ns != nil {
			copia.CreateAttr("xmlns", ns.Value)
		}
	}

	sub := etree.NewDocument()
	sub.SetRoot(copia)
	sub.WriteSettings.CanonicalEndTags = true
	return sub.WriteToBytes()
}

func buscarPorID(el *etree.Element, id string) *etree.Element {
	if attr := el.SelectAttr("Id"); attr != nil && attr.Value == id {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := buscarPorID(child, id); found != nil {
			return found
		}
	}
	return nil
}
