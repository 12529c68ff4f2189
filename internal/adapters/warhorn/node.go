package warhorn

import (
	"encoding/json"
	"fmt"
)

// Kind es la variante de un Node.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindList
	KindMap
	KindScalar // números, booleanos
)

// Node envuelve un valor decodificado de la respuesta GraphQL (map[string]any,
// []any, string, json.Number, bool o nil). Todo el manejo defensivo de la forma
// de la respuesta vive acá: los accesores nunca fallan, degradan a vacío.
type Node struct {
	kind Kind
	str  string
	list []any
	obj  map[string]any
	raw  any
}

// Wrap clasifica v en una variante de Node.
func Wrap(v any) Node {
	switch t := v.(type) {
	case nil:
		return Node{}
	case string:
		return Node{kind: KindString, str: t, raw: t}
	case []any:
		return Node{kind: KindList, list: t, raw: t}
	case map[string]any:
		return Node{kind: KindMap, obj: t, raw: t}
	default:
		return Node{kind: KindScalar, raw: t}
	}
}

func (n Node) Kind() Kind { return n.kind }

// Path desciende por mapas anidados. Si un paso no es mapa o la clave no
// existe devuelve el nodo ausente.
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		if cur.kind != KindMap {
			return Node{}
		}
		v, ok := cur.obj[k]
		if !ok {
			return Node{}
		}
		cur = Wrap(v)
	}
	return cur
}

// String devuelve el valor si el nodo es string, si no "".
func (n Node) String() string {
	if n.kind == KindString {
		return n.str
	}
	return ""
}

// List devuelve los hijos envueltos si el nodo es una lista, si no nil.
func (n Node) List() []Node {
	if n.kind != KindList {
		return nil
	}
	out := make([]Node, 0, len(n.list))
	for _, e := range n.list {
		out = append(out, Wrap(e))
	}
	return out
}

// Raw serializa el nodo para logs de diagnóstico.
func (n Node) Raw() string {
	if n.kind == KindAbsent {
		return "null"
	}
	b, err := json.Marshal(n.raw)
	if err != nil {
		return fmt.Sprintf("%v", n.raw)
	}
	return string(b)
}
