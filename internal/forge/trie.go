package forge

import "vsharp/internal/types"

// trie stores shapes as paths of (field name, field type) edges in
// canonical field order. Both stored shapes and queries are sorted by
// field name, so one path per shape answers queries for any declaration
// order.
type trie struct {
	root *trieNode
}

type trieNode struct {
	edges []*trieEdge
	shape *types.Object
}

type trieEdge struct {
	name string
	key  string
	tp   types.Tp
	next *trieNode
}

func newTrie() *trie { return &trie{root: &trieNode{}} }

// insert adds shape and reports whether it was new.
func (t *trie) insert(shape types.Object) bool {
	node := t.root
	for _, f := range shape.Fields() {
		key := types.Key(f.Type)
		var next *trieNode
		for _, e := range node.edges {
			if e.name == f.Name && e.key == key {
				next = e.next
				break
			}
		}
		if next == nil {
			next = &trieNode{}
			node.edges = append(node.edges, &trieEdge{name: f.Name, key: key, tp: f.Type, next: next})
		}
		node = next
	}
	if node.shape != nil {
		return false
	}
	s := shape
	node.shape = &s
	return true
}

// supersetsOf returns every stored shape that concrete satisfies. Each
// edge must be matched by the concrete field of the same name. A concrete
// field whose type still mentions a type parameter matches any type, since
// the checker already proved every use of it.
func (t *trie) supersetsOf(concrete types.Object) []types.Object {
	var out []types.Object
	var visit func(n *trieNode)
	visit = func(n *trieNode) {
		if n.shape != nil {
			out = append(out, *n.shape)
		}
		for _, e := range n.edges {
			actual, ok := concrete.Field(e.name)
			if !ok || !fieldMatches(e.tp, actual) {
				continue
			}
			visit(e.next)
		}
	}
	visit(t.root)
	return out
}

func fieldMatches(expected, actual types.Tp) bool {
	if types.HasGenerics(actual) {
		return true
	}
	return types.CheckAndExtract(expected, actual, make([]types.Tp, types.MaxGeneric(expected)))
}
