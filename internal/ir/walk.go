package ir

// Walk visits in and every instruction below it in evaluation order.
// Returning false from fn skips the children of that node.
func Walk(in Instr, fn func(Instr) bool) {
	if in == nil || !fn(in) {
		return
	}
	switch n := in.(type) {
	case *SetVar:
		Walk(n.Value, fn)
	case *SetField:
		Walk(n.X, fn)
		Walk(n.Value, fn)
	case *SetIndex:
		Walk(n.X, fn)
		Walk(n.Index, fn)
		Walk(n.Value, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Unary:
		Walk(n.X, fn)
	case *Invoke:
		Walk(n.Callee, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *MethodCall:
		Walk(n.Recv, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Property:
		Walk(n.X, fn)
	case *Index:
		Walk(n.X, fn)
		Walk(n.Index, fn)
	case *ObjectLit:
		for _, f := range n.Fields {
			Walk(f.Value, fn)
		}
	case *ArrayLit:
		for _, it := range n.Items {
			Walk(it, fn)
		}
	case *Block:
		for _, it := range n.Body {
			Walk(it, fn)
		}
	case *If:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		if n.Else != nil {
			Walk(n.Else, fn)
		}
	case *While:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)
	case *For:
		Walk(n.Iter, fn)
		Walk(n.Body, fn)
	case *TypeCheck:
		Walk(n.X, fn)
	case *Return:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	}
}

// Assigned reports the names written by a SetVar anywhere in b.
func Assigned(b *Block) map[string]bool {
	out := make(map[string]bool)
	if b == nil {
		return out
	}
	Walk(b, func(in Instr) bool {
		if sv, ok := in.(*SetVar); ok {
			out[sv.Name] = true
		}
		return true
	})
	return out
}
