package ir

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented rendering of a typed tree.
func Dump(w io.Writer, t Typed) error {
	d := &dumper{w: w}
	d.node(t, 0)
	return d.err
}

// DumpFunction writes the header and body of fn.
func DumpFunction(w io.Writer, fn *TypedFunction) error {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.String()
	}
	if _, err := fmt.Fprintf(w, "func %s(%s): %s slots=%d\n",
		fn.Source.Qualified(), strings.Join(params, ", "), fn.Result, fn.Frame.Count()); err != nil {
		return err
	}
	d := &dumper{w: w}
	d.node(fn.Body, 1)
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) nodes(ts []Typed, depth int) {
	for _, t := range ts {
		d.node(t, depth)
	}
}

func (d *dumper) node(t Typed, depth int) {
	if t == nil {
		d.line(depth, "<nil>")
		return
	}
	tp := t.Type()
	switch n := t.(type) {
	case *Lit:
		d.line(depth, "lit %#v : %s", n.Value, tp)
	case *LoadVar:
		d.line(depth, "load $%d : %s", n.Slot, tp)
	case *LoadArg:
		d.line(depth, "arg #%d : %s", n.Index, tp)
	case *StoreVar:
		d.line(depth, "store $%d", n.Slot)
		d.node(n.Value, depth+1)
	case *Arith:
		d.line(depth, "%s : %s", n.Op, tp)
		d.nodes([]Typed{n.Left, n.Right}, depth+1)
	case *Compare:
		d.line(depth, "%s (%s)", n.Op, n.Operand)
		d.nodes([]Typed{n.Left, n.Right}, depth+1)
	case *Logic:
		d.line(depth, "%s", n.Op)
		d.nodes([]Typed{n.Left, n.Right}, depth+1)
	case *Not:
		d.line(depth, "not")
		d.node(n.X, depth+1)
	case *Neg:
		d.line(depth, "neg : %s", tp)
		d.node(n.X, depth+1)
	case *Cast:
		d.line(depth, "cast %s -> %s", n.X.Type(), tp)
		d.node(n.X, depth+1)
	case *Cond:
		d.line(depth, "if : %s", tp)
		d.node(n.Cond, depth+1)
		d.node(n.Then, depth+1)
		if n.Else != nil {
			d.line(depth, "else")
			d.node(n.Else, depth+1)
		}
	case *Loop:
		d.line(depth, "while")
		d.nodes([]Typed{n.Cond, n.Body}, depth+1)
	case *ForEach:
		d.line(depth, "for $%d in (arr $%d, idx $%d)", n.VarSlot, n.ArrSlot, n.IdxSlot)
		d.nodes([]Typed{n.Iter, n.Body}, depth+1)
	case *Seq:
		d.line(depth, "block : %s", tp)
		d.nodes(n.Items, depth+1)
	case *Ret:
		d.line(depth, "return")
		if n.Value != nil {
			d.node(n.Value, depth+1)
		}
	case *BreakLoop:
		d.line(depth, "break")
	case *ContinueLoop:
		d.line(depth, "continue")
	case *CallScript:
		d.line(depth, "call %s : %s", n.Module.Join(n.Name), tp)
		d.nodes(n.Args, depth+1)
	case *CallNative:
		d.line(depth, "native %s : %s", n.Fn.Qualified, tp)
		d.nodes(n.Args, depth+1)
	case *NewObject:
		d.line(depth, "object %s", tp)
		d.nodes(n.Fields, depth+1)
	case *NewArray:
		d.line(depth, "array %s", tp)
		d.nodes(n.Items, depth+1)
	case *GetProp:
		d.line(depth, "get .%s via %s : %s", n.Name, n.Shape, tp)
		d.node(n.X, depth+1)
	case *SetProp:
		d.line(depth, "set .%s via %s", n.Name, n.Shape)
		d.nodes([]Typed{n.X, n.Value}, depth+1)
	case *GetElem:
		d.line(depth, "index : %s", tp)
		d.nodes([]Typed{n.X, n.Index}, depth+1)
	case *SetElem:
		d.line(depth, "set index")
		d.nodes([]Typed{n.X, n.Index, n.Value}, depth+1)
	case *TypeTest:
		d.line(depth, "is %s", n.Target)
		d.node(n.X, depth+1)
	case *Contains:
		d.line(depth, "in")
		d.nodes([]Typed{n.Item, n.Container}, depth+1)
	default:
		d.line(depth, "%T", t)
	}
}
