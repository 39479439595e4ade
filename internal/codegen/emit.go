package codegen

import (
	"vsharp/internal/ast"
	"vsharp/internal/bytecode"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

type loopLabels struct {
	cont, exit bytecode.Label
}

// emitter generates one function. A node leaves exactly one value on the
// stack when its type has a value and nothing otherwise.
type emitter struct {
	g         *Generator
	b         *bytecode.FuncBuilder
	hasResult bool
	loops     []loopLabels
}

var arithOps = map[ast.BinaryOp]bytecode.Op{
	ast.OpAdd: bytecode.OpAdd,
	ast.OpSub: bytecode.OpSub,
	ast.OpMul: bytecode.OpMul,
	ast.OpDiv: bytecode.OpDiv,
	ast.OpMod: bytecode.OpMod,
}

var compareOps = map[ast.BinaryOp]bytecode.Op{
	ast.OpEq: bytecode.OpEq,
	ast.OpNe: bytecode.OpNe,
	ast.OpLt: bytecode.OpLt,
	ast.OpLe: bytecode.OpLe,
	ast.OpGt: bytecode.OpGt,
	ast.OpGe: bytecode.OpGe,
}

func (e *emitter) op(t ir.Typed, op bytecode.Op, a, b int32) {
	e.b.At(t.Span())
	e.b.Emit(op, a, b)
}

func (e *emitter) null() {
	c, _ := bytecode.ConstOf(nil)
	e.b.Const(c)
}

// discard pops the value of t if it left one.
func (e *emitter) discard(t ir.Typed) {
	if types.HasValue(t.Type()) {
		e.op(t, bytecode.OpPop, 0, 0)
	}
}

func (e *emitter) emitAll(ts []ir.Typed) error {
	for _, t := range ts {
		if err := e.emit(t); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emit(t ir.Typed) error {
	switch n := t.(type) {
	case *ir.Lit:
		c, err := bytecode.ConstOf(n.Value)
		if err != nil {
			return internalf(n.Sp, "%v", err)
		}
		e.b.At(n.Sp)
		e.b.Const(c)
	case *ir.LoadVar:
		e.op(n, bytecode.OpLoadLocal, int32Of(n.Slot, "slot"), 0)
	case *ir.LoadArg:
		e.op(n, bytecode.OpLoadArg, int32Of(n.Index, "argument"), 0)
	case *ir.StoreVar:
		if err := e.emit(n.Value); err != nil {
			return err
		}
		e.op(n, bytecode.OpStoreLocal, int32Of(n.Slot, "slot"), 0)
	case *ir.Arith:
		if err := e.emitAll([]ir.Typed{n.Left, n.Right}); err != nil {
			return err
		}
		op, ok := arithOps[n.Op]
		if !ok {
			return internalf(n.Sp, "no opcode for arithmetic %s", n.Op)
		}
		e.op(n, op, 0, int32(bytecode.KindOf(n.Tp)))
	case *ir.Compare:
		if err := e.emitAll([]ir.Typed{n.Left, n.Right}); err != nil {
			return err
		}
		op, ok := compareOps[n.Op]
		if !ok {
			return internalf(n.Sp, "no opcode for comparison %s", n.Op)
		}
		e.op(n, op, 0, int32(bytecode.KindOf(n.Operand)))
	case *ir.Logic:
		return e.logic(n)
	case *ir.Not:
		if err := e.emit(n.X); err != nil {
			return err
		}
		e.op(n, bytecode.OpNot, 0, 0)
	case *ir.Neg:
		if err := e.emit(n.X); err != nil {
			return err
		}
		e.op(n, bytecode.OpNeg, 0, int32(bytecode.KindOf(n.Tp)))
	case *ir.Cast:
		if err := e.emit(n.X); err != nil {
			return err
		}
		e.op(n, bytecode.OpConv, int32(bytecode.KindOf(n.X.Type())), int32(bytecode.KindOf(n.Tp)))
	case *ir.Seq:
		return e.seq(n)
	case *ir.Cond:
		return e.cond(n)
	case *ir.Loop:
		return e.loop(n)
	case *ir.ForEach:
		return e.forEach(n)
	case *ir.Ret:
		return e.ret(n)
	case *ir.BreakLoop:
		if len(e.loops) == 0 {
			return internalf(n.Sp, "break outside of a loop")
		}
		e.b.At(n.Sp)
		e.b.Jump(bytecode.OpJump, e.loops[len(e.loops)-1].exit)
	case *ir.ContinueLoop:
		if len(e.loops) == 0 {
			return internalf(n.Sp, "continue outside of a loop")
		}
		e.b.At(n.Sp)
		e.b.Jump(bytecode.OpJump, e.loops[len(e.loops)-1].cont)
	case *ir.CallScript:
		if err := e.emitAll(n.Args); err != nil {
			return err
		}
		e.op(n, bytecode.OpCall, int32(n.Handle), int32Of(len(n.Args), "argument count"))
	case *ir.CallNative:
		if err := e.emitAll(n.Args); err != nil {
			return err
		}
		e.op(n, bytecode.OpCallNative, e.g.natives.Index(n.Fn), int32Of(len(n.Args), "argument count"))
	case *ir.NewObject:
		cls, err := e.g.classes.Class(n.Shape)
		if err != nil {
			return err
		}
		if err := e.emitAll(n.Fields); err != nil {
			return err
		}
		e.op(n, bytecode.OpNewObject, int32Of(cls.ID, "class"), int32Of(len(n.Fields), "field count"))
	case *ir.NewArray:
		if err := e.emitAll(n.Items); err != nil {
			return err
		}
		e.op(n, bytecode.OpNewArray, 0, int32Of(len(n.Items), "item count"))
	case *ir.GetProp:
		iface, prop, err := e.property(n.Sp, n.Shape, n.Name)
		if err != nil {
			return err
		}
		if err := e.emit(n.X); err != nil {
			return err
		}
		e.op(n, bytecode.OpGetProp, iface, prop)
	case *ir.SetProp:
		iface, prop, err := e.property(n.Sp, n.Shape, n.Name)
		if err != nil {
			return err
		}
		if err := e.emitAll([]ir.Typed{n.X, n.Value}); err != nil {
			return err
		}
		e.op(n, bytecode.OpSetProp, iface, prop)
	case *ir.GetElem:
		if err := e.emitAll([]ir.Typed{n.X, n.Index}); err != nil {
			return err
		}
		e.op(n, bytecode.OpIndex, 0, 0)
	case *ir.SetElem:
		if err := e.emitAll([]ir.Typed{n.X, n.Index, n.Value}); err != nil {
			return err
		}
		e.op(n, bytecode.OpSetIndex, 0, 0)
	case *ir.TypeTest:
		p, err := e.pattern(n.Target)
		if err != nil {
			return err
		}
		if err := e.emit(n.X); err != nil {
			return err
		}
		e.op(n, bytecode.OpTypeTest, e.b.Pattern(p), 0)
	case *ir.Contains:
		if err := e.emitAll([]ir.Typed{n.Container, n.Item}); err != nil {
			return err
		}
		e.op(n, bytecode.OpContains, 0, 0)
	default:
		return internalf(t.Span(), "cannot generate %T", t)
	}
	return nil
}

// seq keeps only the value of the last item, and only when the sequence
// itself has one.
func (e *emitter) seq(n *ir.Seq) error {
	keepLast := types.HasValue(n.Tp)
	for i, it := range n.Items {
		if err := e.emit(it); err != nil {
			return err
		}
		if i == len(n.Items)-1 && keepLast {
			break
		}
		e.discard(it)
	}
	return nil
}

func (e *emitter) cond(n *ir.Cond) error {
	keep := types.HasValue(n.Tp)
	elseL, endL := e.b.NewLabel(), e.b.NewLabel()
	if err := e.emit(n.Cond); err != nil {
		return err
	}
	e.b.At(n.Sp)
	e.b.Jump(bytecode.OpJumpIfFalse, elseL)
	if err := e.emit(n.Then); err != nil {
		return err
	}
	if !keep {
		e.discard(n.Then)
	}
	e.b.At(n.Sp)
	e.b.Jump(bytecode.OpJump, endL)
	e.b.Mark(elseL)
	if n.Else != nil {
		if err := e.emit(n.Else); err != nil {
			return err
		}
		if !keep {
			e.discard(n.Else)
		}
	}
	e.b.Mark(endL)
	return nil
}

func (e *emitter) loop(n *ir.Loop) error {
	top, exit := e.b.NewLabel(), e.b.NewLabel()
	e.b.Mark(top)
	if err := e.emit(n.Cond); err != nil {
		return err
	}
	e.b.At(n.Sp)
	e.b.Jump(bytecode.OpJumpIfFalse, exit)
	e.loops = append(e.loops, loopLabels{cont: top, exit: exit})
	err := e.emit(n.Body)
	e.loops = e.loops[:len(e.loops)-1]
	if err != nil {
		return err
	}
	e.discard(n.Body)
	e.b.At(n.Sp)
	e.b.Jump(bytecode.OpJump, top)
	e.b.Mark(exit)
	return nil
}

// forEach walks the array with an index slot:
//
//	arr = iter; idx = 0
//	top:  if !(idx < len(arr)) goto exit
//	      var = arr[idx]; body
//	cont: idx = idx + 1; goto top
//	exit:
func (e *emitter) forEach(n *ir.ForEach) error {
	arr := int32Of(n.ArrSlot, "slot")
	idx := int32Of(n.IdxSlot, "slot")
	i32 := int32(bytecode.KindI32)
	zero, _ := bytecode.ConstOf(int32(0))
	one, _ := bytecode.ConstOf(int32(1))

	if err := e.emit(n.Iter); err != nil {
		return err
	}
	e.b.At(n.Sp)
	e.b.Emit(bytecode.OpStoreLocal, arr, 0)
	e.b.Const(zero)
	e.b.Emit(bytecode.OpStoreLocal, idx, 0)

	top, cont, exit := e.b.NewLabel(), e.b.NewLabel(), e.b.NewLabel()
	e.b.Mark(top)
	e.b.Emit(bytecode.OpLoadLocal, idx, 0)
	e.b.Emit(bytecode.OpLoadLocal, arr, 0)
	e.b.Emit(bytecode.OpArrayLen, 0, 0)
	e.b.Emit(bytecode.OpLt, 0, i32)
	e.b.Jump(bytecode.OpJumpIfFalse, exit)
	e.b.Emit(bytecode.OpLoadLocal, arr, 0)
	e.b.Emit(bytecode.OpLoadLocal, idx, 0)
	e.b.Emit(bytecode.OpIndex, 0, 0)
	e.b.Emit(bytecode.OpStoreLocal, int32Of(n.VarSlot, "slot"), 0)

	e.loops = append(e.loops, loopLabels{cont: cont, exit: exit})
	err := e.emit(n.Body)
	e.loops = e.loops[:len(e.loops)-1]
	if err != nil {
		return err
	}
	e.discard(n.Body)

	e.b.At(n.Sp)
	e.b.Mark(cont)
	e.b.Emit(bytecode.OpLoadLocal, idx, 0)
	e.b.Const(one)
	e.b.Emit(bytecode.OpAdd, 0, i32)
	e.b.Emit(bytecode.OpStoreLocal, idx, 0)
	e.b.Jump(bytecode.OpJump, top)
	e.b.Mark(exit)
	return nil
}

// ret returns a value from every exit of a function whose result has one,
// and none otherwise.
func (e *emitter) ret(n *ir.Ret) error {
	if n.Value != nil {
		if err := e.emit(n.Value); err != nil {
			return err
		}
		if e.hasResult {
			e.op(n, bytecode.OpRet, 0, 0)
			return nil
		}
		e.discard(n.Value)
		e.op(n, bytecode.OpRetVoid, 0, 0)
		return nil
	}
	if e.hasResult {
		e.b.At(n.Sp)
		e.null()
		e.op(n, bytecode.OpRet, 0, 0)
		return nil
	}
	e.op(n, bytecode.OpRetVoid, 0, 0)
	return nil
}

// logic short-circuits: the left value stays on the stack when it decides
// the result.
func (e *emitter) logic(n *ir.Logic) error {
	if err := e.emit(n.Left); err != nil {
		return err
	}
	jump := bytecode.OpJumpIfFalse
	if n.Op == ast.OpOr {
		jump = bytecode.OpJumpIfTrue
	}
	end := e.b.NewLabel()
	e.op(n, bytecode.OpDup, 0, 0)
	e.b.Jump(jump, end)
	e.op(n, bytecode.OpPop, 0, 0)
	if err := e.emit(n.Right); err != nil {
		return err
	}
	e.b.Mark(end)
	return nil
}

func (e *emitter) property(sp source.Span, shape types.Object, name string) (int32, int32, error) {
	iface, err := e.g.classes.Interface(shape)
	if err != nil {
		return 0, 0, err
	}
	prop := iface.PropIndex(name)
	if prop < 0 {
		return 0, 0, internalf(sp, "interface %s has no property %q", iface.Name, name)
	}
	return int32Of(iface.ID, "interface"), int32Of(prop, "property"), nil
}
