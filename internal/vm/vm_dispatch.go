package vm

import (
	"fmt"

	"fortio.org/safecast"

	"vsharp/internal/bytecode"
	"vsharp/internal/types"
)

func (m *Machine) push(v any) { m.stack = append(m.stack, v) }

// popN removes the top n operands of the current frame, oldest first. The
// returned slice aliases the stack and is only valid until the next push.
func (m *Machine) popN(n int) ([]any, *VMError) {
	f := &m.frames[len(m.frames)-1]
	if len(m.stack)-n < f.base {
		return nil, m.badProgram("%s: operand stack underflow", f.fn.Qualified())
	}
	vals := m.stack[len(m.stack)-n:]
	m.stack = m.stack[:len(m.stack)-n]
	return vals, nil
}

func (m *Machine) pop() (any, *VMError) {
	vals, vmErr := m.popN(1)
	if vmErr != nil {
		return nil, vmErr
	}
	return vals[0], nil
}

func (m *Machine) enter(h int32, args []any) *VMError {
	if len(m.frames) >= m.opts.MaxDepth {
		return m.makeError(PanicStackOverflow, fmt.Sprintf("call depth exceeds %d", m.opts.MaxDepth))
	}
	fn := m.prog.Funcs[h]
	if len(args) != fn.Arity {
		return m.badProgram("%s expects %d arguments, got %d", fn.Qualified(), fn.Arity, len(args))
	}
	m.frames = append(m.frames, frame{
		fn:     fn,
		args:   args,
		locals: make([]any, fn.Locals),
		base:   len(m.stack),
	})
	return nil
}

// leave pops the current frame and reports whether it was the outermost.
func (m *Machine) leave() bool {
	f := &m.frames[len(m.frames)-1]
	m.stack = m.stack[:f.base]
	m.frames = m.frames[:len(m.frames)-1]
	return len(m.frames) == 0
}

// invoke runs function h to completion. A function that returns through
// ret.void yields nil.
func (m *Machine) invoke(h int32, args []any) (any, *VMError) {
	m.stack = m.stack[:0]
	m.frames = m.frames[:0]
	if vmErr := m.enter(h, args); vmErr != nil {
		return nil, vmErr
	}
	for {
		f := &m.frames[len(m.frames)-1]
		if f.pc >= len(f.fn.Code) {
			return nil, m.badProgram("%s: execution ran past the last instruction", f.fn.Qualified())
		}
		in := f.fn.Code[f.pc]
		f.pc++
		m.steps++
		m.tracer.traceInstr(len(m.frames), f, in)

		switch in.Op {
		case bytecode.OpRet:
			v, vmErr := m.pop()
			if vmErr != nil {
				return nil, vmErr
			}
			if m.leave() {
				return v, nil
			}
			m.push(v)
		case bytecode.OpRetVoid:
			if m.leave() {
				return nil, nil
			}
		case bytecode.OpCall:
			vals, vmErr := m.popN(int(in.B))
			if vmErr != nil {
				return nil, vmErr
			}
			callArgs := append([]any(nil), vals...)
			if vmErr := m.enter(in.A, callArgs); vmErr != nil {
				return nil, vmErr
			}
		default:
			if vmErr := m.step(f, in); vmErr != nil {
				return nil, vmErr
			}
		}
	}
}

// step executes one instruction that does not change the frame stack.
func (m *Machine) step(f *frame, in bytecode.Instr) *VMError {
	switch in.Op {
	case bytecode.OpNop:
	case bytecode.OpConst:
		m.push(f.fn.Consts[in.A].Value())
	case bytecode.OpPop:
		_, vmErr := m.pop()
		return vmErr
	case bytecode.OpDup:
		v, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		m.push(v)
		m.push(v)
	case bytecode.OpLoadArg:
		m.push(f.args[in.A])
	case bytecode.OpLoadLocal:
		m.push(f.locals[in.A])
	case bytecode.OpStoreLocal:
		v, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		f.locals[in.A] = v
		m.tracer.traceWrite(in.A, v)
	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		vals, vmErr := m.popN(2)
		if vmErr != nil {
			return vmErr
		}
		v, vmErr := m.arith(in.Op, bytecode.Kind(in.B), vals[0], vals[1])
		if vmErr != nil {
			return vmErr
		}
		m.push(v)
	case bytecode.OpNeg:
		x, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		v, vmErr := m.negate(bytecode.Kind(in.B), x)
		if vmErr != nil {
			return vmErr
		}
		m.push(v)
	case bytecode.OpEq, bytecode.OpNe, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		vals, vmErr := m.popN(2)
		if vmErr != nil {
			return vmErr
		}
		ok, vmErr := m.compare(in.Op, bytecode.Kind(in.B), vals[0], vals[1])
		if vmErr != nil {
			return vmErr
		}
		m.push(ok)
	case bytecode.OpNot:
		b, vmErr := m.popBool()
		if vmErr != nil {
			return vmErr
		}
		m.push(!b)
	case bytecode.OpConv:
		x, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		if numKind(x) == bytecode.KindNone {
			return m.typeMismatch("number", x)
		}
		m.push(convert(x, bytecode.Kind(in.B)))
	case bytecode.OpJump:
		f.pc = int(in.A)
	case bytecode.OpJumpIfFalse, bytecode.OpJumpIfTrue:
		b, vmErr := m.popBool()
		if vmErr != nil {
			return vmErr
		}
		if b == (in.Op == bytecode.OpJumpIfTrue) {
			f.pc = int(in.A)
		}
	case bytecode.OpCallNative:
		return m.callNative(in)
	case bytecode.OpNewObject:
		vals, vmErr := m.popN(int(in.B))
		if vmErr != nil {
			return vmErr
		}
		cls := m.prog.Classes[in.A]
		if len(vals) != len(cls.Fields) {
			return m.badProgram("class %s has %d fields, got %d values", cls.Name, len(cls.Fields), len(vals))
		}
		m.push(&Object{Class: cls, Fields: append([]any(nil), vals...)})
	case bytecode.OpGetProp:
		x, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		obj, field, vmErr := m.property(x, in)
		if vmErr != nil {
			return vmErr
		}
		m.push(obj.Fields[field])
	case bytecode.OpSetProp:
		vals, vmErr := m.popN(2)
		if vmErr != nil {
			return vmErr
		}
		obj, field, vmErr := m.property(vals[0], in)
		if vmErr != nil {
			return vmErr
		}
		obj.Fields[field] = vals[1]
	case bytecode.OpNewArray:
		vals, vmErr := m.popN(int(in.B))
		if vmErr != nil {
			return vmErr
		}
		m.push(&Array{Items: append([]any(nil), vals...)})
	case bytecode.OpIndex:
		vals, vmErr := m.popN(2)
		if vmErr != nil {
			return vmErr
		}
		arr, i, vmErr := m.element(vals[0], vals[1])
		if vmErr != nil {
			return vmErr
		}
		m.push(arr.Items[i])
	case bytecode.OpSetIndex:
		vals, vmErr := m.popN(3)
		if vmErr != nil {
			return vmErr
		}
		arr, i, vmErr := m.element(vals[0], vals[1])
		if vmErr != nil {
			return vmErr
		}
		arr.Items[i] = vals[2]
	case bytecode.OpArrayLen:
		x, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		arr, ok := x.(*Array)
		if !ok {
			return m.typeMismatch("array", x)
		}
		n, err := safecast.Conv[int32](len(arr.Items))
		if err != nil {
			return m.makeError(PanicOutOfBounds, fmt.Sprintf("array length %d exceeds i32", len(arr.Items)))
		}
		m.push(n)
	case bytecode.OpTypeTest:
		x, vmErr := m.pop()
		if vmErr != nil {
			return vmErr
		}
		m.push(matches(x, &f.fn.Patterns[in.A]))
	case bytecode.OpContains:
		vals, vmErr := m.popN(2)
		if vmErr != nil {
			return vmErr
		}
		ok, vmErr := m.contains(vals[0], vals[1])
		if vmErr != nil {
			return vmErr
		}
		m.push(ok)
	default:
		return m.makeError(PanicUnimplemented, fmt.Sprintf("unimplemented: opcode %s", in.Op))
	}
	return nil
}

func (m *Machine) popBool() (bool, *VMError) {
	v, vmErr := m.pop()
	if vmErr != nil {
		return false, vmErr
	}
	b, ok := v.(bool)
	if !ok {
		return false, m.typeMismatch("bool", v)
	}
	return b, nil
}

// callNative pushes the result only when the native declares one, matching
// the stack effect codegen assumed.
func (m *Machine) callNative(in bytecode.Instr) *VMError {
	vals, vmErr := m.popN(int(in.B))
	if vmErr != nil {
		return vmErr
	}
	fn := m.natives[in.A]
	args := make([]any, len(vals))
	for i, v := range vals {
		if arr, ok := v.(*Array); ok {
			args[i] = arr.Items
			continue
		}
		args[i] = v
	}
	res, err := fn.Call(args)
	if err != nil {
		e := m.makeError(PanicNative, err.Error())
		e.Cause = err
		return e
	}
	if types.HasValue(fn.Result) {
		m.push(normalize(res))
	}
	return nil
}

// property resolves the field behind an interface property of x.
func (m *Machine) property(x any, in bytecode.Instr) (*Object, int, *VMError) {
	iface := m.prog.Interfaces[in.A]
	if x == nil {
		return nil, 0, m.makeError(PanicNullAccess, fmt.Sprintf("property %s of null", iface.Props[in.B]))
	}
	obj, ok := x.(*Object)
	if !ok {
		return nil, 0, m.typeMismatch("object", x)
	}
	fields, ok := obj.Class.Impl[iface.ID]
	if !ok || int(in.B) >= len(fields) {
		return nil, 0, m.typeMismatch(iface.Name, x)
	}
	return obj, fields[in.B], nil
}

func (m *Machine) element(x, idx any) (*Array, int, *VMError) {
	arr, ok := x.(*Array)
	if !ok {
		if x == nil {
			return nil, 0, m.makeError(PanicNullAccess, "index of null")
		}
		return nil, 0, m.typeMismatch("array", x)
	}
	var i int64
	switch n := idx.(type) {
	case int32:
		i = int64(n)
	case int64:
		i = n
	default:
		return nil, 0, m.typeMismatch("integer index", idx)
	}
	if i < 0 || i >= int64(len(arr.Items)) {
		return nil, 0, m.outOfBounds(i, len(arr.Items))
	}
	return arr, int(i), nil
}
