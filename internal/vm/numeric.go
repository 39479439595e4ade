package vm

import (
	"math"
	"strings"

	"vsharp/internal/bytecode"
)

// numKind returns the operand kind of a numeric value, KindNone otherwise.
func numKind(v any) bytecode.Kind {
	switch v.(type) {
	case int32:
		return bytecode.KindI32
	case int64:
		return bytecode.KindI64
	case float32:
		return bytecode.KindF32
	case float64:
		return bytecode.KindF64
	}
	return bytecode.KindNone
}

func isFloat(k bytecode.Kind) bool { return k == bytecode.KindF32 || k == bytecode.KindF64 }
func is64(k bytecode.Kind) bool    { return k == bytecode.KindI64 || k == bytecode.KindF64 }

// widen picks the common kind of two numeric kinds: the wider width,
// floating point if either side is.
func widen(a, b bytecode.Kind) bytecode.Kind {
	wide := is64(a) || is64(b)
	switch {
	case (isFloat(a) || isFloat(b)) && wide:
		return bytecode.KindF64
	case isFloat(a) || isFloat(b):
		return bytecode.KindF32
	case wide:
		return bytecode.KindI64
	}
	return bytecode.KindI32
}

// convert changes the representation of a numeric value. Float to integer
// conversion truncates toward zero and integer narrowing wraps.
func convert(v any, k bytecode.Kind) any {
	switch x := v.(type) {
	case int32:
		switch k {
		case bytecode.KindI64:
			return int64(x)
		case bytecode.KindF32:
			return float32(x)
		case bytecode.KindF64:
			return float64(x)
		}
	case int64:
		switch k {
		case bytecode.KindI32:
			return int32(x) // #nosec G115 -- narrowing wraps
		case bytecode.KindF32:
			return float32(x)
		case bytecode.KindF64:
			return float64(x)
		}
	case float32:
		switch k {
		case bytecode.KindI32:
			return int32(x)
		case bytecode.KindI64:
			return int64(x)
		case bytecode.KindF64:
			return float64(x)
		}
	case float64:
		switch k {
		case bytecode.KindI32:
			return int32(x)
		case bytecode.KindI64:
			return int64(x)
		case bytecode.KindF32:
			return float32(x)
		}
	}
	return v
}

// arith applies op to two operands of kind k. KindNone widens the operands
// to their common kind first.
func (m *Machine) arith(op bytecode.Op, k bytecode.Kind, a, b any) (any, *VMError) {
	if k == bytecode.KindNone {
		ka, kb := numKind(a), numKind(b)
		if ka == bytecode.KindNone || kb == bytecode.KindNone {
			return nil, m.typeMismatch("number", offending(ka != bytecode.KindNone, a, b))
		}
		k = widen(ka, kb)
		a, b = convert(a, k), convert(b, k)
	}
	switch k {
	case bytecode.KindI32:
		x, xok := a.(int32)
		y, yok := b.(int32)
		if !xok || !yok {
			return nil, m.typeMismatch("i32", offending(xok, a, b))
		}
		return intArith(m, op, x, y)
	case bytecode.KindI64:
		x, xok := a.(int64)
		y, yok := b.(int64)
		if !xok || !yok {
			return nil, m.typeMismatch("i64", offending(xok, a, b))
		}
		return intArith(m, op, x, y)
	case bytecode.KindF32:
		x, xok := a.(float32)
		y, yok := b.(float32)
		if !xok || !yok {
			return nil, m.typeMismatch("f32", offending(xok, a, b))
		}
		return floatArith(m, op, x, y)
	case bytecode.KindF64:
		x, xok := a.(float64)
		y, yok := b.(float64)
		if !xok || !yok {
			return nil, m.typeMismatch("f64", offending(xok, a, b))
		}
		return floatArith(m, op, x, y)
	case bytecode.KindStr:
		x, xok := a.(string)
		y, yok := b.(string)
		if !xok || !yok {
			return nil, m.typeMismatch("str", offending(xok, a, b))
		}
		if op != bytecode.OpAdd {
			return nil, m.badProgram("%s on str operands", op)
		}
		return x + y, nil
	}
	return nil, m.badProgram("%s on %s operands", op, k)
}

// offending returns the operand that failed a type check.
func offending(aOK bool, a, b any) any {
	if aOK {
		return b
	}
	return a
}

func intArith[T int32 | int64](m *Machine, op bytecode.Op, x, y T) (any, *VMError) {
	switch op {
	case bytecode.OpAdd:
		return x + y, nil
	case bytecode.OpSub:
		return x - y, nil
	case bytecode.OpMul:
		return x * y, nil
	case bytecode.OpDiv, bytecode.OpMod:
		if y == 0 {
			return nil, m.makeError(PanicDivByZero, "integer division by zero")
		}
		if op == bytecode.OpDiv {
			return x / y, nil
		}
		return x % y, nil
	}
	return nil, m.badProgram("%s is not arithmetic", op)
}

func floatArith[T float32 | float64](m *Machine, op bytecode.Op, x, y T) (any, *VMError) {
	switch op {
	case bytecode.OpAdd:
		return x + y, nil
	case bytecode.OpSub:
		return x - y, nil
	case bytecode.OpMul:
		return x * y, nil
	case bytecode.OpDiv:
		return x / y, nil
	case bytecode.OpMod:
		return T(math.Mod(float64(x), float64(y))), nil
	}
	return nil, m.badProgram("%s is not arithmetic", op)
}

func (m *Machine) negate(k bytecode.Kind, v any) (any, *VMError) {
	switch x := v.(type) {
	case int32:
		return -x, nil
	case int64:
		return -x, nil
	case float32:
		return -x, nil
	case float64:
		return -x, nil
	}
	return nil, m.typeMismatch(k.String(), v)
}

// compareNum orders two values of numeric kind k.
func compareNum(a, b any, k bytecode.Kind) int {
	switch k {
	case bytecode.KindI32:
		return cmp3(a.(int32), b.(int32))
	case bytecode.KindI64:
		return cmp3(a.(int64), b.(int64))
	case bytecode.KindF32:
		return cmp3(a.(float32), b.(float32))
	}
	return cmp3(a.(float64), b.(float64))
}

func cmp3[T int32 | int64 | float32 | float64 | string](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// compare evaluates a comparison opcode.
func (m *Machine) compare(op bytecode.Op, k bytecode.Kind, a, b any) (bool, *VMError) {
	switch k {
	case bytecode.KindBool, bytecode.KindNone:
		switch op {
		case bytecode.OpEq:
			return equal(a, b), nil
		case bytecode.OpNe:
			return !equal(a, b), nil
		}
		if k == bytecode.KindBool {
			return false, m.badProgram("%s on bool operands", op)
		}
		ka, kb := numKind(a), numKind(b)
		if ka == bytecode.KindNone || kb == bytecode.KindNone {
			return false, m.typeMismatch("number", offending(ka != bytecode.KindNone, a, b))
		}
		k = widen(ka, kb)
		a, b = convert(a, k), convert(b, k)
	}
	var c int
	switch k {
	case bytecode.KindStr:
		x, xok := a.(string)
		y, yok := b.(string)
		if !xok || !yok {
			return false, m.typeMismatch("str", offending(xok, a, b))
		}
		c = strings.Compare(x, y)
	default:
		if numKind(a) != k || numKind(b) != k {
			return false, m.typeMismatch(k.String(), offending(numKind(a) == k, a, b))
		}
		c = compareNum(a, b, k)
	}
	switch op {
	case bytecode.OpEq:
		return c == 0, nil
	case bytecode.OpNe:
		return c != 0, nil
	case bytecode.OpLt:
		return c < 0, nil
	case bytecode.OpLe:
		return c <= 0, nil
	case bytecode.OpGt:
		return c > 0, nil
	case bytecode.OpGe:
		return c >= 0, nil
	}
	return false, m.badProgram("%s is not a comparison", op)
}
