package infer

import (
	"math"
	"strings"

	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

// constType is the static type of a literal value.
func constType(v any) (types.Tp, bool) {
	switch v.(type) {
	case int32:
		return types.I32, true
	case int64:
		return types.I64, true
	case float32:
		return types.F32, true
	case float64:
		return types.F64, true
	case string:
		return types.Str, true
	case bool:
		return types.Bool, true
	}
	return nil, false
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// numberAs converts a numeric constant to the representation of t.
func numberAs(v any, t types.Tp) any {
	switch {
	case types.Equal(t, types.I32):
		return int32(asInt(v))
	case types.Equal(t, types.I64):
		return asInt(v)
	case types.Equal(t, types.F32):
		return float32(asFloat(v))
	default:
		return asFloat(v)
	}
}

func lit(sp source.Span, v any) *ir.Lit {
	t, _ := constType(v)
	return &ir.Lit{Info: ir.Info{Sp: sp, Tp: t}, Value: v}
}

// castConst folds a numeric cast of a literal.
func castConst(l *ir.Lit, to types.Tp) *ir.Lit {
	return lit(l.Sp, numberAs(l.Value, to))
}

// foldArith evaluates + - * / % on two literals. Strings concatenate;
// numbers of one integer type compute in that type, anything else computes
// in the promoted type.
func foldArith(op ast.BinaryOp, l, r *ir.Lit, sp source.Span) (*ir.Lit, error) {
	lt, rt := l.Type(), r.Type()
	if op == ast.OpAdd && types.Equal(lt, types.Str) && types.Equal(rt, types.Str) {
		return lit(sp, l.Value.(string)+r.Value.(string)), nil
	}
	if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
		return nil, diag.ConstEvalErrorf(diag.ConstNonNumeric, sp,
			"cannot evaluate %s %s %s: operands must be numeric", lt, op, rt)
	}
	res, err := types.Promote(lt, rt)
	if err != nil {
		return nil, diag.ConstEvalErrorf(diag.ConstNonNumeric, sp, "%v", err)
	}
	if types.IsInteger(res) {
		a, b := asInt(l.Value), asInt(r.Value)
		if (op == ast.OpDiv || op == ast.OpMod) && b == 0 {
			return nil, diag.ConstEvalErrorf(diag.ConstDivByZero, sp, "integer division by zero")
		}
		var v int64
		switch op {
		case ast.OpAdd:
			v = a + b
		case ast.OpSub:
			v = a - b
		case ast.OpMul:
			v = a * b
		case ast.OpDiv:
			v = a / b
		case ast.OpMod:
			v = a % b
		}
		return lit(sp, numberAs(v, res)), nil
	}
	a, b := asFloat(l.Value), asFloat(r.Value)
	var v float64
	switch op {
	case ast.OpAdd:
		v = a + b
	case ast.OpSub:
		v = a - b
	case ast.OpMul:
		v = a * b
	case ast.OpDiv:
		v = a / b
	case ast.OpMod:
		v = math.Mod(a, b)
	}
	return lit(sp, numberAs(v, res)), nil
}

// foldCompare evaluates a comparison whose operands already type-checked.
func foldCompare(op ast.BinaryOp, l, r *ir.Lit, sp source.Span) *ir.Lit {
	var c int
	switch lv := l.Value.(type) {
	case string:
		c = strings.Compare(lv, r.Value.(string))
	case bool:
		if lv == r.Value.(bool) {
			c = 0
		} else {
			c = 1
		}
	default:
		if types.IsFloatingPoint(l.Type()) || types.IsFloatingPoint(r.Type()) {
			a, b := asFloat(l.Value), asFloat(r.Value)
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
		} else {
			a, b := asInt(l.Value), asInt(r.Value)
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
		}
	}
	var v bool
	switch op {
	case ast.OpEq:
		v = c == 0
	case ast.OpNe:
		v = c != 0
	case ast.OpLt:
		v = c < 0
	case ast.OpLe:
		v = c <= 0
	case ast.OpGt:
		v = c > 0
	case ast.OpGe:
		v = c >= 0
	}
	return lit(sp, v)
}

func foldLogic(op ast.BinaryOp, l, r *ir.Lit, sp source.Span) *ir.Lit {
	a, b := l.Value.(bool), r.Value.(bool)
	if op == ast.OpAnd {
		return lit(sp, a && b)
	}
	return lit(sp, a || b)
}

func foldNeg(x *ir.Lit, sp source.Span) (*ir.Lit, error) {
	switch v := x.Value.(type) {
	case int32:
		return lit(sp, -v), nil
	case int64:
		return lit(sp, -v), nil
	case float32:
		return lit(sp, -v), nil
	case float64:
		return lit(sp, -v), nil
	}
	return nil, diag.ConstEvalErrorf(diag.ConstNonNumeric, sp, "cannot negate %s", x.Type())
}
