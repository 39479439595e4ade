package types

import "fmt"

// IsNumeric reports whether t is one of i32, i64, f32, f64 or a union of them.
func IsNumeric(t Tp) bool {
	return allNumeric(t, func(Tp) bool { return true })
}

// IsInteger reports whether t is i32, i64 or a union of them.
func IsInteger(t Tp) bool {
	return allNumeric(t, func(m Tp) bool { return Equal(m, I32) || Equal(m, I64) })
}

// Is64Bit reports whether t (or any member of a numeric union) is 8 bytes wide.
func Is64Bit(t Tp) bool {
	return anyNumeric(t, func(m Tp) bool { return Equal(m, I64) || Equal(m, F64) })
}

// IsFloatingPoint reports whether t (or any member of a numeric union) is f32 or f64.
func IsFloatingPoint(t Tp) bool {
	return anyNumeric(t, func(m Tp) bool { return Equal(m, F32) || Equal(m, F64) })
}

// NumberType maps a promotion result back to a concrete numeric type.
func NumberType(bytes int, isFloat bool) (Tp, error) {
	switch {
	case bytes == 4 && !isFloat:
		return I32, nil
	case bytes == 8 && !isFloat:
		return I64, nil
	case bytes == 4 && isFloat:
		return F32, nil
	case bytes == 8 && isFloat:
		return F64, nil
	}
	return nil, fmt.Errorf("no numeric type of %d bytes (float=%v)", bytes, isFloat)
}

// Promote computes the result type of a binary numeric operation.
func Promote(a, b Tp) (Tp, error) {
	if Equal(a, b) {
		return a, nil
	}
	width := 4
	if Is64Bit(a) || Is64Bit(b) {
		width = 8
	}
	return NumberType(width, IsFloatingPoint(a) || IsFloatingPoint(b))
}

func isNumericLeaf(t Tp) bool {
	return Equal(t, I32) || Equal(t, I64) || Equal(t, F32) || Equal(t, F64)
}

func allNumeric(t Tp, pred func(Tp) bool) bool {
	if u, ok := t.(Union); ok {
		for _, m := range u.members {
			if !isNumericLeaf(m) || !pred(m) {
				return false
			}
		}
		return true
	}
	return isNumericLeaf(t) && pred(t)
}

func anyNumeric(t Tp, pred func(Tp) bool) bool {
	if u, ok := t.(Union); ok {
		for _, m := range u.members {
			if isNumericLeaf(m) && pred(m) {
				return true
			}
		}
		return false
	}
	return isNumericLeaf(t) && pred(t)
}
