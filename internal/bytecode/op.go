// Package bytecode defines the stack instruction set produced by codegen,
// the containers that hold a compiled program and its artifact encoding.
package bytecode

import (
	"fmt"

	"vsharp/internal/types"
)

// Op is an opcode. Operand meaning is listed per opcode.
type Op uint8

const (
	OpNop         Op = iota
	OpConst          // A = constant index
	OpPop            //
	OpDup            //
	OpLoadArg        // A = argument index
	OpLoadLocal      // A = slot
	OpStoreLocal     // A = slot
	OpAdd            // B = Kind
	OpSub            // B = Kind
	OpMul            // B = Kind
	OpDiv            // B = Kind
	OpMod            // B = Kind
	OpNeg            // B = Kind
	OpEq             // B = Kind of both operands
	OpNe             // B = Kind
	OpLt             // B = Kind
	OpLe             // B = Kind
	OpGt             // B = Kind
	OpGe             // B = Kind
	OpNot            //
	OpConv           // A = source Kind, B = target Kind
	OpJump           // A = target pc
	OpJumpIfFalse    // A = target pc, pops the condition
	OpJumpIfTrue     // A = target pc, pops the condition
	OpCall           // A = function handle, B = argument count
	OpCallNative     // A = native index, B = argument count including receiver
	OpRet            // returns the top of stack
	OpRetVoid        //
	OpNewObject      // A = class id, B = field count
	OpGetProp        // A = interface id, B = property index
	OpSetProp        // A = interface id, B = property index; stack: object, value
	OpNewArray       // B = item count
	OpIndex          // stack: array, index
	OpSetIndex       // stack: array, index, value
	OpArrayLen       //
	OpTypeTest       // A = pattern index
	OpContains       // stack: container, item
)

var opNames = [...]string{
	OpNop:         "nop",
	OpConst:       "const",
	OpPop:         "pop",
	OpDup:         "dup",
	OpLoadArg:     "load.arg",
	OpLoadLocal:   "load.local",
	OpStoreLocal:  "store.local",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpMod:         "mod",
	OpNeg:         "neg",
	OpEq:          "eq",
	OpNe:          "ne",
	OpLt:          "lt",
	OpLe:          "le",
	OpGt:          "gt",
	OpGe:          "ge",
	OpNot:         "not",
	OpConv:        "conv",
	OpJump:        "jump",
	OpJumpIfFalse: "jump.false",
	OpJumpIfTrue:  "jump.true",
	OpCall:        "call",
	OpCallNative:  "call.native",
	OpRet:         "ret",
	OpRetVoid:     "ret.void",
	OpNewObject:   "new.object",
	OpGetProp:     "get.prop",
	OpSetProp:     "set.prop",
	OpNewArray:    "new.array",
	OpIndex:       "index",
	OpSetIndex:    "set.index",
	OpArrayLen:    "array.len",
	OpTypeTest:    "type.test",
	OpContains:    "contains",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// IsJump reports whether A holds a branch target.
func (op Op) IsJump() bool {
	return op == OpJump || op == OpJumpIfFalse || op == OpJumpIfTrue
}

// Kind is the operand representation of typed arithmetic and comparisons.
type Kind uint8

const (
	KindNone Kind = iota
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
	KindStr
)

var kindNames = [...]string{
	KindNone: "-",
	KindI32:  "i32",
	KindI64:  "i64",
	KindF32:  "f32",
	KindF64:  "f64",
	KindBool: "bool",
	KindStr:  "str",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindOf maps a static type to its operand kind; composite types map to
// KindNone.
func KindOf(t types.Tp) Kind {
	switch {
	case types.Equal(t, types.I32):
		return KindI32
	case types.Equal(t, types.I64):
		return KindI64
	case types.Equal(t, types.F32):
		return KindF32
	case types.Equal(t, types.F64):
		return KindF64
	case types.Equal(t, types.Bool):
		return KindBool
	case types.Equal(t, types.Str):
		return KindStr
	}
	return KindNone
}

// Instr is one instruction.
type Instr struct {
	Op Op    `msgpack:"op"`
	A  int32 `msgpack:"a"`
	B  int32 `msgpack:"b"`
}
