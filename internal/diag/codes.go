package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Syntax
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectExpression  Code = 2004
	SynExpectType        Code = 2005
	SynBadImport         Code = 2006
	SynBadAssignTarget   Code = 2007

	// Checker (stage 1)
	ChkUnresolvedIdent    Code = 3001
	ChkModuleAsValue      Code = 3002
	ChkUnsupportedType    Code = 3003
	ChkGenericArity       Code = 3004
	ChkUnknownType        Code = 3005
	ChkDuplicateFunction  Code = 3006
	ChkUnsupportedStmt    Code = 3007
	ChkDuplicateImport    Code = 3008
	ChkJumpOutsideLoop    Code = 3009
	ChkUnsupportedLiteral Code = 3010
	ChkDuplicateType      Code = 3011

	// Types (stage 2)
	TypArgCount          Code = 4001
	TypMismatch          Code = 4002
	TypNonNumeric        Code = 4003
	TypNoMethod          Code = 4004
	TypNoFunction        Code = 4005
	TypUndefinedSymbol   Code = 4006
	TypRecursiveInfer    Code = 4007
	TypNotCallable       Code = 4008
	TypNoField           Code = 4009
	TypNotIndexable      Code = 4010
	TypUnknownModule     Code = 4011
	TypInvalidOperands   Code = 4012
	TypUnknownVariable   Code = 4013
	TypReturnMismatch    Code = 4014

	// Constant evaluation
	ConstNonNumeric Code = 5001
	ConstDivByZero  Code = 5002

	// Build
	BldForgeNotFinalized Code = 6001
	BldInternal          Code = 6002
	BldMissingModule     Code = 6003
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string literal",
	LexBadNumber:          "Malformed number literal",

	SynUnexpectedToken:   "Unexpected token",
	SynUnclosedDelimiter: "Unclosed delimiter",
	SynExpectIdentifier:  "Expected identifier",
	SynExpectExpression:  "Expected expression",
	SynExpectType:        "Expected type",
	SynBadImport:         "Malformed import",
	SynBadAssignTarget:   "Invalid assignment target",

	ChkUnresolvedIdent:    "Unresolved identifier",
	ChkModuleAsValue:      "Module used as a value",
	ChkUnsupportedType:    "Unsupported type form",
	ChkGenericArity:       "Invalid generic arity",
	ChkUnknownType:        "Unknown type",
	ChkDuplicateFunction:  "Duplicate function",
	ChkUnsupportedStmt:    "Unsupported statement",
	ChkDuplicateImport:    "Duplicate import",
	ChkJumpOutsideLoop:    "Jump outside loop",
	ChkUnsupportedLiteral: "Unsupported literal",
	ChkDuplicateType:      "Duplicate type alias",

	TypArgCount:        "Argument count mismatch",
	TypMismatch:        "Type mismatch",
	TypNonNumeric:      "Non-numeric operand",
	TypNoMethod:        "Method not found",
	TypNoFunction:      "Function not found",
	TypUndefinedSymbol: "Undefined module symbol",
	TypRecursiveInfer:  "Recursive return type inference",
	TypNotCallable:     "Value is not callable",
	TypNoField:         "Field not found",
	TypNotIndexable:    "Value is not indexable",
	TypUnknownModule:   "Unknown module",
	TypInvalidOperands: "Invalid operands",
	TypUnknownVariable: "Unknown variable",
	TypReturnMismatch:  "Return type mismatch",

	ConstNonNumeric: "Expected numeric constant",
	ConstDivByZero:  "Constant division by zero",

	BldForgeNotFinalized: "Interface forge not finalized",
	BldInternal:          "Internal build error",
	BldMissingModule:     "Missing module",
}

// ID returns the stable short identifier, e.g. TYP4002.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CHK%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CEV%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("BLD%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
