// Package diag defines the diagnostic model shared by every compilation phase.
//
// # Errors versus diagnostics
//
// The backend stops a module at its first failure. Producers therefore
// return a *Error (Kind, Code, Span, Msg) through ordinary Go error returns
// instead of pushing into a shared sink. The orchestrator converts each
// failed module's error into a Diagnostic and collects them in a Bag, which
// is what the CLI renders.
//
// # Kinds
//
//   - KindParse: malformed syntax reported by the lexer or parser.
//   - KindCompile: unresolved identifiers, unsupported type forms and invalid
//     generic arity found while lowering syntax into the untyped IR.
//   - KindType: argument-count mismatches, subtype mismatches, non-numeric
//     operands and missing members found by inference.
//   - KindConstEval: constant folding applied to operands it cannot combine.
//   - KindBuild: forge barrier violations and other pipeline faults.
//
// # Codes
//
// Code values are grouped by thousand: 1xxx lexical, 2xxx syntax, 3xxx
// checker, 4xxx types, 5xxx constant evaluation, 6xxx build. The string form
// of a code is stable and used in golden output.
package diag
