// Package compiler turns CUE corpus files into rule values.
//
// A corpus file declares rules under the "rule" field, keyed by rule name:
//
//	rule: "simplify:806": {
//		seq:       806
//		precision: "float"
//		pre: any: [
//			{pred: "hasNSZ", arg: "%r"},
//			{pred: "CannotBeNegativeZero", arg: "%x"},
//		]
//		lhs: [
//			{bind: "%r", op: "fadd", flags: ["nsz"], x: "%x", y: "0.0"},
//		]
//		rhs: result: "%x"
//	}
//
// Operands are spelled as strings: "%name" references a variable or binding,
// a leading-C identifier ("C", "C2") references a symbolic constant, and
// anything else must parse as a float literal or one of the markers "undef"
// and "poison". Preconditions are structs built from "all", "any", "not",
// "pred"/"arg", and "cmp"/"ref"/"value" fields.
//
// The compiler checks shape and spelling only. Structural rule invariants
// (binding discipline, known opcodes) are enforced at verification time, so
// a rule that parses but is semantically broken still loads and is reported
// as malformed rather than aborting the corpus.
package compiler
