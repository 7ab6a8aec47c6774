// Package semantics defines the exact results of each modeled floating-point
// opcode as a total function over abstract operand values and fast-math
// flags. An instruction yields a set of possible results: more than one only
// when the outcome depends on an unrealized choice, such as the sign of a
// zero-of-unknown-sign operand or the float an undef comparison operand
// stands for.
//
// Poison propagates strictly: no modeled opcode absorbs a poison operand.
// Undef operands propagate through arithmetic as undef. Fast-math flags act
// as definedness conditions: an operand or result that violates nnan or ninf
// makes the instruction's result poison, and nsz makes the sign of an
// exactly-zero result unspecified.
package semantics
