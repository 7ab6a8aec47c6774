// Package rules defines the structured form of a rewrite rule: opcodes,
// fast-math flag sets, operands, instructions, preconditions, and the rule
// and corpus containers the compiler produces and the checker consumes.
//
// All types are immutable value data; the checker only reads them. Disabled
// rules stay in the corpus as first-class records with a reason, so they can
// be re-enabled and re-checked without reparsing history.
package rules
