// Package checker proves or refutes rewrite rules. For each active rule it
// enumerates assignments of free variables over the value classes, filters
// them through the precondition, evaluates the source and replacement
// instruction chains independently, and requires the replacement's result to
// refine the source's result.
//
// Rules are independent and side-effect-free to verify, so corpus checking
// runs one worker per rule with no shared mutable state. Every rule yields
// exactly one result; exceeding the per-rule resource bound cancels into an
// UNKNOWN verdict, never a silent pass.
package checker
