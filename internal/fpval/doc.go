// Package fpval models abstract floating-point values for rewrite-rule
// verification: concrete constants (including signed zeros and infinities),
// NaN, zeros of unknown sign produced by no-signed-zero arithmetic, booleans
// from comparisons, and the undef and poison markers.
//
// All values are immutable. The package also defines the refinement relation
// used by the equivalence checker and the sample sets enumerated for
// symbolic operands.
package fpval
