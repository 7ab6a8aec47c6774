package semantics

import (
	"github.com/santoshn/alive-nj/internal/fpval"
	"github.com/santoshn/alive-nj/internal/rules"
)

// evalCmp implements the full IEEE predicate table. Ordered predicates are
// false when either operand is NaN; unordered predicates are
// ordered-result-or-unordered. The table itself encodes the NaN outcome, so
// comparisons against a known NaN need no flags. Signed zeros compare equal,
// which also makes a zero of unknown sign unambiguous here.
func evalCmp(pred rules.CmpPred, x, y fpval.Value) fpval.Value {
	switch pred {
	case rules.PredFalse:
		return fpval.Bool(false)
	case rules.PredTrue:
		return fpval.Bool(true)
	}

	unordered := x.IsNaN() || y.IsNaN()
	switch pred {
	case rules.PredORD:
		return fpval.Bool(!unordered)
	case rules.PredUNO:
		return fpval.Bool(unordered)
	}

	if unordered {
		switch pred {
		case rules.PredUEQ, rules.PredUGT, rules.PredUGE,
			rules.PredULT, rules.PredULE, rules.PredUNE:
			return fpval.Bool(true)
		default:
			return fpval.Bool(false)
		}
	}

	fx, fy := x.Float(), y.Float()
	var r bool
	switch pred {
	case rules.PredOEQ, rules.PredUEQ:
		r = fx == fy
	case rules.PredOGT, rules.PredUGT:
		r = fx > fy
	case rules.PredOGE, rules.PredUGE:
		r = fx >= fy
	case rules.PredOLT, rules.PredULT:
		r = fx < fy
	case rules.PredOLE, rules.PredULE:
		r = fx <= fy
	case rules.PredONE, rules.PredUNE:
		r = fx != fy
	default:
		// Unknown predicates are rejected by validation before evaluation.
		return fpval.Poison()
	}
	return fpval.Bool(r)
}
