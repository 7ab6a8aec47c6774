package fpval

// Refines reports whether concrete is an admissible realization of the more
// abstract result. The checker calls this with the replacement's result as
// concrete and the source pattern's result as abstract: a rewrite is sound
// only when every result the replacement can produce is a result the source
// was allowed to produce.
//
// The relation:
//   - abstract poison admits anything (the source had undefined behavior)
//   - abstract undef admits any non-poison float value; it never admits a
//     boolean, since undef only arises from arithmetic and fcmp over undef
//     realizes into both booleans instead
//   - a replacement may never be less defined than its source: concrete
//     poison or undef require the abstract side to be at least as loose
//   - a zero of unknown sign admits both signed zeros
//   - NaN admits NaN regardless of payload
//   - concrete constants admit only bit-identical constants, so +0.0 does
//     not refine -0.0
func Refines(concrete, abstract Value) bool {
	if abstract.kind == KindPoison {
		return true
	}
	if concrete.kind == KindPoison {
		return false
	}
	if abstract.kind == KindUndef {
		return concrete.kind != KindBool
	}
	if concrete.kind == KindUndef {
		return false
	}
	if abstract.kind == KindAnyZero {
		return concrete.kind == KindAnyZero || concrete.IsZero()
	}
	if concrete.kind == KindAnyZero {
		// The replacement could produce either zero; the abstract side is a
		// single concrete value, so one of the two signs escapes it.
		return false
	}
	if abstract.kind == KindNaN {
		return concrete.kind == KindNaN
	}
	return concrete.Equal(abstract)
}
