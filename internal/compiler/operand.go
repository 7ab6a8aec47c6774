package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/santoshn/alive-nj/internal/fpval"
	"github.com/santoshn/alive-nj/internal/rules"
)

// parseOperand resolves the corpus spelling of an operand reference.
func parseOperand(s string, field string, pos token.Pos) (rules.Operand, error) {
	if strings.HasPrefix(s, "%") {
		if len(s) == 1 {
			return rules.Operand{}, &CompileError{Field: field, Message: "empty variable name", Pos: pos}
		}
		return rules.Var(s), nil
	}

	if v, ok := parseLiteral(s); ok {
		return rules.Lit(v), nil
	}

	if isConstName(s) {
		return rules.ConstRef(s), nil
	}

	return rules.Operand{}, &CompileError{
		Field:   field,
		Message: fmt.Sprintf("operand %q is not a variable, constant, or literal", s),
		Pos:     pos,
	}
}

// parseLiteral parses the literal spellings: the undef and poison markers,
// and anything strconv accepts as a float ("0.0", "-0.0", "nan", "-inf").
func parseLiteral(s string) (fpval.Value, bool) {
	switch s {
	case "undef":
		return fpval.Undef(), true
	case "poison":
		return fpval.Poison(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fpval.Value{}, false
	}
	return fpval.Const(f), true
}

// isConstName reports whether s spells a symbolic constant: "C" optionally
// followed by digits.
func isConstName(s string) bool {
	if !strings.HasPrefix(s, "C") {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
