package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for future algorithm migration.
const (
	DomainRule   = "alive/rule/v1"
	DomainCorpus = "alive/corpus/v1"
)

// hashWithDomain computes SHA-256 with domain separation. The null byte
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RuleHash computes a content-addressed hash of a rule. The hash is stable
// across process restarts given the same compiled rule, so stored
// verification runs can be matched to the corpus they verified.
func RuleHash(r *Rule) (string, error) {
	canonical, err := MarshalCanonical(ruleCanonicalMap(r))
	if err != nil {
		return "", fmt.Errorf("RuleHash %s: %w", r.Name, err)
	}
	return hashWithDomain(DomainRule, canonical), nil
}

// CorpusHash hashes the whole corpus in declaration order, so reordering or
// toggling a rule changes the hash.
func CorpusHash(c *Corpus) (string, error) {
	ruleList := make([]any, len(c.Rules))
	for i := range c.Rules {
		ruleList[i] = ruleCanonicalMap(&c.Rules[i])
	}
	canonical, err := MarshalCanonical(map[string]any{"rules": ruleList})
	if err != nil {
		return "", fmt.Errorf("CorpusHash: %w", err)
	}
	return hashWithDomain(DomainCorpus, canonical), nil
}

func ruleCanonicalMap(r *Rule) map[string]any {
	m := map[string]any{
		"name":          r.Name,
		"active":        r.Active,
		"pre":           r.Precondition().String(),
		"lhs":           instrsCanonical(r.LHS),
		"rhs":           instrsCanonical(r.RHS),
		"result":        operandCanonical(r.RHSResult),
		"bidirectional": r.Bidirectional,
	}
	if r.Precision != "" {
		m["precision"] = r.Precision
	}
	if r.Reason != "" {
		m["reason"] = r.Reason
	}
	return m
}

func instrsCanonical(ins []Instruction) []any {
	out := make([]any, len(ins))
	for i, in := range ins {
		m := map[string]any{
			"bind":  in.Result,
			"op":    string(in.Op),
			"flags": in.Flags.String(),
			"x":     operandCanonical(in.X),
			"y":     operandCanonical(in.Y),
		}
		if in.Pred != "" {
			m["pred"] = string(in.Pred)
		}
		out[i] = m
	}
	return out
}

func operandCanonical(o Operand) map[string]any {
	switch o.Kind {
	case OperandLit:
		return map[string]any{"lit": o.Lit}
	case OperandConst:
		return map[string]any{"const": o.Name}
	default:
		return map[string]any{"var": o.Name}
	}
}
