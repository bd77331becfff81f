package domain

import (
	"strings"
)

// Legal-entity suffixes stripped during partner-name normalization.
// Covers the common Serbian forms plus the usual international ones.
var legalSuffixes = map[string]bool{
	"doo": true, "d.o.o": true, "d.o.o.": true,
	"ad": true, "a.d": true, "a.d.": true,
	"od": true, "o.d": true, "o.d.": true,
	"pr": true, "preduzetnik": true,
	"llc": true, "ltd": true, "inc": true, "gmbh": true, "sa": true, "bv": true,
}

// NormalizeReference canonicalizes an invoice/transaction reference
// for exact comparison: trimmed and case-folded.
func NormalizeReference(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ReferencesEqual compares a bank transaction reference against an
// invoice number, case-insensitively and ignoring surrounding space.
func ReferencesEqual(reference, invoiceNumber string) bool {
	ref := NormalizeReference(reference)
	if ref == "" {
		return false
	}
	return ref == NormalizeReference(invoiceNumber)
}

// NormalizePartnerName lowercases, strips punctuation and
// legal-entity suffixes, and returns the remaining name tokens.
// Deterministic and database-free so matching is unit-testable.
func NormalizePartnerName(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		switch r {
		case ' ', '\t', ',', ';', '"', '(', ')', '-', '_', '/':
			return true
		}
		return false
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if legalSuffixes[f] || legalSuffixes[strings.TrimRight(f, ".")] {
			continue
		}
		tokens = append(tokens, strings.TrimRight(f, "."))
	}

	return tokens
}

// PartnerMatcher decides whether two partner names refer to the same
// party. MinOverlap is the fraction of the smaller token set that
// must appear in the larger one; it is a policy knob, not a constant
// baked into the algorithm.
type PartnerMatcher struct {
	MinOverlap float64
}

// DefaultPartnerMatcher requires at least half of the shorter name's
// tokens to appear in the longer one.
func DefaultPartnerMatcher() PartnerMatcher {
	return PartnerMatcher{MinOverlap: 0.5}
}

// Match reports whether the two names fuzzy-match: after
// normalization, either one token sequence contains the other as a
// substring, or the token overlap reaches MinOverlap.
func (m PartnerMatcher) Match(a, b string) bool {
	ta := NormalizePartnerName(a)
	tb := NormalizePartnerName(b)

	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	ja := strings.Join(ta, " ")
	jb := strings.Join(tb, " ")

	if strings.Contains(ja, jb) || strings.Contains(jb, ja) {
		return true
	}

	return m.tokenOverlap(ta, tb) >= m.MinOverlap
}

func (m PartnerMatcher) tokenOverlap(a, b []string) float64 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	set := make(map[string]bool, len(large))
	for _, t := range large {
		set[t] = true
	}

	shared := 0
	for _, t := range small {
		if set[t] {
			shared++
		}
	}

	return float64(shared) / float64(len(small))
}
