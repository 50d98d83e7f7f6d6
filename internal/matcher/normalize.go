package matcher

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CasePolicy selects the case transform applied to names before comparison
type CasePolicy string

const (
	Lowercase CasePolicy = "lowercase"
	Uppercase CasePolicy = "uppercase"
)

// DefaultCasePolicy is used when Options leaves the policy empty
const DefaultCasePolicy = Lowercase

// ParseCasePolicy accepts lower, lowercase, upper or uppercase in any case
func ParseCasePolicy(s string) (CasePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lower", "lowercase":
		return Lowercase, nil
	case "upper", "uppercase":
		return Uppercase, nil
	default:
		return "", fmt.Errorf("invalid case policy %q (must be 'lowercase' or 'uppercase')", s)
	}
}

// Valid reports whether p is a known policy
func (p CasePolicy) Valid() bool {
	return p == Lowercase || p == Uppercase
}

// Normalizer folds names under one policy. It is not safe for concurrent use.
type Normalizer struct {
	caser cases.Caser
}

// NewNormalizer creates a Normalizer for policy; unknown policies fold to lower case
func NewNormalizer(policy CasePolicy) *Normalizer {
	caser := cases.Lower(language.Und)
	if policy == Uppercase {
		caser = cases.Upper(language.Und)
	}
	return &Normalizer{caser: caser}
}

// Normalize trims surrounding whitespace and applies the case transform
func (n *Normalizer) Normalize(name string) string {
	return n.caser.String(strings.TrimSpace(name))
}

// Normalize is a one-off convenience around NewNormalizer(policy).Normalize
func Normalize(name string, policy CasePolicy) string {
	return NewNormalizer(policy).Normalize(name)
}
