// Package similarity implements the pure similarity primitives the pairwise
// scorer is built on: generic string similarity, name similarity with
// nickname and initial handling, and address similarity.
//
// All functions are total over their input domain; missing data yields a
// zero score, never an error.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"unify/internal/resolution/models"
)

// String returns a case-insensitive similarity in [0,1]: 1.0 when the
// strings are equal after uppercasing and trimming, 0.0 when either is
// empty, otherwise a normalized edit-distance ratio.
func String(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// Matcher scores names against an injected nickname table.
type Matcher struct {
	cfg Config
}

// NewMatcher builds a name matcher. Pass DefaultConfig() for the standard
// nickname table.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Name returns a similarity in [0,1] for two structured names.
//
// Last names are compared first: when their similarity falls below 0.8 the
// overall score is capped at lastSim*0.5, so a last-name mismatch dominates
// regardless of first-name agreement. First names score 1.0 on exact match,
// 0.8 when either side is a single initial matching the other's first
// letter, 0.9/0.85 on a nickname-table hit, else fuzzy string similarity.
// A middle-name bonus of +0.10 (exact) or +0.05 (same initial) applies when
// both records carry one.
func (m *Matcher) Name(n1, n2 models.Name) float64 {
	first1 := strings.ToUpper(strings.TrimSpace(n1.First))
	first2 := strings.ToUpper(strings.TrimSpace(n2.First))
	last1 := strings.ToUpper(strings.TrimSpace(n1.Last))
	last2 := strings.ToUpper(strings.TrimSpace(n2.Last))

	lastSim := String(last1, last2)
	if lastSim < 0.8 {
		return lastSim * 0.5
	}

	var firstSim float64
	switch {
	case first1 == first2:
		firstSim = 1.0
	case len(first1) == 1 || len(first2) == 1:
		if first1 != "" && first2 != "" && first1[0] == first2[0] {
			firstSim = 0.8
		}
	default:
		firstSim = m.nicknameSim(first1, first2)
		if firstSim == 0.0 {
			firstSim = String(first1, first2)
		}
	}

	var middleBonus float64
	middle1 := strings.ToUpper(strings.TrimSpace(n1.Middle))
	middle2 := strings.ToUpper(strings.TrimSpace(n2.Middle))
	if middle1 != "" && middle2 != "" {
		if middle1 == middle2 {
			middleBonus = 0.10
		} else if middle1[0] == middle2[0] {
			middleBonus = 0.05
		}
	}

	score := lastSim*0.5 + firstSim*0.4 + middleBonus
	if score > 1.0 {
		return 1.0
	}
	return score
}

// nicknameSim checks the equivalence table: canonical vs nickname scores
// 0.9, two nicknames of the same canonical name score 0.85, no hit is 0.
//
// The canonical relation is resolved by direct key lookup before the co-nick
// scan so a pair matching both rules (JOHN/JON is both canonical-nick under
// JOHN and co-nick under JONATHAN) always scores 0.9, independent of map
// iteration order.
func (m *Matcher) nicknameSim(first1, first2 string) float64 {
	if contains(m.cfg.Nicknames[first1], first2) || contains(m.cfg.Nicknames[first2], first1) {
		return 0.9
	}
	for _, nicks := range m.cfg.Nicknames {
		if contains(nicks, first1) && contains(nicks, first2) {
			return 0.85
		}
	}
	return 0.0
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Addr returns a similarity in [0,1] for two addresses.
//
// ZIP5 is treated as a hard signal: a missing or differing ZIP yields 0.0
// regardless of street similarity (US ZIP5 rarely spans unrelated streets).
// Within a matching ZIP the score is 0.6*street + 0.2*unit + 0.2*city,
// where unit is 1.0 when both unit lines are empty and 0.5 when exactly one
// is populated.
func Addr(a1, a2 *models.Address) float64 {
	if a1 == nil || a2 == nil {
		return 0.0
	}
	if a1.Zip5 == "" || a2.Zip5 == "" {
		return 0.0
	}
	if a1.Zip5 != a2.Zip5 {
		return 0.0
	}

	streetSim := String(a1.StreetLine1, a2.StreetLine1)

	var unitSim float64
	switch {
	case a1.StreetLine2 == "" && a2.StreetLine2 == "":
		unitSim = 1.0
	case a1.StreetLine2 == "" || a2.StreetLine2 == "":
		unitSim = 0.5
	default:
		unitSim = String(a1.StreetLine2, a2.StreetLine2)
	}

	citySim := String(a1.City, a2.City)

	return streetSim*0.6 + unitSim*0.2 + citySim*0.2
}
