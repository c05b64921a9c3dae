package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	errs "github.com/matzehuels/corank/pkg/errors"
)

// Relation categories indexing a penalty vector for an ordered pair (x, y)
// observed in one input ranking.
const (
	RelBefore     = iota // x strictly before y
	RelAfter             // x strictly after y
	RelTied              // x tied with y
	RelYAbsent           // y absent, x present
	RelXAbsent           // x absent, y present
	RelBothAbsent        // neither present

	NumRelations
)

// PenaltyVector holds one penalty per relation category.
type PenaltyVector [NumRelations]float64

// Dot returns the weighted sum of counts by the penalties in v.
func (v PenaltyVector) Dot(counts [NumRelations]int) float64 {
	var s float64
	for i, c := range counts {
		s += float64(c) * v[i]
	}
	return s
}

// ScoringScheme is the pair of penalty vectors used to score a consensus.
// Before applies when the consensus places x strictly before y; Tied when
// the consensus ties x and y. A scheme is fixed for a whole computation.
type ScoringScheme struct {
	Before PenaltyVector `json:"before" toml:"before"`
	Tied   PenaltyVector `json:"tied" toml:"tied"`
}

// After returns the penalty vector applying when the consensus places x
// strictly after y. It is Before with the before/after categories swapped and
// the two single-absence categories swapped with them, so that the absent
// element keeps its role.
func (s ScoringScheme) After() PenaltyVector {
	b := s.Before
	return PenaltyVector{b[RelAfter], b[RelBefore], b[RelTied], b[RelXAbsent], b[RelYAbsent], b[RelBothAbsent]}
}

// Validate checks that every penalty is finite and non-negative.
func (s ScoringScheme) Validate() error {
	vectors := []struct {
		name string
		v    PenaltyVector
	}{{"before", s.Before}, {"tied", s.Tied}}
	for _, vec := range vectors {
		name := vec.name
		for i, p := range vec.v {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return errs.New(errs.ErrCodeInvalidScheme, "%s[%d] is not finite", name, i)
			}
			if p < 0 {
				return errs.New(errs.ErrCodeInvalidScheme, "%s[%d] is negative (%g)", name, i, p)
			}
		}
	}
	return nil
}

// String renders the scheme as two bracketed vectors.
func (s ScoringScheme) String() string {
	return fmt.Sprintf("before=%v tied=%v", s.Before, s.Tied)
}

// Unifying is the scheme that generalizes the Kemeny distance to rankings
// with ties and missing elements: any disagreement costs 1, and a missing
// element is treated as ranked after every present one.
var Unifying = ScoringScheme{
	Before: PenaltyVector{0, 1, 1, 0, 1, 1},
	Tied:   PenaltyVector{1, 1, 0, 1, 1, 0},
}

// Induced ignores pairs involving a missing element: rankings are only
// compared on the elements they contain.
var Induced = ScoringScheme{
	Before: PenaltyVector{0, 1, 1, 0, 0, 0},
	Tied:   PenaltyVector{1, 1, 0, 0, 0, 0},
}

// Fagin returns the generalized Kendall-tau scheme with tie penalty p.
func Fagin(p float64) ScoringScheme {
	return ScoringScheme{
		Before: PenaltyVector{0, 1, p, 0, 0, 0},
		Tied:   PenaltyVector{p, p, 0, 0, 0, 0},
	}
}

var schemes = map[string]ScoringScheme{
	"unifying": Unifying,
	"induced":  Induced,
	"fagin":    Fagin(0.5),
}

// SchemeByName returns a named preset scheme ("unifying", "induced", "fagin").
func SchemeByName(name string) (ScoringScheme, error) {
	s, ok := schemes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ScoringScheme{}, errs.New(errs.ErrCodeInvalidScheme, "unknown scoring scheme %q (available: %s)",
			name, strings.Join(SchemeNames(), ", "))
	}
	return s, nil
}

// SchemeNames lists the preset names in sorted order.
func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
