package pairwise

import (
	"github.com/matzehuels/corank/pkg/rank"
)

// Costs is the total penalty, across all rankings, of each consensus
// relation for an ordered pair (x, y).
type Costs struct {
	Before float64 // x strictly before y
	After  float64 // x strictly after y
	Tied   float64 // x tied with y
}

// Swap returns the costs seen from the pair (y, x).
func (c Costs) Swap() Costs {
	return Costs{Before: c.After, After: c.Before, Tied: c.Tied}
}

// Min returns the smallest of the three costs.
func (c Costs) Min() float64 {
	return min(c.Before, c.After, c.Tied)
}

// Table holds the Costs of every ordered pair of elements. It is symmetric
// by construction: At(a, b).Before == At(b, a).After.
type Table struct {
	n     int
	costs []Costs // row-major n x n, diagonal unused
}

// Evaluate computes the pairwise cost table of ix under sc.
func Evaluate(ix *Index, sc rank.ScoringScheme) *Table {
	n := ix.N()
	t := &Table{n: n, costs: make([]Costs, n*n)}
	before, after, tied := sc.Before, sc.After(), sc.Tied
	for e1 := 0; e1 < n; e1++ {
		for e2 := e1 + 1; e2 < n; e2++ {
			counts := ix.Counts(e1, e2)
			c := Costs{
				Before: before.Dot(counts),
				After:  after.Dot(counts),
				Tied:   tied.Dot(counts),
			}
			t.costs[e1*n+e2] = c
			t.costs[e2*n+e1] = c.Swap()
		}
	}
	return t
}

// N returns the number of elements covered by the table.
func (t *Table) N() int { return t.n }

// At returns the costs of the ordered pair (a, b). a must differ from b.
func (t *Table) At(a, b int) Costs { return t.costs[a*t.n+b] }

// LowerBound returns the sum over unordered pairs of their cheapest relation,
// a bound no consensus can beat.
func (t *Table) LowerBound() float64 {
	var lb float64
	for a := 0; a < t.n; a++ {
		for b := a + 1; b < t.n; b++ {
			lb += t.At(a, b).Min()
		}
	}
	return lb
}
