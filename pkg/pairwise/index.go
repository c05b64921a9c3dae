package pairwise

import (
	"github.com/matzehuels/corank/pkg/rank"
)

// Absent marks an element missing from a ranking in the position matrix.
const Absent = -1

// Index maps elements to dense ids and records each element's bucket index
// in every ranking. It is read-only once built.
type Index struct {
	elements  []rank.Element
	ids       map[rank.Element]int
	positions []int // row-major n x m
	m         int
}

// NewIndex validates ds and builds its position matrix. Ids follow the
// first-seen order across rankings, buckets and elements.
func NewIndex(ds *rank.Dataset) (*Index, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return buildIndex(ds), nil
}

func buildIndex(ds *rank.Dataset) *Index {
	elements := ds.Elements()
	ix := &Index{
		elements:  elements,
		ids:       make(map[rank.Element]int, len(elements)),
		positions: make([]int, len(elements)*len(ds.Rankings)),
		m:         len(ds.Rankings),
	}
	for id, e := range elements {
		ix.ids[e] = id
	}
	for i := range ix.positions {
		ix.positions[i] = Absent
	}
	for r, rk := range ds.Rankings {
		for b, bucket := range rk {
			for _, e := range bucket {
				ix.positions[ix.ids[e]*ix.m+r] = b
			}
		}
	}
	return ix
}

// N returns the number of distinct elements.
func (ix *Index) N() int { return len(ix.elements) }

// M returns the number of rankings.
func (ix *Index) M() int { return ix.m }

// Element returns the element with the given id.
func (ix *Index) Element(id int) rank.Element { return ix.elements[id] }

// Elements returns all elements ordered by id. The slice must not be modified.
func (ix *Index) Elements() []rank.Element { return ix.elements }

// ID returns the id of e and whether e is known.
func (ix *Index) ID(e rank.Element) (int, bool) {
	id, ok := ix.ids[e]
	return id, ok
}

// Position returns the bucket index of element id in ranking r, or Absent.
func (ix *Index) Position(id, r int) int { return ix.positions[id*ix.m+r] }

// Row returns the positions of element id across all rankings.
// The slice aliases the matrix and must not be modified.
func (ix *Index) Row(id int) []int { return ix.positions[id*ix.m : (id+1)*ix.m] }

// Counts returns, for the ordered pair (e1, e2), how many rankings show each
// relation category (see rank.RelBefore and friends). The counts sum to M.
func (ix *Index) Counts(e1, e2 int) [rank.NumRelations]int {
	var c [rank.NumRelations]int
	r1, r2 := ix.Row(e1), ix.Row(e2)
	for r := range r1 {
		p1, p2 := r1[r], r2[r]
		switch {
		case p1 == Absent && p2 == Absent:
			c[rank.RelBothAbsent]++
		case p1 == Absent:
			c[rank.RelXAbsent]++
		case p2 == Absent:
			c[rank.RelYAbsent]++
		case p1 == p2:
			c[rank.RelTied]++
		case p1 < p2:
			c[rank.RelBefore]++
		default:
			c[rank.RelAfter]++
		}
	}
	return c
}
