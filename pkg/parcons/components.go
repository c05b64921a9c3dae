package parcons

import (
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/corank/pkg/pairwise"
	"github.com/matzehuels/corank/pkg/rank"
)

// Kind classifies a strongly connected component of the dominance graph.
type Kind int

const (
	// Singleton is a component of one element.
	Singleton Kind = iota
	// TiedBlock is a component whose elements are best left all tied.
	TiedBlock
	// SubProblem is a component that needs a solver.
	SubProblem
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Singleton:
		return "singleton"
	case TiedBlock:
		return "tied"
	case SubProblem:
		return "subproblem"
	default:
		return "unknown"
	}
}

// Component is a classified strongly connected component.
type Component struct {
	Index int   // position in emission order
	Kind  Kind  // classification
	IDs   []int // member element ids, ascending
}

// Size returns the number of elements in the component.
func (c Component) Size() int { return len(c.IDs) }

// components splits g into strongly connected components and classifies
// them. Components are returned in topological order of the condensation:
// for an edge u -> v, u's component never comes after v's.
func components(g *dominance, t *pairwise.Table) []Component {
	sccs := topo.TarjanSCC(g)
	out := make([]Component, 0, len(sccs))
	// TarjanSCC emits components in reverse topological order.
	for i := len(sccs) - 1; i >= 0; i-- {
		ids := make([]int, len(sccs[i]))
		for j, n := range sccs[i] {
			ids[j] = int(n.ID())
		}
		slices.Sort(ids)
		out = append(out, Component{Index: len(out), Kind: classify(ids, t), IDs: ids})
	}
	return out
}

func classify(ids []int, t *pairwise.Table) Kind {
	if len(ids) == 1 {
		return Singleton
	}
	if allTied(ids, t) {
		return TiedBlock
	}
	return SubProblem
}

// allTied reports whether no pair of ids has a tied cost strictly above its
// before or after cost.
func allTied(ids []int, t *pairwise.Table) bool {
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			c := t.At(a, b)
			if c.Tied > c.Before || c.Tied > c.After {
				return false
			}
		}
	}
	return true
}

// Decomposition is the analysed structure of a dataset: everything ParCons
// derives before calling any solver.
type Decomposition struct {
	Dataset    *rank.Dataset
	Scheme     rank.ScoringScheme
	Index      *pairwise.Index
	Costs      *pairwise.Table
	Edges      [][2]int // dominance graph edges as (from, to) ids
	Components []Component
}

// Analyze indexes ds, evaluates pairwise costs under sc, builds the dominance
// graph and classifies its components. It fails on a malformed dataset or an
// invalid scheme.
func Analyze(ds *rank.Dataset, sc rank.ScoringScheme) (*Decomposition, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	ix, err := pairwise.NewIndex(ds)
	if err != nil {
		return nil, err
	}
	costs := pairwise.Evaluate(ix, sc)
	g := buildDominance(costs)
	return &Decomposition{
		Dataset:    ds,
		Scheme:     sc,
		Index:      ix,
		Costs:      costs,
		Edges:      g.edgeList(),
		Components: components(g, costs),
	}, nil
}

// ComponentOf returns, for every element id, the index of its component.
func (d *Decomposition) ComponentOf() []int {
	of := make([]int, d.Index.N())
	for _, c := range d.Components {
		for _, id := range c.IDs {
			of[id] = c.Index
		}
	}
	return of
}

// Elements returns the elements of component c.
func (d *Decomposition) Elements(c Component) rank.Bucket {
	b := make(rank.Bucket, len(c.IDs))
	for i, id := range c.IDs {
		b[i] = d.Index.Element(id)
	}
	return b
}

// Count returns how many components have kind k.
func (d *Decomposition) Count(k Kind) int {
	n := 0
	for _, c := range d.Components {
		if c.Kind == k {
			n++
		}
	}
	return n
}
