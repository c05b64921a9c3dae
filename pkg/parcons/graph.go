package parcons

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/corank/pkg/pairwise"
)

// dominance is the dominance graph stored as adjacency lists indexed by dense
// element id. It implements graph.Directed with deterministic iteration order
// (ascending ids) so that component order is reproducible.
type dominance struct {
	nodes []graph.Node
	succ  [][]int64
	pred  [][]int64
	edges int
}

// buildDominance adds, for every pair e1 < e2, the edge e2 -> e1 when placing
// e1 before e2 is not the cheapest relation, and e1 -> e2 when placing e1
// after e2 is not. A tie being cheapest adds no edge by itself.
func buildDominance(t *pairwise.Table) *dominance {
	n := t.N()
	g := &dominance{
		nodes: make([]graph.Node, n),
		succ:  make([][]int64, n),
		pred:  make([][]int64, n),
	}
	for i := range g.nodes {
		g.nodes[i] = simple.Node(i)
	}
	for e1 := 0; e1 < n; e1++ {
		for e2 := e1 + 1; e2 < n; e2++ {
			c := t.At(e1, e2)
			if c.Before > c.After || c.Before > c.Tied {
				g.addEdge(e2, e1)
			}
			if c.After > c.Before || c.After > c.Tied {
				g.addEdge(e1, e2)
			}
		}
	}
	return g
}

func (g *dominance) addEdge(u, v int) {
	g.succ[u] = append(g.succ[u], int64(v))
	g.pred[v] = append(g.pred[v], int64(u))
	g.edges++
}

func (g *dominance) valid(id int64) bool { return id >= 0 && id < int64(len(g.nodes)) }

// Node implements graph.Graph.
func (g *dominance) Node(id int64) graph.Node {
	if !g.valid(id) {
		return nil
	}
	return g.nodes[id]
}

// Nodes implements graph.Graph.
func (g *dominance) Nodes() graph.Nodes {
	if len(g.nodes) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(g.nodes)
}

// From implements graph.Graph.
func (g *dominance) From(id int64) graph.Nodes { return g.neighbours(g.succ, id) }

// To implements graph.Directed.
func (g *dominance) To(id int64) graph.Nodes { return g.neighbours(g.pred, id) }

func (g *dominance) neighbours(adj [][]int64, id int64) graph.Nodes {
	if !g.valid(id) || len(adj[id]) == 0 {
		return graph.Empty
	}
	out := make([]graph.Node, len(adj[id]))
	for i, v := range adj[id] {
		out[i] = g.nodes[v]
	}
	return iterator.NewOrderedNodes(out)
}

// HasEdgeBetween implements graph.Graph.
func (g *dominance) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo implements graph.Directed.
func (g *dominance) HasEdgeFromTo(uid, vid int64) bool {
	return g.valid(uid) && g.valid(vid) && slices.Contains(g.succ[uid], vid)
}

// Edge implements graph.Graph.
func (g *dominance) Edge(uid, vid int64) graph.Edge {
	if !g.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: g.nodes[uid], T: g.nodes[vid]}
}

// edgeList returns every edge as an (u, v) pair, ordered by u then insertion.
func (g *dominance) edgeList() [][2]int {
	out := make([][2]int, 0, g.edges)
	for u, vs := range g.succ {
		for _, v := range vs {
			out = append(out, [2]int{u, int(v)})
		}
	}
	return out
}

var _ graph.Directed = (*dominance)(nil)
