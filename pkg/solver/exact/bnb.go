package exact

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"slices"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/pairwise"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/solver"
	"github.com/matzehuels/corank/pkg/solver/bioconsert"
)

// DefaultMaxNodes is the default search budget of BranchAndBound.
const DefaultMaxNodes = 5_000_000

// memoLimit caps the number of placed sets remembered for dominance pruning.
const memoLimit = 1 << 20

const epsilon = 1e-9

// ErrBudgetExhausted is returned (wrapped) when the search visits more than
// MaxNodes partial orderings without proving optimality.
var ErrBudgetExhausted = errors.New("node budget exhausted")

// BranchAndBound computes an optimal consensus by building the ordering
// bucket by bucket from the front. A partial ordering is a sequence of
// closed buckets followed by one open bucket that may still grow. Its bound
// adds, to the decided cost, the cheapest relation of every pair of unplaced
// elements and, for every unplaced element, the cheaper of joining the open
// bucket or following it. Two partial orderings that have placed the same
// set of elements share their completions, so only the cheaper one is
// expanded. The search starts from the best of the completed inputs, the
// all-tied ordering and a BioConsert run, and tries elements in the order of
// that starting ranking.
type BranchAndBound struct {
	// MaxNodes overrides DefaultMaxNodes when positive.
	MaxNodes int
}

// Name returns "ExactBranchAndBound".
func (BranchAndBound) Name() string { return "ExactBranchAndBound" }

// Solve implements solver.Solver.
func (bb BranchAndBound) Solve(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
	p, err := solver.Prepare(bb.Name(), ds, sc)
	if err != nil {
		return nil, err
	}
	budget := bb.MaxNodes
	if budget <= 0 {
		budget = DefaultMaxNodes
	}

	s := newSearch(ctx, p, budget)
	s.run()
	if s.err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailure, s.err, "%s after %d nodes", bb.Name(), s.nodes)
	}
	solver.SortBuckets(s.bestBuckets)
	return p.Consensus(bb.Name(), s.bestBuckets, true), nil
}

type search struct {
	ctx      context.Context
	costs    *pairwise.Table
	n        int
	order    []int // candidate order of element ids, best known ranking first
	pos      []int // pos[x] is the index of x in order
	unplaced []bool
	placed   []uint64 // bitset of placed ids
	seq      []int    // placed ids in placement order
	starts   []int    // index in seq where each bucket starts

	// tied[d][y] and before[d][y] sum, over the open bucket at depth d, the
	// cost of unplaced y joining it or following it.
	tied   [][]float64
	before [][]float64

	memo map[string]float64
	key  []byte

	nodes    int
	maxNodes int
	err      error

	best        float64
	bestBuckets [][]int
}

func newSearch(ctx context.Context, p *solver.Problem, maxNodes int) *search {
	n := p.Index.N()
	s := &search{
		ctx:      ctx,
		costs:    p.Costs,
		n:        n,
		pos:      make([]int, n),
		unplaced: make([]bool, n),
		placed:   make([]uint64, (n+63)/64),
		seq:      make([]int, 0, n),
		tied:     make([][]float64, n+1),
		before:   make([][]float64, n+1),
		memo:     make(map[string]float64),
		maxNodes: maxNodes,
		best:     math.Inf(1),
	}
	for d := range s.tied {
		s.tied[d] = make([]float64, n)
		s.before[d] = make([]float64, n)
	}
	for i := range s.unplaced {
		s.unplaced[i] = true
	}

	for _, start := range p.CompletedInputs() {
		s.offer(start)
	}
	if n > 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		s.offer([][]int{all})
	}
	if c, err := (bioconsert.BioConsert{}).Solve(ctx, p.Dataset, p.Scheme); err == nil && len(c.Rankings) > 0 {
		if buckets, err := p.Index.Buckets(c.First()); err == nil {
			s.offer(buckets)
		}
	}

	for _, b := range s.bestBuckets {
		s.order = append(s.order, b...)
	}
	for i, x := range s.order {
		s.pos[x] = i
	}
	return s
}

// offer records a complete ordering as the incumbent if it is cheaper.
func (s *search) offer(buckets [][]int) {
	if c := s.costs.Score(buckets); c < s.best-epsilon {
		s.best, s.bestBuckets = c, cloneBuckets(buckets)
	}
}

func (s *search) run() {
	if s.n == 0 {
		return
	}
	s.visit(0, 0, s.costs.LowerBound())
}

// visit explores the partial ordering of depth d. cost is the decided cost:
// every pair with both elements placed, plus every pair between a closed
// bucket and an unplaced element. rest is the sum of the cheapest relations
// of unplaced pairs.
func (s *search) visit(d int, cost, rest float64) {
	if s.err != nil {
		return
	}
	s.nodes++
	if s.nodes > s.maxNodes {
		s.err = ErrBudgetExhausted
		return
	}
	if s.nodes&4095 == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
	}

	if d == s.n {
		if cost < s.best-epsilon {
			s.best = cost
			s.bestBuckets = s.buckets()
		}
		return
	}

	tied, before := s.tied[d], s.before[d]
	bound := cost + rest
	following := 0.0
	for _, y := range s.order {
		if s.unplaced[y] {
			bound += min(tied[y], before[y])
			following += before[y]
		}
	}
	if bound >= s.best-epsilon {
		return
	}

	// Grow the open bucket. Members join in candidate order so that every
	// bucket is generated once.
	if d > 0 {
		for i := s.pos[s.seq[d-1]] + 1; i < s.n; i++ {
			x := s.order[i]
			if !s.unplaced[x] {
				continue
			}
			s.place(d, x, tied, before)
			s.visit(d+1, cost+tied[x], rest-s.released(x))
			s.unplace(x)
			if s.err != nil {
				return
			}
		}
	}

	// Close the open bucket and start a new one.
	closed := cost + following
	if d > 0 && !s.remember(closed) {
		return
	}
	if closed+rest >= s.best-epsilon {
		return
	}
	s.starts = append(s.starts, d)
	zero := s.tied[s.n] // never written: depth n has no unplaced elements
	for _, x := range s.order {
		if !s.unplaced[x] {
			continue
		}
		s.place(d, x, zero, zero)
		s.visit(d+1, closed, rest-s.released(x))
		s.unplace(x)
		if s.err != nil {
			break
		}
	}
	s.starts = s.starts[:len(s.starts)-1]
}

// place moves x into the open bucket and fills the depth d+1 sums from the
// depth d ones.
func (s *search) place(d, x int, tied, before []float64) {
	s.unplaced[x] = false
	s.placed[x/64] |= 1 << (x % 64)
	s.seq = append(s.seq, x)
	nextTied, nextBefore := s.tied[d+1], s.before[d+1]
	for _, y := range s.order {
		if s.unplaced[y] {
			c := s.costs.At(x, y)
			nextTied[y] = tied[y] + c.Tied
			nextBefore[y] = before[y] + c.Before
		}
	}
}

func (s *search) unplace(x int) {
	s.seq = s.seq[:len(s.seq)-1]
	s.placed[x/64] &^= 1 << (x % 64)
	s.unplaced[x] = true
}

// released returns the cheapest-relation sum of the pairs between the newly
// placed x and the elements still unplaced.
func (s *search) released(x int) float64 {
	var sum float64
	for _, y := range s.order {
		if s.unplaced[y] {
			sum += s.costs.At(x, y).Min()
		}
	}
	return sum
}

// remember reports whether the current placed set is worth expanding at the
// given closed cost, recording it if so.
func (s *search) remember(cost float64) bool {
	s.key = s.key[:0]
	for _, w := range s.placed {
		s.key = binary.LittleEndian.AppendUint64(s.key, w)
	}
	if seen, ok := s.memo[string(s.key)]; ok {
		if cost >= seen-epsilon {
			return false
		}
		s.memo[string(s.key)] = cost
		return true
	}
	if len(s.memo) < memoLimit {
		s.memo[string(s.key)] = cost
	}
	return true
}

// buckets rebuilds the current complete ordering.
func (s *search) buckets() [][]int {
	out := make([][]int, len(s.starts))
	for i, start := range s.starts {
		end := len(s.seq)
		if i+1 < len(s.starts) {
			end = s.starts[i+1]
		}
		out[i] = slices.Clone(s.seq[start:end])
	}
	return out
}

func cloneBuckets(b [][]int) [][]int {
	out := make([][]int, len(b))
	for i, x := range b {
		out[i] = slices.Clone(x)
	}
	return out
}
