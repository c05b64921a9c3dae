package rank

// Consensus is the result of a rank aggregation algorithm.
type Consensus struct {
	// Rankings holds one or more consensus rankings. Algorithms asked for a
	// single result return exactly one.
	Rankings []Ranking

	Dataset *Dataset
	Scheme  ScoringScheme

	// Optimal reports whether the result is guaranteed to minimize the
	// total scoring-scheme cost.
	Optimal bool

	// Algorithm names the method that produced the result.
	Algorithm string
}

// First returns the first consensus ranking, or nil if there is none.
func (c *Consensus) First() Ranking {
	if c == nil || len(c.Rankings) == 0 {
		return nil
	}
	return c.Rankings[0]
}
