package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis database without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ConsensusKey generates a prefixed consensus key.
func (k *ScopedKeyer) ConsensusKey(datasetHash string, opts ConsensusKeyOpts) string {
	return k.prefix + k.inner.ConsensusKey(datasetHash, opts)
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(datasetHash, opts)
}
