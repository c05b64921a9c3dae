package cache

// Keyer generates cache keys. Implementations decide the key layout; callers
// only supply the inputs that determine a cached value.
type Keyer interface {
	// ConsensusKey returns the key of a consensus computed from the dataset
	// with the given content hash.
	ConsensusKey(datasetHash string, opts ConsensusKeyOpts) string

	// GraphKey returns the key of a rendered dominance graph.
	GraphKey(datasetHash string, opts GraphKeyOpts) string
}

// ConsensusKeyOpts holds every option that changes a computed consensus.
type ConsensusKeyOpts struct {
	Scheme        string `json:"scheme"`
	ExactBound    int    `json:"exact_bound"`
	Exact         string `json:"exact"`
	ExactFallback string `json:"exact_fallback"`
	Heuristic     string `json:"heuristic"`
}

// GraphKeyOpts holds every option that changes a rendered dominance graph.
type GraphKeyOpts struct {
	Scheme    string `json:"scheme"`
	Format    string `json:"format"`
	Condensed bool   `json:"condensed"`
	Costs     bool   `json:"costs"`
}

// DefaultKeyer produces "consensus:<sha256>" and "graph:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ConsensusKey implements Keyer.
func (DefaultKeyer) ConsensusKey(datasetHash string, opts ConsensusKeyOpts) string {
	return hashKey("consensus", datasetHash, opts)
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return hashKey("graph", datasetHash, opts)
}

var _ Keyer = DefaultKeyer{}
