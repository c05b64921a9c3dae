package store

import (
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/parcons"
	"github.com/matzehuels/corank/pkg/rank"
)

// Run is one archived consensus computation.
type Run struct {
	ID          uuid.UUID          `json:"id" bson:"-"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	Dataset     string             `json:"dataset" bson:"dataset"`
	DatasetHash string             `json:"dataset_hash,omitempty" bson:"dataset_hash,omitempty"`
	Rankings    [][][]string       `json:"rankings" bson:"rankings"`
	Scheme      rank.ScoringScheme `json:"scheme" bson:"scheme"`
	ExactBound  int                `json:"exact_bound" bson:"exact_bound"`

	Consensus  [][]string         `json:"consensus" bson:"consensus"`
	Score      float64            `json:"score" bson:"score"`
	Optimal    bool               `json:"optimal" bson:"optimal"`
	Algorithm  string             `json:"algorithm" bson:"algorithm"`
	Components []ComponentSummary `json:"components" bson:"components"`
	ElapsedMS  int64              `json:"elapsed_ms" bson:"elapsed_ms"`
}

// ComponentSummary is the archived form of a parcons.Report.
type ComponentSummary struct {
	Index      int      `json:"index" bson:"index"`
	Kind       string   `json:"kind" bson:"kind"`
	Size       int      `json:"size" bson:"size"`
	Route      string   `json:"route" bson:"route"`
	Method     string   `json:"method,omitempty" bson:"method,omitempty"`
	Elements   []string `json:"elements" bson:"elements"`
	DurationUS int64    `json:"duration_us" bson:"duration_us"`
}

// Summary is the listing form of a run.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Dataset    string    `json:"dataset"`
	Elements   int       `json:"elements"`
	Rankings   int       `json:"rankings"`
	Score      float64   `json:"score"`
	Optimal    bool      `json:"optimal"`
	Components int       `json:"components"`
}

// NewRun builds a run from a ParCons result. The ID is assigned on Save.
func NewRun(res *parcons.Result, exactBound int) (*Run, error) {
	score, err := res.Score()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailure, err, "score consensus")
	}
	c := res.Consensus
	run := &Run{
		CreatedAt:  time.Now().UTC(),
		Dataset:    c.Dataset.Name,
		Rankings:   rank.ToStrings(c.Dataset.Rankings),
		Scheme:     c.Scheme,
		ExactBound: exactBound,
		Consensus:  rank.ToStrings([]rank.Ranking{c.First()})[0],
		Score:      score,
		Optimal:    c.Optimal,
		Algorithm:  c.Algorithm,
		ElapsedMS:  res.Duration.Milliseconds(),
	}
	for _, rep := range res.Components {
		elems := make([]string, 0, rep.Size())
		for _, e := range res.Decomp.Elements(rep.Component) {
			elems = append(elems, string(e))
		}
		run.Components = append(run.Components, ComponentSummary{
			Index:      rep.Index,
			Kind:       rep.Kind.String(),
			Size:       rep.Size(),
			Route:      rep.Route.String(),
			Method:     rep.Method,
			Elements:   elems,
			DurationUS: rep.Duration.Microseconds(),
		})
	}
	return run, nil
}

// Summary returns the listing form of r.
func (r *Run) Summary() Summary {
	seen := make(map[string]struct{})
	for _, rk := range r.Rankings {
		for _, b := range rk {
			for _, e := range b {
				seen[e] = struct{}{}
			}
		}
	}
	return Summary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Dataset:    r.Dataset,
		Elements:   len(seen),
		Rankings:   len(r.Rankings),
		Score:      r.Score,
		Optimal:    r.Optimal,
		Components: len(r.Components),
	}
}

// ConsensusRanking returns the archived consensus as a ranking.
func (r *Run) ConsensusRanking() rank.Ranking {
	return rank.FromStrings([][][]string{r.Consensus})[0]
}

// assignID gives run a fresh ID when it has none.
func assignID(run *Run) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}

func notFound(id uuid.UUID) error {
	return errs.New(errs.ErrCodeRunNotFound, "run %s not found", id)
}
