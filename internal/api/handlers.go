package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/pipeline"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/store"
)

type handler struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SchemeSpec selects a scoring scheme: a preset name or explicit vectors,
// never both.
type SchemeSpec struct {
	Preset string              `json:"preset,omitempty" validate:"omitempty,excluded_with=Before,oneof=unifying induced fagin"`
	Before *rank.PenaltyVector `json:"before,omitempty" validate:"required_with=Tied"`
	Tied   *rank.PenaltyVector `json:"tied,omitempty" validate:"required_with=Before"`
}

// Resolve returns the scheme described by s, or def when s is empty.
func (s *SchemeSpec) Resolve(def rank.ScoringScheme) (rank.ScoringScheme, error) {
	switch {
	case s == nil:
		return def, nil
	case s.Before != nil && s.Tied != nil:
		sc := rank.ScoringScheme{Before: *s.Before, Tied: *s.Tied}
		return sc, sc.Validate()
	case s.Preset != "":
		return rank.SchemeByName(s.Preset)
	default:
		return def, nil
	}
}

// DatasetRequest is the dataset part shared by consensus and graph requests.
type DatasetRequest struct {
	Name     string       `json:"name,omitempty" validate:"max=256"`
	Rankings [][][]string `json:"rankings" validate:"required,min=1"`
	Scheme   *SchemeSpec  `json:"scheme,omitempty"`
}

func (d *DatasetRequest) dataset(def rank.ScoringScheme) (*rank.Dataset, rank.ScoringScheme, error) {
	sc, err := d.Scheme.Resolve(def)
	if err != nil {
		return nil, sc, err
	}
	ds, err := rank.NewDataset(d.Name, rank.FromStrings(d.Rankings))
	return ds, sc, err
}

// ConsensusRequest is the body of POST /api/v1/consensus.
type ConsensusRequest struct {
	DatasetRequest
	ExactBound int  `json:"exact_bound,omitempty" validate:"gte=0,lte=10000"`
	Workers    int  `json:"workers,omitempty" validate:"gte=0,lte=64"`
	Refresh    bool `json:"refresh,omitempty"`
	Save       bool `json:"save,omitempty"`
}

// ConsensusResponse is the body returned by POST /api/v1/consensus.
type ConsensusResponse struct {
	*store.Run
	CacheHit bool `json:"cache_hit"`
	Saved    bool `json:"saved"`
}

// GraphRequest is the body of POST /api/v1/graph.
type GraphRequest struct {
	DatasetRequest
	Format    string `json:"format,omitempty" validate:"omitempty,oneof=dot svg"`
	Condensed bool   `json:"condensed,omitempty"`
	Costs     bool   `json:"costs,omitempty"`
}

func (h *handler) consensus(w http.ResponseWriter, r *http.Request) {
	var req ConsensusRequest
	if !h.decode(w, r, &req) {
		return
	}
	ds, sc, err := req.dataset(h.defaultScheme())
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if h.opts.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.SolveTimeout)
		defer cancel()
	}

	res, err := h.runner.Execute(ctx, pipeline.Options{
		Dataset:    ds,
		Scheme:     sc,
		ExactBound: orDefault(req.ExactBound, h.opts.ExactBound),
		Workers:    orDefault(req.Workers, h.opts.Workers),
		Refresh:    req.Refresh,
		Save:       req.Save,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConsensusResponse{Run: res.Run, CacheHit: res.CacheHit, Saved: res.Saved})
}

func (h *handler) graph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if !h.decode(w, r, &req) {
		return
	}
	ds, sc, err := req.dataset(h.defaultScheme())
	if err != nil {
		writeError(w, err)
		return
	}
	out, hit, err := h.runner.Graph(r.Context(), pipeline.GraphOptions{
		Dataset:   ds,
		Scheme:    sc,
		Format:    req.Format,
		Condensed: req.Condensed,
		Costs:     req.Costs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Format == pipeline.FormatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	} else {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.Header().Set("X-Cache", map[bool]string{true: "HIT", false: "MISS"}[hit])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	if h.runner.Store == nil {
		writeError(w, errs.New(errs.ErrCodeUnsupported, "run archive is disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := h.runner.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, ok := h.runID(w, r)
	if !ok {
		return
	}
	run, err := h.runner.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handler) deleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := h.runID(w, r)
	if !ok {
		return
	}
	if err := h.runner.Store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) schemes(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]rank.ScoringScheme)
	for _, name := range rank.SchemeNames() {
		sc, _ := rank.SchemeByName(name)
		out[name] = sc
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) defaultScheme() rank.ScoringScheme {
	if h.opts.Scheme != nil {
		return *h.opts.Scheme
	}
	return rank.Unifying
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func (h *handler) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h.runner.Store == nil {
		writeError(w, errs.New(errs.ErrCodeUnsupported, "run archive is disabled"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid run id"))
		return uuid.Nil, false
	}
	return id, true
}

// decode reads and validates a JSON body into v, writing the error response
// itself on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Code: string(errs.ErrCodeInvalidInput), Error: "request body too large"})
			return false
		}
		writeError(w, errs.Wrap(errs.ErrCodeInvalidFormat, err, "invalid request body"))
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "%s failed %q", f.Namespace(), f.Tag()))
			return false
		}
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request"))
		return false
	}
	return true
}
