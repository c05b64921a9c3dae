package rank

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/corank/pkg/errors"
)

// Element identifies one item being ranked.
type Element string

// Bucket is a non-empty set of elements tied at the same position.
type Bucket []Element

// Ranking is an ordered sequence of buckets.
type Ranking []Bucket

// Len returns the number of elements in the ranking.
func (r Ranking) Len() int {
	n := 0
	for _, b := range r {
		n += len(b)
	}
	return n
}

// Contains reports whether e appears in any bucket of r.
func (r Ranking) Contains(e Element) bool {
	for _, b := range r {
		for _, x := range b {
			if x == e {
				return true
			}
		}
	}
	return false
}

// Positions maps each element of r to its bucket index.
func (r Ranking) Positions() map[Element]int {
	pos := make(map[Element]int, r.Len())
	for i, b := range r {
		for _, e := range b {
			pos[e] = i
		}
	}
	return pos
}

// Clone returns a deep copy of r.
func (r Ranking) Clone() Ranking {
	out := make(Ranking, len(r))
	for i, b := range r {
		out[i] = append(Bucket(nil), b...)
	}
	return out
}

// String renders r in bracket notation, e.g. "[[a, b], [c]]".
func (r Ranking) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, b := range r {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for j, e := range b {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(string(e))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// Validate checks that r has no empty bucket, no invalid element name and no
// element repeated across its buckets.
func (r Ranking) Validate() error {
	seen := make(map[Element]struct{}, r.Len())
	for i, b := range r {
		if len(b) == 0 {
			return errs.New(errs.ErrCodeMalformedInput, "bucket %d is empty", i)
		}
		for _, e := range b {
			if err := errs.ValidateElementName(string(e)); err != nil {
				return err
			}
			if _, dup := seen[e]; dup {
				return errs.New(errs.ErrCodeMalformedInput, "element %q appears more than once", e)
			}
			seen[e] = struct{}{}
		}
	}
	return nil
}

// Dataset is an ordered collection of rankings over a shared universe of
// elements. The zero value is not valid; use NewDataset.
type Dataset struct {
	Name     string
	Rankings []Ranking
}

// NewDataset validates rankings and returns a dataset holding them.
// It returns a MALFORMED_INPUT error when there is no ranking at all or when
// any ranking is structurally invalid.
func NewDataset(name string, rankings []Ranking) (*Dataset, error) {
	ds := &Dataset{Name: name, Rankings: rankings}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the structural invariants of the dataset.
func (d *Dataset) Validate() error {
	if d == nil || len(d.Rankings) == 0 {
		return errs.New(errs.ErrCodeMalformedInput, "dataset has no rankings")
	}
	if err := errs.ValidateDatasetName(d.Name); err != nil {
		return err
	}
	for i, r := range d.Rankings {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("ranking %d: %w", i, err)
		}
	}
	return nil
}

// Elements returns every distinct element in first-seen order across
// rankings, buckets and elements.
func (d *Dataset) Elements() []Element {
	seen := make(map[Element]struct{})
	var out []Element
	for _, r := range d.Rankings {
		for _, b := range r {
			for _, e := range b {
				if _, ok := seen[e]; !ok {
					seen[e] = struct{}{}
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// Project returns a dataset restricted to the elements accepted by keep.
// Bucket order and membership are preserved; empty buckets and empty
// rankings are dropped.
func (d *Dataset) Project(keep func(Element) bool) *Dataset {
	out := &Dataset{Name: d.Name}
	for _, r := range d.Rankings {
		var pr Ranking
		for _, b := range r {
			var pb Bucket
			for _, e := range b {
				if keep(e) {
					pb = append(pb, e)
				}
			}
			if len(pb) > 0 {
				pr = append(pr, pb)
			}
		}
		if len(pr) > 0 {
			out.Rankings = append(out.Rankings, pr)
		}
	}
	return out
}
