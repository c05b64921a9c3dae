package rank

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	errs "github.com/matzehuels/corank/pkg/errors"
)

// ReadText parses one ranking per line in bracket notation:
//
//	[[a, b], [c]]
//	[[c], [a, b]]
//
// Blank lines and lines starting with '#' are skipped. Element names are
// trimmed of surrounding whitespace. The returned dataset is validated.
func ReadText(r io.Reader, name string) (*Dataset, error) {
	var rankings []Ranking
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rk, err := ParseRanking(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rankings = append(rankings, rk)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return NewDataset(name, rankings)
}

// ParseRanking parses a single ranking in bracket notation. Element names
// end at the next ',' or ']', so they never contain reserved characters.
func ParseRanking(s string) (Ranking, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "ranking must be enclosed in brackets: %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	rk := Ranking{}
	for len(body) > 0 {
		if body[0] != '[' {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "expected '[' at %q", body)
		}
		end := strings.IndexByte(body, ']')
		if end < 0 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unterminated bucket in %q", s)
		}
		inner := body[1:end]
		if strings.ContainsRune(inner, '[') {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "nested bucket in %q", s)
		}
		var b Bucket
		if strings.TrimSpace(inner) != "" {
			for _, tok := range strings.Split(inner, ",") {
				b = append(b, Element(strings.TrimSpace(tok)))
			}
		}
		rk = append(rk, b)

		body = strings.TrimSpace(body[end+1:])
		if strings.HasPrefix(body, ",") {
			body = strings.TrimSpace(body[1:])
			if body == "" {
				return nil, errs.New(errs.ErrCodeInvalidFormat, "trailing comma in %q", s)
			}
		} else if body != "" {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "expected ',' between buckets in %q", s)
		}
	}
	return rk, nil
}

// reserved are the characters the bracket notation cannot carry in names.
const reserved = "[],"

// WriteText writes one ranking per line in bracket notation. It fails with
// INVALID_FORMAT when an element name contains '[', ']' or ',', which the
// notation cannot represent; use WriteJSON for such datasets.
func WriteText(w io.Writer, rankings []Ranking) error {
	for _, r := range rankings {
		for _, b := range r {
			for _, e := range b {
				if strings.ContainsAny(string(e), reserved) {
					return errs.New(errs.ErrCodeInvalidFormat, "element %q cannot be written in bracket notation", e)
				}
			}
		}
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

type jsonDataset struct {
	Name     string       `json:"name,omitempty"`
	Rankings [][][]string `json:"rankings"`
}

// ReadJSON decodes a dataset of the form
//
//	{"name": "d1", "rankings": [[["a", "b"], ["c"]], [["c"], ["a"]]]}
//
// The returned dataset is validated.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var data jsonDataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode dataset")
	}
	return NewDataset(data.Name, FromStrings(data.Rankings))
}

// WriteJSON encodes the dataset in the format accepted by ReadJSON.
func WriteJSON(w io.Writer, d *Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonDataset{Name: d.Name, Rankings: ToStrings(d.Rankings)})
}

// FromStrings converts nested string slices into rankings.
func FromStrings(raw [][][]string) []Ranking {
	out := make([]Ranking, len(raw))
	for i, r := range raw {
		rk := make(Ranking, len(r))
		for j, b := range r {
			bk := make(Bucket, len(b))
			for k, e := range b {
				bk[k] = Element(e)
			}
			rk[j] = bk
		}
		out[i] = rk
	}
	return out
}

// ToStrings converts rankings into nested string slices.
func ToStrings(rankings []Ranking) [][][]string {
	out := make([][][]string, len(rankings))
	for i, r := range rankings {
		rs := make([][]string, len(r))
		for j, b := range r {
			bs := make([]string, len(b))
			for k, e := range b {
				bs[k] = string(e)
			}
			rs[j] = bs
		}
		out[i] = rs
	}
	return out
}
