package dominance

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/corank/pkg/parcons"
)

// Options configures dominance diagram rendering.
type Options struct {
	// Condensed draws the condensation: one node per component.
	Condensed bool

	// Costs labels element edges with "before/after/tied" costs.
	// Ignored when Condensed is set.
	Costs bool

	// Result, when set, annotates sub-problem clusters with the route and
	// method used to solve them.
	Result *parcons.Result
}

var kindFill = map[parcons.Kind]string{
	parcons.Singleton:  "white",
	parcons.TiedBlock:  "\"#d9f2d9\"",
	parcons.SubProblem: "\"#fde5c8\"",
}

const heuristicFill = "\"#f8d0d0\""

// ToDOT converts a decomposition to Graphviz DOT format.
// Components are laid out left to right in consensus order.
func ToDOT(d *parcons.Decomposition, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Dominance {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"SF Mono, Menlo, monospace\", fontsize=14];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")
	buf.WriteString("\n")

	if opts.Condensed {
		writeCondensed(&buf, d, opts)
	} else {
		writeElements(&buf, d, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeElements(buf *bytes.Buffer, d *parcons.Decomposition, opts Options) {
	for _, c := range d.Components {
		fmt.Fprintf(buf, "  subgraph cluster_%d {\n", c.Index)
		fmt.Fprintf(buf, "    label=%q;\n", clusterLabel(c, opts.Result))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, id := range c.IDs {
			fmt.Fprintf(buf, "    n%d [label=%q, fillcolor=%s];\n", id, string(d.Index.Element(id)), fill(c, opts.Result))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if !opts.Costs {
			fmt.Fprintf(buf, "  n%d -> n%d;\n", e[0], e[1])
			continue
		}
		c := d.Costs.At(e[0], e[1])
		fmt.Fprintf(buf, "  n%d -> n%d [label=%q, fontsize=10];\n", e[0], e[1],
			fmt.Sprintf("%s/%s/%s", num(c.Before), num(c.After), num(c.Tied)))
	}
}

func writeCondensed(buf *bytes.Buffer, d *parcons.Decomposition, opts Options) {
	for _, c := range d.Components {
		elems := d.Elements(c)
		names := make([]string, len(elems))
		for i, e := range elems {
			names[i] = string(e)
		}
		label := strings.Join(names, ", ")
		if c.Size() > 6 {
			label = fmt.Sprintf("%s, ... (%d)", strings.Join(names[:5], ", "), c.Size())
		}
		fmt.Fprintf(buf, "  c%d [label=%q, fillcolor=%s];\n", c.Index, label, fill(c, opts.Result))
	}

	buf.WriteString("\n")
	of := d.ComponentOf()
	seen := make(map[[2]int]bool)
	for _, e := range d.Edges {
		from, to := of[e[0]], of[e[1]]
		if from == to || seen[[2]int{from, to}] {
			continue
		}
		seen[[2]int{from, to}] = true
		fmt.Fprintf(buf, "  c%d -> c%d;\n", from, to)
	}
}

func clusterLabel(c parcons.Component, res *parcons.Result) string {
	label := fmt.Sprintf("#%d %s", c.Index, c.Kind)
	if res != nil && c.Kind == parcons.SubProblem && c.Index < len(res.Components) {
		rep := res.Components[c.Index]
		label += fmt.Sprintf(" (%s: %s)", rep.Route, rep.Method)
	}
	return label
}

func fill(c parcons.Component, res *parcons.Result) string {
	if res != nil && c.Index < len(res.Components) && res.Components[c.Index].Route == parcons.RouteHeuristic {
		return heuristicFill
	}
	return kindFill[c.Kind]
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales from its
// viewBox instead of the point-based width and height Graphviz emits.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
