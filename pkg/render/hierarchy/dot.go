package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/render"
	"github.com/matzehuels/themis/pkg/resolve"
)

// Options configures hierarchy diagram rendering.
type Options struct {
	// Detailed adds placement metadata to node labels and draws slot
	// blueprints. When false, only node names are shown.
	Detailed bool
}

const templatePrefix = "tpl:"

// ToDOT converts the document hierarchy to Graphviz DOT format.
func ToDOT(doc *config.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if doc == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	var counts map[config.NodeID]int
	if opts.Detailed {
		counts = make(map[config.NodeID]int)
		for _, inst := range resolve.Resolve(doc) {
			counts[inst.Node]++
		}
	}

	var (
		edges []string
		used  []string
	)
	config.Walk(doc.Hierarchy, func(id config.NodeID, path []*config.Node) {
		n := path[len(path)-1]
		label := n.Name
		if opts.Detailed {
			label = detailedLabel(id, path, counts[id])
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", string(id), label)

		if parent, _, ok := id.Parent(); ok && parent != "" {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", string(parent), string(id)))
		}
		if opts.Detailed && n.UseSlotsFrom != "" {
			edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed, arrowhead=empty];\n",
				string(id), templatePrefix+n.UseSlotsFrom))
			if !slices.Contains(used, n.UseSlotsFrom) {
				used = append(used, n.UseSlotsFrom)
			}
		}
	})

	slices.Sort(used)
	for _, name := range used {
		attrs := []string{fmt.Sprintf("label=%q", templateLabel(doc, name)), "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey"}
		if _, ok := doc.Template(name); !ok {
			attrs = append(attrs, "color=red", "fontcolor=red")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", templatePrefix+name, strings.Join(attrs, ", "))
	}

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func detailedLabel(id config.NodeID, path []*config.Node, placements int) string {
	n := path[len(path)-1]
	parts := []string{n.Name, "id: " + string(id)}

	if sheet, from := inherited(path, func(n *config.Node) string { return n.SheetName }); sheet != "" {
		parts = append(parts, "sheet: "+sheet+from)
	}
	if layout, from := inherited(path, func(n *config.Node) string { return n.Layout }); layout != "" {
		parts = append(parts, "layout: "+layout+from)
	}
	if col, ok := n.StartCol(); ok {
		parts = append(parts, "startCol: "+strconv.Itoa(col))
	}
	if n.UseSlotsFrom != "" {
		parts = append(parts, "slots from: "+n.UseSlotsFrom)
	}
	parts = append(parts, fmt.Sprintf("placements: %d", placements))
	return strings.Join(parts, "\n")
}

// inherited returns the nearest non-empty value along path and a marker
// when it came from an ancestor.
func inherited(path []*config.Node, get func(*config.Node) string) (string, string) {
	for i := len(path) - 1; i >= 0; i-- {
		if v := get(path[i]); v != "" {
			if i == len(path)-1 {
				return v, ""
			}
			return v, " (inherited)"
		}
	}
	return "", ""
}

func templateLabel(doc *config.Document, name string) string {
	slots, ok := doc.Template(name)
	if !ok {
		return name + "\n(missing)"
	}
	total := 0
	for _, s := range slots {
		total += s.Placements()
	}
	return fmt.Sprintf("%s\n%d slots, %d placements", name, len(slots), total)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox rewrites the root element so the diagram scales from its
// viewBox instead of Graphviz's point-based width and height.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Convert renders a DOT graph through SVG into format with conv.
func Convert(ctx context.Context, conv render.Converter, dot string, format render.Format, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return conv.Convert(ctx, svg, format, scale)
}
