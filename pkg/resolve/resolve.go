package resolve

import (
	"slices"

	"github.com/matzehuels/themis/pkg/config"
)

// PreviewSheet is the sheet used by [PreviewTemplate].
const PreviewSheet = "Preview Sheet"

// Resolve expands every slot of the document into placements, in
// deterministic order. It never mutates doc and never fails.
func Resolve(doc *config.Document) []Instance {
	if doc == nil {
		return nil
	}
	return ResolveNodes(doc, doc.Hierarchy)
}

// ResolveNodes resolves the given roots against the layouts and templates of
// doc. Handles in the result are relative to roots.
func ResolveNodes(doc *config.Document, roots []*config.Node) []Instance {
	if doc == nil {
		return nil
	}
	var out []Instance
	config.Walk(roots, func(id config.NodeID, path []*config.Node) {
		out = expandNode(doc, id, path, out)
	})
	return out
}

// PreviewTemplate resolves a single template under a synthetic node on
// [PreviewSheet]. startCol, when positive, becomes the node's startCol.
func PreviewTemplate(doc *config.Document, name string, startCol int) []Instance {
	if doc == nil {
		return nil
	}
	if _, ok := doc.Template(name); !ok {
		return nil
	}
	n := &config.Node{
		Name:         "Preview: " + name,
		SheetName:    PreviewSheet,
		UseSlotsFrom: name,
	}
	if startCol > 0 {
		n.SetStartCol(startCol)
	}
	return ResolveNodes(doc, []*config.Node{n})
}

func expandNode(doc *config.Document, id config.NodeID, path []*config.Node, out []Instance) []Instance {
	n := path[len(path)-1]
	scope := nodeScope{
		id:     id,
		node:   n,
		sheet:  nearest(path, func(n *config.Node) string { return n.SheetName }),
		layout: nearest(path, func(n *config.Node) string { return n.Layout }),
		names:  make([]string, len(path)),
	}
	for i, p := range path {
		scope.names[i] = p.Name
	}

	for i, s := range n.Slots {
		ref := config.SlotRef{Node: id, Origin: config.OriginNode, Index: i}
		out = scope.expandSlot(doc, s, ref, out)
	}
	if n.UseSlotsFrom != "" {
		if tpl, ok := doc.Template(n.UseSlotsFrom); ok {
			for i, s := range tpl {
				ref := config.SlotRef{Node: id, Origin: config.OriginTemplate, Template: n.UseSlotsFrom, Index: i}
				out = scope.expandSlot(doc, s, ref, out)
			}
		}
	}
	return out
}

// nearest returns the first non-empty value of get, walking path from the
// last element back to the root.
func nearest(path []*config.Node, get func(*config.Node) string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if v := get(path[i]); v != "" {
			return v
		}
	}
	return ""
}

type nodeScope struct {
	id     config.NodeID
	node   *config.Node
	sheet  string
	layout string
	names  []string
}

func (sc nodeScope) expandSlot(doc *config.Document, s *config.Slot, ref config.SlotRef, out []Instance) []Instance {
	addr := s.Addressing()
	if addr == nil {
		return out
	}

	layout := s.Layout
	if layout == "" {
		layout = sc.layout
	}
	col, src := sc.column(s)
	sheet := sc.sheet
	if s.Location != nil && s.Location.SheetName != "" {
		sheet = s.Location.SheetName
	}
	if sheet == "" {
		sheet = config.DefaultSheet
	}

	base := Instance{
		Sheet:     sheet,
		Col:       col,
		Layout:    layout,
		Offsets:   doc.Offsets(layout),
		NodePath:  sc.names,
		Node:      sc.id,
		Slot:      ref,
		Strategy:  addr.Strategy(),
		ColSource: src,
		Title:     s.Title,
		Rank:      s.Rank,
		Ranks:     slices.Clone(s.Ranks),
	}

	switch a := addr.(type) {
	case config.ExplicitPoints:
		for i, p := range a.Points {
			inst := base
			inst.Row = p.RowValue()
			inst.CoordIndex = i
			if p.Col != nil {
				inst.Col = *p.Col
				inst.ColSource = ColSlot
			}
			out = append(out, inst)
		}
	case config.RowList:
		for i, r := range a.Rows {
			inst := base
			inst.Row = r
			inst.CoordIndex = i
			out = append(out, inst)
		}
	case config.SingleRow:
		inst := base
		inst.Row = a.Row
		inst.CoordIndex = NoCoordIndex
		out = append(out, inst)
	case config.RowRange:
		for r := a.Start; r <= a.End; r++ {
			inst := base
			inst.Row = r
			inst.CoordIndex = r - a.Start
			out = append(out, inst)
		}
	}
	return out
}

// column applies the slot, owning node, default chain. Only the owning node
// lends its startCol; further ancestors do not.
func (sc nodeScope) column(s *config.Slot) (int, ColSource) {
	if c, ok := s.Col(); ok {
		return c, ColSlot
	}
	if c, ok := sc.node.StartCol(); ok {
		return c, ColAncestor
	}
	return DefaultCol, ColDefault
}
