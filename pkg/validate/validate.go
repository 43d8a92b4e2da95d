// Package validate checks a document for referential and structural problems.
//
// [Validate] is read-only and total: it never mutates the document and never
// fails, whatever shape the document is in. Problems are reported as
// human-readable messages in two categories. Errors break resolution
// correctness (a slot pointing at a layout that does not exist); warnings are
// recommendations (a layout without a username field).
//
// Messages are ordered deterministically: ranks, layouts and templates (each
// by name), the hierarchy in depth-first pre-order, custom fields, then event
// types.
package validate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
)

// Result holds the messages found by [Validate].
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether no errors were found. Warnings do not count.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Limits used by the structural checks.
const (
	// MaxOffset is the largest offset component considered plausible.
	MaxOffset = 100
)

// CustomFieldTypes are the recognized custom field types. An empty type
// means "string".
var CustomFieldTypes = []string{"string", "integer", "float", "boolean", "date"}

// Validate checks doc and returns every problem found.
func Validate(doc *config.Document) Result {
	r := Result{Errors: []string{}, Warnings: []string{}}
	if doc == nil {
		r.errorf("Document is empty.")
		return r
	}
	v := validator{doc: doc, res: &r}
	v.ranks()
	v.layouts()
	v.templates()
	v.hierarchy()
	v.customFields()
	v.eventTypes()
	return r
}

type validator struct {
	doc *config.Document
	res *Result
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (v validator) ranks() {
	names := map[string]bool{}
	abbrs := map[string]bool{}
	for _, rk := range v.doc.Ranks {
		nm := fold(rk.Name)
		if nm == "" {
			v.res.errorf("Rank with empty name detected.")
		} else if names[nm] {
			v.res.errorf("Duplicate rank name: %s", rk.Name)
		}
		names[nm] = true

		if ab := fold(rk.Abbr); ab != "" {
			if abbrs[ab] {
				v.res.warnf("Duplicate rank abbr: %s", rk.Abbr)
			}
			abbrs[ab] = true
		}
	}
}

func (v validator) rankKnown(name string) bool {
	want := fold(name)
	for _, rk := range v.doc.Ranks {
		if fold(rk.Name) == want {
			return true
		}
	}
	return false
}

func (v validator) layouts() {
	for _, name := range slices.Sorted(maps.Keys(v.doc.Layouts)) {
		var offsets map[string]config.Offset
		if l := v.doc.Layouts[name]; l != nil {
			offsets = l.Offsets
		}
		if _, ok := offsets[config.ExpectedField]; !ok {
			v.res.warnf("Layout '%s' lacks '%s' offset.", name, config.ExpectedField)
		}

		cells := map[config.Offset]string{}
		for _, key := range slices.Sorted(maps.Keys(offsets)) {
			off := offsets[key]
			if err := errors.ValidateFieldKey(key); err != nil {
				v.res.warnf("Layout '%s': %s.", name, errors.UserMessage(err))
			}
			if other, dup := cells[off]; dup {
				v.res.warnf("Layout '%s': fields '%s' and '%s' share cell (%d, %d).", name, other, key, off.Row, off.Col)
			} else {
				cells[off] = key
			}
			if abs(off.Row) > MaxOffset || abs(off.Col) > MaxOffset {
				v.res.warnf("Layout '%s': offset for '%s' seems very large (row=%d, col=%d).", name, key, off.Row, off.Col)
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (v validator) templates() {
	for _, name := range slices.Sorted(maps.Keys(v.doc.SlotTemplates)) {
		for i, s := range v.doc.SlotTemplates[name] {
			v.slot(fmt.Sprintf("Slot blueprint '%s' slot %d", name, i), s)
		}
	}
}

// slot checks one slot; where names it in messages.
func (v validator) slot(where string, s *config.Slot) {
	if s == nil {
		v.res.warnf("%s is empty.", where)
		return
	}
	if s.Layout != "" && !v.doc.HasLayout(s.Layout) {
		v.res.errorf("%s references missing layout '%s'.", where, s.Layout)
	}
	if s.Rank != "" && len(s.Ranks) > 0 {
		v.res.warnf("%s defines both rank and ranks.", where)
	}
	if len(v.doc.Ranks) > 0 {
		for _, rk := range append([]string{s.Rank}, s.Ranks...) {
			if rk != "" && !v.rankKnown(rk) {
				v.res.warnf("%s uses unknown rank '%s'.", where, rk)
			}
		}
	}

	addr := s.Addressing()
	switch {
	case addr == nil:
		v.res.warnf("%s has no location and produces no placements.", where)
	case addr.Strategy() == config.StrategyRowRange && addr.Len() == 0:
		v.res.warnf("%s has endRow before startRow.", where)
	}
	if s.Count != nil && *s.Count != s.Placements() {
		v.res.warnf("%s count %d differs from its %d placements.", where, *s.Count, s.Placements())
	}
	if s.Location != nil && s.Location.SheetName != "" {
		if err := errors.ValidateSheetName(s.Location.SheetName); err != nil {
			v.res.warnf("%s: %s.", where, errors.UserMessage(err))
		}
	}
	v.coordinates(where, s)
	for _, p := range s.Problems() {
		v.res.warnf("%s: ignored %s.", where, p)
	}
}

// coordinates warns about rows and columns below 1, which no sheet has.
func (v validator) coordinates(where string, s *config.Slot) {
	if loc := s.Location; loc != nil {
		v.positive(where, "col", loc.Col)
		v.positive(where, "row", loc.Row)
		for i := range loc.Rows {
			v.positive(where, fmt.Sprintf("rows[%d]", i), &loc.Rows[i])
		}
		v.positive(where, "startRow", loc.StartRow)
		v.positive(where, "endRow", loc.EndRow)
	}
	for i, p := range s.Locations {
		v.positive(where, fmt.Sprintf("locations[%d].row", i), p.Row)
		v.positive(where, fmt.Sprintf("locations[%d].col", i), p.Col)
	}
}

func (v validator) positive(where, field string, n *int) {
	if n != nil && *n < 1 {
		v.res.warnf("%s has %s %d below 1.", where, field, *n)
	}
}

func (v validator) hierarchy() {
	if len(v.doc.Hierarchy) == 0 {
		v.res.warnf("Organization hierarchy is empty.")
		return
	}
	sheets := map[string]string{}
	config.Walk(v.doc.Hierarchy, func(id config.NodeID, path []*config.Node) {
		n := path[len(path)-1]
		label := n.Name
		if strings.TrimSpace(n.Name) == "" {
			v.res.errorf("Organization node %s missing name.", id)
			label = string(id)
		}
		if len(path) == 1 && n.SheetName == "" {
			v.res.warnf("Node '%s' has no sheetName; its slots fall back to %s.", label, config.DefaultSheet)
		}
		if n.SheetName != "" {
			if err := errors.ValidateSheetName(n.SheetName); err != nil {
				v.res.warnf("Node '%s': %s.", label, errors.UserMessage(err))
			}
			if other, dup := sheets[n.SheetName]; dup {
				v.res.warnf("Node '%s' reuses sheetName '%s' of node '%s'.", label, n.SheetName, other)
			} else {
				sheets[n.SheetName] = label
			}
		}
		if n.Layout != "" && !v.doc.HasLayout(n.Layout) {
			v.res.errorf("Node '%s' uses missing layout '%s'.", label, n.Layout)
		}
		if n.Location != nil {
			v.positive(fmt.Sprintf("Node '%s'", label), "startCol", n.Location.StartCol)
			for _, p := range n.Location.Problems() {
				v.res.warnf("Node '%s' location: ignored %s.", label, p)
			}
		}
		if n.UseSlotsFrom != "" {
			if _, ok := v.doc.Template(n.UseSlotsFrom); !ok {
				v.res.errorf("Node '%s' uses missing slot blueprint '%s'.", label, n.UseSlotsFrom)
			}
		}
		for i, s := range n.Slots {
			v.slot(fmt.Sprintf("Node '%s' slot %d", label, i), s)
		}
	})
}

func (v validator) customFields() {
	seen := map[string]bool{}
	for i, f := range v.doc.CustomFields {
		if f.Key == "" {
			v.res.errorf("Custom field %d missing key.", i)
		} else if seen[f.Key] {
			v.res.errorf("Duplicate custom field key: %s", f.Key)
		}
		seen[f.Key] = true

		typ := strings.ToLower(f.Type)
		if typ != "" && !slices.Contains(CustomFieldTypes, typ) {
			v.res.warnf("Unknown custom field type: %s", f.Type)
		}
		if f.OffsetKey != "" {
			if err := errors.ValidateFieldKey(f.OffsetKey); err != nil {
				v.res.warnf("Custom field '%s': %s.", f.Key, errors.UserMessage(err))
			}
		}
	}
}

func (v validator) eventTypes() {
	seen := map[string]bool{}
	for i, ev := range v.doc.EventTypes {
		if strings.TrimSpace(ev.Name) == "" {
			v.res.errorf("Event type %d missing name.", i)
			continue
		}
		if seen[ev.Name] {
			v.res.warnf("Duplicate event type name: %s", ev.Name)
		}
		seen[ev.Name] = true
	}
}
