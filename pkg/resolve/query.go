package resolve

import (
	"slices"
	"strings"
)

// Filter narrows a list of instances. Zero fields match everything.
type Filter struct {
	Sheet string
	// NodePath matches the full ">"-joined node path exactly.
	NodePath string
}

// Select returns the instances matching f, in their original order.
func Select(instances []Instance, f Filter) []Instance {
	var out []Instance
	for _, inst := range instances {
		if f.Sheet != "" && inst.Sheet != f.Sheet {
			continue
		}
		if f.NodePath != "" && inst.Path() != f.NodePath {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// Sheets returns the distinct sheet names in first-seen order.
func Sheets(instances []Instance) []string {
	var out []string
	for _, inst := range instances {
		if !slices.Contains(out, inst.Sheet) {
			out = append(out, inst.Sheet)
		}
	}
	return out
}

const (
	minBound    = 10
	boundMargin = 3
)

// Bounds returns the number of rows and columns needed to show every anchor
// and offset cell, with a small margin. Both are at least 13.
func Bounds(instances []Instance) (rows, cols int) {
	rows, cols = minBound, minBound
	for _, inst := range instances {
		rows = max(rows, inst.Row)
		cols = max(cols, inst.Col)
		for _, off := range inst.Offsets {
			rows = max(rows, inst.Row+off.Row)
			cols = max(cols, inst.Col+off.Col)
		}
	}
	return rows + boundMargin, cols + boundMargin
}

// Cell is the absolute position of one field of an instance.
type Cell struct {
	Field string `json:"field"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
}

// Cells returns the absolute cell of every offset field, sorted by field key.
func Cells(inst Instance) []Cell {
	out := make([]Cell, 0, len(inst.Offsets))
	for k, off := range inst.Offsets {
		out = append(out, Cell{Field: k, Row: inst.Row + off.Row, Col: inst.Col + off.Col})
	}
	slices.SortFunc(out, func(a, b Cell) int { return strings.Compare(a.Field, b.Field) })
	return out
}
