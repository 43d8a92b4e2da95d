// Package workbook previews resolved placements as spreadsheet cells.
//
// [Write] produces an .xlsx file with one worksheet per target sheet: each
// placement's anchor cell shows its title or rank and each field cell shows
// the field key the roster would write there. [Grid] builds the same picture
// as a text matrix for terminals.
package workbook

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/resolve"
)

// Options configures workbook output.
type Options struct {
	// Sheets limits output to the named sheets. Empty writes every sheet
	// that receives a placement.
	Sheets []string

	// AnchorsOnly skips field cells.
	AnchorsOnly bool
}

// Mark is the text of one previewed cell.
type Mark struct {
	Row    int
	Col    int
	Text   string
	Anchor bool
}

// Marks returns the cells the placements on sheet occupy. Anchors win over
// field cells at the same position; otherwise the later placement wins.
// Cells that fall left of column 1 or above row 1 are dropped.
func Marks(instances []resolve.Instance, sheet string, anchorsOnly bool) []Mark {
	type pos struct{ row, col int }
	byPos := make(map[pos]Mark)
	var order []pos

	put := func(m Mark) {
		if m.Row < 1 || m.Col < 1 {
			return
		}
		p := pos{m.Row, m.Col}
		prev, seen := byPos[p]
		if !seen {
			order = append(order, p)
		} else if prev.Anchor && !m.Anchor {
			return
		}
		byPos[p] = m
	}

	for _, inst := range resolve.Select(instances, resolve.Filter{Sheet: sheet}) {
		if !anchorsOnly {
			for _, c := range resolve.Cells(inst) {
				put(Mark{Row: c.Row, Col: c.Col, Text: c.Field})
			}
		}
		label := inst.Label()
		if label == "" {
			label = "*"
		}
		put(Mark{Row: inst.Row, Col: inst.Col, Text: label, Anchor: true})
	}

	out := make([]Mark, 0, len(order))
	for _, p := range order {
		out = append(out, byPos[p])
	}
	slices.SortStableFunc(out, func(a, b Mark) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return out
}

// Grid returns the placements on sheet as a rows-by-columns text matrix
// sized by [resolve.Bounds]. Grid[r-1][c-1] holds the text of cell (r, c).
func Grid(instances []resolve.Instance, sheet string) [][]string {
	selected := resolve.Select(instances, resolve.Filter{Sheet: sheet})
	rows, cols := resolve.Bounds(selected)
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
	}
	for _, m := range Marks(selected, sheet, false) {
		grid[m.Row-1][m.Col-1] = m.Text
	}
	return grid
}

// Write encodes the placements as an .xlsx workbook to w.
func Write(w io.Writer, instances []resolve.Instance, opts Options) error {
	sheets := opts.Sheets
	if len(sheets) == 0 {
		sheets = resolve.Sheets(instances)
	}
	for _, name := range sheets {
		if err := errors.ValidateSheetName(name); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, Marks(instances, name, opts.AnchorsOnly), styles); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type styleSet struct {
	anchor int
	field  int
}

func newStyles(f *excelize.File) (styleSet, error) {
	anchor, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Border: []excelize.Border{
			{Type: "left", Color: "#5B9BD5", Style: 1},
			{Type: "right", Color: "#5B9BD5", Style: 1},
			{Type: "top", Color: "#5B9BD5", Style: 1},
			{Type: "bottom", Color: "#5B9BD5", Style: 1},
		},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("anchor style: %w", err)
	}
	field, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "#7F7F7F"},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("field style: %w", err)
	}
	return styleSet{anchor: anchor, field: field}, nil
}

func writeSheet(f *excelize.File, sheet string, marks []Mark, styles styleSet) error {
	maxCol := 1
	for _, m := range marks {
		cell, err := excelize.CoordinatesToCellName(m.Col, m.Row)
		if err != nil {
			return fmt.Errorf("cell R%dC%d: %w", m.Row, m.Col, err)
		}
		if err := f.SetCellValue(sheet, cell, m.Text); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
		style := styles.field
		if m.Anchor {
			style = styles.anchor
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style %s!%s: %w", sheet, cell, err)
		}
		maxCol = max(maxCol, m.Col)
	}
	last, err := excelize.ColumnNumberToName(maxCol)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 14)
}
