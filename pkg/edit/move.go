package edit

import (
	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/resolve"
)

// Move is a new position for a placement. A nil Row or Col keeps the current
// value.
type Move struct {
	Row *int `json:"row,omitempty"`
	Col *int `json:"col,omitempty"`
	// PreferSlotColumn writes a new column to the slot even when the
	// placement borrowed its column from the owning node.
	PreferSlotColumn bool `json:"preferSlotColumn,omitempty"`
}

// ApplyMove writes mv into the slot behind inst and reports whether the
// document changed. The row is written before the column. If inst no longer
// matches the document (the slot is gone, uses another addressing style, or
// the coordinate index is out of range) nothing is written.
func ApplyMove(doc *config.Document, inst resolve.Instance, mv Move) bool {
	if doc == nil {
		return false
	}
	slot, ok := doc.Slot(inst.Slot)
	if !ok {
		return false
	}
	addr := slot.Addressing()
	if addr == nil || addr.Strategy() != inst.Strategy {
		return false
	}
	if inst.Strategy == config.StrategySingleRow {
		if inst.CoordIndex != resolve.NoCoordIndex {
			return false
		}
	} else if inst.CoordIndex < 0 || inst.CoordIndex >= addr.Len() {
		return false
	}

	if p, ok := addr.(config.ExplicitPoints); ok {
		return movePoint(&p.Points[inst.CoordIndex], mv)
	}

	// Pick the column owner before touching anything so a missing node
	// cannot leave the row half-written.
	var writeCol func(int) bool
	if mv.Col != nil {
		if writeCol = columnWriter(doc, slot, inst, mv.PreferSlotColumn); writeCol == nil {
			return false
		}
	}

	changed := false
	if mv.Row != nil {
		changed = moveRow(slot.Location, addr, inst.CoordIndex, *mv.Row)
	}
	if writeCol != nil {
		changed = writeCol(*mv.Col) || changed
	}
	return changed
}

func movePoint(p *config.Point, mv Move) bool {
	changed := false
	if mv.Row != nil {
		changed = setInt(&p.Row, *mv.Row)
	}
	if mv.Col != nil {
		changed = setInt(&p.Col, *mv.Col) || changed
	}
	return changed
}

func moveRow(loc *config.Location, addr config.Addressing, coord, row int) bool {
	switch a := addr.(type) {
	case config.RowList:
		if a.Rows[coord] == row {
			return false
		}
		a.Rows[coord] = row
		return true
	case config.SingleRow:
		return setInt(&loc.Row, row)
	case config.RowRange:
		delta := (row - coord) - a.Start
		if delta == 0 {
			return false
		}
		*loc.StartRow += delta
		*loc.EndRow += delta
		return true
	}
	return false
}

// columnWriter returns the writer for a new column: the slot's col when the
// slot already has one, when the caller asks for it, or when the column was
// the hardcoded default; otherwise the owning node's startCol.
func columnWriter(doc *config.Document, slot *config.Slot, inst resolve.Instance, preferSlot bool) func(int) bool {
	if _, has := slot.Col(); has || preferSlot || inst.ColSource == resolve.ColDefault {
		return func(col int) bool { return setInt(&slot.Location.Col, col) }
	}
	node, ok := doc.Node(inst.Node)
	if !ok {
		return nil
	}
	return func(col int) bool {
		if cur, ok := node.StartCol(); ok && cur == col {
			return false
		}
		node.SetStartCol(col)
		return true
	}
}

func setInt(dst **int, v int) bool {
	if *dst != nil && **dst == v {
		return false
	}
	*dst = config.IntPtr(v)
	return true
}
