package config

import "slices"

// Slot is a placement template. A slot expands into one placement per point,
// row or range row of its addressing style.
type Slot struct {
	Layout string   `json:"layout,omitempty"`
	Rank   string   `json:"rank,omitempty"`
	Ranks  []string `json:"ranks,omitempty"`
	// Count describes how many members the slot is meant to hold. It never
	// drives how many placements are generated.
	Count     *int      `json:"count,omitempty"`
	Title     string    `json:"title,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Locations []Point   `json:"locations,omitzero"`

	problems []problem
}

// Location carries the row and column fields of a slot or, for nodes, the
// column inherited by the node's slots.
type Location struct {
	SheetName string `json:"sheetName,omitempty"`
	Col       *int   `json:"col,omitempty"`
	Row       *int   `json:"row,omitempty"`
	Rows      []int  `json:"rows,omitzero"`
	StartRow  *int   `json:"startRow,omitempty"`
	EndRow    *int   `json:"endRow,omitempty"`
	StartCol  *int   `json:"startCol,omitempty"`

	problems []problem
}

// Point is one explicit anchor of a slot. A point without a column inherits
// the slot's column.
type Point struct {
	Row *int `json:"row,omitempty"`
	Col *int `json:"col,omitempty"`
}

// RowValue returns the point's row, 1 when unset.
func (p Point) RowValue() int {
	if p.Row == nil {
		return 1
	}
	return *p.Row
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Col returns the slot's own column, if it defines one.
func (s *Slot) Col() (int, bool) {
	if s == nil || s.Location == nil || s.Location.Col == nil {
		return 0, false
	}
	return *s.Location.Col, true
}

// Clone returns a deep copy of the slot.
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	c.Ranks = slices.Clone(s.Ranks)
	if s.Count != nil {
		c.Count = IntPtr(*s.Count)
	}
	c.Location = s.Location.Clone()
	if s.Locations != nil {
		c.Locations = make([]Point, len(s.Locations))
		for i, p := range s.Locations {
			c.Locations[i] = Point{Row: clonePtr(p.Row), Col: clonePtr(p.Col)}
		}
	}
	return &c
}

// Clone returns a deep copy of the location.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	return &Location{
		SheetName: l.SheetName,
		Col:       clonePtr(l.Col),
		Row:       clonePtr(l.Row),
		Rows:      slices.Clone(l.Rows),
		StartRow:  clonePtr(l.StartRow),
		EndRow:    clonePtr(l.EndRow),
		StartCol:  clonePtr(l.StartCol),
		problems:  l.problems,
	}
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	return IntPtr(*p)
}

func cloneSlots(slots []*Slot) []*Slot {
	if slots == nil {
		return nil
	}
	out := make([]*Slot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}

// =============================================================================
// Addressing
// =============================================================================

// Strategy names the addressing style a placement was expressed with.
type Strategy string

// Addressing strategies, in precedence order.
const (
	StrategyExplicitPoints Strategy = "explicit-points"
	StrategyRowList        Strategy = "row-list"
	StrategySingleRow      Strategy = "single-row"
	StrategyRowRange       Strategy = "row-range"
)

// Addressing is the resolved shape of a slot's rows. The concrete type is one
// of [ExplicitPoints], [RowList], [SingleRow] or [RowRange].
type Addressing interface {
	// Strategy identifies the variant.
	Strategy() Strategy
	// Len is the number of placements the variant expands into.
	Len() int

	addressing()
}

// ExplicitPoints is an ordered list of anchors, each owning its own row and
// optionally its own column. Points aliases the slot's storage.
type ExplicitPoints struct{ Points []Point }

// RowList is an ordered list of rows that share one column. Rows aliases the
// slot's storage.
type RowList struct{ Rows []int }

// SingleRow is a single anchor row.
type SingleRow struct{ Row int }

// RowRange is an inclusive row span.
type RowRange struct{ Start, End int }

func (ExplicitPoints) Strategy() Strategy { return StrategyExplicitPoints }
func (RowList) Strategy() Strategy        { return StrategyRowList }
func (SingleRow) Strategy() Strategy      { return StrategySingleRow }
func (RowRange) Strategy() Strategy       { return StrategyRowRange }

func (a ExplicitPoints) Len() int { return len(a.Points) }
func (a RowList) Len() int        { return len(a.Rows) }
func (SingleRow) Len() int        { return 1 }

func (a RowRange) Len() int {
	if a.End < a.Start {
		return 0
	}
	return a.End - a.Start + 1
}

func (ExplicitPoints) addressing() {}
func (RowList) addressing()        {}
func (SingleRow) addressing()      {}
func (RowRange) addressing()       {}

// Addressing returns the slot's addressing variant, or nil when the slot
// matches none of the four styles. The first matching style wins.
func (s *Slot) Addressing() Addressing {
	if s == nil {
		return nil
	}
	if s.Locations != nil {
		return ExplicitPoints{Points: s.Locations}
	}
	loc := s.Location
	if loc == nil {
		return nil
	}
	switch {
	case loc.Rows != nil:
		return RowList{Rows: loc.Rows}
	case loc.Row != nil:
		return SingleRow{Row: *loc.Row}
	case loc.StartRow != nil && loc.EndRow != nil:
		return RowRange{Start: *loc.StartRow, End: *loc.EndRow}
	}
	return nil
}

// Placements returns how many placements the slot expands into.
func (s *Slot) Placements() int {
	if a := s.Addressing(); a != nil {
		return a.Len()
	}
	return 0
}
