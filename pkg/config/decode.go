package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Numeric location fields are read leniently. A whole number, written as an
// integer, an integral float such as 12.0 or a numeric string such as "4",
// is accepted. Any other value is dropped and recorded as a problem on the
// slot or location that held it, so one mistyped field never rejects the
// whole document.

// Problems returns the values that were dropped while decoding the slot,
// including those of its location.
func (s *Slot) Problems() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, p := range s.problems {
		out = append(out, p.String())
	}
	if s.Location != nil {
		for _, p := range s.Location.problems {
			p.field = joinField("location", p.field)
			out = append(out, p.String())
		}
	}
	return out
}

// Problems returns the values that were dropped while decoding the location.
func (l *Location) Problems() []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, p := range l.problems {
		out = append(out, p.String())
	}
	return out
}

// problem is one value dropped by the lenient decoder.
type problem struct {
	field  string
	value  string
	reason string
}

func (p problem) String() string {
	if p.field == "" {
		return fmt.Sprintf("%s %s", p.value, p.reason)
	}
	return fmt.Sprintf("%s: %s %s", p.field, p.value, p.reason)
}

func joinField(parent, field string) string {
	switch {
	case field == "":
		return parent
	case strings.HasPrefix(field, "["):
		return parent + field
	}
	return parent + "." + field
}

// UnmarshalJSON decodes a slot, reading count and locations leniently.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Layout    string          `json:"layout"`
		Rank      string          `json:"rank"`
		Ranks     []string        `json:"ranks"`
		Count     json.RawMessage `json:"count"`
		Title     string          `json:"title"`
		Location  *Location       `json:"location"`
		Locations json.RawMessage `json:"locations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var d lenient
	*s = Slot{
		Layout:   raw.Layout,
		Rank:     raw.Rank,
		Ranks:    raw.Ranks,
		Count:    d.int("count", raw.Count),
		Title:    raw.Title,
		Location: raw.Location,
	}
	s.Locations = d.points("locations", raw.Locations)
	s.problems = d.problems
	return nil
}

// UnmarshalJSON decodes a location. A value that is not an object yields an
// empty location with a recorded problem.
func (l *Location) UnmarshalJSON(data []byte) error {
	var raw struct {
		SheetName string          `json:"sheetName"`
		Col       json.RawMessage `json:"col"`
		Row       json.RawMessage `json:"row"`
		Rows      json.RawMessage `json:"rows"`
		StartRow  json.RawMessage `json:"startRow"`
		EndRow    json.RawMessage `json:"endRow"`
		StartCol  json.RawMessage `json:"startCol"`
	}
	var d lenient
	if !isObject(data) {
		d.drop("", data, "is not an object")
		*l = Location{problems: d.problems}
		return nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Location{
		SheetName: raw.SheetName,
		Col:       d.int("col", raw.Col),
		Row:       d.int("row", raw.Row),
		Rows:      d.ints("rows", raw.Rows),
		StartRow:  d.int("startRow", raw.StartRow),
		EndRow:    d.int("endRow", raw.EndRow),
		StartCol:  d.int("startCol", raw.StartCol),
	}
	l.problems = d.problems
	return nil
}

// UnmarshalJSON decodes a point, dropping row or column values that are
// not whole numbers.
func (p *Point) UnmarshalJSON(data []byte) error {
	var d lenient
	pt, _ := d.point("", data)
	*p = pt
	return nil
}

// lenient collects the problems found while decoding one value.
type lenient struct {
	problems []problem
}

func (d *lenient) drop(field string, raw json.RawMessage, reason string) {
	v := string(bytes.TrimSpace(raw))
	if len(v) > 32 {
		v = v[:29] + "..."
	}
	d.problems = append(d.problems, problem{field: field, value: v, reason: reason})
}

func (d *lenient) int(field string, raw json.RawMessage) *int {
	if isAbsent(raw) {
		return nil
	}
	n, ok := parseWholeNumber(raw)
	if !ok {
		d.drop(field, raw, "is not a whole number")
		return nil
	}
	return &n
}

// ints decodes a list of whole numbers. Invalid entries are dropped one by
// one; a present empty list stays non-nil.
func (d *lenient) ints(field string, raw json.RawMessage) []int {
	if isAbsent(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.drop(field, raw, "is not a list")
		return nil
	}
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, ok := parseWholeNumber(item)
		if !ok {
			d.drop(fmt.Sprintf("%s[%d]", field, i), item, "is not a whole number")
			continue
		}
		out = append(out, n)
	}
	return out
}

func (d *lenient) points(field string, raw json.RawMessage) []Point {
	if isAbsent(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.drop(field, raw, "is not a list")
		return nil
	}
	out := make([]Point, 0, len(items))
	for i, item := range items {
		if p, ok := d.point(fmt.Sprintf("%s[%d]", field, i), item); ok {
			out = append(out, p)
		}
	}
	return out
}

func (d *lenient) point(field string, raw json.RawMessage) (Point, bool) {
	var pt struct {
		Row json.RawMessage `json:"row"`
		Col json.RawMessage `json:"col"`
	}
	if !isObject(raw) || json.Unmarshal(raw, &pt) != nil {
		d.drop(field, raw, "is not an object")
		return Point{}, false
	}
	return Point{
		Row: d.int(joinField(field, "row"), pt.Row),
		Col: d.int(joinField(field, "col"), pt.Col),
	}, true
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// parseWholeNumber accepts a JSON number or a JSON string holding a number,
// as long as the value has no fractional part and fits in an int.
func parseWholeNumber(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var num json.Number
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		num = json.Number(strings.TrimSpace(s))
	case c == '-' || (c >= '0' && c <= '9'):
		num = json.Number(raw)
	default:
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
