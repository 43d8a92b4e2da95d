package validate

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/themis/pkg/config"
)

func TestValidateDefaultIsClean(t *testing.T) {
	r := Validate(config.Default())
	if !r.OK() || len(r.Warnings) != 0 {
		t.Errorf("default document: errors %v, warnings %v", r.Errors, r.Warnings)
	}
}

func TestValidateRanks(t *testing.T) {
	doc := &config.Document{
		Hierarchy: []*config.Node{{Name: "root", SheetName: "S"}},
		Ranks: []config.Rank{
			{Abbr: "AUX", Name: "Auxilia"},
			{Abbr: "aux", Name: " auxilia "},
			{Abbr: "TIR", Name: ""},
		},
	}
	r := Validate(doc)
	wantErrors := []string{
		"Duplicate rank name:  auxilia ",
		"Rank with empty name detected.",
	}
	if !reflect.DeepEqual(r.Errors, wantErrors) {
		t.Errorf("Errors = %q, want %q", r.Errors, wantErrors)
	}
	if !slices.Contains(r.Warnings, "Duplicate rank abbr: aux") {
		t.Errorf("Warnings = %q", r.Warnings)
	}
}

func TestValidateReferences(t *testing.T) {
	doc := &config.Document{
		Layouts: map[string]*config.Layout{
			"NO_USER": {Offsets: map[string]config.Offset{"rank": {}}},
		},
		SlotTemplates: map[string][]*config.Slot{
			"T": {{Layout: "GONE", Location: &config.Location{Row: config.IntPtr(1)}}},
		},
		Hierarchy: []*config.Node{{
			Name:         "root",
			SheetName:    "S",
			Layout:       "MISSING",
			UseSlotsFrom: "NOPE",
			Slots:        []*config.Slot{{Layout: "ALSO_GONE", Location: &config.Location{Row: config.IntPtr(2)}}},
		}},
	}
	r := Validate(doc)
	want := []string{
		"Slot blueprint 'T' slot 0 references missing layout 'GONE'.",
		"Node 'root' uses missing layout 'MISSING'.",
		"Node 'root' uses missing slot blueprint 'NOPE'.",
		"Node 'root' slot 0 references missing layout 'ALSO_GONE'.",
	}
	if !reflect.DeepEqual(r.Errors, want) {
		t.Errorf("Errors =\n%s\nwant\n%s", strings.Join(r.Errors, "\n"), strings.Join(want, "\n"))
	}
	if !slices.Contains(r.Warnings, "Layout 'NO_USER' lacks 'username' offset.") {
		t.Errorf("missing username warning: %q", r.Warnings)
	}
}

func TestValidateSlotWarnings(t *testing.T) {
	doc := &config.Document{
		Ranks: []config.Rank{{Abbr: "DEC", Name: "Decanus"}},
		SlotTemplates: map[string][]*config.Slot{
			"T": {
				{Rank: "Decanus", Ranks: []string{"Decanus"}, Location: &config.Location{Row: config.IntPtr(1)}},
				{Rank: "Legatus", Location: &config.Location{Row: config.IntPtr(2)}},
				{Title: "floating"},
				{Location: &config.Location{StartRow: config.IntPtr(9), EndRow: config.IntPtr(3)}},
				{Count: config.IntPtr(5), Location: &config.Location{Rows: []int{1, 2}}},
				nil,
			},
		},
		Hierarchy: []*config.Node{{Name: "root", SheetName: "S"}},
	}
	r := Validate(doc)
	if !r.OK() {
		t.Errorf("unexpected errors: %q", r.Errors)
	}
	want := []string{
		"Slot blueprint 'T' slot 0 defines both rank and ranks.",
		"Slot blueprint 'T' slot 1 uses unknown rank 'Legatus'.",
		"Slot blueprint 'T' slot 2 has no location and produces no placements.",
		"Slot blueprint 'T' slot 3 has endRow before startRow.",
		"Slot blueprint 'T' slot 4 count 5 differs from its 2 placements.",
		"Slot blueprint 'T' slot 5 is empty.",
	}
	if !reflect.DeepEqual(r.Warnings, want) {
		t.Errorf("Warnings =\n%s\nwant\n%s", strings.Join(r.Warnings, "\n"), strings.Join(want, "\n"))
	}
}

func TestValidateCoordinatesBelowOne(t *testing.T) {
	tests := []struct {
		name string
		slot *config.Slot
		node *config.Location
		want string
	}{
		{
			name: "zero row",
			slot: &config.Slot{Location: &config.Location{Row: config.IntPtr(0)}},
			want: "Node 'root' slot 0 has row 0 below 1.",
		},
		{
			name: "negative column",
			slot: &config.Slot{Location: &config.Location{Row: config.IntPtr(4), Col: config.IntPtr(-2)}},
			want: "Node 'root' slot 0 has col -2 below 1.",
		},
		{
			name: "row list entry",
			slot: &config.Slot{Location: &config.Location{Rows: []int{3, 0}}},
			want: "Node 'root' slot 0 has rows[1] 0 below 1.",
		},
		{
			name: "range start",
			slot: &config.Slot{Location: &config.Location{StartRow: config.IntPtr(-1), EndRow: config.IntPtr(2)}},
			want: "Node 'root' slot 0 has startRow -1 below 1.",
		},
		{
			name: "explicit point",
			slot: &config.Slot{Locations: []config.Point{{Row: config.IntPtr(2), Col: config.IntPtr(0)}}},
			want: "Node 'root' slot 0 has locations[0].col 0 below 1.",
		},
		{
			name: "node start column",
			node: &config.Location{StartCol: config.IntPtr(0)},
			want: "Node 'root' has startCol 0 below 1.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &config.Node{Name: "root", SheetName: "S", Location: tt.node}
			if tt.slot != nil {
				n.Slots = []*config.Slot{tt.slot}
			}
			r := Validate(&config.Document{Hierarchy: []*config.Node{n}})
			if !slices.Contains(r.Warnings, tt.want) {
				t.Errorf("Warnings = %q, want %q", r.Warnings, tt.want)
			}
			if !r.OK() {
				t.Errorf("unexpected errors: %q", r.Errors)
			}
		})
	}
}

func TestValidateReportsDroppedValues(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "fractional row",
			json: `{"name":"root","sheetName":"S","slots":[{"location":{"row":12.5}}]}`,
			want: "Node 'root' slot 0: ignored location.row: 12.5 is not a whole number.",
		},
		{
			name: "word count",
			json: `{"name":"root","sheetName":"S","slots":[{"count":"four","location":{"row":1}}]}`,
			want: `Node 'root' slot 0: ignored count: "four" is not a whole number.`,
		},
		{
			name: "row list entry",
			json: `{"name":"root","sheetName":"S","slots":[{"location":{"rows":[1,true]}}]}`,
			want: "Node 'root' slot 0: ignored location.rows[1]: true is not a whole number.",
		},
		{
			name: "point column",
			json: `{"name":"root","sheetName":"S","slots":[{"locations":[{"row":2,"col":"B"}]}]}`,
			want: `Node 'root' slot 0: ignored locations[0].col: "B" is not a whole number.`,
		},
		{
			name: "node start column",
			json: `{"name":"root","sheetName":"S","location":{"startCol":[4]}}`,
			want: "Node 'root' location: ignored startCol: [4] is not a whole number.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n config.Node
			if err := json.Unmarshal([]byte(tt.json), &n); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			r := Validate(&config.Document{Hierarchy: []*config.Node{&n}})
			if !slices.Contains(r.Warnings, tt.want) {
				t.Errorf("Warnings =\n%s\nwant %q", strings.Join(r.Warnings, "\n"), tt.want)
			}
		})
	}
}

func TestValidateLayoutStructure(t *testing.T) {
	doc := &config.Document{
		Layouts: map[string]*config.Layout{
			"L": {Offsets: map[string]config.Offset{
				"username":   {Row: 0, Col: 1},
				"alias":      {Row: 0, Col: 1},
				"discord-id": {Row: 1, Col: 0},
				"far":        {Row: 0, Col: 150},
			}},
		},
		Hierarchy: []*config.Node{{Name: "root", SheetName: "S"}},
	}
	r := Validate(doc)
	joined := strings.Join(r.Warnings, "\n")
	for _, want := range []string{
		"fields 'alias' and 'username' share cell (0, 1)",
		`field key "discord-id"`,
		"offset for 'far' seems very large",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestValidateHierarchy(t *testing.T) {
	doc := &config.Document{
		Hierarchy: []*config.Node{
			{Name: "root", Children: []*config.Node{
				{Name: "", SheetName: "Dup"},
				{Name: "b", SheetName: "Dup"},
				{Name: "c", SheetName: "bad:name"},
			}},
		},
	}
	r := Validate(doc)
	if !reflect.DeepEqual(r.Errors, []string{"Organization node 0.0 missing name."}) {
		t.Errorf("Errors = %q", r.Errors)
	}
	joined := strings.Join(r.Warnings, "\n")
	for _, want := range []string{
		"Node 'root' has no sheetName",
		"Node 'b' reuses sheetName 'Dup' of node '0.0'.",
		"Node 'c': sheet name",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}

	if r := Validate(&config.Document{}); !slices.Contains(r.Warnings, "Organization hierarchy is empty.") {
		t.Errorf("empty hierarchy warnings = %q", r.Warnings)
	}
}

func TestValidateCustomFieldsAndEvents(t *testing.T) {
	doc := &config.Document{
		Hierarchy: []*config.Node{{Name: "root", SheetName: "S"}},
		CustomFields: []config.CustomField{
			{Key: "steam", Type: "string"},
			{Key: "steam", Type: "uuid"},
			{Key: ""},
		},
		EventTypes: []config.EventType{
			{Name: "Drill"},
			{Name: "Drill"},
			{Name: " "},
		},
	}
	r := Validate(doc)
	wantErrors := []string{
		"Duplicate custom field key: steam",
		"Custom field 2 missing key.",
		"Event type 2 missing name.",
	}
	if !reflect.DeepEqual(r.Errors, wantErrors) {
		t.Errorf("Errors = %q, want %q", r.Errors, wantErrors)
	}
	wantWarnings := []string{
		"Unknown custom field type: uuid",
		"Duplicate event type name: Drill",
	}
	if !reflect.DeepEqual(r.Warnings, wantWarnings) {
		t.Errorf("Warnings = %q, want %q", r.Warnings, wantWarnings)
	}
}

func TestValidateIsReadOnlyAndTotal(t *testing.T) {
	doc := &config.Document{
		Layouts:       map[string]*config.Layout{"nil": nil},
		SlotTemplates: map[string][]*config.Slot{"T": nil},
		Hierarchy:     []*config.Node{nil, {Name: "x", SheetName: "S", Slots: []*config.Slot{nil}, Children: []*config.Node{nil}}},
	}
	before := doc.Clone()
	Validate(doc)
	if !reflect.DeepEqual(doc, before) {
		t.Error("Validate mutated the document")
	}

	r := Validate(nil)
	if r.OK() {
		t.Error("Validate(nil) reported OK")
	}
}
