package resolve

import (
	"reflect"
	"testing"

	"github.com/matzehuels/themis/pkg/config"
)

func TestSelectAndSheets(t *testing.T) {
	instances := []Instance{
		{Sheet: "A", NodePath: []string{"x"}},
		{Sheet: "B", NodePath: []string{"x", "y"}},
		{Sheet: "A", NodePath: []string{"x", "y"}},
	}

	if got := Sheets(instances); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Sheets = %v", got)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"empty filter", Filter{}, 3},
		{"by sheet", Filter{Sheet: "A"}, 2},
		{"by path", Filter{NodePath: "x>y"}, 2},
		{"both", Filter{Sheet: "A", NodePath: "x>y"}, 1},
		{"path is exact", Filter{NodePath: "x>"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(instances, tt.filter); len(got) != tt.want {
				t.Errorf("Select = %d instances, want %d", len(got), tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	rows, cols := Bounds(nil)
	if rows != 13 || cols != 13 {
		t.Errorf("empty Bounds = %d, %d; want 13, 13", rows, cols)
	}

	instances := []Instance{
		{Row: 30, Col: 2},
		{Row: 5, Col: 4, Offsets: map[string]config.Offset{"far": {Row: 1, Col: 20}}},
	}
	rows, cols = Bounds(instances)
	if rows != 33 || cols != 27 {
		t.Errorf("Bounds = %d, %d; want 33, 27", rows, cols)
	}
}

func TestCells(t *testing.T) {
	inst := Instance{Row: 12, Col: 4, Offsets: map[string]config.Offset{
		"username": {Row: 0, Col: 1},
		"region":   {Row: 1, Col: -1},
	}}
	want := []Cell{
		{Field: "region", Row: 13, Col: 3},
		{Field: "username", Row: 12, Col: 5},
	}
	if got := Cells(inst); !reflect.DeepEqual(got, want) {
		t.Errorf("Cells = %v, want %v", got, want)
	}
}

func TestInstanceLabel(t *testing.T) {
	tests := []struct {
		inst Instance
		want string
	}{
		{Instance{Title: "Lead", Rank: "Decanus"}, "Lead"},
		{Instance{Rank: "Decanus"}, "Decanus"},
		{Instance{Ranks: []string{"Tirones", "Milites"}}, "Tirones"},
		{Instance{}, ""},
	}
	for _, tt := range tests {
		if got := tt.inst.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
