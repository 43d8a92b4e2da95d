package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/resolve"
)

const jsDoc = `// generated
const THEMIS_CONFIG = {
  "DATE_FORMAT": "MM/DD/YY",
  "RANK_HIERARCHY": [
    {"abbr": "DEC", "name": "Decanus"},
  ],
  "ORGANIZATION_HIERARCHY": [
    {"name": "a, }", "sheetName": "S",},
  ],
};
`

func TestReadJS(t *testing.T) {
	doc, err := ReadJS(strings.NewReader(jsDoc))
	if err != nil {
		t.Fatalf("ReadJS: %v", err)
	}
	if len(doc.Ranks) != 1 || doc.Ranks[0].Name != "Decanus" {
		t.Errorf("Ranks = %v", doc.Ranks)
	}
	if doc.Hierarchy[0].Name != "a, }" {
		t.Errorf("string content altered: %q", doc.Hierarchy[0].Name)
	}
	if string(doc.Extra["DATE_FORMAT"]) != `"MM/DD/YY"` {
		t.Errorf("Extra = %v", doc.Extra)
	}
}

func TestSanitizeJS(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"const wrapper", `const THEMIS_CONFIG = {"a": 1};`, `{"a": 1}`},
		{"assignment without semicolon", `window.THEMIS_CONFIG = {"a": [1, 2,]}`, `{"a": [1, 2]}`},
		{"trailing comma with newline", "{\"a\": 1,\n}", "{\"a\": 1\n}"},
		{"comma in string kept", `{"a": "x,]"}`, `{"a": "x,]"}`},
		{"escaped quote", `{"a": "q\",}",}`, `{"a": "q\",}"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(SanitizeJS([]byte(tt.in))); got != tt.want {
				t.Errorf("SanitizeJS(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadJSONInvalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"RANK_HIERARCHY": 5}`))
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error = %v, want INVALID_DOCUMENT", err)
	}
	_, err = ReadJSON(strings.NewReader(`not json`))
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestReadJSONLenientNumbers(t *testing.T) {
	tests := []struct {
		name     string
		slot     string
		wantRow  *int
		wantRows []int
		count    *int
		problems int
	}{
		{name: "integral float row", slot: `{"location":{"row":12.0}}`, wantRow: config.IntPtr(12)},
		{name: "numeric string count", slot: `{"count":"4","location":{"row":3}}`, wantRow: config.IntPtr(3), count: config.IntPtr(4)},
		{name: "padded string row", slot: `{"location":{"row":" 7 "}}`, wantRow: config.IntPtr(7)},
		{name: "fractional row dropped", slot: `{"location":{"row":12.5}}`, problems: 1},
		{name: "word row dropped", slot: `{"location":{"row":"twelve"}}`, problems: 1},
		{name: "null row is absent", slot: `{"location":{"row":null}}`},
		{name: "bad list entry dropped", slot: `{"location":{"rows":[4,"x",6.0]}}`, wantRows: []int{4, 6}, problems: 1},
		{name: "rows not a list", slot: `{"location":{"rows":5,"row":2}}`, wantRow: config.IntPtr(2), problems: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"RANK_HIERARCHY":[{"abbr":"DEC","name":"Decanus"}],
				"ORGANIZATION_HIERARCHY":[{"name":"root","sheetName":"S","slots":[` + tt.slot + `]}]}`
			doc, err := ReadJSON(strings.NewReader(in))
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if len(doc.Ranks) != 1 {
				t.Errorf("other sections lost: Ranks = %v", doc.Ranks)
			}
			s := doc.Hierarchy[0].Slots[0]
			var row *int
			var rows []int
			if s.Location != nil {
				row, rows = s.Location.Row, s.Location.Rows
			}
			if !equalPtr(row, tt.wantRow) {
				t.Errorf("row = %v, want %v", deref(row), deref(tt.wantRow))
			}
			if tt.wantRows != nil && !slices.Equal(rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", rows, tt.wantRows)
			}
			if !equalPtr(s.Count, tt.count) {
				t.Errorf("count = %v, want %v", deref(s.Count), deref(tt.count))
			}
			if got := s.Problems(); len(got) != tt.problems {
				t.Errorf("Problems() = %q, want %d", got, tt.problems)
			}
		})
	}
}

func equalPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestEmptyListsSurviveRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		slot string
	}{
		{"empty rows shadow row", `{"location":{"rows":[],"row":7}}`},
		{"empty locations shadow rows", `{"locations":[],"location":{"rows":[3,4]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"ORGANIZATION_HIERARCHY":[{"name":"root","sheetName":"S","slots":[` + tt.slot + `]}]}`
			doc, err := ReadJSON(strings.NewReader(in))
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if n := len(resolve.Resolve(doc)); n != 0 {
				t.Fatalf("before save: %d placements, want 0", n)
			}

			var buf bytes.Buffer
			if err := WriteJSON(&buf, doc); err != nil {
				t.Fatalf("WriteJSON: %v", err)
			}
			again, err := ReadJSON(&buf)
			if err != nil {
				t.Fatalf("ReadJSON after save: %v", err)
			}
			if n := len(resolve.Resolve(again)); n != 0 {
				t.Errorf("after save: %d placements, want 0", n)
			}
		})
	}
}

func TestAbsentListsStayAbsent(t *testing.T) {
	doc := &config.Document{Hierarchy: []*config.Node{{
		Name:  "root",
		Slots: []*config.Slot{{Location: &config.Location{Row: config.IntPtr(2)}}},
	}}}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	for _, key := range []string{`"rows"`, `"locations"`} {
		if strings.Contains(buf.String(), key) {
			t.Errorf("unset %s written:\n%s", key, buf.String())
		}
	}
}

func TestWriteJSONShape(t *testing.T) {
	doc := &config.Document{
		Ranks: []config.Rank{{Abbr: "A&B", Name: "<Lead>"}},
		Extra: map[string]json.RawMessage{"NOTE": json.RawMessage(`"x<y"`)},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\n  \"NOTE\": \"x<y\"") {
		t.Errorf("expected two-space indent and raw extra key:\n%s", out)
	}
	if !strings.Contains(out, `"<Lead>"`) || !strings.Contains(out, `"A&B"`) {
		t.Errorf("HTML characters escaped:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("missing trailing newline: %q", out)
	}
}

func TestWriteJSRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJS(&buf, config.Default()); err != nil {
		t.Fatalf("WriteJS: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "const THEMIS_CONFIG = {\n") || !strings.HasSuffix(out, "};\n") {
		t.Errorf("unexpected JS framing: %q ... %q", out[:30], out[len(out)-10:])
	}
	doc, err := Read(&buf, FormatJS)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Hierarchy) != 1 || doc.Hierarchy[0].Name != "Legio VI" {
		t.Errorf("round trip lost hierarchy: %+v", doc.Hierarchy)
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.js", FormatJS},
		{"CONFIG.JS", FormatJS},
		{"config.json", FormatJSON},
		{"config", FormatJSON},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}

	if f, err := ParseFormat(".JS"); err != nil || f != FormatJS {
		t.Errorf("ParseFormat(.JS) = %s, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(yaml) error = %v", err)
	}
	if _, err := Read(strings.NewReader("{}"), "yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Read(yaml) error = %v", err)
	}
}

func TestImportExportFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"doc.json", "doc.js"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := ExportFile(config.Default(), path); err != nil {
				t.Fatalf("ExportFile: %v", err)
			}
			doc, err := ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile: %v", err)
			}
			if doc.SlotTemplates["STANDARD_CONTUBERNIUM"][2].Location.EndRow == nil {
				t.Error("template lost its range")
			}
		})
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("temp files left behind: %v", entries)
	}

	_, err := ImportFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := ImportFile(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path error = %v", err)
	}
}
