package config

import (
	"encoding/json"
	"slices"
)

// ExpectedField is the field key every layout is expected to place.
const ExpectedField = "username"

// BuiltinFields are the field keys every roster understands.
var BuiltinFields = []string{
	"rank",
	"username",
	"discordId",
	"region",
	"joinDate",
	"LOAcheckbox",
	"BTcheckbox",
}

// FieldPalette returns the built-in field keys plus the offset keys of all
// custom fields, sorted and de-duplicated.
func FieldPalette(d *Document) []string {
	keys := slices.Clone(BuiltinFields)
	if d != nil {
		for _, f := range d.CustomFields {
			if f.OffsetKey != "" {
				keys = append(keys, f.OffsetKey)
			}
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Default returns the starter document: three layouts, one slot template,
// a three-level hierarchy that uses it, and the basic rank ladder.
func Default() *Document {
	squad := map[string]Offset{
		"rank":        {Row: 0, Col: 0},
		"username":    {Row: 0, Col: 1},
		"discordId":   {Row: 0, Col: 4},
		"region":      {Row: 0, Col: 5},
		"joinDate":    {Row: 0, Col: 6},
		"LOAcheckbox": {Row: 0, Col: 7},
	}
	withBT := make(map[string]Offset, len(squad)+1)
	for k, v := range squad {
		withBT[k] = v
	}
	withBT["BTcheckbox"] = Offset{Row: 0, Col: 8}

	return &Document{
		Layouts: map[string]*Layout{
			"BILLET_OFFSETS": {Offsets: map[string]Offset{
				"username":    {Row: 0, Col: 0},
				"region":      {Row: 1, Col: -1},
				"joinDate":    {Row: 1, Col: 0},
				"discordId":   {Row: 1, Col: 1},
				"LOAcheckbox": {Row: 1, Col: 2},
			}},
			"BILLET_NCO_OFFSETS": {Offsets: squad},
			"SQUAD_OFFSETS":      {Offsets: withBT},
		},
		SlotTemplates: map[string][]*Slot{
			"STANDARD_CONTUBERNIUM": {
				{
					Layout:   "BILLET_NCO_OFFSETS",
					Rank:     "Decanus",
					Count:    IntPtr(1),
					Location: &Location{Rows: []int{12}},
				},
				{
					Layout:   "BILLET_NCO_OFFSETS",
					Rank:     "Cornicen",
					Count:    IntPtr(2),
					Location: &Location{StartRow: IntPtr(14), EndRow: IntPtr(15)},
				},
				{
					Ranks:    []string{"Tirones", "Auxilia", "Milites", "Immunes"},
					Count:    IntPtr(23),
					Location: &Location{StartRow: IntPtr(17), EndRow: IntPtr(39)},
				},
			},
		},
		Hierarchy: []*Node{
			{
				Name:      "Legio VI",
				SheetName: "Legio VI",
				Children: []*Node{
					{
						Name:      "First Cohort",
						SheetName: "VI 1C",
						Children: []*Node{
							{
								Name:         "First Aquilia Contubernium",
								Shortcuts:    []string{"VI 1A"},
								UseSlotsFrom: "STANDARD_CONTUBERNIUM",
								Layout:       "SQUAD_OFFSETS",
								Location:     &Location{StartCol: IntPtr(4)},
							},
						},
					},
				},
			},
		},
		Ranks: []Rank{
			{Abbr: "AUX", Name: "Auxilia"},
			{Abbr: "TIR", Name: "Tirones"},
			{Abbr: "MIL", Name: "Milites"},
			{Abbr: "IMM", Name: "Immunes"},
			{Abbr: "DEC", Name: "Decanus"},
			{Abbr: "COR", Name: "Cornicen"},
		},
		CustomFields: []CustomField{},
		EventTypes: []EventType{
			{Name: "Combat Training", Aliases: []string{"CT"}},
			{Name: "Crate Run", Aliases: []string{"Crates"}},
		},
		Extra: map[string]json.RawMessage{
			"DATE_FORMAT":     json.RawMessage(`"MM/DD/YY"`),
			"LOCK_TIMEOUT_MS": json.RawMessage(`15000`),
			"VALIDATION_RULES": json.RawMessage(
				`{"USERNAME":{"REGEX":"^[a-zA-Z0-9_]+$","MIN_LENGTH":3,"MAX_LENGTH":20}}`),
		},
	}
}

// MergeDefaults fills every section d leaves out with the section from
// [Default]. Sections d defines are kept as they are.
func MergeDefaults(d *Document) *Document {
	base := Default()
	if d == nil {
		return base
	}
	if d.Layouts == nil {
		d.Layouts = base.Layouts
	}
	if d.SlotTemplates == nil {
		d.SlotTemplates = base.SlotTemplates
	}
	if d.Hierarchy == nil {
		d.Hierarchy = base.Hierarchy
	}
	if d.Ranks == nil {
		d.Ranks = base.Ranks
	}
	if d.CustomFields == nil {
		d.CustomFields = base.CustomFields
	}
	if d.EventTypes == nil {
		d.EventTypes = base.EventTypes
	}
	for k, v := range base.Extra {
		if _, ok := d.Extra[k]; !ok {
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[k] = v
		}
	}
	return d
}
