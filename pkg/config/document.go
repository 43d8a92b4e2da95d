package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Top-level document keys.
const (
	KeyLayouts       = "LAYOUT_BLUEPRINTS"
	KeySlotTemplates = "SLOT_BLUEPRINTS"
	KeyHierarchy     = "ORGANIZATION_HIERARCHY"
	KeyRanks         = "RANK_HIERARCHY"
	KeyCustomFields  = "CUSTOM_FIELDS"
	KeyEventTypes    = "EVENT_TYPE_DEFINITIONS"
)

// DefaultSheet is the sheet used when neither a slot nor any ancestor names one.
const DefaultSheet = "Sheet1"

// Document is the in-memory form of a configuration file.
type Document struct {
	Layouts       map[string]*Layout
	SlotTemplates map[string][]*Slot
	Hierarchy     []*Node
	Ranks         []Rank
	CustomFields  []CustomField
	EventTypes    []EventType

	// Extra holds top-level sections the model does not interpret.
	Extra map[string]json.RawMessage
}

// Layout is a named mapping of field key to offset from an anchor cell.
type Layout struct {
	Offsets map[string]Offset `json:"offsets"`
}

// Offset is a signed position relative to an anchor cell.
type Offset struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Rank is one entry of the rank hierarchy, lowest first.
type Rank struct {
	Abbr string `json:"abbr"`
	Name string `json:"name"`
}

// CustomField declares an extra roster column.
type CustomField struct {
	Key          string `json:"key"`
	Label        string `json:"label,omitempty"`
	Type         string `json:"type,omitempty"`
	Required     bool   `json:"required,omitempty"`
	DefaultValue any    `json:"defaultValue,omitempty"`
	OffsetKey    string `json:"offsetKey,omitempty"`
}

// EventType is a named event with alternative spellings.
type EventType struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// UnmarshalJSON decodes the known sections and keeps every other key in Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Document{}
	fields := map[string]any{
		KeyLayouts:       &d.Layouts,
		KeySlotTemplates: &d.SlotTemplates,
		KeyHierarchy:     &d.Hierarchy,
		KeyRanks:         &d.Ranks,
		KeyCustomFields:  &d.CustomFields,
		KeyEventTypes:    &d.EventTypes,
	}
	for key, msg := range raw {
		dst, known := fields[key]
		if !known {
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[key] = msg
			continue
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON encodes the document as a single object. Sections that were
// absent on load stay absent.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+6)
	for k, v := range d.Extra {
		out[k] = v
	}
	if d.Layouts != nil {
		out[KeyLayouts] = d.Layouts
	}
	if d.SlotTemplates != nil {
		out[KeySlotTemplates] = d.SlotTemplates
	}
	if d.Hierarchy != nil {
		out[KeyHierarchy] = d.Hierarchy
	}
	if d.Ranks != nil {
		out[KeyRanks] = d.Ranks
	}
	if d.CustomFields != nil {
		out[KeyCustomFields] = d.CustomFields
	}
	if d.EventTypes != nil {
		out[KeyEventTypes] = d.EventTypes
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Offsets returns the offset table of the named layout. An unknown layout
// yields an empty, non-nil map.
func (d *Document) Offsets(layout string) map[string]Offset {
	if l, ok := d.Layouts[layout]; ok && l != nil && l.Offsets != nil {
		return l.Offsets
	}
	return map[string]Offset{}
}

// HasLayout reports whether a layout with the given name exists.
func (d *Document) HasLayout(name string) bool {
	_, ok := d.Layouts[name]
	return ok
}

// LayoutNames returns the layout names in sorted order.
func (d *Document) LayoutNames() []string {
	return slices.Sorted(maps.Keys(d.Layouts))
}

// SetOffset assigns the offset of a field, creating the layout if needed.
func (d *Document) SetOffset(layout, key string, off Offset) {
	if d.Layouts == nil {
		d.Layouts = make(map[string]*Layout)
	}
	l := d.Layouts[layout]
	if l == nil {
		l = &Layout{}
		d.Layouts[layout] = l
	}
	if l.Offsets == nil {
		l.Offsets = make(map[string]Offset)
	}
	l.Offsets[key] = off
}

// RemoveOffset deletes a field from a layout and reports whether it existed.
func (d *Document) RemoveOffset(layout, key string) bool {
	l := d.Layouts[layout]
	if l == nil {
		return false
	}
	if _, ok := l.Offsets[key]; !ok {
		return false
	}
	delete(l.Offsets, key)
	return true
}

// Template returns the slots of a named slot template.
func (d *Document) Template(name string) ([]*Slot, bool) {
	slots, ok := d.SlotTemplates[name]
	return slots, ok
}

// TemplateNames returns the slot template names in sorted order.
func (d *Document) TemplateNames() []string {
	return slices.Sorted(maps.Keys(d.SlotTemplates))
}

// Clone returns a deep copy that shares no mutable state with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{}
	if d.Layouts != nil {
		c.Layouts = make(map[string]*Layout, len(d.Layouts))
		for name, l := range d.Layouts {
			if l == nil {
				c.Layouts[name] = nil
				continue
			}
			var offsets map[string]Offset
			if l.Offsets != nil {
				offsets = maps.Clone(l.Offsets)
			}
			c.Layouts[name] = &Layout{Offsets: offsets}
		}
	}
	if d.SlotTemplates != nil {
		c.SlotTemplates = make(map[string][]*Slot, len(d.SlotTemplates))
		for name, slots := range d.SlotTemplates {
			c.SlotTemplates[name] = cloneSlots(slots)
		}
	}
	if d.Hierarchy != nil {
		c.Hierarchy = make([]*Node, len(d.Hierarchy))
		for i, n := range d.Hierarchy {
			c.Hierarchy[i] = n.Clone()
		}
	}
	c.Ranks = slices.Clone(d.Ranks)
	c.CustomFields = slices.Clone(d.CustomFields)
	if d.EventTypes != nil {
		c.EventTypes = make([]EventType, len(d.EventTypes))
		for i, ev := range d.EventTypes {
			c.EventTypes[i] = EventType{Name: ev.Name, Aliases: slices.Clone(ev.Aliases)}
		}
	}
	if d.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			c.Extra[k] = slices.Clone(v)
		}
	}
	return c
}
