// Package config defines the typed organizational configuration document.
//
// A document describes where roster placements live in a set of spreadsheets.
// It is sparse on purpose: layouts and slot templates are declared once and
// shared by many organizational units, and every unit may override the sheet,
// layout or column its descendants inherit.
//
// # Sections
//
//	{
//	  "LAYOUT_BLUEPRINTS": {"SQUAD_OFFSETS": {"offsets": {"username": {"row": 0, "col": 1}}}},
//	  "SLOT_BLUEPRINTS":   {"STANDARD_CONTUBERNIUM": [{"rank": "Decanus", "location": {"rows": [12]}}]},
//	  "ORGANIZATION_HIERARCHY": [{"name": "Legio VI", "sheetName": "Legio VI", "children": [...]}],
//	  "RANK_HIERARCHY": [{"abbr": "AUX", "name": "Auxilia"}]
//	}
//
// Top-level keys the model does not know about are kept in [Document.Extra] and
// written back unchanged, so a document survives a load/save cycle.
//
// # Addressing
//
// A [Slot] expresses its rows in one of four shapes. [Slot.Addressing] turns
// the loosely typed JSON shape into exactly one [Addressing] variant using a
// fixed precedence:
//
//  1. locations             → [ExplicitPoints]
//  2. location.rows         → [RowList]
//  3. location.row          → [SingleRow]
//  4. location.startRow/endRow → [RowRange]
//
// # Handles
//
// Nodes and slots are addressed by stable handles rather than pointers:
// [NodeID] is the path of child indices from the hierarchy root list and
// [SlotRef] names a slot inside a node's own list or inside the template the
// node references. [Document.Node] and [Document.Slot] resolve a handle against
// the live document and report false once it no longer points anywhere.
//
// # Concurrency
//
// A Document is a plain mutable value. It is not safe for concurrent writes;
// callers serialize edits (see package workspace).
package config
