// Package pkg provides the core libraries for Themis roster placement.
//
// # Overview
//
// A Themis configuration describes an organization hierarchy, reusable slot
// blueprints and named layouts of field offsets. Resolving it yields the
// concrete sheet, row and column of every roster entry a spreadsheet tool
// writes. Edits made on those placements are written back into the
// configuration so the next resolve reproduces them.
//
// The pkg directory is organized into these areas:
//
//  1. [config] - The document model, node handles and fuzzy search
//  2. [resolve] - Inheritance and placement resolution
//  3. [edit] - Writing moves, detaches and slot changes back
//  4. [validate] - Structural errors and warnings
//  5. [io] - JSON and JavaScript document encodings
//  6. [workspace] - A concurrency-safe editing session over one document
//  7. [render] - Hierarchy diagrams and .xlsx placement previews
//  8. [settings] - Per-user preferences stored as TOML
//
// # Architecture
//
// The typical data flow:
//
//	themis.config.js / .json
//	         ↓
//	    [io] package (decode)
//	         ↓
//	    [resolve] package (placements)
//	         ↓
//	    [edit] package (moves) → [io] (encode)
//
// # Quick Start
//
// Resolve a configuration and move a placement:
//
//	import (
//	    "github.com/matzehuels/themis/pkg/edit"
//	    themisio "github.com/matzehuels/themis/pkg/io"
//	    "github.com/matzehuels/themis/pkg/resolve"
//	)
//
//	doc, err := themisio.ImportFile("themis.config.js")
//	if err != nil {
//	    return err
//	}
//	insts := resolve.Resolve(doc)
//	inst, _ := resolve.Find(insts, "0.0.0:t:0:0")
//	row := 20
//	edit.ApplyMove(doc, inst, edit.Move{Row: &row})
//	return themisio.ExportFile(doc, "themis.config.js")
//
// For interactive use, [workspace] wraps the same steps behind a mutex and
// re-resolves after every change.
//
// [config]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/config
// [resolve]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/resolve
// [edit]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/edit
// [validate]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/validate
// [io]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/io
// [workspace]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/workspace
// [render]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/render
// [settings]: https://pkg.go.dev/github.com/matzehuels/themis/pkg/settings
package pkg
