// Package io reads and writes organization documents.
//
// # Formats
//
// Two encodings of the same document are supported:
//
//   - [FormatJSON]: a plain JSON object with the top-level sections
//     (LAYOUT_BLUEPRINTS, SLOT_BLUEPRINTS, ORGANIZATION_HIERARCHY, ...).
//   - [FormatJS]: the same object wrapped as a JavaScript constant,
//     "const THEMIS_CONFIG = {...};", as consumed by spreadsheet scripts.
//
// The JS reader is lenient: it accepts the object with or without the const
// declaration and drops trailing commas before closing braces and brackets.
// Keys outside the known sections are kept and written back unchanged.
//
// # Import
//
// Use [ImportFile] to read a document from a path (the format follows the
// extension, see [FormatFromPath]) or [Read] to decode from any io.Reader:
//
//	doc, err := io.ImportFile("config.js")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [ExportFile] to write a document to a path or [Write] to encode to any
// io.Writer. Output is indented with two spaces and does not escape HTML
// characters. ExportFile writes to a temporary file in the target directory
// and renames it into place, so a failed write never truncates the original.
//
// Errors carry codes from package errors: FILE_NOT_FOUND for missing input,
// INVALID_DOCUMENT for content that does not decode, INVALID_FORMAT for an
// unknown format name.
package io
