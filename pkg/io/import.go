package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatJS   Format = "js"
)

// JSConst is the name of the JavaScript constant holding the document.
const JSConst = "THEMIS_CONFIG"

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatJSON, FormatJS:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q (want json or js)", s)
}

// FormatFromPath picks the format from a file extension: ".js" is
// [FormatJS], anything else [FormatJSON].
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".js") {
		return FormatJS
	}
	return FormatJSON
}

// ReadJSON decodes a JSON document from r. It does not close r.
func ReadJSON(r io.Reader) (*config.Document, error) {
	var doc config.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, fmt.Errorf("decode: %w", err), "invalid JSON document")
	}
	return &doc, nil
}

// ReadJS decodes a document written as a JavaScript constant. The const
// declaration is optional and trailing commas are ignored.
func ReadJS(r io.Reader) (*config.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return ReadJSON(bytes.NewReader(SanitizeJS(data)))
}

// Read decodes a document in the given format.
func Read(r io.Reader, format Format) (*config.Document, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatJS:
		return ReadJS(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", format)
}

// ImportFile reads a document from path, choosing the format by extension.
func ImportFile(path string) (*config.Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no document at %s", path)
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	doc, err := Read(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

var jsWrapper = regexp.MustCompile(`(?s)` + JSConst + `\s*=\s*(\{.*\})\s*;?\s*$`)

// SanitizeJS turns a JavaScript object literal into JSON: it unwraps the
// "THEMIS_CONFIG = {...};" assignment if present and removes trailing commas
// outside string literals.
func SanitizeJS(data []byte) []byte {
	if m := jsWrapper.FindSubmatch(data); m != nil {
		data = m[1]
	}
	return stripTrailingCommas(bytes.TrimSpace(data))
}

func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(data) && isSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
