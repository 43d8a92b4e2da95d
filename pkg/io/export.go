package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
)

// WriteJSON encodes doc as indented JSON to w. It does not close w.
func WriteJSON(w io.Writer, doc *config.Document) error {
	data, err := marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteJS encodes doc as "const THEMIS_CONFIG = {...};" to w.
func WriteJS(w io.Writer, doc *config.Document) error {
	data, err := marshal(doc)
	if err != nil {
		return err
	}
	data = bytes.TrimRight(data, "\n")
	if _, err := fmt.Fprintf(w, "const %s = %s;\n", JSConst, data); err != nil {
		return err
	}
	return nil
}

// Write encodes doc in the given format.
func Write(w io.Writer, doc *config.Document, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatJS:
		return WriteJS(w, doc)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", format)
}

func marshal(doc *config.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "nothing to write")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFile writes doc to path, choosing the format by extension. The file
// is replaced atomically.
func ExportFile(doc *config.Document, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc, FormatFromPath(path)); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
