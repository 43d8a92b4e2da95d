package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidatePath validates a document file path given on the command line or
// over the API.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// MaxSheetNameLength is the longest worksheet name spreadsheet programs accept.
const MaxSheetNameLength = 31

// ValidateSheetName validates a worksheet name against the rules spreadsheet
// programs enforce:
//   - Not empty
//   - At most 31 characters
//   - None of : \ / ? * [ ]
//   - Does not start or end with an apostrophe
//   - Is not the reserved name "History"
func ValidateSheetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSheetName, "sheet name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxSheetNameLength {
		return New(ErrCodeInvalidSheetName, "sheet name %q too long (%d > %d characters)", name, n, MaxSheetNameLength)
	}
	if i := strings.IndexAny(name, `:\/?*[]`); i >= 0 {
		return New(ErrCodeInvalidSheetName, "sheet name %q contains %q", name, name[i])
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return New(ErrCodeInvalidSheetName, "sheet name %q cannot start or end with an apostrophe", name)
	}
	if strings.EqualFold(name, "History") {
		return New(ErrCodeInvalidSheetName, "sheet name %q is reserved", name)
	}
	return nil
}

// ValidateNodeName validates the name of an organization node. Node names
// are joined with ">" to form paths, so the separator is rejected.
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "node name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}
	if strings.Contains(name, ">") {
		return New(ErrCodeInvalidInput, "node name cannot contain '>'")
	}
	return nil
}

// fieldKeyRegex matches field keys usable as layout offsets.
var fieldKeyRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateFieldKey validates a layout field key.
func ValidateFieldKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "field key cannot be empty")
	}
	if !fieldKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidInput, "field key %q should be letters, digits and underscores", key)
	}
	return nil
}
