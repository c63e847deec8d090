package errors

import (
	"strings"
	"unicode"
)

// MaxLabelLength bounds node labels accepted from documents.
const MaxLabelLength = 256

// ValidateLabel validates a node label taken from an external document.
// Labels are opaque to the layout, but they end up inside SVG text and DOT
// strings, so control characters other than tab are rejected.
func ValidateLabel(label string) error {
	if len(label) > MaxLabelLength {
		return New(ErrCodeStructuralInput, "label too long (max %d characters)", MaxLabelLength)
	}
	for _, r := range label {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeStructuralInput, "label %q contains control characters", label)
		}
	}
	return nil
}

// ValidatePath validates an output path derived from user input.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateOneOf checks that value is one of the allowed values and reports
// an error with the given code otherwise.
func ValidateOneOf(code Code, kind, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(code, "invalid %s: %q (must be one of: %s)", kind, value, strings.Join(allowed, ", "))
}
