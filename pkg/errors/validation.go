package errors

import (
	"unicode"
)

// maxNameLength bounds element and dataset names accepted from external input.
const maxNameLength = 256

// ValidateElementName validates an element identifier read from a dataset.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateElementName(name string) error {
	if name == "" {
		return New(ErrCodeMalformedInput, "element name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeMalformedInput, "element name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedInput, "element name contains invalid control characters")
		}
	}

	return nil
}

// ValidateDatasetName validates an optional dataset label.
// An empty name is accepted.
func ValidateDatasetName(name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "dataset name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "dataset name contains invalid characters")
		}
	}
	return nil
}
