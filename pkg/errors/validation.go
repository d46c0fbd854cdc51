package errors

import (
	"strings"
	"unicode"
)

// ValidateLabel validates a node display label.
//
// The validation rules are intentionally conservative:
//   - No empty labels
//   - No control characters
//   - Maximum length of 256 characters
//
// Category-specific rules should be applied separately by the enricher.
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	if len(label) > 256 {
		return New(ErrCodeInvalidInput, "label too long (max 256 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidatePropertyPath validates a dot-separated property path.
// It ensures the path is non-empty and that no segment is blank,
// so "guardrails.maxTurns" is valid but "guardrails..maxTurns" is not.
func ValidatePropertyPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "property path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "property path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "property path contains invalid characters")
		}
	}

	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return New(ErrCodeInvalidPath, "property path contains an empty segment: %q", path)
		}
	}

	return nil
}

// ValidateSnapshotPath validates a snapshot file path.
// It rejects null bytes and control characters but allows both relative
// and absolute paths, since the snapshot location is operator-configured.
func ValidateSnapshotPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "snapshot path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "snapshot path contains invalid characters")
		}
	}

	return nil
}
