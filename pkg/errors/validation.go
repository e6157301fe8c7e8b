package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateRange checks a half-open base-pair range.
// Zero-length ranges are legal; negative starts and inverted ranges are not.
func ValidateRange(start, end float64) error {
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return New(ErrCodeInvalidRange, "range bounds must be finite")
	}
	if start < 0 {
		return New(ErrCodeInvalidRange, "range start %v is negative", start)
	}
	if end < start {
		return New(ErrCodeInvalidRange, "range end %v before start %v", end, start)
	}
	return nil
}

// ValidateChromosome validates a chromosome name.
// Names are used in cache keys and file names, so path characters are rejected.
func ValidateChromosome(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "chromosome cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "chromosome name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "chromosome name contains invalid characters")
		}
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "chromosome name contains path characters: %q", name)
	}
	return nil
}

// ValidatePath validates a relative file path below a data directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
