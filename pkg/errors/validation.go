package errors

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateOutputPath validates the path a rendered image is written to.
//
// The rules only catch obviously broken input; whether the file can actually be
// created is left to the writer, which reports ErrCodeWriteFailed:
//   - No empty paths
//   - No control characters or null bytes
//   - Maximum length of 4096 characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}

// ValidateFinite rejects NaN and infinite values for the named parameter.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidRegion, "%s must be a finite number, got %v", name, v)
	}
	return nil
}

// presetNameRegex matches preset identifiers such as "seahorse-valley".
var presetNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidatePresetName validates the name of a predefined region.
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "preset name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "preset name too long (max 64 characters)")
	}
	if !presetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid preset name: %q", name)
	}
	return nil
}
