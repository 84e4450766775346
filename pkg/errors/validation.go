package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxIDLength bounds node ids so they stay usable as DOT identifiers,
// cache keys and storage keys.
const maxIDLength = 256

// ValidateNodeID validates an explicit node id from a node specification.
// Empty ids are valid here: the chart generates one.
//
// The validation rules are intentionally conservative:
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No leading or trailing whitespace
func ValidateNodeID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "node id contains invalid control characters")
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidID, "node id %q has surrounding whitespace", id)
	}
	return nil
}

// ValidateChartName validates a chart name used as a storage key.
// It rejects names that could be used for path traversal by the file store.
func ValidateChartName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "chart name cannot be empty")
	}
	if len(name) > maxIDLength {
		return New(ErrCodeInvalidInput, "chart name too long (max %d characters)", maxIDLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "chart name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "chart name contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateDefinitionPath checks that a chart definition file has a supported
// extension (.json, .toml, .yaml or .yml).
func ValidateDefinitionPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "definition path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".toml", ".yaml", ".yml":
		return nil
	default:
		return New(ErrCodeInvalidPath, "unsupported definition format %q", filepath.Ext(path))
	}
}
