// Package shared provides common utility functions used across multiple
// packages in the yangstage codebase.
package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ExpandPath resolves a leading "~" to the user's home directory and
// returns an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to determine home directory").
				WithCause(err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve path: " + path).
			WithCause(err)
	}
	return abs, nil
}

// ValidIdentifier reports whether a module identifier is safe to use as a
// file name.
func ValidIdentifier(identifier string) bool {
	if strings.TrimSpace(identifier) != identifier || identifier == "" {
		return false
	}
	if identifier == "." || identifier == ".." || strings.Contains(identifier, "..") {
		return false
	}
	return !strings.ContainsAny(identifier, `/\`+"\x00")
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
