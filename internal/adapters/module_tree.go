package adapters

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

const revisionLayout = "2006-01-02"

// findModuleFiles returns every *.yang file below root.  Hidden
// directories and vendored build trees are skipped.
func findModuleFiles(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("device directory is empty")
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipModuleDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == moduleFileSuffix {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to scan device directory: " + root).
			WithCause(err)
	}
	return paths, nil
}

func shouldSkipModuleDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "build", "node_modules", "vendor":
		return true
	default:
		return false
	}
}

// parseRevision parses a YANG revision date.  Anything else yields the
// zero time.
func parseRevision(value string) time.Time {
	parsed, err := time.Parse(revisionLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// newerRevision orders revision strings newest first.  Dates sort before
// free-form versions, which fall back to reverse lexical order.
func newerRevision(a string, b string) bool {
	ta, tb := parseRevision(a), parseRevision(b)
	switch {
	case !ta.IsZero() && !tb.IsZero():
		return ta.After(tb)
	case !ta.IsZero():
		return true
	case !tb.IsZero():
		return false
	default:
		return a > b
	}
}
