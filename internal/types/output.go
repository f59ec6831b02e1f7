package types

import (
	"fmt"
	"strings"
	"time"
)

// ModuleRole tells whether a materialized module was requested directly
// or pulled in through an import.
type ModuleRole string

const (
	ModuleRoleRoot       ModuleRole = "root"
	ModuleRoleDependency ModuleRole = "dependency"
)

// MaterializedFile is a module written into the search path.
type MaterializedFile struct {
	SearchPath string
	Identifier string
	Path       string
	Digest     string
	Unchanged  bool
}

// CompilationRequest is consumed once by the compiler invoker.
type CompilationRequest struct {
	Root       string
	SearchPath string
	InputFile  string
	OutputFile string
}

// CompilerOutput carries what the compiler printed on success.
type CompilerOutput struct {
	Command    []string
	Stdout     string
	OutputFile string
}

// CompilationError is returned when the compiler exits non-zero.
type CompilationError struct {
	Root     string
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CompilationError) Error() string {
	output := strings.TrimSpace(e.Stderr)
	if stdout := strings.TrimSpace(e.Stdout); stdout != "" {
		if output != "" {
			output += "\n"
		}
		output += stdout
	}
	return fmt.Sprintf("command '%s' returned with error (code %d) compiling %s: %s",
		strings.Join(e.Command, " "), e.ExitCode, e.Root, output)
}

// ModuleOutcome summarizes one requested root after a run.
type ModuleOutcome struct {
	Root         string
	Files        []MaterializedFile
	Dependencies []string
	Unresolved   []UnresolvedImport
	Compiler     *CompilerOutput
}

// ManifestEntry is one module recorded in the search path manifest.
type ManifestEntry struct {
	Identifier string     `yaml:"identifier"`
	File       string     `yaml:"file"`
	Digest     string     `yaml:"digest"`
	Role       ModuleRole `yaml:"role"`
	ImportedBy string     `yaml:"imported_by,omitempty"`
	Version    string     `yaml:"version,omitempty"`
	Namespace  string     `yaml:"namespace,omitempty"`
}

// SearchPathManifest indexes the content of a search path directory.
type SearchPathManifest struct {
	RunID       string          `yaml:"run_id"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Modules     []ManifestEntry `yaml:"modules"`
}
