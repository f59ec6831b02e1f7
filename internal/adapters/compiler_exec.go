package adapters

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"yangstage/internal/ports"
	"yangstage/internal/shared"
	"yangstage/internal/types"
)

const (
	DefaultCompiler       = "pyang"
	DefaultCompilerFormat = "sample-xml-skeleton"
)

// ExecCompilerAdapter runs an external YANG compiler as
// <tool> -p <searchPath> -f <format> -o <output> <input>.
type ExecCompilerAdapter struct {
	Executable string
	Format     string

	// PathEnv returns the executable search list; defaults to $PATH.
	PathEnv func() string

	mu      sync.Mutex
	located map[string]string
}

func NewExecCompilerAdapter(executable string, format string) *ExecCompilerAdapter {
	if strings.TrimSpace(executable) == "" {
		executable = DefaultCompiler
	}
	if strings.TrimSpace(format) == "" {
		format = DefaultCompilerFormat
	}
	return &ExecCompilerAdapter{
		Executable: executable,
		Format:     format,
		PathEnv:    func() string { return os.Getenv("PATH") },
		located:    map[string]string{},
	}
}

// Locate scans the executable search directories in order and returns
// the first regular file named name.  Absolute or relative paths are
// checked directly.  Hits are memoized.
func (a *ExecCompilerAdapter) Locate(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if path, ok := a.located[name]; ok {
		return path, true
	}
	if strings.ContainsRune(name, filepath.Separator) {
		if isRegularFile(name) {
			a.located[name] = name
			return name, true
		}
		return "", false
	}
	pathEnv := ""
	if a.PathEnv != nil {
		pathEnv = a.PathEnv()
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isRegularFile(candidate) {
			a.located[name] = candidate
			return candidate, true
		}
	}
	return "", false
}

func (a *ExecCompilerAdapter) Compile(ctx context.Context, req types.CompilationRequest) (types.CompilerOutput, error) {
	if strings.TrimSpace(req.InputFile) == "" || strings.TrimSpace(req.OutputFile) == "" {
		return types.CompilerOutput{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("compilation request for " + req.Root + " is missing input or output file")
	}
	tool, ok := a.Locate(a.Executable)
	if !ok {
		return types.CompilerOutput{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("compiler not found: " + a.Executable + " is not in any PATH directory; install it (for pyang: pip install pyang)")
	}

	args := []string{"-p", req.SearchPath, "-f", a.Format, "-o", req.OutputFile, req.InputFile}
	command := append([]string{tool}, args...)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Ctx(ctx).Debug().Strs("command", command).Msg("running compiler")
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return types.CompilerOutput{}, &types.CompilationError{
				Root:     req.Root,
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return types.CompilerOutput{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to run compiler '" + strings.Join(command, " ") + "'").
			WithCause(shared.CommandError(stderr.Bytes(), err))
	}
	return types.CompilerOutput{
		Command:    command,
		Stdout:     stdout.String(),
		OutputFile: req.OutputFile,
	}, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

var _ ports.CompilerPort = (*ExecCompilerAdapter)(nil)
