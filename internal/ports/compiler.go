package ports

import (
	"context"

	"yangstage/internal/types"
)

// CompilerPort runs the external schema compiler.
type CompilerPort interface {
	// Locate returns the first match for name in the executable search
	// directories, or false.
	Locate(name string) (string, bool)

	Compile(ctx context.Context, req types.CompilationRequest) (types.CompilerOutput, error)
}
