package ports

import (
	"context"

	"yangstage/internal/types"
)

// MaterializerPort stages module text in a local search path.
type MaterializerPort interface {
	// Materialize writes content to <searchPath>/<identifier>.yang,
	// creating the directory if needed and overwriting any existing file.
	Materialize(ctx context.Context, searchPath string, identifier string, content string) (types.MaterializedFile, error)

	// MaterializeRoot writes the same content under every identifier.
	MaterializeRoot(ctx context.Context, searchPath string, identifiers []string, content string) ([]types.MaterializedFile, error)

	// ModuleFile returns the path a module would be written to.
	ModuleFile(searchPath string, identifier string) (string, error)
}

// ManifestPort records what a run placed in the search path.
type ManifestPort interface {
	WriteManifest(searchPath string, manifest types.SearchPathManifest) (string, error)
	ReadManifest(searchPath string) (types.SearchPathManifest, error)
}
