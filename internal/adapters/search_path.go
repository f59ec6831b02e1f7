package adapters

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"yangstage/internal/ports"
	"yangstage/internal/shared"
	"yangstage/internal/types"
)

const (
	moduleFileSuffix = ".yang"
	manifestFileName = ".yangstage-manifest.yaml"
)

// SearchPathAdapter writes module files into a compiler search path.
// Files are create-or-overwrite and are never cleaned up.
type SearchPathAdapter struct{}

func NewSearchPathAdapter() SearchPathAdapter {
	return SearchPathAdapter{}
}

func (a SearchPathAdapter) ModuleFile(searchPath string, identifier string) (string, error) {
	if !shared.ValidIdentifier(identifier) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid schema identifier: " + identifier)
	}
	dir, err := shared.ExpandPath(searchPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, identifier+moduleFileSuffix), nil
}

func (a SearchPathAdapter) Materialize(ctx context.Context, searchPath string, identifier string, content string) (types.MaterializedFile, error) {
	path, err := a.ModuleFile(searchPath, identifier)
	if err != nil {
		return types.MaterializedFile{}, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return types.MaterializedFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create search path directory: " + dir).
			WithCause(err)
	}

	data := []byte(content)
	sum := sha256.Sum256(data)
	file := types.MaterializedFile{
		SearchPath: dir,
		Identifier: identifier,
		Path:       path,
		Digest:     "sha256:" + hex.EncodeToString(sum[:]),
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		file.Unchanged = true
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.MaterializedFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write schema file: " + path).
			WithCause(err)
	}
	log.Ctx(ctx).Debug().
		Str("schema", identifier).
		Str("path", path).
		Bool("unchanged", file.Unchanged).
		Msg("schema materialized")
	return file, nil
}

func (a SearchPathAdapter) MaterializeRoot(ctx context.Context, searchPath string, identifiers []string, content string) ([]types.MaterializedFile, error) {
	files := make([]types.MaterializedFile, 0, len(identifiers))
	for _, identifier := range identifiers {
		file, err := a.Materialize(ctx, searchPath, identifier, content)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// WriteManifest stores the manifest next to the module files.
func (a SearchPathAdapter) WriteManifest(searchPath string, manifest types.SearchPathManifest) (string, error) {
	dir, err := shared.ExpandPath(searchPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create search path directory: " + dir).
			WithCause(err)
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode search path manifest").
			WithCause(err)
	}
	path := filepath.Join(dir, manifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write search path manifest: " + path).
			WithCause(err)
	}
	return path, nil
}

// ReadManifest returns an empty manifest when none has been written yet.
func (a SearchPathAdapter) ReadManifest(searchPath string) (types.SearchPathManifest, error) {
	dir, err := shared.ExpandPath(searchPath)
	if err != nil {
		return types.SearchPathManifest{}, err
	}
	path := filepath.Join(dir, manifestFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.SearchPathManifest{}, nil
	}
	if err != nil {
		return types.SearchPathManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read search path manifest: " + path).
			WithCause(err)
	}
	var manifest types.SearchPathManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return types.SearchPathManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse search path manifest: " + path).
			WithCause(err)
	}
	return manifest, nil
}

var (
	_ ports.MaterializerPort = SearchPathAdapter{}
	_ ports.ManifestPort     = SearchPathAdapter{}
)
