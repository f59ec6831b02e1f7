package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"yangstage/internal/adapters"
	"yangstage/internal/core"
	"yangstage/internal/ports"
	"yangstage/internal/shared"
	"yangstage/internal/types"
)

// pipeline carries the per-run state shared by CreateConfig and
// FetchSchemas.
type pipeline struct {
	runID                string
	searchPath           string
	outputDir            string
	transitive           bool
	failOnMissingImports bool
	compiler             ports.CompilerPort
}

// CreateConfig resolves every requested root with its dependencies,
// stages them in the search path and compiles each root once.  Roots are
// processed one after another; the first fatal error stops the run.
func (s Service) CreateConfig(ctx context.Context, req CreateConfigRequest) (CreateConfigResult, error) {
	schemas, err := normalizeSchemas(req.Schemas)
	if err != nil {
		return CreateConfigResult{}, err
	}
	dataPath := strings.TrimSpace(req.DataPath)
	if dataPath == "" {
		return CreateConfigResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("data file is required")
	}
	data, err := s.Data.LoadData(dataPath)
	if err != nil {
		return CreateConfigResult{}, err
	}

	p, err := s.newPipeline(req.SearchPath, req.Transitive, req.FailOnMissingImports)
	if err != nil {
		return CreateConfigResult{}, err
	}
	p.compiler = s.Compiler(req.Compiler, req.CompilerFormat)
	executable := req.Compiler
	if strings.TrimSpace(executable) == "" {
		executable = adapters.DefaultCompiler
	}
	if _, ok := p.compiler.Locate(executable); !ok {
		return CreateConfigResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("compiler not found: " + executable + " is not in any PATH directory; install it (for pyang: pip install pyang)")
	}
	p.outputDir = p.searchPath
	if outputDir := strings.TrimSpace(req.OutputDir); outputDir != "" {
		p.outputDir, err = shared.ExpandPath(outputDir)
		if err != nil {
			return CreateConfigResult{}, err
		}
		if err := os.MkdirAll(p.outputDir, 0o750); err != nil {
			return CreateConfigResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create output directory").
				WithCause(err)
		}
	}

	ctx = runContext(ctx, p.runID)
	log.Ctx(ctx).Debug().Int("data_keys", len(data)).Strs("schemas", schemas).Msg("create-config started")

	modules, manifestPath, err := s.run(ctx, p, req.Device, schemas)
	if err != nil {
		return CreateConfigResult{}, err
	}
	return CreateConfigResult{
		RunID:        p.runID,
		Changed:      false,
		Warnings:     collectWarnings(modules),
		Modules:      modules,
		ManifestPath: manifestPath,
	}, nil
}

// FetchSchemas stages the requested roots and their dependencies without
// running the compiler.
func (s Service) FetchSchemas(ctx context.Context, req FetchRequest) (FetchResult, error) {
	schemas, err := normalizeSchemas(req.Schemas)
	if err != nil {
		return FetchResult{}, err
	}
	p, err := s.newPipeline(req.SearchPath, req.Transitive, req.FailOnMissingImports)
	if err != nil {
		return FetchResult{}, err
	}
	ctx = runContext(ctx, p.runID)

	modules, manifestPath, err := s.run(ctx, p, req.Device, schemas)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{
		RunID:        p.runID,
		Warnings:     collectWarnings(modules),
		Modules:      modules,
		ManifestPath: manifestPath,
	}, nil
}

func (s Service) newPipeline(searchPath string, transitive bool, failOnMissing bool) (pipeline, error) {
	if strings.TrimSpace(searchPath) == "" {
		searchPath = DefaultSearchPath
	}
	dir, err := shared.ExpandPath(searchPath)
	if err != nil {
		return pipeline{}, err
	}
	return pipeline{
		runID:                s.NewRunID(),
		searchPath:           dir,
		transitive:           transitive,
		failOnMissingImports: failOnMissing,
	}, nil
}

func (s Service) run(ctx context.Context, p pipeline, device types.DeviceConfig, schemas []string) ([]types.ModuleOutcome, string, error) {
	dispatcher, err := s.Dial(ctx, device, s.Decoder)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("closing device session failed")
		}
	}()

	catalogue := adapters.NewSchemaCatalogueAdapter(dispatcher, s.Decoder)
	resolver := core.NewDependencyResolver(catalogue, p.transitive)

	var outcomes []types.ModuleOutcome
	var entries []types.ManifestEntry
	for _, schema := range schemas {
		outcome, moduleEntries, err := s.processRoot(ctx, p, catalogue, resolver, schema)
		if err != nil {
			return nil, "", err
		}
		outcomes = append(outcomes, outcome)
		entries = append(entries, moduleEntries...)
	}

	manifestPath, err := s.writeManifest(p, entries)
	if err != nil {
		return nil, "", err
	}
	return outcomes, manifestPath, nil
}

func (s Service) processRoot(ctx context.Context, p pipeline, catalogue ports.SchemaCataloguePort, resolver core.DependencyResolver, schema string) (types.ModuleOutcome, []types.ManifestEntry, error) {
	root, found, err := catalogue.ResolveSchema(ctx, schema)
	if err != nil {
		return types.ModuleOutcome{}, nil, err
	}
	if !found {
		return types.ModuleOutcome{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("schema not found: " + schema + " is not advertised by the device")
	}

	deps, err := resolver.Resolve(ctx, root)
	if err != nil {
		return types.ModuleOutcome{}, nil, err
	}
	if p.failOnMissingImports && len(deps.Unresolved) > 0 {
		missing := make([]string, 0, len(deps.Unresolved))
		for _, u := range deps.Unresolved {
			missing = append(missing, u.Identifier)
		}
		return types.ModuleOutcome{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("unresolved imports for %s: %s", schema, strings.Join(missing, ", ")))
	}

	outcome := types.ModuleOutcome{
		Root:         schema,
		Dependencies: deps.Set.Identifiers(),
		Unresolved:   deps.Unresolved,
	}
	rootFiles, err := s.Materializer.MaterializeRoot(ctx, p.searchPath, []string{schema}, root.Text)
	if err != nil {
		return types.ModuleOutcome{}, nil, err
	}
	outcome.Files = append(outcome.Files, rootFiles...)
	entries := []types.ManifestEntry{manifestEntry(rootFiles[0], root.Descriptor, types.ModuleRoleRoot, "")}

	for _, dep := range deps.Set.Modules() {
		file, err := s.Materializer.Materialize(ctx, p.searchPath, dep.Identifier(), dep.Text)
		if err != nil {
			return types.ModuleOutcome{}, nil, err
		}
		outcome.Files = append(outcome.Files, file)
		importedBy := deps.Set.ImportedBy(dep.Identifier())
		entries = append(entries, manifestEntry(file, dep.Descriptor, types.ModuleRoleDependency, importedBy))
	}

	if p.compiler != nil {
		output, err := p.compiler.Compile(ctx, types.CompilationRequest{
			Root:       schema,
			SearchPath: p.searchPath,
			InputFile:  rootFiles[0].Path,
			OutputFile: filepath.Join(p.outputDir, schema+".xml"),
		})
		if err != nil {
			return types.ModuleOutcome{}, nil, err
		}
		outcome.Compiler = &output
		log.Ctx(ctx).Info().Str("schema", schema).Str("output", output.OutputFile).Msg("schema compiled")
	}
	return outcome, entries, nil
}

// writeManifest records this run's modules and keeps earlier entries whose
// files are still present in the search path.
func (s Service) writeManifest(p pipeline, entries []types.ManifestEntry) (string, error) {
	previous, err := s.Manifest.ReadManifest(p.searchPath)
	if err != nil {
		return "", err
	}
	merged := map[string]types.ManifestEntry{}
	for _, entry := range previous.Modules {
		if _, err := os.Stat(filepath.Join(p.searchPath, entry.File)); err != nil {
			continue
		}
		merged[entry.Identifier] = entry
	}
	current := map[string]types.ManifestEntry{}
	for _, entry := range entries {
		if existing, ok := current[entry.Identifier]; ok && existing.Role == types.ModuleRoleRoot {
			continue
		}
		current[entry.Identifier] = entry
	}
	for id, entry := range current {
		merged[id] = entry
	}
	modules := make([]types.ManifestEntry, 0, len(merged))
	for _, entry := range merged {
		modules = append(modules, entry)
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Identifier < modules[j].Identifier
	})
	return s.Manifest.WriteManifest(p.searchPath, types.SearchPathManifest{
		RunID:       p.runID,
		GeneratedAt: s.Clock().UTC(),
		Modules:     modules,
	})
}

func manifestEntry(file types.MaterializedFile, desc types.SchemaDescriptor, role types.ModuleRole, importedBy string) types.ManifestEntry {
	return types.ManifestEntry{
		Identifier: file.Identifier,
		File:       filepath.Base(file.Path),
		Digest:     file.Digest,
		Role:       role,
		ImportedBy: importedBy,
		Version:    desc.Version,
		Namespace:  desc.Namespace,
	}
}

// normalizeSchemas trims, validates and de-duplicates requested roots,
// keeping request order.
func normalizeSchemas(schemas []string) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, schema := range schemas {
		name := strings.TrimSpace(schema)
		if name == "" {
			continue
		}
		if !shared.ValidIdentifier(name) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid schema identifier: " + name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one schema is required")
	}
	return out, nil
}

func collectWarnings(modules []types.ModuleOutcome) []string {
	warnings := []string{}
	for _, module := range modules {
		for _, missing := range module.Unresolved {
			warnings = append(warnings, missing.String())
		}
	}
	return warnings
}

func runContext(ctx context.Context, runID string) context.Context {
	logger := log.With().Str("run_id", runID).Logger()
	return logger.WithContext(ctx)
}
