package core

import (
	"context"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"yangstage/internal/ports"
	"yangstage/internal/types"
)

// DependencyResolver discovers the modules a root imports and fetches
// them through the catalogue.
type DependencyResolver struct {
	Catalogue  ports.SchemaCataloguePort
	Transitive bool
}

// DependencyResult is the outcome of one resolution pass.
type DependencyResult struct {
	Set        *types.DependencySet
	Unresolved []types.UnresolvedImport
}

func NewDependencyResolver(catalogue ports.SchemaCataloguePort, transitive bool) DependencyResolver {
	return DependencyResolver{
		Catalogue:  catalogue,
		Transitive: transitive,
	}
}

// Resolve walks the import graph from root breadth-first.  Every
// identifier is attempted at most once, so cycles and shared imports are
// tolerated.  Without Transitive only the root's own imports are fetched.
// Imports missing from the catalogue are reported in Unresolved.
func (r DependencyResolver) Resolve(ctx context.Context, root types.SchemaContent) (DependencyResult, error) {
	if r.Catalogue == nil {
		return DependencyResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency resolver requires a schema catalogue")
	}
	assert.NotEmpty(ctx, root.Identifier(), "root schema identifier must be set")

	type pending struct {
		identifier string
		importedBy string
	}
	result := DependencyResult{Set: types.NewDependencySet()}
	visited := map[string]struct{}{root.Identifier(): {}}
	var queue []pending
	enqueue := func(parent types.SchemaContent) {
		for _, name := range ExtractImports(parent.Text) {
			if _, seen := visited[name]; seen {
				continue
			}
			visited[name] = struct{}{}
			queue = append(queue, pending{identifier: name, importedBy: parent.Identifier()})
		}
	}
	enqueue(root)

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		content, ok, err := r.Catalogue.ResolveSchema(ctx, next.identifier)
		if err != nil {
			return DependencyResult{}, err
		}
		if !ok {
			missing := types.UnresolvedImport{Identifier: next.identifier, ImportedBy: next.importedBy}
			result.Unresolved = append(result.Unresolved, missing)
			log.Ctx(ctx).Warn().
				Str("schema", next.identifier).
				Str("imported_by", next.importedBy).
				Msg("imported schema not advertised by device")
			continue
		}
		result.Set.Add(content, next.importedBy)
		if r.Transitive {
			enqueue(content)
		}
	}

	log.Ctx(ctx).Debug().
		Str("root", root.Identifier()).
		Int("dependencies", result.Set.Len()).
		Int("unresolved", len(result.Unresolved)).
		Bool("transitive", r.Transitive).
		Msg("dependencies resolved")
	return result, nil
}
