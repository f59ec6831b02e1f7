package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yangstage/internal/adapters"
	"yangstage/internal/core"
	"yangstage/internal/types"
)

func TestResolveIntegration(t *testing.T) {
	root := repoRoot(t)
	decoder := adapters.NewXMLDecoder()
	dispatcher := adapters.NewDirectoryDispatcher(filepath.Join(root, "tests/testdata/device"), decoder)
	catalogue := adapters.NewSchemaCatalogueAdapter(dispatcher, decoder)

	rootModule, ok, err := catalogue.ResolveSchema(t.Context(), "openconfig-interfaces")
	require.NoError(t, err)
	require.True(t, ok)

	resolver := core.NewDependencyResolver(catalogue, true)
	result, err := resolver.Resolve(t.Context(), rootModule)
	require.NoError(t, err)
	require.Equal(t, 4, result.Set.Len())
	assert.Equal(t, []types.UnresolvedImport{
		{Identifier: "openconfig-extensions", ImportedBy: "openconfig-interfaces"},
	}, result.Unresolved)
	assert.Equal(t, 1, dispatcher.Requests["catalogue"])
	assert.Equal(t, 5, dispatcher.Requests["get-schema"])

	searchPath := filepath.Join(t.TempDir(), "yang")
	materializer := adapters.NewSearchPathAdapter()
	_, err = materializer.MaterializeRoot(t.Context(), searchPath, []string{rootModule.Identifier()}, rootModule.Text)
	require.NoError(t, err)
	for _, dep := range result.Set.Modules() {
		_, err := materializer.Materialize(t.Context(), searchPath, dep.Identifier(), dep.Text)
		require.NoError(t, err)
	}

	for _, id := range append([]string{"openconfig-interfaces"}, result.Set.Identifiers()...) {
		_, err = os.Stat(filepath.Join(searchPath, id+".yang"))
		require.NoError(t, err, id)
	}
}

func repoRoot(t *testing.T) string {
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}
