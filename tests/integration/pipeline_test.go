package integration

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yangstage/internal/adapters"
	"yangstage/internal/app"
	"yangstage/internal/ports"
	"yangstage/internal/types"
	"yangstage/tests/testutil"
)

func newService(compilerDir string) app.Service {
	service := app.NewService()
	service.Compiler = func(executable string, format string) ports.CompilerPort {
		compiler := adapters.NewExecCompilerAdapter(executable, format)
		compiler.PathEnv = func() string { return compilerDir }
		return compiler
	}
	return service
}

func TestCreateConfigFromDeviceDirectory(t *testing.T) {
	compilerDir := testutil.InstallFakeCompiler(t, "pyang")
	searchPath := filepath.Join(t.TempDir(), "yang")
	service := newService(compilerDir)

	result, err := service.CreateConfig(t.Context(), app.CreateConfigRequest{
		Device:     types.DeviceConfig{Dir: testutil.DeviceDir(t)},
		Schemas:    []string{"openconfig-interfaces"},
		DataPath:   testutil.DataFile(t),
		SearchPath: searchPath,
		Transitive: true,
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, []string{
		"import openconfig-extensions (from openconfig-interfaces) not advertised by device",
	}, result.Warnings)

	require.Len(t, result.Modules, 1)
	want := []string{"ietf-interfaces", "openconfig-yang-types", "openconfig-types", "ietf-yang-types"}
	if diff := cmp.Diff(want, result.Modules[0].Dependencies); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(searchPath)
	require.NoError(t, err)
	var staged []string
	for _, entry := range entries {
		staged = append(staged, entry.Name())
	}
	sort.Strings(staged)
	assert.Equal(t, []string{
		".yangstage-manifest.yaml",
		"ietf-interfaces.yang",
		"ietf-yang-types.yang",
		"openconfig-interfaces.xml",
		"openconfig-interfaces.yang",
		"openconfig-types.yang",
		"openconfig-yang-types.yang",
	}, staged)
	assert.Len(t, testutil.CompilerCalls(t, compilerDir), 1)

	manifest, err := adapters.NewSearchPathAdapter().ReadManifest(searchPath)
	require.NoError(t, err)
	require.Len(t, manifest.Modules, 5)
	byID := map[string]types.ManifestEntry{}
	for _, entry := range manifest.Modules {
		byID[entry.Identifier] = entry
	}
	assert.Equal(t, types.ModuleRoleRoot, byID["openconfig-interfaces"].Role)
	assert.Equal(t, "2023-02-06", byID["openconfig-interfaces"].Version)
	assert.Equal(t, "ietf-interfaces", byID["ietf-yang-types"].ImportedBy)
}

func TestCreateConfigIsRepeatable(t *testing.T) {
	compilerDir := testutil.InstallFakeCompiler(t, "pyang")
	searchPath := filepath.Join(t.TempDir(), "yang")
	service := newService(compilerDir)
	req := app.CreateConfigRequest{
		Device:     types.DeviceConfig{Dir: testutil.DeviceDir(t)},
		Schemas:    []string{"ietf-interfaces"},
		DataPath:   testutil.DataFile(t),
		SearchPath: searchPath,
		Transitive: true,
	}

	first, err := service.CreateConfig(t.Context(), req)
	require.NoError(t, err)
	firstFile, err := os.ReadFile(filepath.Join(searchPath, "ietf-interfaces.yang"))
	require.NoError(t, err)

	second, err := service.CreateConfig(t.Context(), req)
	require.NoError(t, err)
	secondFile, err := os.ReadFile(filepath.Join(searchPath, "ietf-interfaces.yang"))
	require.NoError(t, err)

	assert.Equal(t, firstFile, secondFile)
	assert.Equal(t, first.Modules[0].Dependencies, second.Modules[0].Dependencies)
	for _, file := range second.Modules[0].Files {
		assert.True(t, file.Unchanged, "%s rewritten with different content", file.Identifier)
	}
	assert.Len(t, testutil.CompilerCalls(t, compilerDir), 2)
}

func TestCreateConfigUnknownRoot(t *testing.T) {
	compilerDir := testutil.InstallFakeCompiler(t, "pyang")
	searchPath := filepath.Join(t.TempDir(), "yang")

	_, err := newService(compilerDir).CreateConfig(t.Context(), app.CreateConfigRequest{
		Device:     types.DeviceConfig{Dir: testutil.DeviceDir(t)},
		Schemas:    []string{"openconfig-network-instance"},
		DataPath:   testutil.DataFile(t),
		SearchPath: searchPath,
		Transitive: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema not found")
	_, statErr := os.Stat(searchPath)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, testutil.CompilerCalls(t, compilerDir))
}
