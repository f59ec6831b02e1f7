package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"yangstage/tests/testutil"
)

func TestFetchCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	searchPath := t.TempDir()

	cmd := exec.Command("go", "run", "./cmd/yangstage", "fetch",
		"--device-dir", "tests/testdata/device",
		"--schema", "openconfig-interfaces",
		"--search-path", searchPath,
	)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	require.FileExists(t, filepath.Join(searchPath, "openconfig-interfaces.yang"))
	require.FileExists(t, filepath.Join(searchPath, "ietf-interfaces.yang"))
	require.FileExists(t, filepath.Join(searchPath, "ietf-yang-types.yang"))
	require.FileExists(t, filepath.Join(searchPath, ".yangstage-manifest.yaml"))
	require.Contains(t, string(out), "openconfig-extensions")
}

func TestCreateConfigCommandMissingCompilerE2E(t *testing.T) {
	root := testutil.RepoRoot(t)

	cmd := exec.Command("go", "run", "./cmd/yangstage", "create-config",
		"--device-dir", "tests/testdata/device",
		"--schema", "openconfig-interfaces",
		"--data", "tests/testdata/data.yaml",
		"--search-path", t.TempDir(),
		"--compiler", "yangstage-no-such-compiler",
	)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	require.Contains(t, string(out), "compiler not found")
}
