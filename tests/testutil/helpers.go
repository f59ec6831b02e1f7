// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCompiler records its arguments in calls.log next to itself and
// writes a placeholder artifact to the -o target.
const fakeCompiler = `#!/bin/sh
echo "$@" >> "$(dirname "$0")/calls.log"
out=""
while [ $# -gt 1 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
printf '<data/>' > "$out"
`

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// DeviceDir returns the directory of fixture modules served in place of a
// device.
func DeviceDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "tests", "testdata", "device")
}

// DataFile returns the fixture configuration payload.
func DataFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "tests", "testdata", "data.yaml")
}

// InstallFakeCompiler writes an executable named name into a fresh
// directory and returns that directory.
func InstallFakeCompiler(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(fakeCompiler), 0755))
	return dir
}

// CompilerCalls returns one line per fake compiler invocation.
func CompilerCalls(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
