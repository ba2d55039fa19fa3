package sdist_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nouraldeenm0/debpack/pkg/sdist"
)

func TestBuildMissingDescriptor(t *testing.T) {
	ctx := dlog.NewTestContext(t, true)
	project := t.TempDir()

	err := sdist.Build(ctx, nil, project, filepath.Join(project, "dist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no build descriptor")
}

func TestBuildCustomCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	ctx := dlog.NewTestContext(t, true)

	tmp := t.TempDir()
	project := filepath.Join(tmp, "project")
	require.NoError(t, os.MkdirAll(project, 0o755))

	// The dist directory is handed to the command as its final argument.
	script := filepath.Join(tmp, "sdist.sh")
	require.NoError(t, os.WriteFile(script,
		[]byte("#!/bin/sh\nset -e\npwd > \"$1/cwd.txt\"\ntouch \"$1/out.tar.gz\"\n"),
		0o755))

	dist := filepath.Join(tmp, "dist")
	require.NoError(t, sdist.Build(ctx, []string{"/bin/sh", script}, project, dist))

	assert.FileExists(t, filepath.Join(dist, "out.tar.gz"))

	// The command must have run with the project as its working directory.
	cwd, err := os.ReadFile(filepath.Join(dist, "cwd.txt"))
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(project)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(string(cwd[:len(cwd)-1]))
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
}

func TestBuildCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	ctx := dlog.NewTestContext(t, true)
	project := t.TempDir()

	err := sdist.Build(ctx, []string{"/bin/sh", "-c", "exit 1"}, project, filepath.Join(project, "dist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bin/sh")
}
