package control_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nouraldeenm0/debpack/pkg/control"
)

const sampleControl = `Package: key-mapper
Version: 0.1.0
Architecture: all
Maintainer: Jane Dev <jane@example.com>
Depends: python3 (>= 3.7), python3-evdev
Description: A tool to change the mapping of input device buttons
 Second line of the long description.
 .
 After the blank separator.
X-Custom: yes
`

func TestParse(t *testing.T) {
	t.Parallel()
	m, err := control.Parse(sampleControl)
	require.NoError(t, err)

	assert.Equal(t, "key-mapper", m.Package)
	assert.Equal(t, "0.1.0", m.Version)
	assert.Equal(t, "all", m.Architecture)
	assert.Equal(t, "Jane Dev <jane@example.com>", m.Maintainer)
	assert.Equal(t, []string{"python3 (>= 3.7)", "python3-evdev"}, m.Depends)
	assert.Equal(t, map[string]string{"X-Custom": "yes"}, m.Extra)
	assert.Contains(t, m.Description, "A tool to change the mapping")
	assert.Contains(t, m.Description, "Second line of the long description.")
	assert.Contains(t, m.Description, "After the blank separator.")
}

func TestRender(t *testing.T) {
	t.Parallel()
	m := &control.Metadata{
		Package:      "key-mapper",
		Version:      "0.1.0",
		Architecture: "all",
		Maintainer:   "Jane Dev <jane@example.com>",
		Depends:      []string{"python3 (>= 3.7)", "python3-evdev"},
		Description:  "A short summary",
		Extra:        map[string]string{"X-Custom": "yes"},
	}

	exp := "Package: key-mapper\n" +
		"Version: 0.1.0\n" +
		"Architecture: all\n" +
		"Maintainer: Jane Dev <jane@example.com>\n" +
		"Depends: python3 (>= 3.7), python3-evdev\n" +
		"X-Custom: yes\n" +
		"Description: A short summary\n"
	assert.Equal(t, exp, m.Render())
}

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()
	orig, err := control.Parse(sampleControl)
	require.NoError(t, err)

	back, err := control.Parse(orig.Render())
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestVerify(t *testing.T) {
	mkdir := func(t *testing.T, controlBody string) string {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "control"), []byte(controlBody), 0o644))
		return dir
	}

	t.Run("ok", func(t *testing.T) {
		dir := mkdir(t, "Package: p\nVersion: 1\n")
		assert.NoError(t, control.Verify(dir))
	})
	t.Run("missing-dir", func(t *testing.T) {
		err := control.Verify(filepath.Join(t.TempDir(), "no-such-dir"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "control directory")
	})
	t.Run("not-a-dir", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "DEBIAN")
		require.NoError(t, os.WriteFile(filename, []byte("x"), 0o644))
		err := control.Verify(filename)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})
	t.Run("missing-control-file", func(t *testing.T) {
		err := control.Verify(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "control directory")
	})
	t.Run("missing-package", func(t *testing.T) {
		dir := mkdir(t, "Version: 1\n")
		err := control.Verify(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing Package field")
	})
	t.Run("missing-version", func(t *testing.T) {
		dir := mkdir(t, "Package: p\n")
		err := control.Verify(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing Version field")
	})
}

func TestInstall(t *testing.T) {
	ctrl := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ctrl, "control"), []byte("Package: p\nVersion: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ctrl, "postinst"), []byte("#!/bin/sh\nexit 0\n"), 0o755))

	staging := t.TempDir()
	require.NoError(t, control.Install(ctrl, staging))

	bs, err := os.ReadFile(filepath.Join(staging, "DEBIAN", "control"))
	require.NoError(t, err)
	assert.Equal(t, "Package: p\nVersion: 1\n", string(bs))

	info, err := os.Stat(filepath.Join(staging, "DEBIAN", "postinst"))
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}
