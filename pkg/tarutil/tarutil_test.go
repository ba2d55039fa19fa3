package tarutil_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nouraldeenm0/debpack/pkg/tarutil"
)

func TestPackExtractRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires symlinks and Unix file modes")
	}

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bin", "tool"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "share", "doc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "share", "doc", "readme"), []byte("hello\n"), 0o644))
	require.NoError(t, os.Symlink("doc/readme", filepath.Join(src, "share", "link")))

	var buf bytes.Buffer
	require.NoError(t, tarutil.PackGz(&buf, src, "pkg-1.0"))

	dst := t.TempDir()
	require.NoError(t, tarutil.Extract(dst, &buf))

	root := filepath.Join(dst, "pkg-1.0")

	bs, err := os.ReadFile(filepath.Join(root, "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(bs))
	info, err := os.Stat(filepath.Join(root, "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	bs, err = os.ReadFile(filepath.Join(root, "share", "doc", "readme"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(bs))

	target, err := os.Readlink(filepath.Join(root, "share", "link"))
	require.NoError(t, err)
	assert.Equal(t, "doc/readme", target)
}

func TestExtractGz(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "file"), []byte("content\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, tarutil.PackGz(&buf, src, "pkg-1.0"))
	archive := filepath.Join(t.TempDir(), "pkg-1.0.tar.gz")
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0o644))

	dst := t.TempDir()
	require.NoError(t, tarutil.ExtractGz(dst, archive))
	bs, err := os.ReadFile(filepath.Join(dst, "pkg-1.0", "file"))
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(bs))
}

// mkArchive gzips a tar stream with a single regular member.
func mkArchive(t *testing.T, header *tar.Header, content string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)
	header.Size = int64(len(content))
	require.NoError(t, tarWriter.WriteHeader(header))
	_, err := tarWriter.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())
	return &buf
}

func TestExtractRejectsUnsafeNames(t *testing.T) {
	t.Parallel()
	testcases := []string{
		"../evil",
		"/abs",
		"a/../../evil",
	}
	for _, name := range testcases {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			buf := mkArchive(t, &tar.Header{Name: name, Mode: 0o644}, "owned\n")
			err := tarutil.Extract(t.TempDir(), buf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unsafe member name")
		})
	}
}

func TestExtractRejectsUnsupportedTypes(t *testing.T) {
	t.Parallel()
	buf := mkArchive(t, &tar.Header{Name: "fifo", Mode: 0o644, Typeflag: tar.TypeFifo}, "")
	err := tarutil.Extract(t.TempDir(), buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported member type")
}
