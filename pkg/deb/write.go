// Package deb assembles and inspects Debian binary packages.
//
// A .deb is an ar(1) archive with three members in fixed order: a
// "debian-binary" version marker, a control tarball with the package
// metadata, and a data tarball with the payload.
package deb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blakesmith/ar"

	"github.com/nouraldeenm0/debpack/pkg/control"
	"github.com/nouraldeenm0/debpack/pkg/reproducible"
)

// ControlDirName is the staging-tree subdirectory whose contents become
// the control archive instead of payload.
const ControlDirName = "DEBIAN"

const (
	memberDebianBinary = "debian-binary"
	memberControl      = "control.tar.gz"
)

// Compression selects the encoding of the data archive.  The control
// archive is always gzipped.
type Compression string

const (
	CompressionGzip Compression = "gzip"
	CompressionNone Compression = "none"
)

// Options adjusts how Write assembles the package.
type Options struct {
	// Compression for the data member; defaults to CompressionGzip.
	Compression Compression
}

// Write assembles a Debian package from the staging tree at stagingDir and
// writes it to w.  The tree must hold a DEBIAN directory with at least a
// control file; everything else in the tree becomes the installed payload.
// Member timestamps are clamped via the reproducible package, so identical
// trees produce identical bytes.
func Write(w io.Writer, stagingDir string, opts Options) error {
	switch opts.Compression {
	case "":
		opts.Compression = CompressionGzip
	case CompressionGzip, CompressionNone:
	default:
		return fmt.Errorf("unknown compression %q", opts.Compression)
	}

	ctrlDir := filepath.Join(stagingDir, ControlDirName)
	if err := control.Verify(ctrlDir); err != nil {
		return err
	}

	data, sums, err := buildDataArchive(stagingDir, opts.Compression == CompressionGzip)
	if err != nil {
		return fmt.Errorf("building data archive: %w", err)
	}

	ctrl, err := buildControlArchive(ctrlDir, sums)
	if err != nil {
		return fmt.Errorf("building control archive: %w", err)
	}

	arWriter := ar.NewWriter(w)
	if err := arWriter.WriteGlobalHeader(); err != nil {
		return fmt.Errorf("writing ar header: %w", err)
	}
	// Member order is part of the format: debian-binary must come first
	// and the control archive must precede the data archive.
	if err := addArMember(arWriter, memberDebianBinary, []byte("2.0\n")); err != nil {
		return err
	}
	if err := addArMember(arWriter, memberControl, ctrl); err != nil {
		return err
	}
	dataName := "data.tar"
	if opts.Compression == CompressionGzip {
		dataName += ".gz"
	}
	if err := addArMember(arWriter, dataName, data); err != nil {
		return err
	}
	return nil
}

func addArMember(w *ar.Writer, name string, body []byte) error {
	header := &ar.Header{
		Name:    name,
		Size:    int64(len(body)),
		Mode:    0o644,
		ModTime: reproducible.Now(),
	}
	if err := w.WriteHeader(header); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

type fileSum struct {
	path string // slash-separated, relative to the tree root
	md5  string
}

// buildDataArchive tars up everything under stagingDir except the DEBIAN
// directory, rooted at "./" the way dpkg lays out payload archives.  It
// returns the encoded archive plus an MD5 digest per regular file.
func buildDataArchive(stagingDir string, compress bool) (_ []byte, _ []fileSum, err error) {
	var buf bytes.Buffer
	var dst io.Writer = &buf
	var gzWriter *gzip.Writer
	if compress {
		gzWriter = gzip.NewWriter(&buf)
		dst = gzWriter
	}
	tarWriter := tar.NewWriter(dst)

	type seenEntry struct {
		name string
		info fs.FileInfo
	}
	var seen []seenEntry
	var sums []fileSum

	walkErr := filepath.Walk(stagingDir, func(filename string, info fs.FileInfo, e error) error {
		if e != nil {
			return e
		}
		rel, err := filepath.Rel(stagingDir, filename)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return tarWriter.WriteHeader(&tar.Header{
				Name:     "./",
				Typeflag: tar.TypeDir,
				Mode:     0o755,
				ModTime:  archiveTime(reproducible.Now()),
				Uname:    "root",
				Gname:    "root",
			})
		}
		if rel == ControlDirName || strings.HasPrefix(rel, ControlDirName+"/") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = "./" + rel
		if info.IsDir() {
			header.Name += "/"
		}
		// Payload is installed by root, whatever it is owned by here.
		header.Uid, header.Gid = 0, 0
		header.Uname, header.Gname = "root", "root"
		// Whole-second mtimes only, and no atime/ctime: anything finer
		// forces PAX records, and atimes change under our feet between
		// otherwise-identical builds.
		header.ModTime = archiveTime(reproducible.Clamp(header.ModTime))
		header.AccessTime = time.Time{}
		header.ChangeTime = time.Time{}

		for _, entry := range seen {
			if os.SameFile(entry.info, info) {
				header.Typeflag = tar.TypeLink
				header.Linkname = entry.name
				header.Size = 0
				break
			}
		}
		if header.Typeflag == tar.TypeSymlink {
			header.Linkname, err = os.Readlink(filename)
			if err != nil {
				return err
			}
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if header.Typeflag == tar.TypeReg {
			file, err := os.Open(filename)
			if err != nil {
				return err
			}
			hash := md5.New()
			if _, err := io.Copy(io.MultiWriter(tarWriter, hash), file); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			sums = append(sums, fileSum{
				path: rel,
				md5:  hex.EncodeToString(hash.Sum(nil)),
			})
			seen = append(seen, seenEntry{name: header.Name, info: info})
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}

	if err := tarWriter.Close(); err != nil {
		return nil, nil, err
	}
	if gzWriter != nil {
		if err := gzWriter.Close(); err != nil {
			return nil, nil, err
		}
	}
	return buf.Bytes(), sums, nil
}

// buildControlArchive gzips the control directory's files into the control
// tarball.  The control file is written first, maintainer scripts are
// stored executable, and an md5sums file is generated from the payload
// digests when the directory doesn't carry one of its own.
func buildControlArchive(ctrlDir string, sums []fileSum) (_ []byte, err error) {
	entries, err := os.ReadDir(ctrlDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			return nil, fmt.Errorf("%s: unexpected subdirectory %q", ctrlDir, entry.Name())
		}
		if entry.Name() != control.Filename {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	names = append([]string{control.Filename}, names...)

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	writeMember := func(name string, body []byte, mode int64) error {
		header := &tar.Header{
			Name:    "./" + name,
			Size:    int64(len(body)),
			Mode:    mode,
			ModTime: archiveTime(reproducible.Now()),
			Uname:   "root",
			Gname:   "root",
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		_, err := tarWriter.Write(body)
		return err
	}

	if err := tarWriter.WriteHeader(&tar.Header{
		Name:     "./",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
		ModTime:  archiveTime(reproducible.Now()),
		Uname:    "root",
		Gname:    "root",
	}); err != nil {
		return nil, err
	}

	haveMd5sums := false
	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(ctrlDir, name))
		if err != nil {
			return nil, err
		}
		mode := int64(0o644)
		if control.MaintainerScripts[name] {
			mode = 0o755
		}
		if name == "md5sums" {
			haveMd5sums = true
		}
		if err := writeMember(name, body, mode); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if !haveMd5sums && len(sums) > 0 {
		if err := writeMember("md5sums", renderMd5sums(sums), 0o644); err != nil {
			return nil, fmt.Errorf("writing md5sums: %w", err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func archiveTime(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

func renderMd5sums(sums []fileSum) []byte {
	sorted := make([]fileSum, len(sums))
	copy(sorted, sums)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].path < sorted[j].path
	})

	var b bytes.Buffer
	for _, sum := range sorted {
		fmt.Fprintf(&b, "%s  %s\n", sum.md5, path.Clean(sum.path))
	}
	return b.Bytes()
}
