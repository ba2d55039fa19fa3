// Package tarutil packs and unpacks the gzipped tarballs that carry files
// between pipeline steps.
package tarutil

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ExtractGz unpacks the gzipped tarball at archive into dst.
func ExtractGz(dst, archive string) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	file, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(file.Close())
	}()

	return Extract(dst, file)
}

// Extract unpacks a gzipped tar stream into dst.  Member names must stay
// inside dst; absolute or parent-escaping names fail the whole extraction.
func Extract(dst string, r io.Reader) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(gzReader.Close())
	}()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		name := path.Clean(strings.TrimPrefix(header.Name, "./"))
		if name == "." {
			continue
		}
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return fmt.Errorf("unsafe member name %q in archive", header.Name)
		}
		target := filepath.Join(dst, filepath.FromSlash(name))

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, header.FileInfo().Mode().Perm()|0o700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, header.FileInfo().Mode().Perm(), tarReader); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			linkName := path.Clean(strings.TrimPrefix(header.Linkname, "./"))
			if path.IsAbs(linkName) || strings.HasPrefix(linkName, "../") {
				return fmt.Errorf("unsafe link target %q in archive", header.Linkname)
			}
			if err := os.Link(filepath.Join(dst, filepath.FromSlash(linkName)), target); err != nil {
				return err
			}
		default:
			// Devices and the like have no business in a source archive.
			return fmt.Errorf("unsupported member type %c for %q", header.Typeflag, header.Name)
		}
	}
	return nil
}

func writeFile(target string, mode fs.FileMode, content io.Reader) (err error) {
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(file, content)
	return err
}

// PackGz writes dir as a gzipped tarball, with every member placed under
// prefix the way a source-distribution tool lays out its archive.
func PackGz(w io.Writer, dir, prefix string) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	gzWriter := gzip.NewWriter(w)
	defer func() {
		maybeSetErr(gzWriter.Close())
	}()
	tarWriter := tar.NewWriter(gzWriter)
	defer func() {
		maybeSetErr(tarWriter.Close())
	}()

	return filepath.Walk(dir, func(filename string, info fs.FileInfo, e error) error {
		if e != nil {
			return e
		}
		name, err := filepath.Rel(dir, filename)
		if err != nil {
			return err
		}
		name = filepath.ToSlash(name)
		if name == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = path.Join(prefix, name)
		if info.IsDir() {
			header.Name += "/"
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
			if _, err := io.Copy(tarWriter, file); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
		}
		return nil
	})
}
