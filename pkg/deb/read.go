package deb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/blakesmith/ar"

	"github.com/nouraldeenm0/debpack/pkg/control"
)

// ReadControl pulls the control metadata back out of a .deb stream.
func ReadControl(r io.Reader) (*control.Metadata, error) {
	arReader := ar.NewReader(r)
	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ar header: %w", err)
		}

		name := strings.TrimSpace(header.Name)
		if !strings.HasPrefix(name, "control.tar") {
			continue
		}

		var tarSrc io.Reader = arReader
		if strings.HasSuffix(name, ".gz") {
			gzReader, err := gzip.NewReader(arReader)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", name, err)
			}
			defer gzReader.Close()
			tarSrc = gzReader
		}

		tarReader := tar.NewReader(tarSrc)
		for {
			th, err := tarReader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", name, err)
			}
			if path.Base(th.Name) != control.Filename || th.Typeflag == tar.TypeDir {
				continue
			}
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tarReader); err != nil {
				return nil, fmt.Errorf("reading control file: %w", err)
			}
			return control.Parse(buf.String())
		}
		return nil, fmt.Errorf("%s has no control file", name)
	}
	return nil, fmt.Errorf("no control member in archive")
}
