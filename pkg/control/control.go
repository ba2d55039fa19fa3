// Package control reads Debian control metadata and manages the DEBIAN
// directory that carries it through a build.
package control

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Metadata is the parsed form of a control file.  Only the fields debpack
// itself looks at are broken out; everything else rides along in Extra.
type Metadata struct {
	Package      string
	Version      string
	Architecture string
	Maintainer   string
	Section      string
	Priority     string
	Homepage     string
	Depends      []string
	Description  string

	Extra map[string]string
}

// Parse reads a control file.  Continuation lines (leading space or tab)
// fold into the preceding field; lines that are neither fields nor
// continuations are ignored, matching dpkg's leniency.
func Parse(content string) (*Metadata, error) {
	m := &Metadata{Extra: make(map[string]string)}

	var key string
	var value strings.Builder
	flush := func() {
		if key == "" {
			return
		}
		val := strings.TrimSpace(value.String())
		switch Field(key) {
		case FieldPackage:
			m.Package = val
		case FieldVersion:
			m.Version = val
		case FieldArchitecture:
			m.Architecture = val
		case FieldMaintainer:
			m.Maintainer = val
		case FieldSection:
			m.Section = val
		case FieldPriority:
			m.Priority = val
		case FieldHomepage:
			m.Homepage = val
		case FieldDepends:
			m.Depends = splitList(val)
		case FieldDescription:
			m.Description = val
		default:
			m.Extra[key] = val
		}
	}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t"):
			value.WriteString("\n" + line)
		case strings.Contains(line, ":"):
			flush()
			name, rest, _ := strings.Cut(line, ":")
			key = name
			value.Reset()
			value.WriteString(strings.TrimSpace(rest))
		}
	}
	flush()

	return m, nil
}

// Render writes the metadata back out in control-file form.  Extra fields
// come last, sorted, so output is deterministic.
func (m *Metadata) Render() string {
	var b strings.Builder
	field := func(f Field, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f, v)
		}
	}

	field(FieldPackage, m.Package)
	field(FieldVersion, m.Version)
	field(FieldArchitecture, m.Architecture)
	field(FieldMaintainer, m.Maintainer)
	field(FieldSection, m.Section)
	field(FieldPriority, m.Priority)
	field(FieldHomepage, m.Homepage)
	if len(m.Depends) > 0 {
		field(FieldDepends, strings.Join(m.Depends, ", "))
	}

	extraKeys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		field(Field(k), m.Extra[k])
	}

	// Description always goes last; its folded body would otherwise
	// swallow the fields after it.
	if m.Description != "" {
		lines := strings.Split(m.Description, "\n")
		field(FieldDescription, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				b.WriteString(" .\n")
			} else if strings.HasPrefix(line, " ") {
				b.WriteString(line + "\n")
			} else {
				b.WriteString(" " + line + "\n")
			}
		}
	}

	return b.String()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ret := make([]string, 0, len(parts))
	for _, p := range parts {
		ret = append(ret, strings.TrimSpace(p))
	}
	return ret
}

// Verify checks that dir is a usable control directory: it exists, holds a
// control file, and that file names a package and version.  It runs before
// any archive is built so a broken DEBIAN directory fails the target
// early.
func Verify(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("control directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("control directory %s: not a directory", dir)
	}

	bs, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		return fmt.Errorf("control directory: %w", err)
	}
	m, err := Parse(string(bs))
	if err != nil {
		return err
	}
	if m.Package == "" {
		return fmt.Errorf("%s: missing %s field", filepath.Join(dir, Filename), FieldPackage)
	}
	if m.Version == "" {
		return fmt.Errorf("%s: missing %s field", filepath.Join(dir, Filename), FieldVersion)
	}
	return nil
}

// Install copies the control directory into the staging tree as DEBIAN/,
// preserving file modes.
func Install(controlDir, stagingDir string) error {
	dst := filepath.Join(stagingDir, "DEBIAN")
	return filepath.Walk(controlDir, func(filename string, info fs.FileInfo, e error) error {
		if e != nil {
			return e
		}
		rel, err := filepath.Rel(controlDir, filename)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(filename)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			return os.Symlink(linkTarget, target)
		case info.Mode().IsRegular():
			return copyFile(target, filename, info.Mode().Perm())
		default:
			return fmt.Errorf("control directory member %s: unsupported file type", filename)
		}
	})
}

func copyFile(dst, src string, mode fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
