// Package manifest loads the debpack.yaml file that lists the build
// targets of a run.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/derror"
	"sigs.k8s.io/yaml"
)

// Target describes one package to build.  Name and Version are fixed in
// the manifest rather than derived from project metadata; together they
// name every transient and durable path the pipeline touches under the
// dist directory.
type Target struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// Project is the directory holding the build descriptor (setup.py).
	// Relative paths are resolved against the manifest's directory.
	Project string `json:"project,omitempty"`

	// Control is the DEBIAN metadata directory to overlay into the
	// staging tree.  Defaults to "DEBIAN" under Project.
	Control string `json:"control,omitempty"`

	// Sdist overrides the source-distribution command; the dist
	// directory is appended as the final argument.  Defaults to
	// ["python3", "setup.py", "sdist", "--dist-dir"].
	Sdist []string `json:"sdist,omitempty"`
}

// ArtifactBase is the "<name>-<version>" stem shared by the target's
// source archive, staging tree, and .deb artifact.
func (t Target) ArtifactBase() string {
	return t.Name + "-" + t.Version
}

// Manifest is the top-level debpack.yaml document.
type Manifest struct {
	// Dist is the output root shared by all targets.  Defaults to
	// "dist" next to the manifest.
	Dist string `json:"dist,omitempty"`

	Targets []Target `json:"targets"`
}

// Load reads and validates a manifest file.  Relative paths in the file
// are resolved against the file's own directory, and defaults are filled
// in.
func Load(filename string) (*Manifest, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(bs, &m, yaml.DisallowUnknownFields); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	base := filepath.Dir(filename)
	if m.Dist == "" {
		m.Dist = "dist"
	}
	if !filepath.IsAbs(m.Dist) {
		m.Dist = filepath.Join(base, m.Dist)
	}
	for i := range m.Targets {
		t := &m.Targets[i]
		if t.Project == "" {
			t.Project = "."
		}
		if !filepath.IsAbs(t.Project) {
			t.Project = filepath.Join(base, t.Project)
		}
		switch {
		case t.Control == "":
			t.Control = filepath.Join(t.Project, "DEBIAN")
		case !filepath.IsAbs(t.Control):
			t.Control = filepath.Join(base, t.Control)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &m, nil
}

// validate collects every problem with the manifest, not just the first.
func (m *Manifest) validate() error {
	var errs derror.MultiError

	if len(m.Targets) == 0 {
		errs = append(errs, fmt.Errorf("manifest lists no build targets"))
	}

	seenName := make(map[string]bool)
	seenBase := make(map[string]bool)
	for i, t := range m.Targets {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("target %d: empty name", i))
		} else if seenName[t.Name] {
			errs = append(errs, fmt.Errorf("target %q: duplicate name", t.Name))
		}
		seenName[t.Name] = true

		if t.Version == "" {
			errs = append(errs, fmt.Errorf("target %q: empty version", t.Name))
		}

		// Concurrent targets share the dist directory; their isolation
		// relies entirely on disjoint "<name>-<version>" paths.
		if t.Name != "" && t.Version != "" {
			if ab := t.ArtifactBase(); seenBase[ab] {
				errs = append(errs, fmt.Errorf("target %q: staging path %s collides with another target", t.Name, ab))
			} else {
				seenBase[ab] = true
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Select returns the targets with the given names, or all targets when no
// names are given.
func (m *Manifest) Select(names ...string) ([]Target, error) {
	if len(names) == 0 {
		return m.Targets, nil
	}
	byName := make(map[string]Target, len(m.Targets))
	for _, t := range m.Targets {
		byName[t.Name] = t
	}
	ret := make([]Target, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no such target %q", name)
		}
		ret = append(ret, t)
	}
	return ret, nil
}
