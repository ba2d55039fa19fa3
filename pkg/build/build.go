// Package build runs the packaging pipeline: an ordered, fail-fast
// sequence of steps per target, and a fork/join runner over independent
// targets.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"

	"github.com/nouraldeenm0/debpack/pkg/control"
	"github.com/nouraldeenm0/debpack/pkg/deb"
	"github.com/nouraldeenm0/debpack/pkg/sdist"
	"github.com/nouraldeenm0/debpack/pkg/tarutil"
)

// Target is the fully-resolved configuration of one build unit.
type Target struct {
	Name    string
	Version string

	// ProjectDir holds the build descriptor the sdist step runs against.
	ProjectDir string
	// ControlDir is the DEBIAN directory overlaid into the staging tree.
	ControlDir string
	// DistDir is the output root; it is shared between targets, which
	// stay out of each other's way purely by their name-version paths.
	DistDir string

	// SdistCommand overrides the source-distribution invocation; nil
	// means sdist.DefaultCommand.
	SdistCommand []string
	// Compression for the artifact's data archive.
	Compression deb.Compression

	// Stdout receives the "created" confirmation line.  Defaults to
	// os.Stdout.
	Stdout io.Writer
}

func (t Target) artifactBase() string {
	return t.Name + "-" + t.Version
}

// ArchivePath is where the sdist step must leave the source archive.
func (t Target) ArchivePath() string {
	return filepath.Join(t.DistDir, t.artifactBase()+".tar.gz")
}

// StagingDir is the transient tree the archive unpacks into.
func (t Target) StagingDir() string {
	return filepath.Join(t.DistDir, t.artifactBase())
}

// ArtifactPath is the durable output of the pipeline.
func (t Target) ArtifactPath() string {
	return filepath.Join(t.DistDir, t.artifactBase()+".deb")
}

func (t Target) stdout() io.Writer {
	if t.Stdout != nil {
		return t.Stdout
	}
	return os.Stdout
}

// Run executes the pipeline for one target.  The step order is
// load-bearing: the staging tree must exist before the control overlay,
// the overlay must precede the archive build, and cleanup must come last.
// The first failing step aborts the rest; whatever transient state exists
// by then is removed on the way out, and the confirmation line is printed
// only when every step succeeded.
func Run(ctx context.Context, tgt Target) (err error) {
	step := func(name string, e error) error {
		return fmt.Errorf("target %s: %s: %w", tgt.Name, name, e)
	}
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	// A broken DEBIAN directory would only surface after a full sdist
	// run; check it before spending that time.
	if err := control.Verify(tgt.ControlDir); err != nil {
		return step("control", err)
	}

	archive := tgt.ArchivePath()
	if err := sdist.Build(ctx, tgt.SdistCommand, tgt.ProjectDir, tgt.DistDir); err != nil {
		return step("sdist", err)
	}
	if _, statErr := os.Stat(archive); statErr != nil {
		return step("sdist", fmt.Errorf("tool did not produce %s: %w", archive, statErr))
	}
	defer func() {
		// The archive is consumed mid-pipeline; never leave it behind.
		if _, statErr := os.Stat(archive); statErr == nil {
			maybeSetErr(os.Remove(archive))
		}
	}()

	staging := tgt.StagingDir()
	defer func() {
		maybeSetErr(os.RemoveAll(staging))
	}()
	if err := tarutil.ExtractGz(tgt.DistDir, archive); err != nil {
		return step("unpack", err)
	}
	if _, statErr := os.Stat(staging); statErr != nil {
		return step("unpack", fmt.Errorf("archive did not contain %s/: %w", tgt.artifactBase(), statErr))
	}
	if err := os.Remove(archive); err != nil {
		return step("unpack", err)
	}

	if err := control.Install(tgt.ControlDir, staging); err != nil {
		return step("control", err)
	}

	if err := writeArtifact(tgt, staging); err != nil {
		return step("deb", err)
	}

	if err := os.RemoveAll(staging); err != nil {
		return step("cleanup", err)
	}

	dlog.Infof(ctx, "target %s: built %s", tgt.Name, tgt.ArtifactPath())
	fmt.Fprintf(tgt.stdout(), "created %s\n", tgt.ArtifactPath())
	return nil
}

func writeArtifact(tgt Target, staging string) (err error) {
	file, err := os.Create(tgt.ArtifactPath())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			// A half-written artifact is worse than none.
			_ = os.Remove(file.Name())
		}
	}()
	return deb.Write(file, staging, deb.Options{Compression: tgt.Compression})
}
