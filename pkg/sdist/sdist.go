// Package sdist runs a Python project's source-distribution build.
package sdist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dexec"
)

// Descriptor is the build descriptor the default command reads.
const Descriptor = "setup.py"

// DefaultCommand is the source-distribution invocation used when a target
// doesn't override it.  The dist directory is appended as the final
// argument, for this command and for overrides alike.
func DefaultCommand() []string {
	return []string{"python3", Descriptor, "sdist", "--dist-dir"}
}

// Build runs the source-distribution tool for the project at projectDir,
// directing its output into distDir.  The tool's own output goes to the
// context's logger via dexec.  Build reports tool failure but does not
// check what the tool produced; that is the caller's contract to enforce.
func Build(ctx context.Context, command []string, projectDir, distDir string) error {
	if len(command) == 0 {
		command = DefaultCommand()
		if _, err := os.Stat(filepath.Join(projectDir, Descriptor)); err != nil {
			return fmt.Errorf("no build descriptor: %w", err)
		}
	}

	// The command runs with the project as its working directory, so the
	// dist directory has to be made absolute first.
	absDist, err := filepath.Abs(distDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absDist, 0o777); err != nil {
		return err
	}

	args := make([]string, 0, len(command))
	args = append(args, command[1:]...)
	args = append(args, absDist)

	cmd := dexec.CommandContext(ctx, command[0], args...)
	cmd.Dir = projectDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", command[0], err)
	}
	return nil
}
