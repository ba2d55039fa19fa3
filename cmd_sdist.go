package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nouraldeenm0/debpack/pkg/cliutil"
	"github.com/nouraldeenm0/debpack/pkg/sdist"
)

func init() {
	var flagDist string
	cmd := &cobra.Command{
		Use:   "sdist [flags] IN_PROJECTDIR",
		Short: "Build only the source distribution of a project",
		Long: "Run the project's source-distribution tool (python3 setup.py " +
			"sdist) with the dist directory as its output, and print the " +
			"archives it produced.  This is the first pipeline step on its " +
			"own, for debugging a project's packaging without building a " +
			".deb.",
		Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			start := time.Now()
			if err := sdist.Build(ctx, nil, args[0], flagDist); err != nil {
				return err
			}

			// The tool names the archive after metadata we don't parse;
			// report whatever it freshly dropped into the dist directory.
			entries, err := os.ReadDir(flagDist)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if !strings.HasSuffix(entry.Name(), ".tar.gz") {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					return err
				}
				if info.ModTime().Before(start) {
					continue
				}
				fmt.Fprintf(flags.OutOrStdout(), "%s\n", filepath.Join(flagDist, entry.Name()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagDist, "dist", "dist",
		"Write the source archive into `DIRECTORY`")

	argparser.AddCommand(cmd)
}
