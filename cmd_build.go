package main

import (
	"github.com/spf13/cobra"

	"github.com/nouraldeenm0/debpack/pkg/build"
	"github.com/nouraldeenm0/debpack/pkg/cliutil"
	"github.com/nouraldeenm0/debpack/pkg/deb"
	"github.com/nouraldeenm0/debpack/pkg/manifest"
)

func init() {
	var flagManifest string
	var flagDist string
	compression := cliutil.NewStringEnum("gzip", "gzip", "none")
	cmd := &cobra.Command{
		Use:   "build [flags] [TARGET...]",
		Short: "Run the packaging pipeline for the manifest's build targets",
		Long: "For each build target of the manifest (or only the named " +
			"targets), run the full pipeline: build a source distribution, " +
			"unpack it into a staging tree, overlay the DEBIAN control " +
			"directory, assemble the .deb, and clean the staging tree up " +
			"again.  Targets run concurrently; one line per built artifact " +
			"is printed, and the command fails if any target fails.",
		Args: cobra.ArbitraryArgs,
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			m, err := manifest.Load(flagManifest)
			if err != nil {
				return err
			}
			selected, err := m.Select(args...)
			if err != nil {
				return err
			}
			dist := m.Dist
			if flagDist != "" {
				dist = flagDist
			}

			targets := make([]build.Target, 0, len(selected))
			for _, t := range selected {
				targets = append(targets, build.Target{
					Name:         t.Name,
					Version:      t.Version,
					ProjectDir:   t.Project,
					ControlDir:   t.Control,
					DistDir:      dist,
					SdistCommand: t.Sdist,
					Compression:  deb.Compression(compression.Value),
					Stdout:       flags.OutOrStdout(),
				})
			}
			return build.All(ctx, targets)
		},
	}
	cmd.Flags().StringVarP(&flagManifest, "manifest", "f", "debpack.yaml",
		"Read build targets from `MANIFEST`")
	cmd.Flags().StringVar(&flagDist, "dist", "",
		"Override the manifest's output `DIRECTORY`")
	cmd.Flags().Var(compression, "compression",
		"Data archive encoding for the artifacts, one of gzip, none")

	argparser.AddCommand(cmd)
}
