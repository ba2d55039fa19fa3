package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nouraldeenm0/debpack/pkg/cliutil"
	"github.com/nouraldeenm0/debpack/pkg/deb"
)

func init() {
	compression := cliutil.NewStringEnum("gzip", "gzip", "none")
	cmd := &cobra.Command{
		Use:   "deb [flags] IN_STAGEDIR >OUT_DEBFILE",
		Short: "Assemble a Debian archive from a staged package tree",
		Long: "Given a staging tree laid out as the installed payload plus a " +
			"DEBIAN metadata directory, assemble a .deb and write it to " +
			"stdout.  This is the archive-builder pipeline step on its own; " +
			"the sdist and overlay steps are skipped.",
		Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			return deb.Write(os.Stdout, args[0], deb.Options{
				Compression: deb.Compression(compression.Value),
			})
		},
	}
	cmd.Flags().Var(compression, "compression",
		"Data archive encoding, one of gzip, none")

	argparser.AddCommand(cmd)
}
