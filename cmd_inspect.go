package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/nouraldeenm0/debpack/pkg/cliutil"
	"github.com/nouraldeenm0/debpack/pkg/deb"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect IN_DEBFILE",
		Short: "Dump the control metadata of a Debian archive",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(flags *cobra.Command, args []string) (err error) {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := file.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			metadata, err := deb.ReadControl(file)
			if err != nil {
				return err
			}
			bs, err := yaml.Marshal(metadata)
			if err != nil {
				return err
			}
			if _, err := flags.OutOrStdout().Write(bs); err != nil {
				return err
			}
			return nil
		},
	}
	argparser.AddCommand(cmd)
}
