// Package cliutil collects the cobra plumbing shared by debpack's
// subcommands: bad-usage reporting, a help template, and flag helpers.
package cliutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// OnlySubcommands is a cobra.PositionalArgs for commands that exist only to
// hold subcommands.  Unlike cobra.NoArgs it suggests near-miss subcommand
// names when the user typos one.
func OnlySubcommands(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	err := fmt.Errorf("invalid subcommand %q", args[0])
	if cmd.SuggestionsMinimumDistance <= 0 {
		cmd.SuggestionsMinimumDistance = 2
	}
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		err = fmt.Errorf("%w\nDid you mean one of these?\n\t%s",
			err, strings.Join(suggestions, "\n\t"))
	}
	return cmd.FlagErrorFunc()(cmd, err)
}

// RunSubcommands is a cobra.Command.RunE for commands that only hold
// subcommands.  Reaching it means the user didn't name a subcommand, which
// must not read as success.
func RunSubcommands(cmd *cobra.Command, args []string) error {
	cmd.SetOut(cmd.ErrOrStderr())
	cmd.HelpFunc()(cmd, args)
	os.Exit(2)
	return nil
}

// WrapPositionalArgs routes errors from a cobra.PositionalArgs through
// FlagErrorFunc, so arity errors and flag errors report the same way.
func WrapPositionalArgs(inner cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return FlagErrorFunc(cmd, inner(cmd, args))
	}
}

// FlagErrorFunc is for (*cobra.Command).SetFlagErrorFunc; it reports usage
// errors GNU-style and exits 2, so errors returned from Execute are always
// execution errors.
func FlagErrorFunc(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	errStr := strings.TrimRight(err.Error(), "\n")
	if strings.Contains(errStr, "\n") {
		// Multi-line error; keep the "See --help" line visually separate.
		errStr += "\n"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\nSee '%s --help' for more information.\n",
		cmd.CommandPath(), errStr, cmd.CommandPath())
	os.Exit(2)
	return nil
}
