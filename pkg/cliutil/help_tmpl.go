package cliutil

import (
	"github.com/spf13/cobra"
)

func init() {
	cobra.AddTemplateFunc("getTerminalWidth", GetTerminalWidth)
	cobra.AddTemplateFunc("wrap", Wrap)
	cobra.AddTemplateFunc("wrapIndent", WrapIndent)
	cobra.AddTemplateFunc("add", func(args ...int) int {
		ret := 0
		for _, arg := range args {
			ret += arg
		}
		return ret
	})
}

// HelpTemplate is a cobra help template that word-wraps the long help and
// flag usages to the terminal width.
const HelpTemplate = `Usage: {{ .UseLine }}

{{- if .Short }}
{{ .Short }}
{{- end }}

{{- if .Long }}

{{ .Long | wrap getTerminalWidth | trimTrailingWhitespaces }}
{{- end }}

{{- if .HasExample }}

Examples:
{{ .Example }}
{{- end }}

{{- if .HasAvailableSubCommands }}

Available Commands:
{{- range .Commands }}
  {{- if (or .IsAvailableCommand (eq .Name "help")) }}
    {{- "\n" }}  {{ rpad .Name .NamePadding }}   {{ .Short | wrapIndent (add .NamePadding 5) getTerminalWidth }}
  {{- end }}
{{- end }}
{{- end }}

{{- if .HasAvailableLocalFlags }}

Flags:
{{ getTerminalWidth | .LocalFlags.FlagUsagesWrapped | trimTrailingWhitespaces }}
{{- end }}

{{- if .HasAvailableInheritedFlags }}

Global Flags:
{{ getTerminalWidth | .InheritedFlags.FlagUsagesWrapped | trimTrailingWhitespaces }}
{{- end }}

{{- if .HasAvailableSubCommands }}

Use "{{ .CommandPath }} [command] --help" for more information about a command.
{{- end }}
`
