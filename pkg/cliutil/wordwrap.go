package cliutil

import "strings"

// Wrap word-wraps s to at most w columns.  Pass w == 0 to disable wrapping.
func Wrap(w int, s string) string { return wrap(0, w, s) }

// WrapIndent is Wrap with continuation lines indented by i spaces.  The
// first line is not indented; that is assumed to be done by the caller.
func WrapIndent(i, w int, s string) string { return wrap(i, w, s) }

func wrap(indent, width int, s string) string {
	if width <= 0 {
		return s
	}
	// Wrap a little short of the full width so that a short trailing word
	// doesn't end up stranded on a line of its own.
	limit := width - 5
	if limit <= indent+10 {
		return s
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if indent+len(line)+1+len(word) > limit {
				lines = append(lines, line)
				line = word
			} else {
				line += " " + word
			}
		}
		lines = append(lines, line)
	}

	pad := strings.Repeat(" ", indent)
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
