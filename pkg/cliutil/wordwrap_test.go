package cliutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nouraldeenm0/debpack/pkg/cliutil"
)

func TestWrap(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		width int
		input string
		exp   string
	}{
		"disabled": {
			width: 0,
			input: "alpha beta gamma",
			exp:   "alpha beta gamma",
		},
		"too-narrow-to-bother": {
			width: 12,
			input: "alpha beta gamma",
			exp:   "alpha beta gamma",
		},
		"wraps": {
			width: 30,
			input: "aaaa bbbb cccc dddd eeee ffff",
			exp:   "aaaa bbbb cccc dddd eeee\nffff",
		},
		"keeps-paragraphs": {
			width: 80,
			input: "one two\n\nthree",
			exp:   "one two\n\nthree",
		},
	}
	for name, tc := range testcases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, cliutil.Wrap(tc.width, tc.input))
		})
	}
}

func TestWrapIndent(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"aaaa bbbb cccc dddd\n    eeee ffff",
		cliutil.WrapIndent(4, 30, "aaaa bbbb cccc dddd eeee ffff"))
}
