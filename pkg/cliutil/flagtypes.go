package cliutil

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// StringEnum is a pflag.Value restricted to a fixed set of strings.
type StringEnum struct {
	Allowed []string
	Value   string
}

var _ pflag.Value = (*StringEnum)(nil)

// NewStringEnum returns a StringEnum with the given default; def must be a
// member of allowed.
func NewStringEnum(def string, allowed ...string) *StringEnum {
	e := &StringEnum{Allowed: allowed}
	if err := e.Set(def); err != nil {
		panic(err)
	}
	return e
}

func (e *StringEnum) String() string { return e.Value }

func (e *StringEnum) Set(v string) error {
	for _, a := range e.Allowed {
		if v == a {
			e.Value = v
			return nil
		}
	}
	return fmt.Errorf("must be one of %q", strings.Join(e.Allowed, "|"))
}

func (e *StringEnum) Type() string { return "string" }
