package cliutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nouraldeenm0/debpack/pkg/cliutil"
)

func TestStringEnum(t *testing.T) {
	t.Parallel()
	enum := cliutil.NewStringEnum("gzip", "gzip", "none")
	assert.Equal(t, "gzip", enum.Value)
	assert.Equal(t, "gzip", enum.String())
	assert.Equal(t, "string", enum.Type())

	require.NoError(t, enum.Set("none"))
	assert.Equal(t, "none", enum.Value)

	err := enum.Set("xz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip|none")
	assert.Equal(t, "none", enum.Value)
}

func TestStringEnumBadDefault(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		cliutil.NewStringEnum("xz", "gzip", "none")
	})
}
