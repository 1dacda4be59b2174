package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	val, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, val)
}

func TestStringListScan(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		var l StringList
		require.NoError(t, l.Scan([]byte(`["x","y"]`)))
		assert.Equal(t, StringList{"x", "y"}, l)
	})

	t.Run("string", func(t *testing.T) {
		var l StringList
		require.NoError(t, l.Scan(`["x"]`))
		assert.Equal(t, StringList{"x"}, l)
	})

	t.Run("nil clears", func(t *testing.T) {
		l := StringList{"x"}
		require.NoError(t, l.Scan(nil))
		assert.Nil(t, []string(l))
	})

	t.Run("unsupported type", func(t *testing.T) {
		var l StringList
		assert.Error(t, l.Scan(42))
	})
}
