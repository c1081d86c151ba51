package postgres_test

import (
	"testing"

	"github.com/sitecraft/templet/internal/store/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONDocument(t *testing.T) {
	t.Run("scan bytes", func(t *testing.T) {
		m := postgres.JSONDocument{}
		err := m.Scan([]byte(`{"name": "Bakery", "pages": []}`))
		require.NoError(t, err)
		assert.Equal(t, "Bakery", m["name"])
	})

	t.Run("scan string", func(t *testing.T) {
		m := postgres.JSONDocument{}
		err := m.Scan(`{"deleted": false}`)
		require.NoError(t, err)
		assert.Equal(t, false, m["deleted"])
	})

	t.Run("scan unsupported type fails", func(t *testing.T) {
		m := postgres.JSONDocument{}
		assert.Error(t, m.Scan(42))
	})

	t.Run("value of nil map is nil", func(t *testing.T) {
		var m postgres.JSONDocument
		v, err := m.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("value round trips", func(t *testing.T) {
		m := postgres.JSONDocument{"theme": "dark"}
		v, err := m.Value()
		require.NoError(t, err)

		out := postgres.JSONDocument{}
		require.NoError(t, out.Scan(v))
		assert.Equal(t, m, out)
	})
}
