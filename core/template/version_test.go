package template_test

import (
	"testing"

	"github.com/sitecraft/templet/core/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	t.Run("accepts major.minor", func(t *testing.T) {
		v, err := template.ParseVersion("0.12")
		require.NoError(t, err)
		assert.Equal(t, uint64(12), v.Minor())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := template.ParseVersion("not-a-version")
		assert.Error(t, err)
	})
}

func TestIncreaseMinorVersion(t *testing.T) {
	testCases := []struct {
		version  string
		expected string
	}{
		{"0.1", "0.2"},
		{"0.9", "0.10"},
		{"0.10", "0.11"},
		{"1.99", "1.100"},
	}
	for _, tc := range testCases {
		t.Run(tc.version, func(t *testing.T) {
			got, err := template.IncreaseMinorVersion(tc.version)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	t.Run("invalid version errors", func(t *testing.T) {
		_, err := template.IncreaseMinorVersion("")
		assert.Error(t, err)
	})
}

func TestIsSnapshotPoint(t *testing.T) {
	testCases := []struct {
		version  string
		expected bool
	}{
		{"0.1", true},
		{"0.2", false},
		{"0.9", false},
		{"0.10", true},
		{"0.11", false},
		{"0.20", true},
		{"1.30", true},
		{"garbage", true},
	}
	for _, tc := range testCases {
		t.Run(tc.version, func(t *testing.T) {
			assert.Equal(t, tc.expected, template.IsSnapshotPoint(tc.version))
		})
	}
}
