package block_test

import (
	"testing"

	"github.com/sitecraft/templet/core/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	registry := block.NewRegistry()

	t.Run("every supported type has a spec", func(t *testing.T) {
		for _, typ := range block.AllSupportedTypes {
			_, ok := registry.Lookup(typ)
			assert.True(t, ok, "missing spec for type %q", typ)
		}
	})

	t.Run("unknown type is an absent entry, not a failure", func(t *testing.T) {
		violations, ok := registry.Validate(block.Type("nonexistent_type"), map[string]interface{}{})
		assert.False(t, ok)
		assert.Nil(t, violations)
	})
}

func TestRegistryValidate(t *testing.T) {
	registry := block.NewRegistry()

	cases := []struct {
		Name       string
		Type       block.Type
		Content    map[string]interface{}
		Violations []block.Violation
	}{
		{
			Name:    "valid button",
			Type:    block.TypeButton,
			Content: map[string]interface{}{"label": "Buy", "href": "/buy", "style": "primary"},
		},
		{
			Name:    "valid quote without optional attribution",
			Type:    block.TypeQuote,
			Content: map[string]interface{}{"text": "less is more"},
		},
		{
			Name:    "button missing both required fields reports both",
			Type:    block.TypeButton,
			Content: map[string]interface{}{"style": "primary"},
			Violations: []block.Violation{
				{Path: "content.label", Reason: "required field is missing"},
				{Path: "content.href", Reason: "required field is missing"},
			},
		},
		{
			Name:    "wrong kind is addressed by field path",
			Type:    block.TypeGrid,
			Content: map[string]interface{}{"items": "not-an-array"},
			Violations: []block.Violation{
				{Path: "content.items", Reason: "expected array, got string"},
			},
		},
		{
			Name: "nil content is a single violation",
			Type: block.TypeText,
			Violations: []block.Violation{
				{Path: "content", Reason: "content payload is missing"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			violations, ok := registry.Validate(tc.Type, tc.Content)
			require.True(t, ok)
			assert.Equal(t, tc.Violations, violations)
		})
	}
}
