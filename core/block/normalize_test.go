package block_test

import (
	"encoding/json"
	"testing"

	"github.com/sitecraft/templet/core/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentityRepair(t *testing.T) {
	normalizer := block.NewNormalizer(block.NewRegistry())

	cases := []struct {
		Name       string
		RawID      interface{}
		ExpectedID string
		Fresh      bool
	}{
		{
			Name:       "valid string id is unchanged",
			RawID:      "block-1",
			ExpectedID: "block-1",
		},
		{
			Name:       "character-indexed map artifact is flattened",
			RawID:      map[string]interface{}{"0": "a", "1": "b", "2": "c"},
			ExpectedID: "abc",
		},
		{
			Name:       "embedded string id is preferred",
			RawID:      map[string]interface{}{"_id": "nested-id", "rev": "2"},
			ExpectedID: "nested-id",
		},
		{
			Name:       "numeric id is coerced to string",
			RawID:      float64(42),
			ExpectedID: "42",
		},
		{
			Name:  "missing id gets a fresh identity",
			RawID: nil,
			Fresh: true,
		},
		{
			Name:  "empty string id gets a fresh identity",
			RawID: "",
			Fresh: true,
		},
		{
			Name:  "unusable map id gets a fresh identity",
			RawID: map[string]interface{}{"rev": float64(3)},
			Fresh: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			b := normalizer.Normalize(map[string]interface{}{
				"_id":     tc.RawID,
				"type":    "text",
				"content": map[string]interface{}{"value": "x"},
			})

			require.NotEmpty(t, b.ID)
			if tc.Fresh {
				assert.NotEqual(t, tc.ExpectedID, b.ID)
			} else {
				assert.Equal(t, tc.ExpectedID, b.ID)
			}
		})
	}
}

func TestNormalizeFallbackSubstitution(t *testing.T) {
	normalizer := block.NewNormalizer(block.NewRegistry())

	cases := []struct {
		Name string
		Raw  map[string]interface{}
	}{
		{
			Name: "missing required field",
			Raw: map[string]interface{}{
				"_id":     "b1",
				"type":    "button",
				"content": map[string]interface{}{"label": "Go"},
			},
		},
		{
			Name: "wrong field kind",
			Raw: map[string]interface{}{
				"_id":     "b2",
				"type":    "quote",
				"content": map[string]interface{}{"text": float64(7)},
			},
		},
		{
			Name: "missing type tag",
			Raw: map[string]interface{}{
				"_id":     "b3",
				"content": map[string]interface{}{"value": "x"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			b := normalizer.Normalize(tc.Raw)

			assert.Equal(t, block.TypeText, b.Type)
			assert.Equal(t, block.FallbackContent, b.Content["value"])
			assert.NotEmpty(t, b.ID)
		})
	}
}

func TestNormalizeUnknownTypePassesThrough(t *testing.T) {
	normalizer := block.NewNormalizer(block.NewRegistry())

	b := normalizer.Normalize(map[string]interface{}{
		"_id":     "b1",
		"type":    "holograph",
		"content": map[string]interface{}{"beam": "on"},
	})

	assert.Equal(t, block.Type("holograph"), b.Type)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "on", b.Content["beam"])
}

func TestNormalizeShapeCoercion(t *testing.T) {
	normalizer := block.NewNormalizer(block.NewRegistry())

	t.Run("bare string content is lifted for text blocks", func(t *testing.T) {
		b := normalizer.Normalize(map[string]interface{}{
			"_id":     "b1",
			"type":    "text",
			"content": "hello",
		})
		assert.Equal(t, block.TypeText, b.Type)
		assert.Equal(t, "hello", b.Content["value"])
	})

	t.Run("legacy camelCase keys are canonicalized", func(t *testing.T) {
		b := normalizer.Normalize(map[string]interface{}{
			"_id":  "b2",
			"type": "image",
			"content": map[string]interface{}{
				"imageUrl": "https://cdn.example.com/a.png",
			},
		})
		assert.Equal(t, block.TypeImage, b.Type)
		assert.Equal(t, "https://cdn.example.com/a.png", b.Content["image_url"])
		assert.NotContains(t, b.Content, "imageUrl")
	})
}

func TestNormalizeIdempotence(t *testing.T) {
	normalizer := block.NewNormalizer(block.NewRegistry())

	raws := []map[string]interface{}{
		{"_id": "b1", "type": "text", "content": map[string]interface{}{"value": "x"}},
		{"_id": map[string]interface{}{"0": "a", "1": "b"}, "type": "quote", "content": map[string]interface{}{"text": "q"}},
		{"_id": "b3", "type": "button", "content": map[string]interface{}{"label": "Go"}},
		{"_id": "b4", "type": "holograph", "content": map[string]interface{}{"beam": "on"}},
	}

	for _, raw := range raws {
		once := normalizer.Normalize(raw)
		twice := normalizer.Normalize(toRaw(t, once))
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeAllPreservesCount(t *testing.T) {
	normalizer := block.NewNormalizer(block.NewRegistry())

	raws := []map[string]interface{}{
		{"_id": "b1", "type": "text", "content": map[string]interface{}{"value": "x"}},
		{"_id": "b2", "type": "button", "content": map[string]interface{}{}},
		{"type": "image"},
	}

	blocks, substituted := normalizer.NormalizeAll(raws)

	require.Len(t, blocks, len(raws))
	assert.Equal(t, 2, substituted)
}

func toRaw(t *testing.T, b block.Block) map[string]interface{} {
	t.Helper()
	buf, err := json.Marshal(b)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf, &raw))
	return raw
}
