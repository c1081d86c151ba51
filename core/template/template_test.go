package template_test

import (
	"testing"
	"time"

	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Diff(t *testing.T) {
	base := template.Template{
		ID:       "id-1",
		Slug:     "bakery-site",
		Name:     "Bakery",
		Industry: "food",
		Version:  "0.3",
		Pages: []template.Page{{
			ID:    "page-1",
			Slug:  "index",
			Title: "Home",
		}},
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("identical templates have an empty changelog", func(t *testing.T) {
		other := base
		changelog, err := base.Diff(&other)
		require.NoError(t, err)
		assert.Empty(t, changelog)
	})

	t.Run("template identity and audit fields are excluded", func(t *testing.T) {
		other := base
		other.ID = "id-2"
		other.Version = "0.9"
		other.UpdatedAt = other.UpdatedAt.Add(time.Hour)

		changelog, err := base.Diff(&other)
		require.NoError(t, err)
		assert.Empty(t, changelog)
	})

	t.Run("page and block ids are part of the changelog", func(t *testing.T) {
		other := base
		other.Pages = []template.Page{{
			ID:    "page-2",
			Slug:  "index",
			Title: "Home",
		}}

		changelog, err := base.Diff(&other)
		require.NoError(t, err)
		require.Len(t, changelog, 1)
		assert.Equal(t, []string{"pages", "0", "id"}, changelog[0].Path)
	})

	t.Run("content changes are captured", func(t *testing.T) {
		other := base
		other.Name = "Bakery Deluxe"
		other.Pages = []template.Page{{
			ID:    "page-1",
			Slug:  "index",
			Title: "Welcome",
		}}

		changelog, err := base.Diff(&other)
		require.NoError(t, err)
		assert.NotEmpty(t, changelog)

		var touched []string
		for _, change := range changelog {
			touched = append(touched, change.Path[0])
		}
		assert.Contains(t, touched, "name")
		assert.Contains(t, touched, "pages")
	})
}

func TestTemplate_Patch(t *testing.T) {
	base := func() template.Template {
		return template.Template{
			Slug:     "bakery-site",
			Name:     "Bakery",
			Industry: "food",
			Meta: map[string]interface{}{
				"seo": map[string]interface{}{"title": "Bakery", "index": true},
			},
			Pages: []template.Page{{ID: "page-1", Slug: "index"}},
		}
	}

	t.Run("overwrites scalar fields", func(t *testing.T) {
		tmpl := base()
		tmpl.Patch(map[string]interface{}{
			"name":  "Bakery Deluxe",
			"theme": "dark",
		})
		assert.Equal(t, "Bakery Deluxe", tmpl.Name)
		assert.Equal(t, "dark", tmpl.Theme)
		assert.Equal(t, "food", tmpl.Industry)
	})

	t.Run("ignores scalar fields of the wrong type", func(t *testing.T) {
		tmpl := base()
		tmpl.Patch(map[string]interface{}{"name": 42})
		assert.Equal(t, "Bakery", tmpl.Name)
	})

	t.Run("deep merges meta", func(t *testing.T) {
		tmpl := base()
		tmpl.Patch(map[string]interface{}{
			"meta": map[string]interface{}{
				"seo": map[string]interface{}{"title": "Bakery Deluxe"},
			},
		})

		seo := tmpl.Meta["seo"].(map[string]interface{})
		assert.Equal(t, "Bakery Deluxe", seo["title"])
		assert.Equal(t, true, seo["index"])
	})

	t.Run("replaces pages wholesale", func(t *testing.T) {
		tmpl := base()
		tmpl.Patch(map[string]interface{}{
			"pages": []interface{}{
				map[string]interface{}{"slug": "about", "title": "About"},
			},
		})
		require.Len(t, tmpl.Pages, 1)
		assert.Equal(t, "about", tmpl.Pages[0].Slug)
	})

	t.Run("replaces header block", func(t *testing.T) {
		tmpl := base()
		tmpl.Patch(map[string]interface{}{
			"header": map[string]interface{}{
				"_id":     "blk-h",
				"type":    "header",
				"content": map[string]interface{}{"logo_url": "https://x/logo.png"},
			},
		})
		require.NotNil(t, tmpl.Header)
		assert.Equal(t, block.TypeHeader, tmpl.Header.Type)
	})
}

func TestTemplate_Clone(t *testing.T) {
	original := template.Template{
		Slug: "bakery-site",
		Name: "Bakery",
		Pages: []template.Page{{
			ID:   "page-1",
			Slug: "index",
			Blocks: []block.Block{{
				ID:      "blk-1",
				Type:    block.TypeText,
				Content: map[string]interface{}{"value": "hello"},
			}},
		}},
	}

	clone, err := original.Clone()
	require.NoError(t, err)

	clone.Pages[0].Blocks[0].Content["value"] = "changed"
	assert.Equal(t, "hello", original.Pages[0].Blocks[0].Content["value"])
}
