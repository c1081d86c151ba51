package template

import (
	"encoding/json"

	"github.com/peterbourgon/mergemap"
	"github.com/sitecraft/templet/core/block"
)

// patchTemplate updates a template with the given map of patches.
// Scalar fields are overwritten when present, meta is deep-merged, and
// pages, services, header and footer are replaced wholesale.
func patchTemplate(t *Template, patchData map[string]interface{}) {
	t.Slug = patchString("slug", patchData, t.Slug)
	t.Name = patchString("name", patchData, t.Name)
	t.Industry = patchString("industry", patchData, t.Industry)
	t.Layout = patchString("layout", patchData, t.Layout)
	t.Theme = patchString("theme", patchData, t.Theme)

	if meta, ok := patchData["meta"].(map[string]interface{}); ok {
		if len(t.Meta) == 0 {
			t.Meta = meta
		} else {
			t.Meta = mergemap.Merge(t.Meta, meta)
		}
	}

	if pages, ok := patchData["pages"]; ok {
		var decoded []Page
		if reencode(pages, &decoded) {
			t.Pages = decoded
		}
	}
	if services, ok := patchData["services"]; ok {
		var decoded []map[string]interface{}
		if reencode(services, &decoded) {
			t.Services = decoded
		}
	}
	for _, key := range []string{"header", "footer"} {
		raw, ok := patchData[key]
		if !ok {
			continue
		}
		var decoded *block.Block
		if !reencode(raw, &decoded) {
			continue
		}
		if key == "header" {
			t.Header = decoded
		} else {
			t.Footer = decoded
		}
	}
}

// reencode converts an untyped value into dst through JSON. Returns
// false when the value does not fit dst's shape.
func reencode(v interface{}, dst interface{}) bool {
	buf, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(buf, dst) == nil
}

func patchString(key string, data map[string]interface{}, defaultValue string) string {
	getString := func(m map[string]interface{}) string {
		value, exists := m[key]
		if !exists {
			return defaultValue
		}
		stringVal, ok := value.(string)
		if !ok {
			return defaultValue
		}
		return stringVal
	}
	return getString(data)
}
