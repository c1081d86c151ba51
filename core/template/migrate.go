package template

import (
	"fmt"

	"github.com/sitecraft/templet/core/block"
)

const (
	DefaultPageSlug  = "index"
	DefaultPageTitle = "Sample Page"

	// maxEnvelopeDepth bounds unwrapping of nested legacy "data"
	// envelopes so a malformed self-referential document cannot loop.
	maxEnvelopeDepth = 10
)

// Migrate rewrites a raw legacy document into the current shape. It is
// total: it never returns an error, every repair is reported as an
// advisory instead. The input map is not mutated.
func Migrate(raw map[string]interface{}) (map[string]interface{}, []Advisory) {
	var advisories []Advisory

	doc := copyMap(raw)
	if doc == nil {
		doc = map[string]interface{}{}
	}

	unwrapped := 0
	for i := 0; i < maxEnvelopeDepth; i++ {
		inner, ok := doc["data"].(map[string]interface{})
		if !ok {
			break
		}
		// the envelope must go before its keys are promoted, otherwise a
		// nested "data" envelope is shadowed by the one being unwrapped
		// and its contents are lost with it
		delete(doc, "data")
		for k, v := range inner {
			if _, exists := doc[k]; !exists {
				doc[k] = v
			}
		}
		unwrapped++
	}
	if unwrapped > 0 {
		advisories = append(advisories, Advisory{
			Code:    AdvisoryEnvelopeUnwrapped,
			Message: fmt.Sprintf("unwrapped %d legacy data envelope(s)", unwrapped),
		})
	}

	doc = block.CanonicalizeKeys(doc).(map[string]interface{})

	if _, ok := doc["pages"].([]interface{}); !ok {
		doc["pages"] = []interface{}{}
	}
	if _, ok := doc["services"].([]interface{}); !ok {
		doc["services"] = []interface{}{}
	}

	pages := doc["pages"].([]interface{})
	if len(pages) == 0 {
		doc["pages"] = []interface{}{
			map[string]interface{}{
				"slug":           DefaultPageSlug,
				"title":          DefaultPageTitle,
				"content_blocks": []interface{}{},
			},
		}
		advisories = append(advisories, Advisory{
			Code:    AdvisoryDefaultPageAdded,
			Message: "template had no pages, a default page was added",
		})
	}

	return doc, advisories
}

// StripHeaderFooter removes header and footer entries from the document
// entirely, including copies buried inside legacy data envelopes. The
// input map is not mutated.
func StripHeaderFooter(raw map[string]interface{}) map[string]interface{} {
	doc := copyMap(raw)
	stripHeaderFooterInPlace(doc, 0)
	return doc
}

func stripHeaderFooterInPlace(doc map[string]interface{}, depth int) {
	if doc == nil || depth > maxEnvelopeDepth {
		return
	}
	delete(doc, "header")
	delete(doc, "footer")
	if inner, ok := doc["data"].(map[string]interface{}); ok {
		stripHeaderFooterInPlace(inner, depth+1)
	}
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch tv := v.(type) {
		case map[string]interface{}:
			out[k] = copyMap(tv)
		case []interface{}:
			out[k] = copySlice(tv)
		default:
			out[k] = v
		}
	}
	return out
}

func copySlice(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		switch tv := v.(type) {
		case map[string]interface{}:
			out[i] = copyMap(tv)
		case []interface{}:
			out[i] = copySlice(tv)
		default:
			out[i] = v
		}
	}
	return out
}
