package block

import (
	"sort"
	"strconv"
)

// Normalizer repairs raw blocks into a form the schema registry
// accepts. Every step is idempotent and none of them can fail: a block
// whose content is beyond repair is substituted with a placeholder
// instead of being dropped, so block count and position survive.
type Normalizer struct {
	registry *Registry
}

func NewNormalizer(registry *Registry) *Normalizer {
	return &Normalizer{registry: registry}
}

// Normalize repairs one raw block. The result always carries a valid
// string identity. Blocks of a type the registry does not know pass
// through untouched; rendering resolves those to the fallback renderer.
func (n *Normalizer) Normalize(raw map[string]interface{}) Block {
	b, _ := n.normalize(raw)
	return b
}

// NormalizeAll repairs every block of a page in order. It returns the
// repaired blocks and how many were substituted with the placeholder.
// The result always has the same length as the input.
func (n *Normalizer) NormalizeAll(raws []map[string]interface{}) ([]Block, int) {
	blocks := make([]Block, len(raws))
	substituted := 0
	for i, raw := range raws {
		b, fellBack := n.normalize(raw)
		if fellBack {
			substituted++
		}
		blocks[i] = b
	}
	return blocks, substituted
}

func (n *Normalizer) normalize(raw map[string]interface{}) (Block, bool) {
	id := repairIdentity(raw["_id"])
	typ := rawType(raw)
	content := coerceContent(typ, raw["content"])

	if typ == "" {
		return NewFallbackBlock(), true
	}

	violations, registered := n.registry.Validate(typ, content)
	if registered && len(violations) > 0 {
		return NewFallbackBlock(), true
	}

	return Block{ID: id, Type: typ, Content: content}, false
}

// repairIdentity derives a valid string identity from whatever is in
// the _id slot. It never fails: preference order is an existing plain
// string, an embedded string id, a flattened character-indexed map
// (a known serialization bug shape), a usable string coercion, and
// finally a fresh identity.
func repairIdentity(v interface{}) string {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case map[string]interface{}:
		for _, key := range []string{"_id", "id", "$oid"} {
			if s, ok := id[key].(string); ok && s != "" {
				return s
			}
		}
		if s := flattenCharMap(id); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	}
	return NewID()
}

// flattenCharMap rebuilds a string from a map like {"0":"a","1":"b"},
// the artifact a prior save path produced by spreading a string into
// an object. Returns "" if the map is not that shape.
func flattenCharMap(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}
	indexes := make([]int, 0, len(m))
	chars := make(map[int]string, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			return ""
		}
		indexes = append(indexes, i)
		chars[i] = s
	}
	sort.Ints(indexes)

	var out string
	for _, i := range indexes {
		out += chars[i]
	}
	return out
}

func rawType(raw map[string]interface{}) Type {
	s, _ := raw["type"].(string)
	return Type(s)
}

// coerceContent reshapes a content payload towards the shape implied
// by the block type: legacy keys are canonicalized and a bare string
// payload is lifted into the type's primary text field.
func coerceContent(typ Type, v interface{}) map[string]interface{} {
	switch content := v.(type) {
	case map[string]interface{}:
		return CanonicalizeKeys(content).(map[string]interface{})
	case string:
		switch typ {
		case TypeText:
			return map[string]interface{}{"value": content}
		case TypeQuote:
			return map[string]interface{}{"text": content}
		}
	}
	return map[string]interface{}{}
}
