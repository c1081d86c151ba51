package block

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"
)

//go:embed aliases.yaml
var aliasesYAML []byte

type aliasTable struct {
	Aliases map[string]string `yaml:"aliases"`
}

var keyAliases map[string]string

func init() {
	var table aliasTable
	if err := yaml.Unmarshal(aliasesYAML, &table); err != nil {
		panic(fmt.Sprintf("parsing embedded alias table: %v", err))
	}
	keyAliases = table.Aliases
}

// CanonicalizeKeys rewrites known legacy keys to their canonical names
// at every nesting level of v. Maps and slices are copied, never
// mutated in place. When an alias and its canonical key collide on the
// same map and both values are arrays, the arrays are concatenated
// with the alias-sourced elements first; for any other collision the
// later-encountered value wins.
func CanonicalizeKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return canonicalizeMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = CanonicalizeKeys(item)
		}
		return out
	default:
		return v
	}
}

func canonicalizeMap(m map[string]interface{}) map[string]interface{} {
	// alias-sourced keys are applied before canonical ones so that a
	// merged array keeps the alias elements in front
	aliased := make([]string, 0, len(m))
	plain := make([]string, 0, len(m))
	for k := range m {
		if _, ok := keyAliases[k]; ok {
			aliased = append(aliased, k)
		} else {
			plain = append(plain, k)
		}
	}
	sort.Strings(aliased)
	sort.Strings(plain)

	out := make(map[string]interface{}, len(m))
	for _, k := range append(aliased, plain...) {
		canonical := k
		if alias, ok := keyAliases[k]; ok {
			canonical = alias
		}
		value := CanonicalizeKeys(m[k])

		existing, collides := out[canonical]
		if !collides {
			out[canonical] = value
			continue
		}
		existingArr, eOK := existing.([]interface{})
		valueArr, vOK := value.([]interface{})
		if eOK && vOK {
			out[canonical] = append(existingArr, valueArr...)
		} else {
			out[canonical] = value
		}
	}

	return out
}
