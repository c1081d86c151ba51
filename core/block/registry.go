package block

import (
	"fmt"
	"sort"
)

// Kind is the expected JSON kind of a content field.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindArray  Kind = "array"
	KindMap    Kind = "map"
	// KindAny accepts any value. It exists so that a payload shape the
	// registry cannot describe is an explicit choice, never a silent
	// default.
	KindAny Kind = "any"
)

// FieldSpec describes a single field of a block's content payload.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
}

// ContentSpec is the schema of one block type's content payload.
type ContentSpec struct {
	Fields []FieldSpec
}

// Validate checks content against the spec and returns every violation
// found, each addressed with a "content.<field>" path. A nil result
// means the payload is valid.
func (s ContentSpec) Validate(content map[string]interface{}) []Violation {
	if content == nil {
		return []Violation{{Path: "content", Reason: "content payload is missing"}}
	}

	var violations []Violation
	for _, f := range s.Fields {
		val, exists := content[f.Name]
		if !exists || val == nil {
			if f.Required {
				violations = append(violations, Violation{
					Path:   "content." + f.Name,
					Reason: "required field is missing",
				})
			}
			continue
		}
		if !kindMatches(f.Kind, val) {
			violations = append(violations, Violation{
				Path:   "content." + f.Name,
				Reason: fmt.Sprintf("expected %s, got %T", f.Kind, val),
			})
		}
	}

	return violations
}

func kindMatches(k Kind, val interface{}) bool {
	switch k {
	case KindString:
		_, ok := val.(string)
		return ok
	case KindNumber:
		switch val.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := val.(bool)
		return ok
	case KindArray:
		switch val.(type) {
		case []interface{}, []map[string]interface{}, []string:
			return true
		}
		return false
	case KindMap:
		_, ok := val.(map[string]interface{})
		return ok
	case KindAny:
		return true
	}
	return false
}

// Registry is the single source of truth for what a valid block of a
// given type looks like. An unknown type is an absent entry, which
// callers must treat distinctly from a present entry that fails.
type Registry struct {
	specs map[Type]ContentSpec
}

// NewRegistry returns a registry populated with the content specs of
// every supported block type.
func NewRegistry() *Registry {
	return &Registry{specs: map[Type]ContentSpec{
		TypeText: {Fields: []FieldSpec{
			{Name: "value", Kind: KindString, Required: true},
		}},
		TypeImage: {Fields: []FieldSpec{
			{Name: "image_url", Kind: KindString, Required: true},
			{Name: "alt", Kind: KindString},
		}},
		TypeVideo: {Fields: []FieldSpec{
			{Name: "video_url", Kind: KindString, Required: true},
			{Name: "caption", Kind: KindString},
		}},
		TypeAudio: {Fields: []FieldSpec{
			{Name: "audio_url", Kind: KindString, Required: true},
			{Name: "title", Kind: KindString},
		}},
		TypeQuote: {Fields: []FieldSpec{
			{Name: "text", Kind: KindString, Required: true},
			{Name: "attribution", Kind: KindString},
		}},
		TypeButton: {Fields: []FieldSpec{
			{Name: "label", Kind: KindString, Required: true},
			{Name: "href", Kind: KindString, Required: true},
			{Name: "style", Kind: KindString},
		}},
		TypeGrid: {Fields: []FieldSpec{
			{Name: "items", Kind: KindArray, Required: true},
			{Name: "columns", Kind: KindNumber},
		}},
		TypeTestimonial: {Fields: []FieldSpec{
			{Name: "text", Kind: KindString, Required: true},
			{Name: "author", Kind: KindString},
			{Name: "avatar_url", Kind: KindString},
		}},
		TypeServices: {Fields: []FieldSpec{
			{Name: "items", Kind: KindArray, Required: true},
		}},
		TypeCTA: {Fields: []FieldSpec{
			{Name: "heading", Kind: KindString, Required: true},
			{Name: "button", Kind: KindMap},
		}},
		TypeHero: {Fields: []FieldSpec{
			{Name: "heading", Kind: KindString, Required: true},
			{Name: "subheading", Kind: KindString},
			{Name: "image_url", Kind: KindString},
		}},
		TypeHeader: {Fields: []FieldSpec{
			{Name: "nav_items", Kind: KindArray},
			{Name: "logo_url", Kind: KindString},
		}},
		TypeFooter: {Fields: []FieldSpec{
			{Name: "nav_items", Kind: KindArray},
			{Name: "logo_url", Kind: KindString},
			{Name: "text", Kind: KindString},
		}},
		TypeContactForm: {Fields: []FieldSpec{
			{Name: "heading", Kind: KindString},
			{Name: "fields", Kind: KindArray},
			{Name: "submit_label", Kind: KindString},
		}},
	}}
}

// Lookup returns the content spec registered for the given type. The
// second return value reports whether an entry exists at all.
func (r *Registry) Lookup(t Type) (ContentSpec, bool) {
	spec, ok := r.specs[t]
	return spec, ok
}

// Validate runs the registered validator for the given type against
// content. The second return value reports whether a spec was
// registered; when it is false the violations slice is always nil.
func (r *Registry) Validate(t Type, content map[string]interface{}) ([]Violation, bool) {
	spec, ok := r.specs[t]
	if !ok {
		return nil, false
	}
	return spec.Validate(content), true
}

// Types returns all registered block types in stable order.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
