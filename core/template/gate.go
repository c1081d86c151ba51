package template

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/validator"
)

// strippedFields are server-owned keys a client payload is never
// allowed to set. They are removed before the document is even looked
// at, so a stale read-modify-write cycle cannot smuggle them back in.
var strippedFields = []string{
	"created_at",
	"updated_at",
	"updated_by",
	"version",
	"changelog",
	"claimed_by",
	"claimed_at",
	"owner_id",
	"published_at",
	"view_count",
}

// Gate is the single entry point a raw document passes through before
// it can be persisted. It strips server-owned fields, migrates legacy
// shapes, repairs blocks, and validates the result. Repairs surface as
// advisories; only genuine rule violations block the save.
type Gate struct {
	normalizer *block.Normalizer
	now        func() time.Time
}

func NewGate(registry *block.Registry) *Gate {
	return &Gate{
		normalizer: block.NewNormalizer(registry),
		now:        time.Now,
	}
}

// PrepareForSave turns an untrusted raw document into a Template ready
// for persistence. A non-nil error is always a ValidationErrors value
// carrying the complete violation set.
func (g *Gate) PrepareForSave(raw map[string]interface{}) (Template, []Advisory, error) {
	doc, advisories := Migrate(raw)
	for _, f := range strippedFields {
		delete(doc, f)
	}

	substituted := g.repairPages(doc)
	if substituted > 0 {
		advisories = append(advisories, Advisory{
			Code:    AdvisoryBlocksAutofixed,
			Message: fmt.Sprintf("%d block(s) were replaced with a placeholder", substituted),
		})
	}
	g.repairSharedBlocks(doc)

	tmpl, err := decodeTemplate(doc)
	if err != nil {
		return Template{}, nil, ValidationErrors{{Path: "", Reason: err.Error()}}
	}

	if verrs := validateTemplate(&tmpl); len(verrs) > 0 {
		return Template{}, nil, verrs
	}

	tmpl.UpdatedAt = g.now()
	return tmpl, advisories, nil
}

// Canonicalize repairs a template on the read path without persisting
// the result, so documents stored before a repair rule existed still
// come out clean.
func (g *Gate) Canonicalize(tmpl Template) (Template, error) {
	raw, err := tmpl.ToRaw()
	if err != nil {
		return Template{}, err
	}
	doc, _ := Migrate(raw)
	g.repairPages(doc)
	g.repairSharedBlocks(doc)

	out, err := decodeTemplate(doc)
	if err != nil {
		return Template{}, err
	}
	out.ID = tmpl.ID
	out.Version = tmpl.Version
	out.Deleted = tmpl.Deleted
	out.UpdatedBy = tmpl.UpdatedBy
	out.CreatedAt = tmpl.CreatedAt
	out.UpdatedAt = tmpl.UpdatedAt
	return out, nil
}

// repairPages normalizes every block of every page in place and
// returns how many blocks were substituted with the placeholder. Page
// identity is assigned here when missing.
func (g *Gate) repairPages(doc map[string]interface{}) int {
	pages, _ := doc["pages"].([]interface{})
	substituted := 0
	for _, p := range pages {
		page, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if id, _ := page["id"].(string); id == "" {
			page["id"] = uuid.NewString()
		}

		raws := rawBlocks(page)
		blocks, fellBack := g.normalizer.NormalizeAll(raws)
		substituted += fellBack

		encoded := make([]interface{}, len(blocks))
		for i, b := range blocks {
			encoded[i] = blockToRaw(b)
		}
		page["content_blocks"] = encoded
		delete(page, "blocks")
	}
	return substituted
}

func (g *Gate) repairSharedBlocks(doc map[string]interface{}) {
	for _, key := range []string{"header", "footer"} {
		raw, ok := doc[key].(map[string]interface{})
		if !ok {
			continue
		}
		doc[key] = blockToRaw(g.normalizer.Normalize(raw))
	}
}

// rawBlocks reads a page's block list from its canonical key, falling
// back to the legacy "blocks" key for documents the key canonicalizer
// never saw.
func rawBlocks(page map[string]interface{}) []map[string]interface{} {
	list, ok := page["content_blocks"].([]interface{})
	if !ok {
		list, _ = page["blocks"].([]interface{})
	}

	raws := make([]map[string]interface{}, len(list))
	for i, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			raws[i] = m
		} else {
			raws[i] = map[string]interface{}{}
		}
	}
	return raws
}

func blockToRaw(b block.Block) map[string]interface{} {
	return map[string]interface{}{
		"_id":     b.ID,
		"type":    string(b.Type),
		"content": b.Content,
	}
}

func decodeTemplate(doc map[string]interface{}) (Template, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return Template{}, fmt.Errorf("encode document: %w", err)
	}
	var tmpl Template
	if err := json.Unmarshal(buf, &tmpl); err != nil {
		return Template{}, fmt.Errorf("document does not decode into a template: %w", err)
	}
	return tmpl, nil
}

// validateTemplate collects every rule violation: struct constraints
// first, then rules the tag language cannot express, such as page slug
// uniqueness.
func validateTemplate(tmpl *Template) ValidationErrors {
	var verrs ValidationErrors
	for _, fv := range validator.Struct(tmpl) {
		verrs = append(verrs, Violation{Path: fv.Path, Reason: fv.Reason})
	}

	seen := map[string]int{}
	for i, page := range tmpl.Pages {
		if page.Slug == "" {
			continue
		}
		if first, dup := seen[page.Slug]; dup {
			verrs = append(verrs, Violation{
				Path:   fmt.Sprintf("pages[%d].slug", i),
				Reason: fmt.Sprintf("duplicates the slug of pages[%d]", first),
			})
			continue
		}
		seen[page.Slug] = i
	}
	return verrs
}
