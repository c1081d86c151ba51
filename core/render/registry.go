package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sitecraft/templet/core/block"
)

// Registry resolves a renderer for every block type. Built-in
// renderers form a static tier that can never be shadowed; plugin
// renderers register into a dynamic tier at runtime. Resolution is
// total: an uncovered type resolves to the fallback renderer.
type Registry struct {
	static map[block.Type]Renderer

	mu      sync.RWMutex
	dynamic map[block.Type]Renderer
}

func NewRegistry() *Registry {
	return &Registry{
		static:  builtinRenderers(),
		dynamic: map[block.Type]Renderer{},
	}
}

// Register adds a renderer for a block type into the dynamic tier.
// Types covered by the static tier cannot be overridden.
func (r *Registry) Register(typ block.Type, renderer Renderer) error {
	if typ == "" {
		return fmt.Errorf("cannot register a renderer for an empty block type")
	}
	if renderer == nil {
		return fmt.Errorf("cannot register a nil renderer for block type %q", typ)
	}
	if _, exists := r.static[typ]; exists {
		return fmt.Errorf("block type %q has a built-in renderer", typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dynamic[typ] = renderer
	return nil
}

// Deregister removes a dynamic renderer. Removing an unknown type is a
// no-op.
func (r *Registry) Deregister(typ block.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.dynamic, typ)
}

// RendererFor never returns nil: static tier first, then dynamic, then
// the fallback renderer.
func (r *Registry) RendererFor(typ block.Type) Renderer {
	if renderer, ok := r.static[typ]; ok {
		return renderer
	}

	r.mu.RLock()
	renderer, ok := r.dynamic[typ]
	r.mu.RUnlock()
	if ok {
		return renderer
	}
	return fallbackRenderer
}

// Render renders one block and never fails: a renderer error degrades
// to the fallback placeholder instead of propagating.
func (r *Registry) Render(blk block.Block) string {
	out, err := r.RendererFor(blk.Type).Render(blk)
	if err != nil {
		out, _ = fallbackRenderer.Render(blk)
	}
	return out
}

// RenderPage renders a page's blocks in order and concatenates the
// fragments.
func (r *Registry) RenderPage(blocks []block.Block) string {
	var out string
	for _, blk := range blocks {
		out += r.Render(blk)
	}
	return out
}

// CoverageGaps compares renderer coverage against the schema registry
// and returns, in stable order, every schema type no renderer claims.
func (r *Registry) CoverageGaps(schema *block.Registry) []block.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var gaps []block.Type
	for _, typ := range schema.Types() {
		if _, ok := r.static[typ]; ok {
			continue
		}
		if _, ok := r.dynamic[typ]; ok {
			continue
		}
		gaps = append(gaps, typ)
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps
}
