package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/sitecraft/templet/core/block"
)

//go:generate mockery --name=Renderer -r --case underscore --with-expecter --structname Renderer --filename renderer_mock.go --output=./mocks

// Renderer turns one block into an HTML fragment. Implementations are
// safe for concurrent use.
type Renderer interface {
	Render(blk block.Block) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(blk block.Block) (string, error)

func (f RendererFunc) Render(blk block.Block) (string, error) {
	return f(blk)
}

// fallbackRenderer renders a visible placeholder for any block no real
// renderer claims. Its output always carries the offending type tag so
// the gap is attributable in the rendered page.
var fallbackRenderer = RendererFunc(func(blk block.Block) (string, error) {
	return fmt.Sprintf(
		`<div class="block block-unsupported" data-type=%q><!-- no renderer registered for block type %q --></div>`,
		string(blk.Type), string(blk.Type)), nil
})

// fragmentRenderer executes one named template of the fragment set.
type fragmentRenderer struct {
	tmpl *template.Template
	name string
}

func (r fragmentRenderer) Render(blk block.Block) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, r.name, blk); err != nil {
		return "", fmt.Errorf("render %s block: %w", r.name, err)
	}
	return sb.String(), nil
}
