package workermanager

import (
	"context"
	"fmt"

	"github.com/goto/salt/log"
	"github.com/sitecraft/templet/core/render"
	"github.com/sitecraft/templet/core/template"
	"github.com/sitecraft/templet/internal/cache"
)

// InSituWorker runs follow-up jobs inline on the caller's goroutine.
// It exists so the save path has a single enqueue seam whether jobs
// run in-process or on a real queue.
type InSituWorker struct {
	renderRegistry *render.Registry
	renderCache    *cache.RenderCache
	logger         log.Logger
}

type Deps struct {
	RenderRegistry *render.Registry
	RenderCache    *cache.RenderCache
	Logger         log.Logger
}

func NewInSituWorker(deps Deps) *InSituWorker {
	return &InSituWorker{
		renderRegistry: deps.RenderRegistry,
		renderCache:    deps.RenderCache,
		logger:         deps.Logger,
	}
}

// EnqueueWarmRenderCacheJob drops every cached page of the template
// and renders the committed version into the cache.
func (m *InSituWorker) EnqueueWarmRenderCacheJob(ctx context.Context, tmpl template.Template) error {
	if err := m.renderCache.InvalidateTemplate(ctx, tmpl.ID); err != nil {
		return fmt.Errorf("warm render cache: invalidate template '%s': %w", tmpl.ID, err)
	}

	for _, page := range tmpl.Pages {
		html := m.renderRegistry.RenderPage(page.Blocks)
		if err := m.renderCache.SetPage(ctx, tmpl.ID, tmpl.Version, page.Slug, html); err != nil {
			return fmt.Errorf("warm render cache: store page '%s' of template '%s': %w", page.Slug, tmpl.ID, err)
		}
	}

	m.logger.Debug("render cache warmed", "template_id", tmpl.ID, "version", tmpl.Version, "pages", len(tmpl.Pages))
	return nil
}

func (*InSituWorker) Close() error { return nil }
