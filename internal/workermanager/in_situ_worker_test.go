package workermanager_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goto/salt/log"
	"github.com/redis/go-redis/v9"
	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/render"
	"github.com/sitecraft/templet/core/template"
	"github.com/sitecraft/templet/internal/cache"
	"github.com/sitecraft/templet/internal/workermanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInSituWorker_EnqueueWarmRenderCacheJob(t *testing.T) {
	ctx := context.Background()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	renderCache := cache.NewRenderCache(client, time.Minute)
	t.Cleanup(func() { renderCache.Close() })

	worker := workermanager.NewInSituWorker(workermanager.Deps{
		RenderRegistry: render.NewRegistry(),
		RenderCache:    renderCache,
		Logger:         log.NewNoop(),
	})

	tmpl := template.Template{
		ID:      "3ba19b3a-0b3f-4a19-8d17-1e3f77b6a2b1",
		Version: "0.2",
		Pages: []template.Page{{
			Slug: "index",
			Blocks: []block.Block{{
				ID:      "blk-1",
				Type:    block.TypeText,
				Content: map[string]interface{}{"value": "hello"},
			}},
		}},
	}

	t.Run("renders every page into the cache", func(t *testing.T) {
		require.NoError(t, worker.EnqueueWarmRenderCacheJob(ctx, tmpl))

		html, hit, err := renderCache.GetPage(ctx, tmpl.ID, "0.2", "index")
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, `<div class="block block-text">hello</div>`, html)
	})

	t.Run("stale versions are dropped on recommit", func(t *testing.T) {
		require.NoError(t, worker.EnqueueWarmRenderCacheJob(ctx, tmpl))

		next := tmpl
		next.Version = "0.3"
		require.NoError(t, worker.EnqueueWarmRenderCacheJob(ctx, next))

		_, hit, err := renderCache.GetPage(ctx, tmpl.ID, "0.2", "index")
		require.NoError(t, err)
		assert.False(t, hit)

		_, hit, err = renderCache.GetPage(ctx, tmpl.ID, "0.3", "index")
		require.NoError(t, err)
		assert.True(t, hit)
	})
}
