package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/log"
	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/render"
	"github.com/sitecraft/templet/core/template"
	"github.com/sitecraft/templet/internal/cache"
	"github.com/sitecraft/templet/internal/store/postgres"
	"github.com/sitecraft/templet/internal/workermanager"
	"github.com/sitecraft/templet/pkg/statsd"
	"github.com/spf13/cobra"
)

// renderCommand renders every page of a stored template to stdout. It
// wires the full engine: postgres repository, gate, renderer registry
// and, when enabled, the redis render cache.
func renderCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "render <template-id>",
		Short: "Render a stored template's pages as HTML",
		Example: heredoc.Doc(`
			$ templet render 3ba19b3a-0b3f-4a19-8d17-1e3f77b6a2b1
			$ templet render 3ba19b3a-0b3f-4a19-8d17-1e3f77b6a2b1 --at-version 0.4
		`),
		Args: cobra.ExactArgs(1),
		Annotations: map[string]string{
			"group:core": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := LoadConfig()
			if err != nil && cfg == nil {
				return err
			}
			logger := initLogger(cfg.LogLevel)

			svc, renderRegistry, cleanup, err := initEngine(*cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			var tmpl template.Template
			if version != "" {
				tmpl, err = svc.GetTemplateByVersion(ctx, args[0], version)
			} else {
				tmpl, err = svc.GetTemplateByID(ctx, args[0])
			}
			if err != nil {
				return err
			}

			for _, page := range tmpl.Pages {
				fmt.Printf("<!-- page: %s -->\n", page.Slug)
				fmt.Println(renderRegistry.RenderPage(page.Blocks))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "at-version", "", "Render the template as of a past version")
	return cmd
}

// initEngine builds the template service with its storage, metrics and
// render cache collaborators.
func initEngine(cfg Config, logger log.Logger) (*template.Service, *render.Registry, func(), error) {
	pgClient, err := postgres.NewClient(cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	repository, err := postgres.NewTemplateRepository(pgClient, postgres.DefaultMaxResultSize)
	if err != nil {
		pgClient.Close()
		return nil, nil, nil, err
	}

	metrics, err := statsd.Init(logger, cfg.StatsD)
	if err != nil {
		pgClient.Close()
		return nil, nil, nil, fmt.Errorf("init statsd: %w", err)
	}

	var renderCache *cache.RenderCache
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewClient(cfg.Cache, logger)
		if err != nil {
			pgClient.Close()
			metrics.Close()
			return nil, nil, nil, err
		}
		renderCache = cache.NewRenderCache(redisClient, cfg.Cache.TTL)
	}

	renderRegistry := render.NewRegistry()
	worker := workermanager.NewInSituWorker(workermanager.Deps{
		RenderRegistry: renderRegistry,
		RenderCache:    renderCache,
		Logger:         logger,
	})

	svc := template.NewService(template.ServiceDeps{
		Repo:    repository,
		Gate:    template.NewGate(block.NewRegistry()),
		Worker:  worker,
		Metrics: metrics,
	})

	cleanup := func() {
		worker.Close()
		renderCache.Close()
		metrics.Close()
		pgClient.Close()
	}
	return svc, renderRegistry, cleanup, nil
}
