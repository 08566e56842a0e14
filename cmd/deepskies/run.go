package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/config"
	"github.com/litescript/deepskies/internal/index"
	"github.com/litescript/deepskies/internal/logging"
	"github.com/litescript/deepskies/internal/metrics"
	"github.com/litescript/deepskies/internal/render"
	"github.com/litescript/deepskies/internal/state"
	"github.com/litescript/deepskies/internal/ui"
	"github.com/litescript/deepskies/internal/watch"
)

const shutdownTimeout = 10 * time.Second

// runTUI starts the terminal sky and its helpers: the catalog watcher and the
// metrics server. The first to fail stops the rest.
func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere
	logger := logging.Discard()
	if cfg.LogFile != "" {
		l, closer, err := logging.OpenFile(logging.ParseLevel(cfg.LogLevel), cfg.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()
		logger = l
	}
	logger.Info("deepskies starting, catalog %s", cfg.Catalog)

	mgr := state.NewManager(state.DefaultConfig(), cfg.View)

	var opts []render.Option
	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector, err = metrics.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		opts = append(opts, render.WithObserver(collector))
	}

	store := openFreshIndex(ctx, cfg, logger.With("index"))
	if store != nil {
		defer store.Close()
		opts = append(opts, render.WithSelector(store))
	}

	model := ui.New(ui.Options{
		Context:     ctx,
		State:       mgr,
		CatalogPath: cfg.Catalog,
		Render:      opts,
		Logger:      logger.With("ui"),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if cfg.Watch {
		g.Go(func() error {
			err := watch.Watch(gctx, cfg.Catalog, watch.DefaultDebounce, logger.With("watch"), func(path string) {
				if store != nil {
					// Until the rebuild commits, frames see a stale index and scan
					if n, err := refreshIndex(gctx, store, path); err != nil {
						logger.Warn("index not rebuilt: %v", err)
					} else if n >= 0 {
						logger.Info("index rebuilt, %d stars", n)
					}
				}
				p.Send(ui.CatalogChangedMsg{Path: path})
			})
			if err != nil {
				// The sky still works without live reload
				logger.Warn("catalog watch disabled: %v", err)
			}
			return nil
		})
	}

	if collector != nil {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           collector.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics listening on %s", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("stopped: %v", err)
		return err
	}
	return nil
}

// openFreshIndex opens the configured magnitude index when it exists and
// was built from the current data file. Otherwise it returns nil and frames
// fall back to a full scan.
func openFreshIndex(ctx context.Context, cfg *config.Config, logger *logging.Logger) *index.Store {
	path := cfg.IndexPath()
	if _, err := os.Stat(path); err != nil {
		logger.Debug("no index at %s", path)
		return nil
	}

	fingerprint, err := catalogFingerprint(cfg.Catalog)
	if err != nil {
		logger.Warn("index not used: %v", err)
		return nil
	}

	store, err := index.Open(path)
	if err != nil {
		logger.Warn("index not used: %v", err)
		return nil
	}
	fresh, err := store.Fresh(ctx, fingerprint)
	if err != nil || !fresh {
		logger.Warn("index %s is stale, run `deepskies index` to rebuild", path)
		store.Close()
		return nil
	}
	logger.Info("using index %s", path)
	return store
}

func catalogFingerprint(path string) (string, error) {
	cat, err := catalog.Open(path)
	if err != nil {
		return "", err
	}
	defer cat.Close()
	return cat.Fingerprint()
}

// refreshIndex rebuilds store from the data file at path unless it already
// matches. It returns the number of stars indexed, or -1 when nothing had to
// be done.
func refreshIndex(ctx context.Context, store *index.Store, path string) (int, error) {
	cat, err := catalog.Open(path)
	if err != nil {
		return 0, err
	}
	defer cat.Close()

	fingerprint, err := cat.Fingerprint()
	if err != nil {
		return 0, err
	}
	fresh, err := store.Fresh(ctx, fingerprint)
	if err != nil {
		return 0, err
	}
	if fresh {
		return -1, nil
	}
	return store.Build(ctx, cat)
}
