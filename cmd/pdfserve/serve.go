package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alnah/go-pdfserve"
	"github.com/alnah/go-pdfserve/internal/artifact"
	"github.com/alnah/go-pdfserve/internal/config"
	"github.com/alnah/go-pdfserve/internal/httpapi"
	"github.com/alnah/go-pdfserve/internal/templates"
)

// shutdownGrace bounds how long in-flight renders may finish after a
// termination signal. Chrome conversions are slow, so this stays well
// above typical page render times.
const shutdownGrace = 15 * time.Second

// buildConfig merges flags over the loaded configuration. Flags win over
// environment variables, which win over the config file.
func buildConfig(f *serveFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(f.config, logger)
	if err != nil {
		return nil, err
	}

	if f.set["addr"] {
		cfg.Addr = f.addr
	}
	if f.set["storage-dir"] {
		cfg.StorageDir = f.storageDir
	}
	if f.set["templates"] {
		cfg.TemplatesDir = f.templates
	}
	if f.set["workers"] {
		cfg.Workers = f.workers
	}
	return cfg, nil
}

// buildLoader picks the template source: a directory when configured,
// otherwise the templates embedded in the binary.
func buildLoader(cfg *config.Config) (templates.Loader, error) {
	if cfg.TemplatesDir == "" {
		return templates.NewEmbeddedLoader(), nil
	}
	loader, err := templates.NewDirLoader(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	return loader, nil
}

// serve wires the render pipeline to an HTTP server and blocks until
// ctx is canceled or the listener fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loader, err := buildLoader(cfg)
	if err != nil {
		return err
	}
	engine := templates.NewEngine(loader)

	store := artifact.NewStore(cfg.StorageDir, cfg.TTL(), logger)
	if err := store.EnsureDir(); err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}
	if removed := store.Sweep(time.Now()); removed > 0 {
		logger.Info("startup sweep removed expired artifacts", "count", removed)
	}

	poolSize := pdfserve.ResolvePoolSize(cfg.Workers)
	pool := pdfserve.NewServicePool(poolSize, func() *pdfserve.Service {
		return pdfserve.New(
			pdfserve.WithEngine(engine),
			pdfserve.WithTimeout(cfg.Timeout),
		)
	})
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing render pool", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(cfg, pool, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
		// Read and write timeouts must cover a full Chrome render.
		ReadTimeout:  cfg.Timeout + 30*time.Second,
		WriteTimeout: cfg.Timeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", cfg.Addr,
			"workers", poolSize,
			"ttl_seconds", cfg.TTLSeconds,
			"auth_enabled", cfg.AuthEnabled(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", shutdownGrace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
