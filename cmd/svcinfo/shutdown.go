package main

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/encoding"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// run serves until ctx is cancelled or the server fails, then shuts down
// gracefully.
func run(
	ctx context.Context,
	cfg *config.Config,
	flags cliFlags,
	logger observability.Logger,
	bannerOut io.Writer,
) error {
	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Spec.Server.Address)
	if err != nil {
		app.checker.Close()
		return fmt.Errorf("failed to listen on %s: %w", cfg.Spec.Server.Address, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Serve(ln)
	}()

	logger.Info("svcinfo started",
		observability.String("address", ln.Addr().String()),
		observability.String("version", app.info.Version),
	)
	if err := printBanner(bannerOut, ln.Addr().String()); err != nil {
		logger.Warn("failed to print startup banner", observability.Error(err))
	}

	watcher := startConfigWatcher(ctx, app, flags, logger)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("server stopped unexpectedly", observability.Error(serveErr))
		}
	}

	shutdown(app, watcher)
	return serveErr
}

// startConfigWatcher watches the configuration file. Without a file
// there is nothing to watch and it returns nil. Flag overrides are
// applied to every reloaded configuration.
func startConfigWatcher(
	ctx context.Context,
	app *application,
	flags cliFlags,
	logger observability.Logger,
) *config.Watcher {
	if flags.configPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(flags.configPath, func(newCfg *config.Config) {
		applyFlagOverrides(newCfg, flags)
		app.reload(newCfg)
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		return nil
	}

	return watcher
}

// shutdown drains and stops every component. Readiness flips to
// unready first so /healthz reports degraded while requests drain.
func shutdown(app *application, watcher *config.Watcher) {
	logger := app.logger

	app.checker.SetDraining(true)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Spec.Server.ShutdownTimeout.Duration())
	defer cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop config watcher", observability.Error(err))
		}
	}

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	app.checker.Close()

	logger.Info("svcinfo stopped")
}

// printBanner writes a two-row boxed startup notice with no header.
func printBanner(w io.Writer, addr string) error {
	rec, err := value.NewRecord(
		value.F("Status", value.String("Server Started")),
		value.F("Address", value.String("http://"+addr)),
	)
	if err != nil {
		return err
	}

	body, err := encoding.NewTableRenderer(encoding.WithoutHeader()).Render(value.RecordOf(rec))
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}
