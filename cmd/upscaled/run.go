package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"upscaled/internal/config"
	"upscaled/internal/httpapi"
	"upscaled/internal/manager"
	"upscaled/internal/registry"
	"upscaled/internal/scratch"
	"upscaled/pkg/types"
)

// shutdownTimeout is how long in-flight upscales may drain after a signal.
const shutdownTimeout = 30 * time.Second

func newLogger(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "upscaled").Logger()
}

func newUpscaler(cfg config.Config, logger *zerolog.Logger) (manager.Upscaler, error) {
	switch cfg.Backend {
	case config.BackendExec:
		return manager.NewExecUpscaler(manager.ExecConfig{
			Bin:    cfg.UpscalerBin,
			Args:   cfg.UpscalerArgs,
			Scale:  cfg.Scale,
			Logger: logger,
		}), nil
	case config.BackendHTTP:
		return manager.NewHTTPUpscaler(cfg.UpscalerURL, cfg.Scale, &http.Client{}), nil
	case config.BackendResample:
		return manager.NewResampleUpscaler(cfg.Scale), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func run(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	var models []types.Model
	if cfg.ModelsDir != "" {
		var err error
		if models, err = registry.LoadDir(cfg.ModelsDir); err != nil {
			return fmt.Errorf("failed to load models: %w", err)
		}
	}
	store, err := scratch.New(cfg.UploadsDir, cfg.OutputsDir)
	if err != nil {
		return fmt.Errorf("scratch dirs: %w", err)
	}
	up, err := newUpscaler(cfg, &logger)
	if err != nil {
		return err
	}
	mgr, err := manager.NewWithConfig(manager.ManagerConfig{
		Logger:         &logger,
		Upscaler:       up,
		Scratch:        store,
		ModelPath:      cfg.ModelPath,
		Registry:       models,
		Backend:        cfg.Backend,
		Scale:          cfg.Scale,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		MaxConcurrent:  cfg.MaxConcurrent,
		MaxQueueDepth:  cfg.MaxQueueDepth,
		MaxWait:        seconds(cfg.MaxWaitSeconds),
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	if rep := mgr.SanityCheck(); !rep.OK() {
		// keep serving; each request reports the problem until it is fixed
		logger.Warn().Str("model_path", rep.ModelPath).Bool("model_found", rep.ModelFound).
			Bool("backend_available", rep.BackendAvailable).Str("error", rep.Error).
			Msg("upscaler not ready")
	}

	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxUploadBytes(cfg.MaxUploadBytes())
	httpapi.SetInferTimeoutSeconds(int64(cfg.InferTimeoutSeconds))
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// Handlers only see cancellation once draining has timed out.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	mgr.StartSweeper(ctx, seconds(cfg.SweepIntervalSeconds), seconds(cfg.SweepMaxAgeSeconds))

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Str("model_path", cfg.ModelPath).
			Int("models", len(models)).Msg("upscaled listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Dur("timeout", shutdownTimeout).Msg("shutting down")
	if err := drain(srv, cancelBase, shutdownTimeout); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// drain stops accepting connections and waits for in-flight requests. If they
// outlive timeout, cancelBase aborts them so they answer 503.
func drain(srv *http.Server, cancelBase context.CancelFunc, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	if err != nil {
		cancelBase()
	}
	return err
}
