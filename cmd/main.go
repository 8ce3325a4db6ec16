package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtlens/internal/adapters/http/api"
	"courtlens/internal/adapters/http/swagger"
	"courtlens/internal/app"
	"courtlens/internal/compute"
	"courtlens/internal/config"
	"courtlens/internal/domain/render"
	"courtlens/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	policy, err := buildPolicy(cfg)
	if err != nil {
		os.Stderr.WriteString("invalid render configuration: " + err.Error() + "\n")
		return
	}

	svc := app.New(
		app.WithClient(buildComputeClient(ctx, cfg, log)),
		app.WithPolicy(policy),
		app.WithLogger(log),
		app.WithNoticeCap(cfg.NoticeCap),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// buildComputeClient talks to the configured analytics backend, or falls
// back to the deterministic in-memory engine when no URL is set.
func buildComputeClient(ctx context.Context, cfg *config.Config, log logger.Logger) compute.Client {
	if cfg.ComputeURL != "" {
		log.Info(ctx, "using remote compute backend", logger.String("url", cfg.ComputeURL))
		return compute.NewHTTPClient(cfg.ComputeURL,
			compute.WithTimeout(time.Duration(cfg.ComputeTimeoutMS)*time.Millisecond),
			compute.WithLogger(logger.Named("compute")),
		)
	}
	log.Info(ctx, "using in-memory compute engine")
	return compute.NewInMemoryEngine(
		compute.WithShape(cfg.GridXBins, cfg.GridYBins, cfg.TimeBins),
	)
}

func buildPolicy(cfg *config.Config) (*render.Policy, error) {
	mode, err := render.ParseSizeMode(cfg.SizeMode)
	if err != nil {
		return nil, err
	}
	return render.NewPolicy(
		render.WithSizeMode(mode),
		render.WithMaxDiameter(cfg.MaxDiameter),
		render.WithFixedMax(cfg.FixedMax),
		render.WithScale(cfg.SizeScale),
		render.WithEpsilon(cfg.DominanceEpsilon),
	), nil
}
