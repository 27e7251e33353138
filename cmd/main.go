package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/toprated/internal/adapters/bgg"
	app "github.com/okian/toprated/internal/app"
	"github.com/okian/toprated/internal/config"
	"github.com/okian/toprated/pkg/logger"
	"github.com/okian/toprated/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus listener. The run is one-shot, so this mostly
	// serves long report runs against large guilds.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, loggerInstance, cfg.MetricsAddr)
	}

	catalog, err := bgg.New(
		bgg.WithBaseURL(cfg.APIURL),
		bgg.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		bgg.WithCacheDir(cfg.CacheDir),
		bgg.WithRateLimit(cfg.RatePerSec),
		bgg.WithMaxRetries(cfg.MaxRetries),
		bgg.WithLogger(loggerInstance.Named("bgg")),
	)
	if err != nil {
		loggerInstance.Error(ctx, "failed to create catalog client", logger.Error(err))
		return 1
	}

	svc := app.New(catalog,
		app.WithLogger(loggerInstance),
		app.WithGuildID(cfg.GuildID),
		app.WithTopN(cfg.TopN),
		app.WithMinFraction(cfg.MinFraction),
		app.WithIgnoredGames(cfg.IgnoreIDs),
		app.WithHTMLOutput(cfg.HTMLOut),
		app.WithWikiOutput(cfg.WikiOut),
		app.WithFetchWorkers(cfg.FetchWorkers),
	)

	if err := svc.Run(ctx); err != nil {
		loggerInstance.Error(ctx, "report run failed", logger.Error(err))
		return 1
	}

	return 0
}

// serveMetrics exposes the Prometheus registry for the lifetime of the run.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(ctx, "starting metrics server", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server failed", logger.Error(err))
	}
}
