/*
main.go - Application entry point

PURPOSE:
  Starts the holiday planner server. Loads configuration, opens the
  configured store, builds the planner service and serves the API with
  graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse flags
  2. Load configuration (file + HOLIDAY_* environment)
  3. Initialize logger
  4. Open the store (sqlite, postgres or memory)
  5. Create planner service (seeds an empty store)
  6. Start session sweeper and HTTP server

COMMAND-LINE FLAGS:
  -config   Path to a config file (default: ./config.yaml if present)
  -version  Print version information and exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests (server.shutdown_timeout)
  3. Stop the sweeper and close the store

EXAMPLES:
  ./server -config=./config.yaml
  HOLIDAY_STORE_DRIVER=memory ./server
  HOLIDAY_STORE_DRIVER=postgres HOLIDAY_STORE_POSTGRES_URL=postgres://... ./server

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goversion "github.com/caarlos0/go-version"
	"github.com/joho/godotenv"
	"github.com/warp/holiday-planner/api"
	"github.com/warp/holiday-planner/config"
	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/generic/store"
	"github.com/warp/holiday-planner/holiday"
	"github.com/warp/holiday-planner/logger"
	"github.com/warp/holiday-planner/planner"
	"github.com/warp/holiday-planner/store/postgres"
	"github.com/warp/holiday-planner/store/sqlite"
	"go.uber.org/zap"
)

// Set by -ldflags at build time.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	info := buildVersion()
	if *showVersion {
		fmt.Println(info.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logr.Sync()

	if err := run(cfg, logr, info.GitVersion); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger, appVersion string) error {
	ctx := context.Background()

	st, closer, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closer.Close()
	logr.Info("store opened", zap.String("driver", cfg.Store.Driver))

	seed := holiday.SystemConfig{
		PrimeTimeMonths:  cfg.Planner.PrimeTimeMonths,
		DefaultAllowance: cfg.Planner.DefaultAllowance,
	}
	svc, err := planner.New(ctx, planner.Options{
		Store:      st,
		Logger:     logr,
		SessionTTL: cfg.Session.TTL,
		SeedConfig: &seed,
	})
	if err != nil {
		return fmt.Errorf("start planner: %w", err)
	}

	handler := api.NewHandler(svc, logr)
	handler.Version = appVersion
	router := api.NewRouter(handler, cfg.Server.CORS.AllowOrigins)

	sweeper := api.NewSessionSweeper(svc, logr)
	sweeper.Interval = cfg.Session.SweepInterval
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.Int("port", cfg.Server.Port), zap.String("version", appVersion))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logr.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logr.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (generic.Store, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverMemory:
		return store.NewMemory(), io.NopCloser(nil), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("holiday-planner", "Multi-branch staff holiday planner", ""),
		func(i *goversion.Info) {
			if version != "" {
				i.GitVersion = version
			}
			if commit != "" {
				i.GitCommit = commit
			}
			if date != "" {
				i.BuildDate = date
			}
		},
	)
}
