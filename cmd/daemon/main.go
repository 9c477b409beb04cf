package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mhoffm/nextup/internal/api"
	"github.com/mhoffm/nextup/internal/config"
	"github.com/mhoffm/nextup/internal/guide"
	xglog "github.com/mhoffm/nextup/internal/log"
	"github.com/mhoffm/nextup/internal/roster"
	"github.com/mhoffm/nextup/internal/schedule"
	"github.com/mhoffm/nextup/internal/selector"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		logger := xglog.WithComponent("daemon")
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version,
	})
	logger := xglog.WithComponent("daemon")
	logger.Info().
		Str("event", "config.loaded").
		Str("guide_base", cfg.GuideBase).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := guide.NewWithTimeout(cfg.GuideBase, cfg.FetchTimeout)

	ros := roster.New(roster.Config{
		Base:            cfg.GuideBase,
		RefreshInterval: cfg.RefreshInterval,
		AudioFilter:     roster.AudioFilter(cfg.AudioFilter),
	}, client)

	// One synchronous refresh before serving; the poller keeps probing at
	// the fast cadence if the source is not reachable yet.
	if err := ros.Init(ctx); err != nil {
		logger.Warn().
			Err(err).
			Str("event", "roster.init_failed").
			Msg("initial refresh failed, starting in connecting state")
	}

	sel := selector.New(selector.Config{
		RetryDelay: cfg.RetryDelay,
		Retries:    cfg.Retries,
	}, ros, schedule.NewResolver(client, ros), schedule.NewLiveResolver(client))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(sel, ros).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ros.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info().
			Str("event", "http.listen").
			Str("addr", cfg.Listen).
			Msg("serving API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
	}
	logger.Info().Str("event", "daemon.stopped").Msg("shutdown complete")
}
