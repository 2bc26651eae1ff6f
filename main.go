package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/transit-sign/app"
	"github.com/deevus/transit-sign/board"
	"github.com/deevus/transit-sign/config"
	"github.com/deevus/transit-sign/feed"
	"github.com/deevus/transit-sign/internal"
	"github.com/deevus/transit-sign/scheduler"
	"github.com/deevus/transit-sign/status"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "path to config file")
	flag.Parse()

	// A missing file is only an error when the path was given explicitly.
	var cfg *config.Config
	var err error
	if *configFlag == config.DefaultPath() {
		cfg, err = config.Load(*configFlag, true)
	} else {
		cfg, err = config.LoadFrom(*configFlag)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, err := internal.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logFile, err := internal.OpenLogFile(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := internal.NewLogger(logFile, level)
	defer internal.SafeClose(logFile, logger, "log file")

	if err := run(cfg, logger); err != nil {
		internal.LogError(logger, "sign exited with error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		internal.SafeClose(logFile, logger, "log file")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := feed.NewClient(feed.ClientParams{
		BaseURL:    cfg.BaseURL(),
		HTTPClient: &http.Client{Timeout: cfg.FetchTimeout()},
		Logger:     logger,
	})
	store := board.NewStore()

	var root *app.App
	sched := scheduler.New(scheduler.Params{
		Fetcher:  client,
		Store:    store,
		Stops:    board.Stops{A: cfg.Stops.A, B: cfg.Stops.B},
		Interval: cfg.RefreshInterval(),
		Timeout:  cfg.FetchTimeout(),
		Logger:   logger,
		Notify:   func(c scheduler.Cycle) { root.Notify(c) },
	})
	root = app.New(app.Params{
		Scheduler: sched,
		Store:     store,
		Labels:    [2]string{cfg.Stops.ALabel, cfg.Stops.BLabel},
		Logger:    logger,
		Context:   ctx,
	})

	logger.Info("starting sign",
		slog.String("feed", client.URL()),
		slog.String("stop_a", cfg.Stops.A),
		slog.String("stop_b", cfg.Stops.B),
		slog.Duration("interval", sched.Interval()))

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Status.Listen != "" {
		srv := status.NewServer(cfg.Status.Listen, status.NewHandler(store, sched, logger))
		g.Go(func() error {
			logger.Info("status endpoint listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status endpoint: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
	}

	vxApp, err := vxfw.NewApp(vaxis.Options{})
	if err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("starting terminal: %w", err)
	}
	root.SetPostEvent(vxApp.PostEvent)

	runErr := vxApp.Run(root)
	root.SetPostEvent(nil)

	sched.Stop()
	sched.Wait()
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("running terminal: %w", runErr)
	}
	logger.Info("sign stopped")
	return nil
}
