package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/spahost/internal/assets"
	"github.com/playperu/spahost/internal/config"
	"github.com/playperu/spahost/internal/handler/health"
	"github.com/playperu/spahost/internal/router"
	"github.com/playperu/spahost/internal/routes"
	"github.com/playperu/spahost/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Asset index ---
	mimeTypes, err := assets.LoadMIMETypes(cfg.MIMETypesFile)
	if err != nil {
		return fmt.Errorf("loading mime types: %w", err)
	}

	logger.Info("building asset index", "dir", cfg.StaticDir)
	idx, err := assets.Build(ctx, cfg.StaticDir, assets.Options{
		Concurrency: cfg.BuildConcurrency,
		Compress:    cfg.Compress,
		MIMETypes:   mimeTypes,
	})
	if err != nil {
		return err
	}
	logger.Info("asset index built", "files", idx.Len())

	if err := idx.Require(cfg.EntryDocument, cfg.NotFoundDocument); err != nil {
		logger.Warn("serving without a required document", "error", err)
	}

	// --- Dynamic routes ---
	registry := routes.Load(cfg.RouterSource, logger)

	// --- HTTP Servers ---
	rt := router.New(logger, idx, registry, router.Options{
		EntryDocument:    cfg.EntryDocument,
		NotFoundDocument: cfg.NotFoundDocument,
	})
	opts := server.Options{
		RestartDelay:    cfg.RestartDelay,
		ReadTimeout:     cfg.ReadTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	frontDoor := server.New(cfg.HTTPAddr(), logger, server.NewHandler(logger, rt), opts)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr())
		return frontDoor.Run(gctx)
	})

	if cfg.OpsAddr != "" {
		ops := server.New(cfg.OpsAddr, logger, server.NewOpsHandler(logger, map[string]health.Checker{
			"assets":    assetChecker{idx: idx, required: []string{cfg.EntryDocument}},
			"frontdoor": frontDoor,
		}), opts)

		g.Go(func() error {
			logger.Info("starting ops server", "addr", cfg.OpsAddr)
			return ops.Run(gctx)
		})
	}

	return g.Wait()
}

// assetChecker adapts *assets.Index to health.Checker.
type assetChecker struct {
	idx      *assets.Index
	required []string
}

func (a assetChecker) Check(_ context.Context) error { return a.idx.Require(a.required...) }
