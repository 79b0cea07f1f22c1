package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/promptlab/jobtrack/internal/bootstrap"
)

func main() {
	token := flag.String("token", "", "identity credential (raw ID token in oidc mode)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger(false)
	if err := run(ctx, logger, *token); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger, token string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.IsDev {
		logger = bootstrap.InitLogger(true)
	}

	logger.InfoContext(ctx, "starting jobtrack",
		"store_backend", cfg.Store.Backend,
		"auth_mode", cfg.Auth.Mode,
		"poll_interval", cfg.Tracker.PollInterval,
	)

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.ErrorContext(ctx, "shutdown cleanup failed", "error", cerr)
		}
	}()

	identity, err := app.Identity.Identify(ctx, token)
	if err != nil {
		return err
	}
	app.Session.SetIdentity(ctx, identity)
	app.Session.Start(ctx)

	console := newConsole(app, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return app.Runner.Run(groupCtx)
	})
	group.Go(func() error {
		return console.Run(groupCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
