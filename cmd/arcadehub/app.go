// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/internal/game/goplugin"
	gamelua "github.com/arcadehub/arcadehub/internal/game/lua"
	"github.com/arcadehub/arcadehub/internal/logging"
	"github.com/arcadehub/arcadehub/internal/observability"
	"github.com/arcadehub/arcadehub/internal/score"
	"github.com/arcadehub/arcadehub/pkg/errutil"
)

// app is the wired host: catalog, score store, and launcher sharing one
// logger and one metrics registry.
type app struct {
	cfg      *config
	logger   *slog.Logger
	metrics  *observability.Metrics
	store    *score.Store
	manager  *game.Manager
	launcher *game.Launcher
}

// newApp builds the host from cfg. Games read from in and print to out.
func newApp(ctx context.Context, cfg *config, in io.Reader, out, errOut io.Writer) (*app, error) {
	logger := logging.SetDefault(logging.Options{
		Service: "arcadehub",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		Writer:  errOut,
	})
	metrics := observability.NewMetrics()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := score.Open(ctx, backend, cfg.Player, score.WithLogger(logger))

	luaRuntime := gamelua.NewRuntime(
		gamelua.WithConsole(in, out),
		gamelua.WithPlayer(store.CurrentUser),
		gamelua.WithHighScores(store.CurrentHighScore),
		gamelua.WithLogger(logger),
	)
	binaryRuntime := goplugin.NewRuntime(goplugin.WithLogger(logger))

	manager, err := game.NewManager(cfg.GamesDir,
		game.WithRuntime(luaRuntime),
		game.WithRuntime(binaryRuntime),
		game.WithExcludes(cfg.Exclude...),
		game.WithLogger(logger),
		game.WithMetrics(metrics),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	launcher := game.NewLauncher(manager, store, store.CurrentUser,
		game.WithLauncherLogger(logger),
		game.WithLauncherMetrics(metrics),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		store:    store,
		manager:  manager,
		launcher: launcher,
	}, nil
}

func openBackend(ctx context.Context, cfg *config) (score.Backend, error) {
	switch cfg.ScoresBackend {
	case backendSQLite:
		return score.OpenSQLite(ctx, cfg.ScoresFile)
	default:
		return score.NewJSONFile(cfg.ScoresFile), nil
	}
}

// Close writes the metrics file when one is configured, then releases
// loaded games and the store. Releasing the catalog resets its gauge, so the
// file is written first.
func (a *app) Close() error {
	var errs []error
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			errutil.LogError(a.logger, "failed to write metrics", err)
			errs = append(errs, err)
		}
	}
	if err := a.manager.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withApp loads config, builds the host for cmd, runs fn, and closes it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}
