// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/arcadehub/arcadehub/pkg/errutil"
)

// ScoreSink persists a positive score for a user and game. The in-memory
// record must survive a returned error.
type ScoreSink interface {
	AddScore(ctx context.Context, user, gameID string, score int64, level int) error
}

// Catalog looks up loaded plugins by id. *Manager implements it.
type Catalog interface {
	Get(id string) (*Descriptor, bool)
}

// Report describes one launch after control has returned to the host.
type Report struct {
	RunID  string
	GameID string
	State  State
	Result Result
	// Score is the recorded score; zero when Recorded is false.
	Score    int64
	Recorded bool
	// PersistErr is set when the score was kept in memory but not saved.
	PersistErr error
}

// Launcher runs catalog games for the current player and records their scores.
type Launcher struct {
	catalog Catalog
	scores  ScoreSink
	player  func() string
	logger  *slog.Logger
	metrics Metrics
}

// LauncherOption configures the Launcher.
type LauncherOption func(*Launcher)

// WithLauncherLogger sets the logger. Defaults to slog.Default().
func WithLauncherLogger(l *slog.Logger) LauncherOption {
	return func(ln *Launcher) {
		ln.logger = l
	}
}

// WithLauncherMetrics sets the metrics sink.
func WithLauncherMetrics(mt Metrics) LauncherOption {
	return func(ln *Launcher) {
		ln.metrics = mt
	}
}

// NewLauncher creates a launcher. player is consulted on every launch so a
// user switch takes effect immediately.
func NewLauncher(catalog Catalog, scores ScoreSink, player func() string, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		catalog: catalog,
		scores:  scores,
		player:  player,
		logger:  slog.Default(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch instantiates, runs, and finalizes the game with the given id, and
// forwards any positive score to the score sink. Only a failure to start the
// game is returned as an error; failures during the run are in the report.
func (l *Launcher) Launch(ctx context.Context, id string) (*Report, error) {
	runID := ulid.Make().String()
	ctx, span := otel.Tracer("github.com/arcadehub/arcadehub/internal/game").Start(ctx, "game.launch")
	defer span.End()
	span.SetAttributes(attribute.String("game.id", id), attribute.String("game.run_id", runID))

	logger := l.logger.With("game", id, "run_id", runID)

	d, ok := l.catalog.Get(id)
	if !ok {
		err := errorf(CodeNotFound, id).Errorf("game %q not found", id)
		span.SetStatus(codes.Error, "not found")
		logger.WarnContext(ctx, "game not found")
		return nil, err
	}

	inst, err := Instantiate(ctx, d)
	if err != nil {
		span.SetStatus(codes.Error, "instantiate failed")
		errutil.LogError(logger, "failed to launch game", err)
		l.metrics.PluginFailed("instantiate")
		return nil, err
	}

	logger.InfoContext(ctx, "launching game", "title", d.Title)
	res := inst.Run(ctx)
	report := &Report{
		RunID:  runID,
		GameID: id,
		State:  inst.State(),
		Result: res,
	}
	l.metrics.Launched(id, report.State.String())

	if res.Err != nil {
		span.SetStatus(codes.Error, "aborted")
		errutil.LogError(logger, "game aborted", res.Err)
		return report, nil
	}

	score, ok := res.Score()
	logger.InfoContext(ctx, "game finished",
		"status", res.Outcome.Status.String(),
		"score", res.Outcome.Score,
		"level", res.Level())
	if !ok {
		return report, nil
	}

	report.Score = score
	report.Recorded = true
	user := l.player()
	if err := l.scores.AddScore(ctx, user, id, score, res.Level()); err != nil {
		report.PersistErr = err
		l.metrics.PersistFailed()
		errutil.LogError(logger, "score kept in memory but not saved", err, "user", user)
	}
	l.metrics.ScoreRecorded(id)
	span.SetAttributes(attribute.Int64("game.score", score))
	return report, nil
}
