// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/internal/leaderboard"
)

// NewPlayCmd creates the play subcommand.
func NewPlayCmd() *cobra.Command {
	var showBoard bool

	cmd := &cobra.Command{
		Use:   "play <game>",
		Short: "Play a game and record the score",
		Long: `Load the catalog, run the named game until it returns, and record a
positive score for the current player. A game that crashes returns to the
prompt with no score recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runPlay(ctx, a, args[0], showBoard, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().BoolVar(&showBoard, "leaderboard", true, "show the leaderboard after the game")

	return cmd
}

func runPlay(ctx context.Context, a *app, id string, showBoard bool, w io.Writer) error {
	a.manager.Discover(ctx)

	report, err := a.launcher.Launch(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case report.State == game.StateAborted:
		fmt.Fprintf(w, "%s stopped unexpectedly; no score recorded.\n", id)
	case report.Recorded:
		fmt.Fprintf(w, "Score: %d (level %d) recorded for %s.\n",
			report.Score, report.Result.Level(), a.store.CurrentUser())
		if report.PersistErr != nil {
			fmt.Fprintln(w, "Warning: the score could not be saved to disk and will be lost on exit.")
		}
	default:
		fmt.Fprintln(w, "No score recorded.")
	}

	best := a.store.CurrentHighScore(id)
	fmt.Fprintf(w, "Your best: %d\n", best)

	if showBoard {
		title := game.DefaultTitle(id)
		if d, ok := a.manager.Get(id); ok {
			title = d.Title
		}
		entries := leaderboard.GlobalTop(a.store, id, a.cfg.LeaderboardLimit)
		fmt.Fprintln(w, leaderboard.Render(entries, leaderboard.RenderOptions{
			Title:       title,
			CurrentUser: a.store.CurrentUser(),
		}))
	}
	return nil
}
