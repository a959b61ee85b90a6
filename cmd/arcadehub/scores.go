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

// NewScoresCmd creates the scores subcommand.
func NewScoresCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scores [game]",
		Short: "Show leaderboards",
		Long: `Show the cross-player leaderboard for one game, or for every game in the
catalog when no game is named.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if limit > 0 {
					a.cfg.LeaderboardLimit = limit
				}
				return runScores(ctx, a, args, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "entries per leaderboard (default: leaderboard-limit)")

	return cmd
}

func runScores(ctx context.Context, a *app, args []string, w io.Writer) error {
	var ids []string
	if len(args) == 1 {
		if err := game.ValidateID(args[0]); err != nil {
			return err
		}
		ids = args
	} else {
		a.manager.Discover(ctx)
		ids = a.manager.IDs()
		if len(ids) == 0 {
			_, err := fmt.Fprintf(w, "No games found in %s\n", a.manager.Root())
			return err
		}
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := game.DefaultTitle(id)
		if d, ok := a.manager.Get(id); ok {
			title = d.Title
		}
		entries := leaderboard.GlobalTop(a.store, id, a.cfg.LeaderboardLimit)
		fmt.Fprintln(w, leaderboard.Render(entries, leaderboard.RenderOptions{
			Title:       title,
			CurrentUser: a.store.CurrentUser(),
		}))
		fmt.Fprintf(w, "%s's best: %d\n", a.store.CurrentUser(), leaderboard.HighScore(a.store, a.store.CurrentUser(), id))
	}
	return nil
}
