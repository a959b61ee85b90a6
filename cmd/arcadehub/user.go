// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewUserCmd creates the user subcommand.
func NewUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user [name]",
		Short: "Show or change the current player",
		Long: `With no argument, print the current player and the known players.
With a name, make it the current player, register it in the score store,
and save it to the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w := cmd.OutOrStdout()
				if len(args) == 0 {
					fmt.Fprintf(w, "Current player: %s\n", a.store.CurrentUser())
					fmt.Fprintf(w, "Known players: %s\n", strings.Join(a.store.Users(), ", "))
					return nil
				}

				name := strings.TrimSpace(args[0])
				if name == "" {
					return fmt.Errorf("player name must not be empty")
				}
				if err := a.store.ChangeUser(ctx, name); err != nil {
					return err
				}
				path, err := configPath(cmd.Flags())
				if err != nil {
					return err
				}
				if err := savePlayer(path, name); err != nil {
					return err
				}
				fmt.Fprintf(w, "Current player: %s\n", name)
				return nil
			})
		},
	}
}
