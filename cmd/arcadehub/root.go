package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the ArcadeHub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arcadehub",
		Short: "ArcadeHub - a terminal game hub with pluggable games",
		Long: `ArcadeHub discovers game plugins in a games directory, runs them,
and keeps per-player high scores and leaderboards.

Games are Lua scripts (main.lua) or go-plugin executables (main).`,
		SilenceUsage: true,
	}

	registerConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewScoresCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
