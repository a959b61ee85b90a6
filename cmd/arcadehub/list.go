// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arcadehub/arcadehub/internal/game"
)

// Output formats for list.
const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

// listEntry is a catalog row with the current player's best score.
type listEntry struct {
	game.Descriptor `yaml:",inline"`
	HighScore       int64 `json:"high_score" yaml:"high_score"`
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List playable games",
		Long: `Scan the games directory and list every game that loaded successfully.
Games that fail validation or loading are logged and left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != outputTable && output != outputYAML && output != outputJSON {
				return fmt.Errorf("output must be 'table', 'yaml', or 'json', got %q", output)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runList(ctx, a, output, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, yaml, json)")

	return cmd
}

func runList(ctx context.Context, a *app, output string, w io.Writer) error {
	a.manager.Discover(ctx)

	entries := make([]listEntry, 0, len(a.manager.IDs()))
	for _, id := range a.manager.IDs() {
		d, _ := a.manager.Get(id)
		entries = append(entries, listEntry{Descriptor: *d, HighScore: a.store.CurrentHighScore(id)})
	}

	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "No games found in %s\n", a.manager.Root())
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Title, e.Version, e.Author, e.Runtime, fmt.Sprint(e.HighScore)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "VERSION", "AUTHOR", "RUNTIME", "BEST").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
