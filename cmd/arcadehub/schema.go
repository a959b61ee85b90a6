// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcadehub/arcadehub/internal/score"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the score file JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := score.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
