// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Command gen-schema generates the score file JSON Schema.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arcadehub/arcadehub/internal/score"
)

func main() {
	schema, err := score.GenerateSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("schemas", "scores.schema.json")
	if err := score.WriteFileAtomic(outPath, append(schema, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
