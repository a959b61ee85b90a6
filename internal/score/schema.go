// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package score

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// The schema types mirror the score file. They exist only to generate the
// JSON Schema; the file itself is read through ParseDocument so that key
// order survives.
type schemaFile struct {
	Users map[string]schemaUser `json:"users"`
}

type schemaUser struct {
	Games map[string]schemaGame `json:"games"`
}

type schemaGame struct {
	Scores []schemaRecord `json:"scores"`
}

type schemaRecord struct {
	Score     int64   `json:"score"`
	Level     int     `json:"level,omitempty" jsonschema:"minimum=0"`
	Timestamp float64 `json:"timestamp,omitempty" jsonschema:"minimum=0"`
}

var (
	schemaOnce     sync.Once
	compiledSchema *jschema.Schema
	schemaErr      error
)

// SchemaID is the $id of the score file schema.
const SchemaID = "https://arcadehub.dev/schemas/scores.schema.json"

// GenerateSchema generates the JSON Schema for the score file.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&schemaFile{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "ArcadeHub Scores"
	schema.Description = "Per-user game scores, sorted by score descending"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates raw score file bytes against the schema.
func ValidateSchema(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("score file is empty")
	}

	inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaBytes, err := GenerateSchema()
		if err != nil {
			schemaErr = err
			return
		}

		schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			schemaErr = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}

		c := jschema.NewCompiler()
		if err := c.AddResource("scores.schema.json", schemaData); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile("scores.schema.json")
	})
	return compiledSchema, schemaErr
}
