// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package game discovers, validates, loads, and runs game plugins.
package game

import (
	"context"

	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// Runtime loads one kind of plugin code. A plugin directory is handled by
// the first runtime whose entry file it contains.
type Runtime interface {
	// Name identifies the runtime in descriptors, logs, and metrics.
	Name() string

	// EntryFile is the designated entry file name inside a plugin directory.
	EntryFile() string

	// Load executes the plugin's top-level code from an already validated
	// entry path and returns a handle to it. id namespaces the loaded unit.
	Load(ctx context.Context, id, entryPath string) (Module, error)
}

// Module is a loaded plugin: the descriptor's code handle.
type Module interface {
	// Metadata returns the plugin's metadata record, or nil when it declares
	// none. A record that is not a plain key-value mapping is a contract error.
	Metadata() (*Metadata, error)

	// NewGame constructs a fresh session. A plugin without the start/quit
	// capability yields a contract error.
	NewGame(ctx context.Context) (Game, error)

	// Close releases the loaded code.
	Close() error
}

// Game is one session of a loaded plugin. Start blocks until the session
// ends; Quit is the cleanup hook and is called exactly once per session.
type Game interface {
	Start(ctx context.Context) (gamesdk.Outcome, error)
	Quit()
}

// Metrics receives lifecycle events. observability.Metrics implements it.
type Metrics interface {
	CandidateRejected(reason string)
	PluginLoaded(runtime string)
	PluginFailed(stage string)
	CatalogSize(n int)
	Launched(game string, state string)
	ScoreRecorded(game string)
	PersistFailed()
}

type nopMetrics struct{}

func (nopMetrics) CandidateRejected(string) {}
func (nopMetrics) PluginLoaded(string) {}
func (nopMetrics) PluginFailed(string) {}
func (nopMetrics) CatalogSize(int) {}
func (nopMetrics) Launched(string, string) {}
func (nopMetrics) ScoreRecorded(string) {}
func (nopMetrics) PersistFailed() {}
