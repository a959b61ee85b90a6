// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// fakeEntry is the entry file name the fake runtime claims.
const fakeEntry = "game.fake"

// fakeRuntime loads plugins whose behavior is chosen per id. Every Load is
// recorded so tests can prove that rejected candidates never ran code.
type fakeRuntime struct {
	name    string
	entry   string
	modules map[string]*fakeModule
	loadErr map[string]error
	loaded  []string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		name:    "fake",
		entry:   fakeEntry,
		modules: make(map[string]*fakeModule),
		loadErr: make(map[string]error),
	}
}

func (r *fakeRuntime) Name() string      { return r.name }
func (r *fakeRuntime) EntryFile() string { return r.entry }

func (r *fakeRuntime) Load(_ context.Context, id, _ string) (game.Module, error) {
	r.loaded = append(r.loaded, id)
	if err := r.loadErr[id]; err != nil {
		return nil, err
	}
	if m, ok := r.modules[id]; ok {
		return m, nil
	}
	return &fakeModule{game: &fakeGame{outcome: gamesdk.Completed(1, 1)}}, nil
}

type fakeModule struct {
	meta    *game.Metadata
	metaErr error
	newErr  error
	game    *fakeGame
	closed  int
}

func (m *fakeModule) Metadata() (*game.Metadata, error) { return m.meta, m.metaErr }

func (m *fakeModule) NewGame(context.Context) (game.Game, error) {
	if m.newErr != nil {
		return nil, m.newErr
	}
	if m.game == nil {
		return nil, nil
	}
	return m.game, nil
}

func (m *fakeModule) Close() error {
	m.closed++
	return nil
}

type fakeGame struct {
	outcome  gamesdk.Outcome
	startErr error
	panicMsg string
	starts   int
	quits    int
}

func (g *fakeGame) Start(context.Context) (gamesdk.Outcome, error) {
	g.starts++
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	return g.outcome, g.startErr
}

func (g *fakeGame) Quit() { g.quits++ }

var errBoom = errors.New("boom")

// mkGame creates <root>/<id>/<entry>.
func mkGame(t *testing.T, root, id, entry string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, entry)
	require.NoError(t, os.WriteFile(path, []byte("-- game\n"), 0o644))
	return path
}
