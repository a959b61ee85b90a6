// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/pkg/errutil"
	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// loadFake discovers a single fake plugin backed by mod and returns its
// descriptor.
func loadFake(t *testing.T, mod *fakeModule) *game.Descriptor {
	t.Helper()
	root := t.TempDir()
	mkGame(t, root, "snake", fakeEntry)
	m, rt := newTestManager(t, root)
	rt.modules["snake"] = mod
	m.Discover(context.Background())
	d, ok := m.Get("snake")
	require.True(t, ok)
	return d
}

func TestInstance_RunFinished(t *testing.T) {
	g := &fakeGame{outcome: gamesdk.Completed(250, 3)}
	d := loadFake(t, &fakeModule{game: g})

	inst, err := game.Instantiate(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, game.StateNotStarted, inst.State())

	res := inst.Run(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, game.StateFinished, inst.State())
	assert.Equal(t, res, inst.Result())
	score, ok := res.Score()
	assert.True(t, ok)
	assert.Equal(t, int64(250), score)
	assert.Equal(t, 3, res.Level())
	assert.Equal(t, 1, g.starts)
	assert.Equal(t, 1, g.quits)
}

func TestInstance_StartErrorAborts(t *testing.T) {
	g := &fakeGame{startErr: errBoom}
	d := loadFake(t, &fakeModule{game: g})
	inst, err := game.Instantiate(context.Background(), d)
	require.NoError(t, err)

	res := inst.Run(context.Background())

	require.Error(t, res.Err)
	errutil.AssertErrorCode(t, res.Err, game.CodeRuntime)
	assert.ErrorIs(t, res.Err, errBoom)
	assert.Equal(t, game.StateAborted, inst.State())
	assert.Equal(t, 1, g.quits)
	_, ok := res.Score()
	assert.False(t, ok)
}

func TestInstance_StartPanicAborts(t *testing.T) {
	g := &fakeGame{panicMsg: "index out of range"}
	d := loadFake(t, &fakeModule{game: g})
	inst, err := game.Instantiate(context.Background(), d)
	require.NoError(t, err)

	res := inst.Run(context.Background())

	require.Error(t, res.Err)
	errutil.AssertErrorCode(t, res.Err, game.CodeRuntime)
	assert.Contains(t, res.Err.Error(), "index out of range")
	assert.Equal(t, game.StateAborted, inst.State())
	assert.Equal(t, 1, g.quits, "quit runs even after a panic")
}

func TestInstance_RunTwiceFails(t *testing.T) {
	g := &fakeGame{outcome: gamesdk.Completed(1, 1)}
	d := loadFake(t, &fakeModule{game: g})
	inst, err := game.Instantiate(context.Background(), d)
	require.NoError(t, err)
	inst.Run(context.Background())

	res := inst.Run(context.Background())

	require.Error(t, res.Err)
	assert.Equal(t, 1, g.starts)
	assert.Equal(t, 1, g.quits)
	assert.Equal(t, game.StateFinished, inst.State())
}

func TestInstantiate_ContractErrors(t *testing.T) {
	t.Run("new game fails", func(t *testing.T) {
		d := loadFake(t, &fakeModule{newErr: errBoom})
		inst, err := game.Instantiate(context.Background(), d)
		require.Error(t, err)
		assert.Nil(t, inst)
	})

	t.Run("nil game", func(t *testing.T) {
		d := loadFake(t, &fakeModule{})
		_, err := game.Instantiate(context.Background(), d)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, game.CodeContract)
	})

	t.Run("nil descriptor", func(t *testing.T) {
		_, err := game.Instantiate(context.Background(), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, game.CodeContract)
	})
}

func TestResult_Score(t *testing.T) {
	tests := []struct {
		name    string
		outcome gamesdk.Outcome
		err     error
		want    int64
		wantOK  bool
	}{
		{name: "integer", outcome: gamesdk.Completed(120, 1), want: 120, wantOK: true},
		{name: "fraction truncates", outcome: gamesdk.Completed(99.9, 1), want: 99, wantOK: true},
		{name: "user quit keeps score", outcome: gamesdk.UserQuit(40, 2), want: 40, wantOK: true},
		{name: "zero", outcome: gamesdk.Completed(0, 1)},
		{name: "below one", outcome: gamesdk.Completed(0.5, 1)},
		{name: "negative", outcome: gamesdk.Completed(-10, 1)},
		{name: "nan", outcome: gamesdk.Completed(math.NaN(), 1)},
		{name: "inf", outcome: gamesdk.Completed(math.Inf(1), 1)},
		{name: "aborted", outcome: gamesdk.Completed(500, 1), err: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := game.Result{Outcome: tt.outcome, Err: tt.err}.Score()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResult_LevelDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, game.Result{}.Level())
	assert.Equal(t, 1, game.Result{Outcome: gamesdk.Outcome{Level: -2}}.Level())
	assert.Equal(t, 7, game.Result{Outcome: gamesdk.Outcome{Level: 7}}.Level())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_started", game.StateNotStarted.String())
	assert.Equal(t, "running", game.StateRunning.String())
	assert.Equal(t, "finished", game.StateFinished.String())
	assert.Equal(t, "aborted", game.StateAborted.String())
	assert.Equal(t, "state(9)", game.State(9).String())
}
