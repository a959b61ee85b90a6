// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// State is the lifecycle position of an Instance.
type State int

// Instance states. Finished and Aborted are terminal.
const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the terminal result of a run. Err is set only when the instance
// aborted.
type Result struct {
	Outcome gamesdk.Outcome
	Err     error
}

// Score returns the integer score to record and whether there is one.
// Failed runs, non-finite values, and anything that truncates to zero or
// below produce no score.
func (r Result) Score() (int64, bool) {
	if r.Err != nil {
		return 0, false
	}
	s := r.Outcome.Score
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 || s > math.MaxInt64 {
		return 0, false
	}
	v := int64(s)
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// Level returns the reported level, defaulting to 1.
func (r Result) Level() int {
	if r.Outcome.Level < 1 {
		return 1
	}
	return r.Outcome.Level
}

// Instance wraps a single session of a loaded plugin. It is used once.
type Instance struct {
	descriptor *Descriptor
	game       Game
	state      State
	result     Result
	logger     *slog.Logger
}

// Instantiate constructs a session from a catalog descriptor. A plugin that
// lacks the start/quit capability yields a contract error and no instance.
func Instantiate(ctx context.Context, d *Descriptor) (inst *Instance, err error) {
	if d == nil || d.module == nil {
		return nil, errorf(CodeContract, "").New("descriptor has no loaded code")
	}
	defer func() {
		if r := recover(); r != nil {
			inst = nil
			err = errorf(CodeContract, d.ID).Errorf("constructing game panicked: %v", r)
		}
	}()

	g, err := d.module.NewGame(ctx)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errorf(CodeContract, d.ID).New("plugin constructed no game")
	}
	return &Instance{
		descriptor: d,
		game:       g,
		state:      StateNotStarted,
		logger:     slog.Default().With("game", d.ID),
	}, nil
}

// Descriptor returns the descriptor this instance was created from.
func (i *Instance) Descriptor() *Descriptor {
	return i.descriptor
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	return i.state
}

// Result returns the terminal result; zero until the instance finishes or
// aborts.
func (i *Instance) Result() Result {
	return i.result
}

// Run starts the game and blocks until it returns. Quit is invoked exactly
// once on every exit path. A failure or panic in Start aborts the instance
// and is reported in the result, never propagated.
func (i *Instance) Run(ctx context.Context) Result {
	if i.state != StateNotStarted {
		return Result{Err: errorf(CodeRuntime, i.descriptor.ID).Errorf("instance already %s", i.state)}
	}
	i.state = StateRunning

	out, err := i.start(ctx)
	if err != nil {
		i.state = StateAborted
		i.result = Result{Err: err}
		return i.result
	}
	i.state = StateFinished
	i.result = Result{Outcome: out}
	return i.result
}

func (i *Instance) start(ctx context.Context) (out gamesdk.Outcome, err error) {
	defer i.quit()
	defer func() {
		if r := recover(); r != nil {
			err = errorf(CodeRuntime, i.descriptor.ID).Errorf("game panicked: %v", r)
		}
	}()

	out, err = i.game.Start(ctx)
	if err != nil {
		return gamesdk.Outcome{}, errorf(CodeRuntime, i.descriptor.ID).Wrap(err)
	}
	return out, nil
}

func (i *Instance) quit() {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("game quit panicked", "panic", r)
		}
	}()
	i.game.Quit()
}
