// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package lua

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// Compile-time interface checks.
var (
	_ game.Runtime = (*Runtime)(nil)
	_ game.Module  = (*module)(nil)
	_ game.Game    = (*session)(nil)
)

// Names a Lua game uses to satisfy the plugin contract.
const (
	EntryFile    = "main.lua"
	MetadataName = "GAME_INFO"
	ClassName    = "Game"
)

// Runtime loads main.lua plugins. Every plugin gets its own Lua state, so
// globals never leak between games.
type Runtime struct {
	factory *StateFactory
	host    *HostFunctions
	logger  *slog.Logger
}

// Option configures the Runtime.
type Option func(*Runtime)

// WithConsole sets the terminal games read from and print to.
func WithConsole(in io.Reader, out io.Writer) Option {
	return func(r *Runtime) {
		r.host.console = NewConsole(in, out)
	}
}

// WithPlayer sets the source of arcade.player().
func WithPlayer(player func() string) Option {
	return func(r *Runtime) {
		r.host.player = player
	}
}

// WithHighScores sets the source of arcade.high_score().
func WithHighScores(fn func(gameID string) int64) Option {
	return func(r *Runtime) {
		r.host.highScore = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Lua runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		host:   NewHostFunctions(nil),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.host.logger = r.logger
	r.factory = NewStateFactory(r.host)
	return r
}

// Name implements game.Runtime.
func (r *Runtime) Name() string { return "lua" }

// EntryFile implements game.Runtime.
func (r *Runtime) EntryFile() string { return EntryFile }

// ChunkName is the namespaced name a plugin's code is compiled under.
func ChunkName(id string) string {
	return "games." + id + ".main"
}

// Load compiles and executes the entry file's top-level code in a fresh
// state. Syntax and runtime errors are load errors.
func (r *Runtime) Load(ctx context.Context, id, entryPath string) (game.Module, error) {
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return nil, loadErr(id).With("path", entryPath).Hint("failed to read entry file").Wrap(err)
	}

	L, err := r.factory.NewState(ctx, id)
	if err != nil {
		return nil, loadErr(id).Hint("failed to create state").Wrap(err)
	}

	fn, err := L.Load(bytes.NewReader(code), ChunkName(id))
	if err != nil {
		L.Close()
		return nil, loadErr(id).With("path", entryPath).Hint("syntax error").Wrap(err)
	}

	L.SetContext(ctx)
	L.Push(fn)
	err = L.PCall(0, 0, nil)
	L.RemoveContext()
	if err != nil {
		L.Close()
		return nil, loadErr(id).With("path", entryPath).Hint("top-level code failed").Wrap(err)
	}

	return &module{id: id, state: L, logger: r.logger.With("game", id)}, nil
}

// module is a loaded main.lua and the state it ran in.
type module struct {
	id     string
	state  *lua.LState
	logger *slog.Logger
	closed bool
}

// Metadata reads GAME_INFO. It must be a plain table (no metatable) whose
// known fields are strings or numbers; unknown keys are ignored.
func (m *module) Metadata() (*game.Metadata, error) {
	v := m.state.GetGlobal(MetadataName)
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, contractErr(m.id).Errorf("%s must be a table, got %s", MetadataName, v.Type())
	}
	if m.state.GetMetatable(tbl) != lua.LNil {
		return nil, contractErr(m.id).Errorf("%s must be a plain table", MetadataName)
	}
	if tbl.Len() > 0 {
		return nil, contractErr(m.id).Errorf("%s must map field names to values, not be a list", MetadataName)
	}

	meta := &game.Metadata{}
	fields := map[string]*string{
		"title":       &meta.Title,
		"description": &meta.Description,
		"author":      &meta.Author,
		"version":     &meta.Version,
	}
	for name, dst := range fields {
		val := tbl.RawGetString(name)
		switch val.Type() {
		case lua.LTNil:
		case lua.LTString, lua.LTNumber:
			*dst = val.String()
		default:
			return nil, contractErr(m.id).Errorf("%s.%s must be a string, got %s", MetadataName, name, val.Type())
		}
	}
	return meta, nil
}

// NewGame constructs a session object. When Game has a new function it is
// called as Game:new(); otherwise the session is a fresh table inheriting
// from Game. The object must expose start and quit functions.
func (m *module) NewGame(ctx context.Context) (game.Game, error) {
	L := m.state
	cls, ok := L.GetGlobal(ClassName).(*lua.LTable)
	if !ok {
		return nil, contractErr(m.id).Errorf("plugin does not define a %s table", ClassName)
	}

	var obj lua.LValue
	if ctor := L.GetField(cls, "new"); ctor.Type() == lua.LTFunction {
		L.SetContext(ctx)
		err := L.CallByParam(lua.P{Fn: ctor, NRet: 1, Protect: true}, cls)
		L.RemoveContext()
		if err != nil {
			return nil, contractErr(m.id).Hint("Game:new() failed").Wrap(err)
		}
		obj = L.Get(-1)
		L.Pop(1)
	} else {
		inst := L.NewTable()
		mt := L.NewTable()
		L.SetField(mt, "__index", cls)
		L.SetMetatable(inst, mt)
		obj = inst
	}

	self, ok := obj.(*lua.LTable)
	if !ok {
		return nil, contractErr(m.id).Errorf("Game:new() must return a table, got %s", obj.Type())
	}
	start := L.GetField(self, "start")
	quit := L.GetField(self, "quit")
	if start.Type() != lua.LTFunction || quit.Type() != lua.LTFunction {
		return nil, contractErr(m.id).New("game object must define start() and quit()")
	}

	return &session{module: m, self: self, start: start, quit: quit}, nil
}

// Close implements game.Module.
func (m *module) Close() error {
	if !m.closed {
		m.closed = true
		m.state.Close()
	}
	return nil
}

// session is one Game object inside a module's state.
type session struct {
	module *module
	self   *lua.LTable
	start  lua.LValue
	quit   lua.LValue
}

// Start calls self:start(). Its return values are (score, level, quit):
// a number score, an optional level, and a truthy third value when the
// player quit. A nil or false score means the player left with no score;
// any other non-number is logged and yields no score.
func (s *session) Start(ctx context.Context) (gamesdk.Outcome, error) {
	L := s.module.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{Fn: s.start, NRet: 3, Protect: true}, s.self); err != nil {
		return gamesdk.Outcome{}, oops.In("lua").With("game", s.module.id).With("operation", "start").Wrap(err)
	}
	score, level, quit := L.Get(-3), L.Get(-2), L.Get(-1)
	L.Pop(3)

	lvl := 1
	if n, ok := level.(lua.LNumber); ok {
		lvl = int(n)
	}

	var out gamesdk.Outcome
	switch v := score.(type) {
	case lua.LNumber:
		out = gamesdk.Completed(float64(v), lvl)
		if lua.LVAsBool(quit) {
			out.Status = gamesdk.StatusUserQuit
		}
	default:
		if lua.LVIsFalse(score) {
			return gamesdk.UserQuit(0, lvl), nil
		}
		s.module.logger.Warn("start() returned a non-numeric score", "type", score.Type().String())
		out = gamesdk.Completed(0, lvl)
	}
	return out, nil
}

// Quit calls self:quit(). Errors are logged; there is nothing else to do
// with them.
func (s *session) Quit() {
	L := s.module.state
	if err := L.CallByParam(lua.P{Fn: s.quit, NRet: 0, Protect: true}, s.self); err != nil {
		s.module.logger.Error("quit() failed", "error", err)
	}
}

func loadErr(id string) oops.OopsErrorBuilder {
	return oops.In("lua").Code(game.CodeLoad).With("game", id).With("operation", "load")
}

func contractErr(id string) oops.OopsErrorBuilder {
	return oops.In("lua").Code(game.CodeContract).With("game", id)
}
