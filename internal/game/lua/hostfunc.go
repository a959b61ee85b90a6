// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package lua

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Console is the terminal a game reads input from and prints to.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewConsole wraps in and out. Either may be nil: reads then hit EOF and
// writes are discarded.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	if c.out == nil {
		c.out = io.Discard
	}
	return c
}

// HostFunctions is the arcade.* API exposed to every game state.
type HostFunctions struct {
	console   *Console
	player    func() string
	highScore func(gameID string) int64
	clock     func() time.Time
	logger    *slog.Logger
}

// NewHostFunctions returns host functions that talk to console and read the
// wall clock. The player and high-score lookups start unset.
func NewHostFunctions(console *Console) *HostFunctions {
	if console == nil {
		console = NewConsole(nil, nil)
	}
	return &HostFunctions{console: console, clock: time.Now}
}

// Register installs the arcade table into ls for the game id.
func (h *HostFunctions) Register(ls *lua.LState, id string) {
	mod := ls.NewTable()

	ls.SetField(mod, "log", ls.NewFunction(h.logFn(id)))
	ls.SetField(mod, "print", ls.NewFunction(h.printFn()))
	ls.SetField(mod, "read_line", ls.NewFunction(h.readLineFn()))
	ls.SetField(mod, "player", ls.NewFunction(h.playerFn()))
	ls.SetField(mod, "high_score", ls.NewFunction(h.highScoreFn(id)))
	ls.SetField(mod, "clock", ls.NewFunction(h.clockFn()))
	ls.SetField(mod, "game_id", lua.LString(id))

	ls.SetGlobal("arcade", mod)
}

func (h *HostFunctions) logFn(id string) lua.LGFunction {
	return func(L *lua.LState) int {
		level := L.CheckString(1)
		message := L.CheckString(2)

		logger := h.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger = logger.With("game", id)
		switch level {
		case "debug":
			logger.Debug(message)
		case "warn":
			logger.Warn(message)
		case "error":
			logger.Error(message)
		default:
			logger.Info(message)
		}
		return 0
	}
}

// arcade.print(...) writes its arguments separated by spaces and a newline.
func (h *HostFunctions) printFn() lua.LGFunction {
	return func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		h.console.mu.Lock()
		defer h.console.mu.Unlock()
		if _, err := fmt.Fprintln(h.console.out, strings.Join(parts, " ")); err != nil {
			L.RaiseError("print: %v", err)
		}
		return 0
	}
}

// arcade.read_line([prompt]) returns the next input line without its
// newline, or nil at end of input.
func (h *HostFunctions) readLineFn() lua.LGFunction {
	return func(L *lua.LState) int {
		prompt := L.OptString(1, "")

		h.console.mu.Lock()
		defer h.console.mu.Unlock()
		if prompt != "" {
			_, _ = io.WriteString(h.console.out, prompt)
		}
		if h.console.in == nil {
			L.Push(lua.LNil)
			return 1
		}
		line, err := h.console.in.ReadString('\n')
		if err != nil && line == "" {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(strings.TrimRight(line, "\r\n")))
		return 1
	}
}

func (h *HostFunctions) playerFn() lua.LGFunction {
	return func(L *lua.LState) int {
		name := ""
		if h.player != nil {
			name = h.player()
		}
		L.Push(lua.LString(name))
		return 1
	}
}

func (h *HostFunctions) highScoreFn(id string) lua.LGFunction {
	return func(L *lua.LState) int {
		var v int64
		if h.highScore != nil {
			v = h.highScore(id)
		}
		L.Push(lua.LNumber(v))
		return 1
	}
}

// arcade.clock() returns seconds since the epoch as a float.
func (h *HostFunctions) clockFn() lua.LGFunction {
	return func(L *lua.LState) int {
		now := h.clock()
		L.Push(lua.LNumber(float64(now.UnixNano()) / 1e9))
		return 1
	}
}
