// Package lua loads game plugins written in Lua. Every plugin gets a state
// of its own with a small standard library and the arcade host table.
package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// gameLibraries are the standard libraries a game may use. Games reach the
// console, the clock, and the score store only through the arcade table, so
// os, io, debug, package, channel, and coroutine are never opened.
var gameLibraries = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// codeLoaders are base functions that would let a game run code other than
// its own main.lua.
var codeLoaders = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// StateFactory builds the state a game plugin is loaded into.
type StateFactory struct {
	host *HostFunctions
}

// NewStateFactory returns a factory that installs host as the arcade table
// of every state. With a nil host the table is left out.
func NewStateFactory(host *HostFunctions) *StateFactory {
	return &StateFactory{host: host}
}

// NewState returns a fresh state for the game id. A canceled ctx yields no
// state.
func (f *StateFactory) NewState(ctx context.Context, id string) (*lua.LState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range gameLibraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open %s library for %s: %w", lib.name, id, err)
		}
	}
	for _, name := range codeLoaders {
		L.SetGlobal(name, lua.LNil)
	}

	if f.host != nil {
		f.host.Register(L, id)
	}
	return L, nil
}
