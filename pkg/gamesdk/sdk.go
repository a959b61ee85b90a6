// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package gamesdk is the contract between ArcadeHub and its game plugins.
//
// Lua plugins satisfy the contract in script (see internal/game/lua). Binary
// plugins are standalone executables built against this package; they talk
// to the host over net/rpc using the HashiCorp go-plugin framework.
//
// Example usage:
//
//	package main
//
//	import "github.com/arcadehub/arcadehub/pkg/gamesdk"
//
//	type towerPlugin struct{}
//
//	func (towerPlugin) Info() *gamesdk.Info {
//		return &gamesdk.Info{Title: "Tower Builder", Version: "1.0"}
//	}
//
//	func (towerPlugin) NewGame() (gamesdk.Game, error) {
//		return &tower{}, nil
//	}
//
//	func main() {
//		gamesdk.Serve(&gamesdk.ServeConfig{Plugin: towerPlugin{}})
//	}
package gamesdk

import (
	hashiplug "github.com/hashicorp/go-plugin"
)

// Info is a plugin's optional metadata record.
type Info struct {
	Title       string
	Description string
	Author      string
	Version     string
}

// Status tells how a game session ended.
type Status int

// Terminal statuses a game reports from Start.
const (
	// StatusCompleted means the game ran to its own end.
	StatusCompleted Status = iota
	// StatusUserQuit means the player left early; Score is whatever was
	// earned up to that point.
	StatusUserQuit
)

// String returns the status name used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusUserQuit:
		return "user_quit"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one Start call.
type Outcome struct {
	Status Status
	Score  float64
	Level  int
}

// Completed reports a game that ran to its end.
func Completed(score float64, level int) Outcome {
	return Outcome{Status: StatusCompleted, Score: score, Level: level}
}

// UserQuit reports a game the player left, keeping any score already earned.
func UserQuit(score float64, level int) Outcome {
	return Outcome{Status: StatusUserQuit, Score: score, Level: level}
}

// Game is one playable session. Start blocks for the whole session.
// Quit is always called once after Start returns, errors, or panics.
type Game interface {
	Start() (Outcome, error)
	Quit()
}

// Plugin is implemented by a binary game plugin.
type Plugin interface {
	// Info returns the metadata record, or nil to let the host synthesize
	// defaults from the plugin directory name.
	Info() *Info
	// NewGame constructs a fresh session.
	NewGame() (Game, error)
}

// PluginName is the name the game plugin is dispensed under.
const PluginName = "game"

// HandshakeConfig is the go-plugin handshake configuration.
// Both host and plugins must use the same values.
var HandshakeConfig = hashiplug.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ARCADEHUB_GAME_PLUGIN",
	MagicCookieValue: "arcadehub-game-v1",
}

// ServeConfig configures the plugin server.
type ServeConfig struct {
	// Plugin is the game implementation.
	// Required; Serve will panic if nil.
	Plugin Plugin
}

// Serve starts the plugin server. This should be called from main().
// It blocks and never returns under normal operation.
func Serve(config *ServeConfig) {
	if config == nil {
		panic("gamesdk: config cannot be nil")
	}
	if config.Plugin == nil {
		panic("gamesdk: config.Plugin cannot be nil")
	}
	hashiplug.Serve(&hashiplug.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(config.Plugin),
	})
}

// PluginMap returns the go-plugin plugin set. impl is nil on the host side.
func PluginMap(impl Plugin) map[string]hashiplug.Plugin {
	return map[string]hashiplug.Plugin{
		PluginName: &RPCPlugin{Impl: impl},
	}
}
