// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package goplugin loads binary game plugins as child processes using
// HashiCorp's go-plugin system over net/rpc.
package goplugin

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/samber/oops"

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// Compile-time interface checks.
var (
	_ game.Runtime = (*Runtime)(nil)
	_ game.Module  = (*module)(nil)
	_ game.Game    = (*session)(nil)
	_ Remote       = (*gamesdk.RPCClient)(nil)
)

// EntryFile is the executable a binary plugin directory must contain.
const EntryFile = "main"

// PluginClient wraps go-plugin client for testability.
type PluginClient interface {
	// Client returns the RPC client protocol.
	Client() (hashiplug.ClientProtocol, error)
	// Kill terminates the plugin process.
	Kill()
}

// ClientFactory creates plugin clients.
type ClientFactory interface {
	// NewClient creates a client for the given executable path.
	NewClient(id, execPath string) PluginClient
}

// Remote is the dispensed game plugin.
type Remote interface {
	Info() (*gamesdk.Info, error)
	NewGame() error
	Start() (gamesdk.Outcome, error)
	Quit() error
}

// DefaultClientFactory creates real go-plugin clients.
type DefaultClientFactory struct {
	// Stderr receives the plugin's own stderr output. Defaults to os.Stderr.
	Stderr *os.File
}

// NewClient creates a real go-plugin client.
func (f *DefaultClientFactory) NewClient(id, execPath string) PluginClient {
	stderr := f.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd := exec.Command(execPath) // #nosec G204 -- execPath is validated against the games root by game.ResolveEntry
	cmd.Stdin = os.Stdin
	return hashiplug.NewClient(&hashiplug.ClientConfig{
		HandshakeConfig:  gamesdk.HandshakeConfig,
		Plugins:          gamesdk.PluginMap(nil),
		Cmd:              cmd,
		AllowedProtocols: []hashiplug.Protocol{hashiplug.ProtocolNetRPC},
		SyncStdout:       os.Stdout,
		SyncStderr:       stderr,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "game." + id,
			Level:  hclog.Warn,
			Output: stderr,
		}),
	})
}

// Runtime loads binary plugins. Each loaded plugin keeps its process until
// the catalog releases it.
type Runtime struct {
	clientFactory ClientFactory
	logger        *slog.Logger
}

// Option configures the Runtime.
type Option func(*Runtime)

// WithClientFactory replaces the go-plugin client factory (for testing).
func WithClientFactory(f ClientFactory) Option {
	return func(r *Runtime) {
		r.clientFactory = f
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a binary plugin runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		clientFactory: &DefaultClientFactory{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements game.Runtime.
func (r *Runtime) Name() string { return "binary" }

// EntryFile implements game.Runtime.
func (r *Runtime) EntryFile() string { return EntryFile }

// Load starts the plugin process, performs the handshake, and fetches its
// metadata record.
func (r *Runtime) Load(_ context.Context, id, entryPath string) (game.Module, error) {
	client := r.clientFactory.NewClient(id, entryPath)

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, loadErr(id).With("path", entryPath).Hint("failed to start plugin process").Wrap(err)
	}

	raw, err := rpcClient.Dispense(gamesdk.PluginName)
	if err != nil {
		client.Kill()
		return nil, loadErr(id).Hint("failed to dispense plugin").Wrap(err)
	}

	remote, ok := raw.(Remote)
	if !ok {
		client.Kill()
		return nil, oops.In("goplugin").Code(game.CodeContract).With("game", id).Errorf("plugin dispensed %T, not a game", raw)
	}

	info, err := remote.Info()
	if err != nil {
		client.Kill()
		return nil, loadErr(id).Hint("failed to fetch metadata").Wrap(err)
	}

	return &module{
		id:     id,
		client: client,
		remote: remote,
		info:   info,
		logger: r.logger.With("game", id),
	}, nil
}

type module struct {
	id     string
	client PluginClient
	remote Remote
	info   *gamesdk.Info
	logger *slog.Logger
}

// Metadata implements game.Module.
func (m *module) Metadata() (*game.Metadata, error) {
	if m.info == nil {
		return nil, nil
	}
	return &game.Metadata{
		Title:       m.info.Title,
		Description: m.info.Description,
		Author:      m.info.Author,
		Version:     m.info.Version,
	}, nil
}

// NewGame implements game.Module.
func (m *module) NewGame(_ context.Context) (game.Game, error) {
	if err := m.remote.NewGame(); err != nil {
		return nil, oops.In("goplugin").Code(game.CodeContract).With("game", m.id).Hint("plugin could not construct a game").Wrap(err)
	}
	return &session{module: m}, nil
}

// Close kills the plugin process.
func (m *module) Close() error {
	m.client.Kill()
	return nil
}

type session struct {
	module *module
}

// Start blocks until the plugin's session ends. The plugin is not preempted
// when ctx is cancelled; it must honor its own exit keys.
func (s *session) Start(_ context.Context) (gamesdk.Outcome, error) {
	out, err := s.module.remote.Start()
	if err != nil {
		return gamesdk.Outcome{}, oops.In("goplugin").With("game", s.module.id).With("operation", "start").Wrap(err)
	}
	return out, nil
}

// Quit implements game.Game.
func (s *session) Quit() {
	if err := s.module.remote.Quit(); err != nil {
		s.module.logger.Error("quit() failed", "error", err)
	}
}

func loadErr(id string) oops.OopsErrorBuilder {
	return oops.In("goplugin").Code(game.CodeLoad).With("game", id).With("operation", "load")
}
