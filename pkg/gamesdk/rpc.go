// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package gamesdk

import (
	"errors"
	"fmt"
	"net/rpc"
	"sync"

	hashiplug "github.com/hashicorp/go-plugin"
)

// RPCPlugin implements go-plugin's net/rpc Plugin interface.
type RPCPlugin struct {
	// Impl is used by the plugin process; nil on the host side.
	Impl Plugin
}

// Server returns the RPC server (called by plugin process).
func (p *RPCPlugin) Server(*hashiplug.MuxBroker) (interface{}, error) {
	if p.Impl == nil {
		return nil, errors.New("gamesdk: plugin implementation is nil")
	}
	return NewRPCServer(p.Impl), nil
}

// Client returns the RPC client (called by host process).
func (p *RPCPlugin) Client(_ *hashiplug.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// InfoReply carries Plugin.Info over the wire.
type InfoReply struct {
	Present bool
	Info    Info
}

// RPCServer exposes a Plugin over net/rpc. It holds at most one live game.
type RPCServer struct {
	impl Plugin
	mu   sync.Mutex
	game Game
}

// NewRPCServer wraps impl for registration with an rpc.Server.
func NewRPCServer(impl Plugin) *RPCServer {
	return &RPCServer{impl: impl}
}

// Info returns the plugin metadata.
func (s *RPCServer) Info(_ interface{}, reply *InfoReply) error {
	info := s.impl.Info()
	if info == nil {
		*reply = InfoReply{}
		return nil
	}
	*reply = InfoReply{Present: true, Info: *info}
	return nil
}

// NewGame constructs the session later driven by Start and Quit.
func (s *RPCServer) NewGame(_ interface{}, ok *bool) (err error) {
	defer recoverInto(&err, "NewGame")

	g, err := s.impl.NewGame()
	if err != nil {
		return err
	}
	if g == nil {
		return errors.New("NewGame returned no game")
	}
	s.mu.Lock()
	s.game = g
	s.mu.Unlock()
	*ok = true
	return nil
}

// Start runs the current session to completion.
func (s *RPCServer) Start(_ interface{}, reply *Outcome) (err error) {
	g, err := s.current()
	if err != nil {
		return err
	}
	defer recoverInto(&err, "Start")

	out, err := g.Start()
	if err != nil {
		return err
	}
	*reply = out
	return nil
}

// Quit releases the current session.
func (s *RPCServer) Quit(_ interface{}, ok *bool) (err error) {
	s.mu.Lock()
	g := s.game
	s.game = nil
	s.mu.Unlock()
	*ok = true
	if g == nil {
		return nil
	}
	defer recoverInto(&err, "Quit")
	g.Quit()
	return nil
}

func (s *RPCServer) current() (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil, errors.New("no game constructed")
	}
	return s.game, nil
}

func recoverInto(err *error, method string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v", method, r)
	}
}

// RPCClient is the host-side stub for a remote Plugin.
type RPCClient struct {
	client *rpc.Client
}

// NewRPCClient wraps an rpc.Client connected to an RPCServer registered as "Plugin".
func NewRPCClient(c *rpc.Client) *RPCClient {
	return &RPCClient{client: c}
}

// Info fetches the remote metadata; nil when the plugin declares none.
func (c *RPCClient) Info() (*Info, error) {
	var reply InfoReply
	if err := c.client.Call("Plugin.Info", new(interface{}), &reply); err != nil {
		return nil, err
	}
	if !reply.Present {
		return nil, nil
	}
	return &reply.Info, nil
}

// NewGame asks the plugin to construct a session.
func (c *RPCClient) NewGame() error {
	var ok bool
	return c.client.Call("Plugin.NewGame", new(interface{}), &ok)
}

// Start blocks until the remote session ends.
func (c *RPCClient) Start() (Outcome, error) {
	var out Outcome
	if err := c.client.Call("Plugin.Start", new(interface{}), &out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Quit releases the remote session.
func (c *RPCClient) Quit() error {
	var ok bool
	return c.client.Call("Plugin.Quit", new(interface{}), &ok)
}
