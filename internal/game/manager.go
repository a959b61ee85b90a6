// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/arcadehub/arcadehub/pkg/errutil"
)

// Rejection reasons reported for candidates skipped during discovery.
const (
	RejectNotDir     = "not_directory"
	RejectHidden     = "hidden"
	RejectAssets     = "assets"
	RejectNoEntry    = "no_entry"
	RejectExcluded   = "excluded"
	RejectValidation = "validation"
)

// Manager scans a games root and holds the resulting catalog.
//
// Manager is not safe for concurrent use. The host drives discovery,
// loading, and launching from a single goroutine.
type Manager struct {
	root     string
	runtimes []Runtime
	excludes []string
	globs    []glob.Glob
	logger   *slog.Logger
	metrics  Metrics
	catalog  map[string]*Descriptor
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithRuntime registers a runtime. Runtimes are consulted in registration
// order when a directory contains more than one entry file.
func WithRuntime(r Runtime) ManagerOption {
	return func(m *Manager) {
		m.runtimes = append(m.runtimes, r)
	}
}

// WithExcludes skips candidates whose directory name matches any glob.
func WithExcludes(patterns ...string) ManagerOption {
	return func(m *Manager) {
		m.excludes = append(m.excludes, patterns...)
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(mt Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates a manager for the games under root. It fails only when
// an exclude pattern does not compile.
func NewManager(root string, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		root:    root,
		logger:  slog.Default(),
		metrics: nopMetrics{},
		catalog: make(map[string]*Descriptor),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, p := range m.excludes {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errorf(CodeValidation, "").With("pattern", p).Hint("invalid exclude pattern").Wrap(err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Root returns the games root directory.
func (m *Manager) Root() string {
	return m.root
}

// Discover scans the root and replaces the catalog with every plugin that
// passes candidate filtering, path validation, and loading. It never fails:
// a missing root yields an empty catalog, and a plugin that fails is logged
// and left out.
func (m *Manager) Discover(ctx context.Context) map[string]*Descriptor {
	m.closeCatalog()
	catalog := make(map[string]*Descriptor)

	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Warn("games directory not found", "root", m.root)
		} else {
			m.logger.Error("failed to read games directory", "root", m.root, "error", err)
		}
		m.setCatalog(catalog)
		return m.Catalog()
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			m.logger.Warn("discovery interrupted", "error", err)
			break
		}

		id := entry.Name()
		rt, reason := m.candidate(id)
		if rt == nil {
			m.metrics.CandidateRejected(reason)
			m.logger.Debug("skipping games entry", "game", id, "reason", reason)
			continue
		}

		d, err := m.load(ctx, id, rt)
		if err != nil {
			stage := "load"
			if errutil.Code(err) == CodeValidation {
				stage = "validation"
				m.metrics.CandidateRejected(RejectValidation)
			}
			m.metrics.PluginFailed(stage)
			errutil.LogWarn(m.logger, "skipping game", err, "game", id)
			continue
		}

		catalog[id] = d
		m.metrics.PluginLoaded(d.Runtime)
		m.logger.Info("loaded game",
			"game", id,
			"title", d.Title,
			"runtime", d.Runtime,
			"version", d.Version)
	}

	m.setCatalog(catalog)
	ids := m.IDs()
	m.logger.Info("discovery complete", "count", len(ids), "games", strings.Join(ids, ", "))
	return m.Catalog()
}

// Load validates and loads a single plugin without touching the catalog.
// It performs the same id and path checks as Discover, so it is safe to call
// with an untrusted id: validation happens before any plugin code runs.
func (m *Manager) Load(ctx context.Context, id string) (*Descriptor, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	rt := m.runtimeFor(filepath.Join(m.root, id))
	if rt == nil {
		return nil, errorf(CodeLoad, id).With("root", m.root).New("no entry file found")
	}
	return m.load(ctx, id, rt)
}

func (m *Manager) load(ctx context.Context, id string, rt Runtime) (*Descriptor, error) {
	entryPath, err := ResolveEntry(m.root, id, rt.EntryFile())
	if err != nil {
		return nil, err
	}

	mod, err := rt.Load(ctx, id, entryPath)
	if err != nil {
		return nil, err
	}

	meta, err := mod.Metadata()
	if err != nil {
		if cerr := mod.Close(); cerr != nil {
			m.logger.Warn("failed to release game", "game", id, "error", cerr)
		}
		return nil, err
	}

	return newDescriptor(id, entryPath, rt.Name(), meta, mod), nil
}

// candidate applies the directory filters and returns the runtime that owns
// the entry, or nil and the reason the entry is skipped.
func (m *Manager) candidate(name string) (Runtime, string) {
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") {
		return nil, RejectHidden
	}
	if strings.Contains(strings.ToLower(name), "assets") {
		return nil, RejectAssets
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return nil, RejectExcluded
		}
	}

	dir := filepath.Join(m.root, name)
	// Stat follows symlinks; a linked directory is still a candidate and is
	// judged by ResolveEntry.
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, RejectNotDir
	}

	rt := m.runtimeFor(dir)
	if rt == nil {
		return nil, RejectNoEntry
	}
	return rt, ""
}

func (m *Manager) runtimeFor(dir string) Runtime {
	for _, rt := range m.runtimes {
		info, err := os.Stat(filepath.Join(dir, rt.EntryFile()))
		if err == nil && !info.IsDir() {
			return rt
		}
	}
	return nil
}

// Get returns the catalog entry for id.
func (m *Manager) Get(id string) (*Descriptor, bool) {
	d, ok := m.catalog[id]
	return d, ok
}

// IDs returns the catalog ids, sorted.
func (m *Manager) IDs() []string {
	ids := make([]string, 0, len(m.catalog))
	for id := range m.catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Catalog returns a copy of the current catalog map.
func (m *Manager) Catalog() map[string]*Descriptor {
	out := make(map[string]*Descriptor, len(m.catalog))
	for id, d := range m.catalog {
		out[id] = d
	}
	return out
}

// Close releases every loaded plugin and empties the catalog.
func (m *Manager) Close() error {
	m.closeCatalog()
	m.setCatalog(make(map[string]*Descriptor))
	return nil
}

func (m *Manager) setCatalog(c map[string]*Descriptor) {
	m.catalog = c
	m.metrics.CatalogSize(len(c))
}

func (m *Manager) closeCatalog() {
	for id, d := range m.catalog {
		if d.module == nil {
			continue
		}
		if err := d.module.Close(); err != nil {
			m.logger.Warn("failed to release game", "game", id, "error", err)
		}
	}
}
