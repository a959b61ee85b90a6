// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package score persists per-user game scores.
package score

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/arcadehub/arcadehub/pkg/errutil"
)

// CodePersistence marks a failed load or save. The in-memory store is
// unaffected.
const CodePersistence = "SCORE_PERSISTENCE"

// Backend loads and saves whole documents. Save must be atomic: a reader
// never observes a partially written document.
type Backend interface {
	// Load returns nil and no error when nothing has been saved yet.
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	Close() error
}

type gameScores struct {
	id      string
	records []Record
}

type userScores struct {
	name  string
	games []*gameScores
	byID  map[string]*gameScores
}

func (u *userScores) game(id string, create bool) *gameScores {
	if g, ok := u.byID[id]; ok {
		return g
	}
	if !create {
		return nil
	}
	g := &gameScores{id: id}
	u.games = append(u.games, g)
	u.byID[id] = g
	return g
}

// Store is the process-wide score table: user to game to records sorted by
// score descending. Every mutation is saved before it returns.
//
// Store is not safe for concurrent use.
type Store struct {
	backend Backend
	current string
	users   []*userScores
	byName  map[string]*userScores
	now     func() time.Time
	backoff func() retry.Backoff
	logger  *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the timestamp source for new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithSaveRetries sets how many times a failed save is retried before it is
// reported, and the pause between attempts. A pause of zero or less retries
// immediately.
func WithSaveRetries(n uint64, pause time.Duration) Option {
	return func(s *Store) {
		s.backoff = func() retry.Backoff {
			return retry.WithMaxRetries(n, constantPause(pause))
		}
	}
}

// constantPause is retry.NewConstant that also accepts a zero pause.
func constantPause(d time.Duration) retry.Backoff {
	d = max(d, 0)
	return retry.BackoffFunc(func() (time.Duration, bool) {
		return d, false
	})
}

// Open loads the store from backend. A missing or unreadable document is
// not an error: the store starts empty with currentUser registered, and a
// corrupt document is logged.
func Open(ctx context.Context, backend Backend, currentUser string, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		current: currentUser,
		byName:  make(map[string]*userScores),
		now:     time.Now,
		logger:  slog.Default(),
	}
	WithSaveRetries(2, 25*time.Millisecond)(s)
	for _, opt := range opts {
		opt(s)
	}

	doc, err := backend.Load(ctx)
	if err != nil {
		errutil.LogWarn(s.logger, "score data unreadable, starting fresh", err)
		doc = nil
	}
	if doc == nil {
		s.user(currentUser, true)
		return s
	}

	for _, ud := range doc.Users {
		u := s.user(ud.Name, true)
		for _, gd := range ud.Games {
			g := u.game(gd.ID, true)
			g.records = append(g.records[:0], gd.Scores...)
			sortRecords(g.records)
		}
	}
	return s
}

func (s *Store) user(name string, create bool) *userScores {
	if u, ok := s.byName[name]; ok {
		return u
	}
	if !create {
		return nil
	}
	u := &userScores{name: name, byID: make(map[string]*gameScores)}
	s.users = append(s.users, u)
	s.byName[name] = u
	return u
}

// sortRecords orders by score descending; equal scores keep their relative
// order, so earlier submissions stay first among ties.
func sortRecords(recs []Record) {
	slices.SortStableFunc(recs, func(a, b Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
}

// AddScore appends a record for user and game, keeps the list sorted, and
// saves. On a save failure the record stays in memory and a persistence
// error is returned.
func (s *Store) AddScore(ctx context.Context, user, gameID string, score int64, level int) error {
	g := s.user(user, true).game(gameID, true)
	g.records = append(g.records, Record{
		Score:     score,
		Level:     level,
		Timestamp: float64(s.now().UnixNano()) / float64(time.Second),
	})
	sortRecords(g.records)
	return s.Save(ctx)
}

// HighScore returns the user's best score for the game, or 0 when there is
// none.
func (s *Store) HighScore(user, gameID string) int64 {
	recs := s.records(user, gameID)
	if len(recs) == 0 {
		return 0
	}
	return recs[0].Score
}

// CurrentUser returns the active player name.
func (s *Store) CurrentUser() string {
	return s.current
}

// CurrentHighScore is HighScore for the active player.
func (s *Store) CurrentHighScore(gameID string) int64 {
	return s.HighScore(s.current, gameID)
}

// ChangeUser makes name the active player, registering and saving it if new.
func (s *Store) ChangeUser(ctx context.Context, name string) error {
	s.current = name
	if s.user(name, false) != nil {
		return nil
	}
	s.user(name, true)
	return s.Save(ctx)
}

// Users returns user names in insertion order.
func (s *Store) Users() []string {
	names := make([]string, len(s.users))
	for i, u := range s.users {
		names[i] = u.name
	}
	return names
}

// Games returns the user's game ids in insertion order.
func (s *Store) Games(user string) []string {
	u := s.user(user, false)
	if u == nil {
		return nil
	}
	ids := make([]string, len(u.games))
	for i, g := range u.games {
		ids[i] = g.id
	}
	return ids
}

// Records returns a copy of the user's records for the game, best first.
func (s *Store) Records(user, gameID string) []Record {
	return slices.Clone(s.records(user, gameID))
}

func (s *Store) records(user, gameID string) []Record {
	u := s.user(user, false)
	if u == nil {
		return nil
	}
	g := u.game(gameID, false)
	if g == nil {
		return nil
	}
	return g.records
}

// Document snapshots the store in its persisted form.
func (s *Store) Document() *Document {
	doc := &Document{Users: make([]UserDoc, 0, len(s.users))}
	for _, u := range s.users {
		ud := UserDoc{Name: u.name, Games: make([]GameDoc, 0, len(u.games))}
		for _, g := range u.games {
			ud.Games = append(ud.Games, GameDoc{ID: g.id, Scores: slices.Clone(g.records)})
		}
		doc.Users = append(doc.Users, ud)
	}
	return doc
}

// Save writes the whole store to the backend, retrying briefly.
func (s *Store) Save(ctx context.Context) error {
	doc := s.Document()
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		if err := s.backend.Save(ctx, doc); err != nil {
			s.logger.Debug("score save attempt failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.In("score").Code(CodePersistence).Hint("scores kept in memory").Wrap(err)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
