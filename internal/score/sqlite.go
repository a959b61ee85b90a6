// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package score

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Compile-time interface check.
var _ Backend = (*SQLite)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	position INTEGER NOT NULL,
	name     TEXT    NOT NULL PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS games (
	user_name TEXT    NOT NULL REFERENCES users(name) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	game_id   TEXT    NOT NULL,
	PRIMARY KEY (user_name, game_id)
);
CREATE TABLE IF NOT EXISTS scores (
	user_name TEXT    NOT NULL,
	game_id   TEXT    NOT NULL,
	position  INTEGER NOT NULL,
	score     INTEGER NOT NULL,
	level     INTEGER NOT NULL,
	timestamp REAL    NOT NULL,
	PRIMARY KEY (user_name, game_id, position),
	FOREIGN KEY (user_name, game_id) REFERENCES games(user_name, game_id) ON DELETE CASCADE
);`

// SQLite stores the document in a SQLite database. Each save replaces all
// rows inside one transaction.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, persistErr(path).New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, persistErr(path).Hint("failed to create directory").Wrap(err)
	}

	dsn := "file:" + cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, persistErr(path).Hint("open sqlite db").Wrap(err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, persistErr(path).Hint("ping sqlite db").Wrap(err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, persistErr(path).Hint("create tables").Wrap(err)
	}
	return &SQLite{db: db}, nil
}

// Load reads the document. An empty database yields nil.
func (s *SQLite) Load(ctx context.Context) (*Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.name, g.game_id, sc.score, sc.level, sc.timestamp
		FROM users u
		LEFT JOIN games g ON g.user_name = u.name
		LEFT JOIN scores sc ON sc.user_name = g.user_name AND sc.game_id = g.game_id
		ORDER BY u.position, g.position, sc.position`)
	if err != nil {
		return nil, persistErr("sqlite").Hint("query scores").Wrap(err)
	}
	defer func() { _ = rows.Close() }()

	doc := &Document{}
	for rows.Next() {
		var (
			name         string
			gameID       sql.NullString
			score, level sql.NullInt64
			timestamp    sql.NullFloat64
		)
		if err := rows.Scan(&name, &gameID, &score, &level, &timestamp); err != nil {
			return nil, persistErr("sqlite").Hint("scan scores").Wrap(err)
		}

		if n := len(doc.Users); n == 0 || doc.Users[n-1].Name != name {
			doc.Users = append(doc.Users, UserDoc{Name: name})
		}
		u := &doc.Users[len(doc.Users)-1]
		if !gameID.Valid {
			continue
		}
		if n := len(u.Games); n == 0 || u.Games[n-1].ID != gameID.String {
			u.Games = append(u.Games, GameDoc{ID: gameID.String, Scores: []Record{}})
		}
		g := &u.Games[len(u.Games)-1]
		if !score.Valid {
			continue
		}
		g.Scores = append(g.Scores, Record{
			Score:     score.Int64,
			Level:     int(level.Int64),
			Timestamp: timestamp.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("sqlite").Hint("iterate scores").Wrap(err)
	}
	if len(doc.Users) == 0 {
		return nil, nil
	}
	return doc, nil
}

// Save replaces the stored document in one transaction.
func (s *SQLite) Save(ctx context.Context, doc *Document) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("sqlite").Hint("begin transaction").Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM scores", "DELETE FROM games", "DELETE FROM users"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return persistErr("sqlite").Hint("clear tables").Wrap(err)
		}
	}

	for ui, u := range doc.Users {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (position, name) VALUES (?, ?)`, ui, u.Name); err != nil {
			return persistErr("sqlite").With("user", u.Name).Hint("insert user").Wrap(err)
		}
		for gi, g := range u.Games {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO games (user_name, position, game_id) VALUES (?, ?, ?)`,
				u.Name, gi, g.ID); err != nil {
				return persistErr("sqlite").With("user", u.Name).With("game", g.ID).Hint("insert game").Wrap(err)
			}
			for ri, r := range g.Scores {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO scores (user_name, game_id, position, score, level, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
					u.Name, g.ID, ri, r.Score, r.Level, r.Timestamp); err != nil {
					return persistErr("sqlite").With("user", u.Name).With("game", g.ID).Hint("insert score").Wrap(err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("sqlite").Hint("commit scores").Wrap(err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
