// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package leaderboard answers read-only ranking queries over recorded scores.
package leaderboard

import (
	"slices"

	"github.com/arcadehub/arcadehub/internal/score"
)

// DisplayLimit is how many entries the CLI shows by default.
const DisplayLimit = 8

// Source is the read side of the score store.
type Source interface {
	// Users returns user names in insertion order.
	Users() []string
	// Records returns the user's records for the game, best first.
	Records(user, gameID string) []score.Record
}

// Compile-time interface check.
var _ Source = (*score.Store)(nil)

// Entry is one ranked record tagged with its owner.
type Entry struct {
	Username  string  `json:"username" yaml:"username"`
	Score     int64   `json:"score" yaml:"score"`
	Level     int     `json:"level" yaml:"level"`
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`
}

// GlobalTop ranks every user's records for gameID by score descending and
// returns at most limit entries. Equal scores keep user insertion order, then
// each user's own record order. No recorded scores, or a limit of zero or
// less, yields an empty slice.
func GlobalTop(src Source, gameID string, limit int) []Entry {
	entries := []Entry{}
	if limit <= 0 {
		return entries
	}

	for _, user := range src.Users() {
		for _, r := range src.Records(user, gameID) {
			entries = append(entries, Entry{
				Username:  user,
				Score:     r.Score,
				Level:     r.Level,
				Timestamp: r.Timestamp,
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// HighScore returns the user's best score for gameID, or 0.
func HighScore(src Source, user, gameID string) int64 {
	recs := src.Records(user, gameID)
	if len(recs) == 0 {
		return 0
	}
	return recs[0].Score
}
