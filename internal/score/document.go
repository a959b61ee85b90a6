// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package score

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Record is one timestamped score observation. Records are never mutated.
type Record struct {
	Score int64 `json:"score"`
	Level int   `json:"level"`
	// Timestamp is seconds since the epoch.
	Timestamp float64 `json:"timestamp"`
}

// Document is the persisted form of a store. Slices keep user and game
// insertion order, which the leaderboard uses to break ties.
type Document struct {
	Users []UserDoc
}

// UserDoc holds one user's games in insertion order.
type UserDoc struct {
	Name  string
	Games []GameDoc
}

// GameDoc holds one game's records, sorted by score descending.
type GameDoc struct {
	ID     string
	Scores []Record
}

// MarshalJSON writes
//
//	{"users": {"<name>": {"games": {"<id>": {"scores": [...]}}}}}
//
// with object keys in slice order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"users":{`)
	for i, u := range d.Users {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, u.Name); err != nil {
			return nil, err
		}
		buf.WriteString(`{"games":{`)
		for j, g := range u.Games {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, g.ID); err != nil {
				return nil, err
			}
			scores := g.Scores
			if scores == nil {
				scores = []Record{}
			}
			recs, err := json.Marshal(scores)
			if err != nil {
				return nil, err
			}
			buf.WriteString(`{"scores":`)
			buf.Write(recs)
			buf.WriteByte('}')
		}
		buf.WriteString(`}}`)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// ParseDocument decodes a score file, keeping object key order. A record
// without a level reads as level 1; one without a timestamp reads as 0.
// When an object repeats a key the last value wins, in the first key's
// position.
func ParseDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("score file is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("score file must be a JSON object")
	}
	users := root.Get("users")
	if users.Exists() && !users.IsObject() {
		return nil, fmt.Errorf("users must be an object")
	}

	doc := &Document{}
	userAt := make(map[string]int)
	var perr error
	users.ForEach(func(name, user gjson.Result) bool {
		u := UserDoc{Name: name.String()}
		gameAt := make(map[string]int)
		games := user.Get("games")
		if games.Exists() && !games.IsObject() {
			perr = fmt.Errorf("user %q: games must be an object", u.Name)
			return false
		}
		games.ForEach(func(id, g gjson.Result) bool {
			gd := GameDoc{ID: id.String(), Scores: []Record{}}
			g.Get("scores").ForEach(func(_, r gjson.Result) bool {
				rec := Record{
					Score:     r.Get("score").Int(),
					Level:     1,
					Timestamp: r.Get("timestamp").Float(),
				}
				if lvl := r.Get("level"); lvl.Exists() {
					rec.Level = int(lvl.Int())
				}
				gd.Scores = append(gd.Scores, rec)
				return true
			})
			if i, dup := gameAt[gd.ID]; dup {
				u.Games[i] = gd
				return true
			}
			gameAt[gd.ID] = len(u.Games)
			u.Games = append(u.Games, gd)
			return true
		})
		if i, dup := userAt[u.Name]; dup {
			doc.Users[i] = u
			return perr == nil
		}
		userAt[u.Name] = len(doc.Users)
		doc.Users = append(doc.Users, u)
		return perr == nil
	})
	if perr != nil {
		return nil, perr
	}
	return doc, nil
}
