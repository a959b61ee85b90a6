// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game

import (
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults synthesized for a plugin that declares no metadata record.
const (
	DefaultDescription = "No description available"
	DefaultAuthor      = "Unknown"
	DefaultVersion     = "1.0"
)

// Metadata is the optional record a plugin declares about itself.
type Metadata struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Author      string `json:"author" yaml:"author"`
	Version     string `json:"version" yaml:"version"`
}

// Descriptor is the catalog entry for a successfully loaded plugin.
// It is immutable once it is in a catalog.
type Descriptor struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Author      string `json:"author" yaml:"author"`
	Version     string `json:"version" yaml:"version"`
	EntryPath   string `json:"entry_path" yaml:"entry_path"`
	Runtime     string `json:"runtime" yaml:"runtime"`

	semver *semver.Version
	module Module
}

// Module returns the loaded code handle.
func (d *Descriptor) Module() Module {
	return d.module
}

// SemVer returns the parsed version, or nil when Version is not a semantic
// version.
func (d *Descriptor) SemVer() *semver.Version {
	return d.semver
}

// DefaultTitle derives a display title from a plugin id. Underscores become
// spaces and every run of letters is title-cased on its own, so "coin_dash"
// becomes "Coin Dash" and "snake2go" becomes "Snake2Go".
func DefaultTitle(id string) string {
	caser := cases.Title(language.Und)
	s := strings.ReplaceAll(id, "_", " ")

	var b strings.Builder
	b.Grow(len(s))
	for s != "" {
		i := strings.IndexFunc(s, unicode.IsLetter)
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		s = s[i:]

		j := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
		if j < 0 {
			j = len(s)
		}
		b.WriteString(caser.String(s[:j]))
		s = s[j:]
	}
	return b.String()
}

// DefaultMetadata is the record synthesized for a plugin without one.
func DefaultMetadata(id string) Metadata {
	return Metadata{
		Title:       DefaultTitle(id),
		Description: DefaultDescription,
		Author:      DefaultAuthor,
		Version:     DefaultVersion,
	}
}

// newDescriptor copies meta into a fresh descriptor so that later changes to
// the plugin's own record cannot reach the catalog. Fields the plugin left
// empty take their defaults.
func newDescriptor(id, entryPath, runtime string, meta *Metadata, mod Module) *Descriptor {
	def := DefaultMetadata(id)
	m := def
	if meta != nil {
		m = *meta
		if m.Title == "" {
			m.Title = def.Title
		}
		if m.Description == "" {
			m.Description = def.Description
		}
		if m.Author == "" {
			m.Author = def.Author
		}
		if m.Version == "" {
			m.Version = def.Version
		}
	}

	d := &Descriptor{
		ID:          id,
		Title:       m.Title,
		Description: m.Description,
		Author:      m.Author,
		Version:     m.Version,
		EntryPath:   entryPath,
		Runtime:     runtime,
		module:      mod,
	}
	if v, err := semver.NewVersion(m.Version); err == nil {
		d.semver = v
	}
	return d
}
