// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package leaderboard

import (
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// EmptyText is rendered in place of the table when nobody has scored.
const EmptyText = "NO SCORES YET"

var medals = []string{"🥇", "🥈", "🥉"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	currentStyle = cellStyle.Foreground(lipgloss.Color("46")).Bold(true)
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderOptions controls Render.
type RenderOptions struct {
	// Title is printed above the table when set.
	Title string
	// CurrentUser rows are highlighted.
	CurrentUser string
	// Location for dates. Defaults to time.Local.
	Location *time.Location
}

// Render draws entries as a ranked table.
func Render(entries []Entry, opts RenderOptions) string {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	var body string
	if len(entries) == 0 {
		body = emptyStyle.Render(EmptyText)
	} else {
		rows := make([][]string, 0, len(entries))
		for i, e := range entries {
			rows = append(rows, []string{
				rank(i),
				e.Username,
				strconv.FormatInt(e.Score, 10),
				strconv.Itoa(e.Level),
				date(e.Timestamp, loc),
			})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers("RANK", "PLAYER", "SCORE", "LEVEL", "DATE").
			Rows(rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case row >= 0 && row < len(entries) && opts.CurrentUser != "" && entries[row].Username == opts.CurrentUser:
					return currentStyle
				default:
					return cellStyle
				}
			})
		body = t.Render()
	}

	if opts.Title == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(opts.Title), body)
}

func rank(i int) string {
	if i < len(medals) {
		return medals[i]
	}
	return strconv.Itoa(i + 1)
}

func date(ts float64, loc *time.Location) string {
	if ts <= 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return "-"
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).In(loc).Format("2006-01-02")
}
