// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package main implements Tower Builder as a binary ArcadeHub game.
//
// Build it into its plugin directory:
//
//	go build -o plugins/tower_builder/main ./plugins/tower_builder
//
// Each round the block swings to a random offset; press Enter to drop it.
// The overhang is trimmed off the tower, and the game ends when nothing is
// left to stack on. Enter q to leave early.
package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

const startWidth = 10

type tower struct {
	in *bufio.Reader
}

func (t *tower) Info() *gamesdk.Info {
	return &gamesdk.Info{
		Title:       "Tower Builder",
		Description: "Stack blocks as high as you can",
		Author:      "ArcadeHub",
		Version:     "0.3.0",
	}
}

func (t *tower) NewGame() (gamesdk.Game, error) {
	return &session{in: t.in, width: startWidth}, nil
}

type session struct {
	in     *bufio.Reader
	width  int
	height int
}

func (s *session) Start() (gamesdk.Outcome, error) {
	fmt.Println("TOWER BUILDER - press Enter to drop, q to quit")
	for s.width > 0 {
		offset := rand.IntN(5) - 2
		fmt.Printf("height %d, width %d, swinging %+d > ", s.height, s.width, offset)

		line, err := s.in.ReadString('\n')
		if strings.TrimSpace(line) == "q" || (err != nil && line == "") {
			return gamesdk.UserQuit(float64(s.height*10), s.level()), nil
		}

		s.width -= abs(offset)
		if s.width <= 0 {
			fmt.Println("The block slid off. Tower complete.")
			break
		}
		s.height++
		fmt.Println(strings.Repeat(" ", max(offset, 0)) + strings.Repeat("#", s.width))
	}
	return gamesdk.Completed(float64(s.height*10), s.level()), nil
}

func (s *session) Quit() {}

func (s *session) level() int {
	return 1 + s.height/5
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func main() {
	gamesdk.Serve(&gamesdk.ServeConfig{
		Plugin: &tower{in: bufio.NewReader(os.Stdin)},
	})
}
