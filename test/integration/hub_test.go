// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

//go:build integration

package integration

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/internal/game/goplugin"
	gamelua "github.com/arcadehub/arcadehub/internal/game/lua"
	"github.com/arcadehub/arcadehub/internal/leaderboard"
	"github.com/arcadehub/arcadehub/internal/score"
)

const reflexLua = `
GAME_INFO = { title = "Reflex", version = "1.0.0" }
Game = {}
function Game:start()
  local n = tonumber(arcade.read_line())
  if n == nil then error("no input") end
  return n, 1
end
function Game:quit() end
`

// hub is a host wired the way the CLI wires it, with scripted input.
type hub struct {
	manager  *game.Manager
	store    *score.Store
	launcher *game.Launcher
	out      *bytes.Buffer
}

func newHub(ctx context.Context, gamesDir, scoresFile, player string, input io.Reader) *hub {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &bytes.Buffer{}
	store := score.Open(ctx, score.NewJSONFile(scoresFile), player, score.WithLogger(quiet))

	manager, err := game.NewManager(gamesDir,
		game.WithRuntime(gamelua.NewRuntime(
			gamelua.WithConsole(input, out),
			gamelua.WithPlayer(store.CurrentUser),
			gamelua.WithHighScores(store.CurrentHighScore),
			gamelua.WithLogger(quiet),
		)),
		game.WithRuntime(goplugin.NewRuntime(goplugin.WithLogger(quiet))),
		game.WithLogger(quiet),
	)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(manager.Close)

	manager.Discover(ctx)
	return &hub{
		manager:  manager,
		store:    store,
		launcher: game.NewLauncher(manager, store, store.CurrentUser, game.WithLauncherLogger(quiet)),
		out:      out,
	}
}

func copyGame(src, dstRoot, id string) {
	data, err := os.ReadFile(filepath.Join(src, id, "main.lua"))
	Expect(err).NotTo(HaveOccurred())
	Expect(os.MkdirAll(filepath.Join(dstRoot, id), 0o755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dstRoot, id, "main.lua"), data, 0o644)).To(Succeed())
}

func writeGame(root, id, code string) {
	Expect(os.MkdirAll(filepath.Join(root, id), 0o755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(root, id, "main.lua"), []byte(code), 0o644)).To(Succeed())
}

var _ = Describe("Sample games", func() {
	var (
		ctx      context.Context
		gamesDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		gamesDir = GinkgoT().TempDir()
		copyGame(filepath.Join("..", "..", "plugins"), gamesDir, "coin_dash")
		copyGame(filepath.Join("..", "..", "plugins"), gamesDir, "snake_reloaded")
	})

	It("loads both Lua samples with their titles", func() {
		h := newHub(ctx, gamesDir, filepath.Join(GinkgoT().TempDir(), "scores.json"), "alice", strings.NewReader(""))

		Expect(h.manager.IDs()).To(Equal([]string{"coin_dash", "snake_reloaded"}))
		coin, _ := h.manager.Get("coin_dash")
		Expect(coin.Title).To(Equal("Coin Dash"))
		Expect(coin.SemVer().String()).To(Equal("1.2.0"))
		snake, _ := h.manager.Get("snake_reloaded")
		Expect(snake.Title).To(Equal("Snake Reloaded"))
		Expect(snake.Author).To(Equal(game.DefaultAuthor))
	})

	It("plays snake into the wall", func() {
		input := strings.NewReader(strings.Repeat("d\n", 10))
		h := newHub(ctx, gamesDir, filepath.Join(GinkgoT().TempDir(), "scores.json"), "alice", input)

		report, err := h.launcher.Launch(ctx, "snake_reloaded")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.State).To(Equal(game.StateFinished))
		Expect(h.out.String()).To(ContainSubstring("Crash!"))
	})

	It("lets the player leave coin dash without a score", func() {
		h := newHub(ctx, gamesDir, filepath.Join(GinkgoT().TempDir(), "scores.json"), "alice", strings.NewReader("q\n"))

		report, err := h.launcher.Launch(ctx, "coin_dash")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Recorded).To(BeFalse())
		Expect(h.out.String()).To(ContainSubstring("COIN DASH - player alice, best 0"))
	})
})

var _ = Describe("Scores across restarts", func() {
	var (
		ctx        context.Context
		gamesDir   string
		scoresFile string
	)

	BeforeEach(func() {
		ctx = context.Background()
		gamesDir = GinkgoT().TempDir()
		scoresFile = filepath.Join(GinkgoT().TempDir(), "scores.json")
		writeGame(gamesDir, "reflex", reflexLua)
	})

	It("keeps records sorted and ranks players", func() {
		alice := newHub(ctx, gamesDir, scoresFile, "alice", strings.NewReader("100\n200\n50\n"))
		for range 3 {
			_, err := alice.launcher.Launch(ctx, "reflex")
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(alice.store.HighScore("alice", "reflex")).To(Equal(int64(200)))

		bob := newHub(ctx, gamesDir, scoresFile, "bob", strings.NewReader("150\n"))
		_, err := bob.launcher.Launch(ctx, "reflex")
		Expect(err).NotTo(HaveOccurred())

		reopened := score.Open(ctx, score.NewJSONFile(scoresFile), "carol")
		top := leaderboard.GlobalTop(reopened, "reflex", leaderboard.DisplayLimit)
		scores := make([]int64, len(top))
		for i, e := range top {
			scores[i] = e.Score
		}
		Expect(scores).To(Equal([]int64{200, 150, 100, 50}))
		Expect(top[1].Username).To(Equal("bob"))
		Expect(reopened.Users()).To(Equal([]string{"alice", "bob"}))
	})

	It("records nothing when the game errors", func() {
		h := newHub(ctx, gamesDir, scoresFile, "alice", strings.NewReader(""))

		report, err := h.launcher.Launch(ctx, "reflex")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.State).To(Equal(game.StateAborted))
		Expect(h.store.Records("alice", "reflex")).To(BeEmpty())
	})

	It("starts fresh from a corrupt score file", func() {
		Expect(os.WriteFile(scoresFile, []byte(`{"users": {"alice": `), 0o600)).To(Succeed())

		h := newHub(ctx, gamesDir, scoresFile, "alice", strings.NewReader("75\n"))
		Expect(h.store.Users()).To(Equal([]string{"alice"}))

		_, err := h.launcher.Launch(ctx, "reflex")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(scoresFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(score.ValidateSchema(data)).To(Succeed())
	})
})

var _ = Describe("Binary games", func() {
	It("runs tower builder as a child process", func() {
		goBin, err := exec.LookPath("go")
		if err != nil {
			Skip("go toolchain not available")
		}
		gamesDir := GinkgoT().TempDir()
		out := filepath.Join(gamesDir, "tower_builder", "main")
		build := exec.Command(goBin, "build", "-o", out, "github.com/arcadehub/arcadehub/plugins/tower_builder")
		build.Stderr = GinkgoWriter
		Expect(build.Run()).To(Succeed())

		ctx := context.Background()
		h := newHub(ctx, gamesDir, filepath.Join(GinkgoT().TempDir(), "scores.json"), "alice", strings.NewReader(""))

		d, ok := h.manager.Get("tower_builder")
		Expect(ok).To(BeTrue())
		Expect(d.Runtime).To(Equal("binary"))
		Expect(d.Title).To(Equal("Tower Builder"))

		report, err := h.launcher.Launch(ctx, "tower_builder")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.State).To(Equal(game.StateFinished))
	})
})
