// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/arcadehub/arcadehub/internal/game"
	"github.com/arcadehub/arcadehub/internal/score"
	"github.com/arcadehub/arcadehub/pkg/errutil"
	"github.com/arcadehub/arcadehub/pkg/gamesdk"
)

// recordingBackend captures saves; failSaves makes every save fail.
type recordingBackend struct {
	saves     int
	failSaves bool
}

func (b *recordingBackend) Load(context.Context) (*score.Document, error) { return nil, nil }

func (b *recordingBackend) Save(context.Context, *score.Document) error {
	b.saves++
	if b.failSaves {
		return errors.New("read-only file system")
	}
	return nil
}

func (b *recordingBackend) Close() error { return nil }

var _ = Describe("Launcher", func() {
	var (
		ctx      context.Context
		root     string
		rt       *fakeRuntime
		manager  *game.Manager
		backend  *recordingBackend
		store    *score.Store
		metrics  *countingMetrics
		launcher *game.Launcher
	)

	addGame := func(id string, mod *fakeModule) {
		dir := filepath.Join(root, id)
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, fakeEntry), []byte("x"), 0o644)).To(Succeed())
		rt.modules[id] = mod
	}

	BeforeEach(func() {
		ctx = context.Background()
		root = GinkgoT().TempDir()
		rt = newFakeRuntime()
		metrics = newCountingMetrics()
		quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

		var err error
		manager, err = game.NewManager(root, game.WithRuntime(rt), game.WithLogger(quiet), game.WithMetrics(metrics))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(manager.Close)

		backend = &recordingBackend{}
		store = score.Open(ctx, backend, "alice", score.WithSaveRetries(0, 0), score.WithLogger(quiet))
		launcher = game.NewLauncher(manager, store, store.CurrentUser,
			game.WithLauncherLogger(quiet), game.WithLauncherMetrics(metrics))
	})

	Describe("a game that completes", func() {
		var g *fakeGame

		BeforeEach(func() {
			g = &fakeGame{outcome: gamesdk.Completed(150, 2)}
			addGame("snake", &fakeModule{game: g})
			manager.Discover(ctx)
		})

		It("records the score for the current player", func() {
			report, err := launcher.Launch(ctx, "snake")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.State).To(Equal(game.StateFinished))
			Expect(report.Recorded).To(BeTrue())
			Expect(report.Score).To(Equal(int64(150)))
			Expect(report.RunID).To(HaveLen(26))
			Expect(store.HighScore("alice", "snake")).To(Equal(int64(150)))
			Expect(store.Records("alice", "snake")[0].Level).To(Equal(2))
			Expect(g.quits).To(Equal(1))
			Expect(metrics.launched["finished"]).To(Equal(1))
			Expect(metrics.recorded).To(Equal(1))
		})

		It("records under the player active at launch time", func() {
			Expect(store.ChangeUser(ctx, "bob")).To(Succeed())

			_, err := launcher.Launch(ctx, "snake")
			Expect(err).NotTo(HaveOccurred())

			Expect(store.HighScore("bob", "snake")).To(Equal(int64(150)))
			Expect(store.HighScore("alice", "snake")).To(BeZero())
		})
	})

	Describe("a game that raises during start", func() {
		var g *fakeGame

		BeforeEach(func() {
			g = &fakeGame{startErr: errBoom}
			addGame("crashy", &fakeModule{game: g})
			manager.Discover(ctx)
		})

		It("aborts, leaves the store untouched, and still quits once", func() {
			savesBefore := backend.saves

			report, err := launcher.Launch(ctx, "crashy")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.State).To(Equal(game.StateAborted))
			Expect(report.Recorded).To(BeFalse())
			Expect(report.Result.Err).To(HaveOccurred())
			Expect(errutil.Code(report.Result.Err)).To(Equal(game.CodeRuntime))
			Expect(store.Records("alice", "crashy")).To(BeEmpty())
			Expect(backend.saves).To(Equal(savesBefore))
			Expect(g.quits).To(Equal(1))
			Expect(metrics.launched["aborted"]).To(Equal(1))
		})
	})

	Describe("a game that panics", func() {
		It("is contained like any other failure", func() {
			g := &fakeGame{panicMsg: "nil map"}
			addGame("panicky", &fakeModule{game: g})
			manager.Discover(ctx)

			report, err := launcher.Launch(ctx, "panicky")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.State).To(Equal(game.StateAborted))
			Expect(g.quits).To(Equal(1))
		})
	})

	DescribeTable("scores that are not recorded",
		func(outcome gamesdk.Outcome) {
			addGame("zero", &fakeModule{game: &fakeGame{outcome: outcome}})
			manager.Discover(ctx)

			report, err := launcher.Launch(ctx, "zero")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.State).To(Equal(game.StateFinished))
			Expect(report.Recorded).To(BeFalse())
			Expect(store.Records("alice", "zero")).To(BeEmpty())
		},
		Entry("zero", gamesdk.Completed(0, 1)),
		Entry("negative", gamesdk.Completed(-5, 1)),
		Entry("quit before scoring", gamesdk.UserQuit(0, 1)),
	)

	Describe("an unknown id", func() {
		It("returns a not-found error", func() {
			manager.Discover(ctx)

			report, err := launcher.Launch(ctx, "ghost")
			Expect(report).To(BeNil())
			Expect(errutil.Code(err)).To(Equal(game.CodeNotFound))
		})
	})

	Describe("a game that cannot be constructed", func() {
		It("returns the contract error without running", func() {
			addGame("hollow", &fakeModule{})
			manager.Discover(ctx)

			_, err := launcher.Launch(ctx, "hollow")
			Expect(errutil.Code(err)).To(Equal(game.CodeContract))
			Expect(metrics.failed["instantiate"]).To(Equal(1))
		})
	})

	Describe("a score that cannot be saved", func() {
		It("keeps the score in memory and reports the persistence error", func() {
			addGame("snake", &fakeModule{game: &fakeGame{outcome: gamesdk.Completed(77, 1)}})
			manager.Discover(ctx)
			backend.failSaves = true

			report, err := launcher.Launch(ctx, "snake")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Recorded).To(BeTrue())
			Expect(errutil.Code(report.PersistErr)).To(Equal(score.CodePersistence))
			Expect(store.HighScore("alice", "snake")).To(Equal(int64(77)))
			Expect(metrics.persist).To(Equal(1))
		})
	})
})
