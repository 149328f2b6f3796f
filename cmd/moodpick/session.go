package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/icco/moodpick/lib/config"
	"github.com/icco/moodpick/lib/db"
	"github.com/icco/moodpick/lib/favorites"
	"github.com/icco/moodpick/lib/lock"
	"github.com/icco/moodpick/lib/proxyclient"
	"github.com/icco/moodpick/lib/selection"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

const lastPageKey = "moodpick_last_page_"

// session is everything a command needs, built from flags and config.
type session struct {
	cfg       *config.ClientConfig
	logger    *slog.Logger
	proxy     *proxyclient.Client
	planner   *selection.Planner
	storage   *favorites.SQLiteStorage
	favorites *favorites.Store
	db        *gorm.DB
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := config.LoadClient(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if s := c.String("server"); s != "" {
		cfg.ServerURL = s
	}
	if p := c.String("db"); p != "" {
		cfg.DBPath = p
	}

	logger := newLogger(c.App.ErrWriter, c.Bool("verbose"))

	gdb, err := db.Open(c.Context, cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	storage := favorites.NewSQLiteStorage(gdb)

	// Lock files sit next to the store so every process sharing it agrees.
	locker := lock.NewFileLock(filepath.Join(filepath.Dir(cfg.DBPath), ".moodpick-locks"), logger)

	return &session{
		cfg:       cfg,
		logger:    logger,
		proxy:     proxyclient.New(cfg.ServerURL, cfg.Timeout, logger),
		planner:   selection.NewPlanner(nil, nil, logger),
		storage:   storage,
		favorites: favorites.NewStore(storage, logger, favorites.WithLocker(locker)),
		db:        gdb,
	}, nil
}

func (s *session) Close() {
	if err := db.Close(s.db); err != nil {
		s.logger.Error("Failed to close store", slog.Any("error", err))
	}
}

// lastPage is the movie page last shown for a genre, or 0.
func (s *session) lastPage(ctx context.Context, genreID int) int {
	raw, ok, err := s.storage.Get(ctx, lastPageKey+strconv.Itoa(genreID))
	if err != nil || !ok {
		return 0
	}
	page, _ := strconv.Atoi(raw)
	return page
}

func (s *session) rememberPage(ctx context.Context, genreID, page int) {
	if err := s.storage.Set(ctx, lastPageKey+strconv.Itoa(genreID), strconv.Itoa(page)); err != nil {
		s.logger.WarnContext(ctx, "Failed to remember page", slog.Any("error", err))
	}
}

// withSession opens a session for the duration of fn.
func withSession(fn func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(c, s)
	}
}
