package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kingrea/pm-portal/internal/config"
	"github.com/kingrea/pm-portal/internal/logbook"
	"github.com/kingrea/pm-portal/internal/logging"
	"github.com/kingrea/pm-portal/internal/storage"
	"github.com/kingrea/pm-portal/internal/store"
)

// session is a loaded workspace: configuration, logs, backend and store.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	journal *logbook.Logbook
	backend storage.Storage
	store   *store.Store

	closeLog func() error
}

func openSession(ctx context.Context, flags rootFlags) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dir := flags.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	if err := config.InitPortalDir(dir); err != nil {
		return nil, fmt.Errorf("initialize workspace: %w", err)
	}
	cfg, err := config.NewConfig(dir, flags.configFile)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.LogPath(), cfg.Portal.Log.Level)
	if err != nil {
		return nil, err
	}
	journal, err := logbook.New(cfg.JournalPath())
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	backend, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		logger.Error("open storage", zap.String("driver", cfg.Portal.Storage.Driver), zap.Error(err))
		_ = closeLog()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	st := store.New(backend, store.WithLogger(logger), store.WithJournal(journal))
	result, err := st.Load(ctx)
	if err != nil {
		_ = backend.Close()
		_ = closeLog()
		return nil, fmt.Errorf("load projects: %w", err)
	}
	logger.Debug("session opened",
		zap.String("workspace", cfg.WorkspaceDir),
		zap.String("driver", cfg.Portal.Storage.Driver),
		zap.Bool("seeded", result.Seeded),
	)
	return &session{
		cfg:      cfg,
		logger:   logger,
		journal:  journal,
		backend:  backend,
		store:    st,
		closeLog: closeLog,
	}, nil
}

// Close releases the backend and flushes the log file.
func (s *session) Close() error {
	return errors.Join(s.backend.Close(), s.closeLog())
}
