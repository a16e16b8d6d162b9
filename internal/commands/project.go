package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tamogatas-dev/tamogatas/internal/config"
	"github.com/tamogatas-dev/tamogatas/internal/logging"
	"github.com/tamogatas-dev/tamogatas/internal/store"
)

// project is an opened data directory: its config, logger and database.
type project struct {
	root  string
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
}

func openProject(ctx context.Context, repo string, logOut io.Writer) (*project, error) {
	root, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading project at %s (run init first?): %w", root, err)
	}

	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, logOut)
	if err != nil {
		return nil, err
	}
	log.Logger = logger

	st, err := store.Open(ctx, resolve(root, cfg.Database.Path), logger)
	if err != nil {
		return nil, err
	}

	return &project{root: root, cfg: cfg, log: logger, store: st}, nil
}

func (p *project) importDir() string {
	return resolve(p.root, p.cfg.Import.Dir)
}

func (p *project) Close() error {
	return p.store.Close()
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
