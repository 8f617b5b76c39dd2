// Package store opens the configured item repository.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/todolist/internal/config"
	"github.com/idilsaglam/todolist/internal/store/jsonstore"
	"github.com/idilsaglam/todolist/internal/store/neo4jstore"
	"github.com/idilsaglam/todolist/internal/store/sqlitestore"
	"github.com/idilsaglam/todolist/internal/todolist"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// Open returns the repository for cfg.Backend and a func releasing it.
func Open(ctx context.Context, cfg config.StoreConfig) (todolist.Repository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendJSON, "":
		s, err := jsonstore.New(cfg.JSONPath)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.BackendSQLite:
		repo, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.BackendNeo4j:
		repo, err := neo4jstore.Open(ctx, neo4jstore.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return repo.Close(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
