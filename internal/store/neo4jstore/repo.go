package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/idilsaglam/todolist/internal/model"
)

// Config addresses the graph database.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Repository stores each item as a :Todo node ordered by its position property.
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
}

// Open connects and verifies the server is reachable.
func Open(ctx context.Context, cfg Config) (*Repository, error) {
	if cfg.URI == "" {
		return nil, errors.New("neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &Repository{driver: driver, database: cfg.Database}, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Load retrieves all items in saved order.
func (r *Repository) Load(ctx context.Context) ([]model.Item, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Todo) "+
				"RETURN t.id AS id, t.title AS title, t.done AS done, t.priority AS priority, "+
				"t.category AS category, t.created_at AS created_at "+
				"ORDER BY t.position ASC",
			nil,
		)
		if err != nil {
			return nil, err
		}

		items := []model.Item{}
		for res.Next(ctx) {
			it, err := itemFromRecord(res.Record().AsMap())
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}
	return result.([]model.Item), nil
}

// Save replaces every :Todo node in one write transaction.
func (r *Repository) Save(ctx context.Context, items []model.Item) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, "MATCH (t:Todo) DETACH DELETE t", nil); err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		_, err := tx.Run(ctx,
			"UNWIND $items AS it "+
				"CREATE (:Todo {id: it.id, position: it.position, title: it.title, done: it.done, "+
				"priority: it.priority, category: it.category, created_at: it.created_at})",
			map[string]any{"items": itemParams(items)},
		)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("save todos: %w", err)
	}
	return nil
}

func itemParams(items []model.Item) []any {
	out := make([]any, 0, len(items))
	for i, it := range items {
		out = append(out, map[string]any{
			"id":         it.ID.String(),
			"position":   int64(i),
			"title":      it.Title,
			"done":       it.Done,
			"priority":   string(it.Priority),
			"category":   it.Category,
			"created_at": it.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func itemFromRecord(values map[string]any) (model.Item, error) {
	var it model.Item
	idRaw, _ := values["id"].(string)
	id, err := uuid.Parse(idRaw)
	if err != nil {
		return model.Item{}, fmt.Errorf("parse todo id %q: %w", idRaw, err)
	}
	it.ID = id
	it.Title, _ = values["title"].(string)
	it.Done, _ = values["done"].(bool)
	priority, _ := values["priority"].(string)
	it.Priority = model.Priority(priority)
	it.Category, _ = values["category"].(string)
	if raw, ok := values["created_at"].(string); ok && raw != "" {
		if it.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return model.Item{}, fmt.Errorf("parse created_at %q: %w", raw, err)
		}
	}
	return it, nil
}
