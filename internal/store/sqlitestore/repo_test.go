package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todolist/internal/model"
)

func sample(title string, done bool) model.Item {
	return model.Item{
		ID:        uuid.New(),
		Title:     title,
		Done:      done,
		Priority:  model.PriorityHigh,
		Category:  "home",
		CreatedAt: time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepository_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	items := []model.Item{sample("c", false), sample("a", true), sample("b", false)}
	require.NoError(t, repo.Save(ctx, items))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)

	// shrinking the list replaces, never merges
	require.NoError(t, repo.Save(ctx, items[1:2]))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, items[1:2], got)
}

func TestRepository_DuplicateIdentitiesSurvive(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	dup := sample("twice", false)
	require.NoError(t, repo.Save(ctx, []model.Item{dup, dup}))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "todo.db")
	repo, err := Open(path)
	require.NoError(t, err)
	items := []model.Item{sample("persisted", true)}
	require.NoError(t, repo.Save(ctx, items))
	require.NoError(t, repo.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
