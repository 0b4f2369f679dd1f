package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/internal/testdb"
)

func TestRepositoryStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewRepositoryStore(db)

	repo := analysis.NewRepository("user-1", "demo", "https://github.com/acme/demo.git", true)

	created, isNew, err := store.GetOrCreate(ctx, repo)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotZero(t, created.ID())
	assert.Equal(t, "https://github.com/acme/demo.git", created.URL())

	// Same URL resolves to the existing row, even for another user.
	again, isNew, err := store.GetOrCreate(ctx, analysis.NewRepository("user-2", "demo", "https://github.com/acme/demo.git", true))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID(), again.ID())
	assert.Equal(t, "user-1", again.UserID())
}

func TestRepositoryStore_MarkIngested(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewRepositoryStore(db)

	repo, _, err := store.GetOrCreate(ctx, analysis.NewRepository("u", "demo", "https://example.com/a.git", true))
	require.NoError(t, err)
	assert.False(t, repo.Ingested())

	saved, err := store.Save(ctx, repo.MarkIngested(repo.CreatedAt().AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.True(t, saved.Ingested())

	loaded, err := store.FindOne(ctx, analysis.WithID(repo.ID()))
	require.NoError(t, err)
	assert.True(t, loaded.Ingested())
}
