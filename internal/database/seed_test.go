package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
users:
  - name: Anna
    email: anna@example.com
    items:
      - name: Drill
        description: cordless drill
        available: true
      - name: Ladder
        description: 3m
  - name: Boris
    email: boris@example.com
`

func TestLoadAndApplySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Users, 2)
	assert.Len(t, seed.Users[0].Items, 2)
	assert.False(t, seed.Users[0].Items[1].Available)

	db := setupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	created, err := db.ApplySeed(ctx, seed, &logger)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	items, err := db.GetItemsByOwner(ctx, users[0].ID, models.Unbounded())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// второй запуск ничего не меняет
	created, err = db.ApplySeed(ctx, seed, &logger)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [oops"), 0o600))
	_, err = LoadSeed(path)
	assert.Error(t, err)
}
