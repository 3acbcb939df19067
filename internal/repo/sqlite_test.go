package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskauth-api/internal/config"
	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := openSQLite(context.Background(), filepath.Join(t.TempDir(), "tasks.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return openTestSQLite(t)
	})
}

func TestSQLiteStore_ForeignKeys(t *testing.T) {
	s := openTestSQLite(t)

	_, err := s.CreateTask(context.Background(), model.Task{OwnerID: 4242, Title: "orphan", Priority: 1})
	assert.Error(t, err)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	s, err := openSQLite(ctx, path, zap.NewNop())
	require.NoError(t, err)
	u, err := s.CreateUser(ctx, model.User{Email: "a@x.com", HashedPassword: "hash", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// migrations are idempotent and data survives a restart
	s, err = openSQLite(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(u.CreatedAt))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, config.Config{StorageDriver: config.DriverMemory}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Config{StorageDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")}
		s, err := Open(ctx, cfg, zap.NewNop())
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLiteStore{}, s)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, config.Config{StorageDriver: "redis"}, zap.NewNop())
		assert.Error(t, err)
	})
}
