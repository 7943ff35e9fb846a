package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  expires_at INTEGER NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}, time.Time{}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_UpsertOverwritesValueAndExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	r := NewSQLiteRepository(setupDB(t)).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old"), now.Add(-time.Minute)))
	require.NoError(t, r.Set(ctx, "k", []byte("new"), time.Time{}))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestGet_Expiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	r := NewSQLiteRepository(setupDB(t)).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "live", []byte("a"), now.Add(time.Second)))
	require.NoError(t, r.Set(ctx, "dead", []byte("b"), now))

	v, err := r.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)

	v, err = r.Get(ctx, "dead")
	require.NoError(t, err)
	assert.Nil(t, v)

	n, err := r.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDelete_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Time{}))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.Delete(ctx, "k"))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestClosedDB_ReturnsErrors(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", []byte("v"), time.Time{}))
	assert.Error(t, r.Delete(ctx, "k"))
	_, err = r.PurgeExpired(ctx)
	assert.Error(t, err)
}
