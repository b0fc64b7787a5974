package sessions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := fmt.Sprintf("file:%s?mode=memory&cache=shared", ulid.Make().String())
	db, err := OpenDatabase(url, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewStore(db)
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "root", true, "api-token", time.Hour)
	require.NoError(t, err)
	require.Len(t, created.ID, 26)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", got.Username)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "api-token", got.APIToken)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = store.Get(context.Background(), ulid.Make().String())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_ExpiredSessionIsRejectedAndPurged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	stale, err := store.Create(ctx, "old", false, "t1", time.Minute)
	require.NoError(t, err)
	live, err := store.Create(ctx, "new", false, "t2", time.Hour)
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err = store.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ID}, purged)

	purged, err = store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, purged)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, "root", true, "tok", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, session.ID))
	require.NoError(t, store.Delete(ctx, session.ID))

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_SigningSecret(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	configured, err := store.SigningSecret(ctx, "from-env")
	require.NoError(t, err)
	assert.Equal(t, "from-env", configured)

	first, err := store.SigningSecret(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := store.SigningSecret(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, first, second, "generated secret must be persisted")
}
