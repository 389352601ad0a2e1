package retry_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/fulfillment/internal/retry"
)

// testClock is a controllable clock for store tests.
type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestStore(t *testing.T) (*retry.SQLiteStore, *testClock) {
	t.Helper()
	clock := &testClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store, err := retry.NewSQLiteStore(
		filepath.Join(t.TempDir(), "retry.db"),
		retry.WithCooldown(5*time.Minute),
		retry.WithClock(clock.now),
	)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, clock
}

func TestSQLiteStore_CreateRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, 12, retry.StatusFailed, 2)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := store.FindByOrderID(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(12), found.OrderID)
	assert.Equal(t, retry.StatusFailed, found.Status)
	assert.Equal(t, 2, found.FailedAttempts)
}

func TestSQLiteStore_CreateUpsertsExistingOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, 12, retry.StatusFailed, 1)
	require.NoError(t, err)

	second, err := store.Create(ctx, 12, retry.StatusFailed, 3)
	require.NoError(t, err)

	// One entry per order: the row is replaced, not duplicated.
	assert.Equal(t, first.ID, second.ID)

	found, err := store.FindByOrderID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, found.FailedAttempts)
}

func TestSQLiteStore_FindOneToRetry_RespectsCooldown(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, 12, retry.StatusFailed, 1)
	require.NoError(t, err)

	fr, err := store.FindOneToRetry(ctx)
	require.NoError(t, err)
	assert.Nil(t, fr, "entry inside the cooldown window must not be returned")

	clock.advance(6 * time.Minute)

	fr, err = store.FindOneToRetry(ctx)
	require.NoError(t, err)
	require.NotNil(t, fr)
	assert.Equal(t, int64(12), fr.OrderID)
}

func TestSQLiteStore_FindOneToRetry_SkipsTerminalEntries(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, 10, retry.StatusSuccess, 1)
	require.NoError(t, err)
	_, err = store.Create(ctx, 11, retry.StatusFailed, retry.MaxAttempts)
	require.NoError(t, err)

	clock.advance(time.Hour)

	fr, err := store.FindOneToRetry(ctx)
	require.NoError(t, err)
	assert.Nil(t, fr)
}

func TestSQLiteStore_FindOneToRetry_OldestFirst(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, 21, retry.StatusFailed, 1)
	require.NoError(t, err)
	clock.advance(time.Minute)
	_, err = store.Create(ctx, 22, retry.StatusFailed, 1)
	require.NoError(t, err)

	clock.advance(time.Hour)

	fr, err := store.FindOneToRetry(ctx)
	require.NoError(t, err)
	require.NotNil(t, fr)
	assert.Equal(t, int64(21), fr.OrderID, "oldest last-attempt entry wins")
}

func TestSQLiteStore_Update(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	fr, err := store.Create(ctx, 12, retry.StatusFailed, 1)
	require.NoError(t, err)

	fr.Status = retry.StatusSuccess
	fr.FailedAttempts = 2
	fr.LastAttemptDate = clock.now().Add(time.Minute)
	require.NoError(t, store.Update(ctx, fr))

	found, err := store.FindByOrderID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, retry.StatusSuccess, found.Status)
	assert.Equal(t, 2, found.FailedAttempts)
}

func TestSQLiteStore_DeleteWhereStale(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, 10, retry.StatusSuccess, 1)
	require.NoError(t, err)
	_, err = store.Create(ctx, 11, retry.StatusFailed, retry.MaxAttempts)
	require.NoError(t, err)
	_, err = store.Create(ctx, 12, retry.StatusFailed, 1)
	require.NoError(t, err)

	removed, err := store.DeleteWhereStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Idempotent: a second pass with no intervening writes removes nothing.
	removed, err = store.DeleteWhereStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	survivor, err := store.FindByOrderID(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, survivor)
}

func TestSQLiteStore_Enqueue(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, 12))
	require.NoError(t, store.Enqueue(ctx, 12))

	found, err := store.FindByOrderID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, found.FailedAttempts, "re-enqueue resets the attempt count")
}
