package subscriptionstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "subscriptions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sub := &domain.Subscription{
		DeviceToken:          "device-1",
		Platform:             "ios",
		ScheduleBlockSweepID: 42,
		LeadMinutes:          30,
		Type:                 domain.SubscriptionSweeping,
	}

	stored, err := store.Upsert(ctx, sub, 37.76, -122.42)
	require.NoError(t, err)
	assert.Equal(t, "device-1", stored.DeviceToken)
	assert.Nil(t, stored.LastNotifiedAt)

	got, err := store.GetByDeviceToken(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ScheduleBlockSweepID)
	assert.Equal(t, domain.SubscriptionSweeping, got.Type)
}

func TestSQLiteUpsertReplacesButKeepsNotifiedState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sub := &domain.Subscription{DeviceToken: "device-1", ScheduleBlockSweepID: 42, LeadMinutes: 30, Type: domain.SubscriptionSweeping}
	_, err := store.Upsert(ctx, sub, 0, 0)
	require.NoError(t, err)

	at := time.Date(2024, 3, 8, 13, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkNotified(ctx, "device-1", 42, at))

	// Re-subscribe to the same row with a new lead time.
	sub.LeadMinutes = 60
	stored, err := store.Upsert(ctx, sub, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.LeadMinutes)
	require.NotNil(t, stored.LastNotifiedAt)
	assert.True(t, stored.LastNotifiedAt.Equal(at))
}

func TestSQLiteGet_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetByDeviceToken(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestSQLiteList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, token := range []string{"device-b", "device-a"} {
		_, err := store.Upsert(ctx, &domain.Subscription{
			DeviceToken:          token,
			ScheduleBlockSweepID: 42,
			LeadMinutes:          15,
			Type:                 domain.SubscriptionTiming,
		}, 0, 0)
		require.NoError(t, err)
	}

	subs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "device-a", subs[0].DeviceToken)
	assert.Equal(t, domain.SubscriptionTiming, subs[0].Type)
}

func TestSQLiteMarkNotified_OnlyMatchingRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, &domain.Subscription{DeviceToken: "device-1", ScheduleBlockSweepID: 42, LeadMinutes: 30}, 0, 0)
	require.NoError(t, err)

	// Mismatched schedule ID leaves the row untouched.
	at := time.Date(2024, 3, 8, 13, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkNotified(ctx, "device-1", 99, at))

	got, err := store.GetByDeviceToken(ctx, "device-1")
	require.NoError(t, err)
	assert.Nil(t, got.LastNotifiedAt)
}

func TestSQLiteDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, &domain.Subscription{DeviceToken: "device-1", ScheduleBlockSweepID: 42, LeadMinutes: 30}, 0, 0)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "device-1"))
	assert.ErrorIs(t, store.Delete(ctx, "device-1"), domain.ErrSubscriptionNotFound)
}
