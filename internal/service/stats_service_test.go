package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creatorstats/internal/db"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRequiresIdentity(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewStatsService(gdb, newTestSnapshotService(gdb, &stubFetcher{}, &fixedClock{now: time.Now()}))

	_, err := svc.Query(context.Background(), " ", "token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestQueryUnknownUser(t *testing.T) {
	gdb := setupServiceTestDB(t)
	fetcher := &stubFetcher{}
	svc := NewStatsService(gdb, newTestSnapshotService(gdb, fetcher, &fixedClock{now: time.Now()}))

	_, err := svc.Query(context.Background(), "ghost@example.com", "token")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, fetcher.calls)
}

func TestQueryRefreshesWithToken(t *testing.T) {
	gdb := setupServiceTestDB(t)
	createTestUser(t, gdb, "u@example.com")

	fetcher := &stubFetcher{stats: &ChannelStats{ChannelID: "C1", Title: "Chan", Subscribers: 100, Views: 5000, VideoCount: 10}}
	clock := &fixedClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewStatsService(gdb, newTestSnapshotService(gdb, fetcher, clock))

	result, err := svc.Query(context.Background(), "U@Example.com", "token")
	require.NoError(t, err)
	require.NotNil(t, result.YouTube)
	assert.Equal(t, "C1", result.YouTube.ChannelID)
	assert.Len(t, result.YouTube.DailyStats, 1)
	assert.Equal(t, 1, fetcher.calls)
}

func TestQueryWithoutTokenUsesCachedSnapshot(t *testing.T) {
	gdb := setupServiceTestDB(t)
	user := createTestUser(t, gdb, "u@example.com")

	snapshot := db.ChannelSnapshot{UserID: user.ID, ChannelID: "C1", Title: "Chan", Views: 20, LastFetchedAt: time.Now()}
	require.NoError(t, gdb.Create(&snapshot).Error)
	require.NoError(t, gdb.Create(&[]db.DailyStat{
		{SnapshotID: snapshot.ID, Date: "2024-01-02", Views: 20},
		{SnapshotID: snapshot.ID, Date: "2024-01-01", Views: 10},
	}).Error)

	fetcher := &stubFetcher{err: errors.New("must not be called")}
	svc := NewStatsService(gdb, newTestSnapshotService(gdb, fetcher, &fixedClock{now: time.Now()}))

	result, err := svc.Query(context.Background(), "u@example.com", "")
	require.NoError(t, err)
	require.NotNil(t, result.YouTube)
	require.Len(t, result.YouTube.DailyStats, 2)
	assert.Equal(t, "2024-01-01", result.YouTube.DailyStats[0].Date)
	assert.Equal(t, "2024-01-02", result.YouTube.DailyStats[1].Date)
	assert.Zero(t, fetcher.calls)
}

func TestQueryWithoutTokenOrSnapshot(t *testing.T) {
	gdb := setupServiceTestDB(t)
	createTestUser(t, gdb, "u@example.com")

	svc := NewStatsService(gdb, newTestSnapshotService(gdb, &stubFetcher{}, &fixedClock{now: time.Now()}))

	result, err := svc.Query(context.Background(), "u@example.com", "")
	require.NoError(t, err)
	assert.Nil(t, result.YouTube)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"youtube":null,"pinterest":null,"instagram":null}`, string(body))
}

func TestQueryPropagatesProviderFailure(t *testing.T) {
	gdb := setupServiceTestDB(t)
	createTestUser(t, gdb, "u@example.com")

	fetcher := &stubFetcher{err: ErrProviderFetch}
	svc := NewStatsService(gdb, newTestSnapshotService(gdb, fetcher, &fixedClock{now: time.Now()}))

	_, err := svc.Query(context.Background(), "u@example.com", "token")
	assert.ErrorIs(t, err, ErrProviderFetch)
}
