package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/quanghng/discord-tft-notify/internal/models"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrateToV1(db))
	return NewRepositoryWithDB(db)
}

func testSubscriber(ownerID, riotID string) *models.Subscriber {
	return &models.Subscriber{
		OwnerID:         ownerID,
		OwnerName:       "tester",
		RiotID:          riotID,
		RiotIDNorm:      riotID, // tests pass lowercase ids
		Region:          "vn",
		ChannelID:       "chan-1",
		AddedAt:         time.Now(),
		AutoNotify:      true,
		MentionOnNotify: true,
	}
}

func TestAddAndGet(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.Add(testSubscriber("owner-1", "faker#kr1")))

	got, err := repo.Get("owner-1", "faker#kr1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "faker#kr1", got.RiotID)
	require.Equal(t, "vn", got.Region)
	require.True(t, got.AutoNotify)
	require.Zero(t, got.TotalNotified)
	require.True(t, got.LastNotified.IsZero())
}

func TestGetUnknownReturnsNil(t *testing.T) {
	repo := openTestRepo(t)

	got, err := repo.Get("owner-1", "nobody#na1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAddDuplicateLeavesStoreUntouched(t *testing.T) {
	repo := openTestRepo(t)

	first := testSubscriber("owner-1", "faker#kr1")
	first.Region = "kr"
	require.NoError(t, repo.Add(first))

	dup := testSubscriber("owner-1", "faker#kr1")
	dup.Region = "na"
	require.ErrorIs(t, repo.Add(dup), ErrAlreadyTracked)

	got, err := repo.Get("owner-1", "faker#kr1")
	require.NoError(t, err)
	require.Equal(t, "kr", got.Region)

	count, err := repo.Count()
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestSamePlayerDifferentOwners(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.Add(testSubscriber("owner-1", "faker#kr1")))
	require.NoError(t, repo.Add(testSubscriber("owner-2", "faker#kr1")))

	count, err := repo.Count()
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestListByOwner(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.Add(testSubscriber("owner-1", "faker#kr1")))
	require.NoError(t, repo.Add(testSubscriber("owner-1", "keria#kr1")))
	require.NoError(t, repo.Add(testSubscriber("owner-2", "zeus#kr1")))

	mine, err := repo.ListByOwner("owner-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	all, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestRemove(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.Add(testSubscriber("owner-1", "faker#kr1")))
	require.NoError(t, repo.Remove("owner-1", "faker#kr1"))

	got, err := repo.Get("owner-1", "faker#kr1")
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, repo.Remove("owner-1", "faker#kr1"), ErrNotTracked)
}

func TestMarkNotified(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.Add(testSubscriber("owner-1", "faker#kr1")))

	matchTime := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, repo.MarkNotified("owner-1", "faker#kr1", "m100", matchTime))
	require.NoError(t, repo.MarkNotified("owner-1", "faker#kr1", "m101", matchTime))

	got, err := repo.Get("owner-1", "faker#kr1")
	require.NoError(t, err)
	require.Equal(t, "m101", got.LastMatchID)
	require.EqualValues(t, 2, got.TotalNotified)
	require.Equal(t, matchTime.Unix(), got.LastNotified.Unix())
	require.False(t, got.LastChecked.IsZero())

	require.ErrorIs(t, repo.MarkNotified("owner-1", "nobody#na1", "m1", matchTime), ErrNotTracked)
}

func TestUpdateSetting(t *testing.T) {
	repo := openTestRepo(t)

	sub := testSubscriber("owner-1", "faker#kr1")
	require.NoError(t, repo.Add(sub))
	require.NoError(t, repo.MarkNotified("owner-1", "faker#kr1", "m100", time.Now()))

	require.NoError(t, repo.UpdateSetting("owner-1", "faker#kr1", "auto", false))
	require.NoError(t, repo.UpdateSetting("owner-1", "faker#kr1", "analysis", true))

	got, err := repo.Get("owner-1", "faker#kr1")
	require.NoError(t, err)
	require.False(t, got.AutoNotify)
	require.True(t, got.IncludeAnalysis)
	// counters survive settings changes
	require.EqualValues(t, 1, got.TotalNotified)

	require.Error(t, repo.UpdateSetting("owner-1", "faker#kr1", "volume", true))
	require.ErrorIs(t, repo.UpdateSetting("owner-1", "nobody#na1", "auto", true), ErrNotTracked)
}

func TestWithRetryPassesThroughOtherErrors(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		return sql.ErrConnDone
	})
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Equal(t, 1, calls)
}
