package db

import (
	"fmt"
	"testing"
	"time"

	"warden/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheMessage(t *testing.T, database *sqlx.DB, channelSf, authorSf, content string, at time.Time, maxAge time.Duration, maxRows int) {
	t.Helper()
	err := InsertCachedMessage(database, &model.CachedMessage{
		GuildSf:   "1",
		ChannelSf: channelSf,
		MessageSf: fmt.Sprintf("%d", at.UnixNano()),
		AuthorSf:  authorSf,
		Content:   content,
		At:        at.Unix(),
	}, maxAge, maxRows)
	require.NoError(t, err)
}

func TestRecentContextOrderAndLimit(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	for i := 0; i < 5; i++ {
		cacheMessage(t, database, "5", "10", fmt.Sprintf("msg %d", i), now.Add(time.Duration(i)*time.Second), 2*time.Hour, 200)
	}

	context, err := RecentContext(database, "1", "5", 3)
	require.NoError(t, err)
	assert.Equal(t, "10: msg 2\n10: msg 3\n10: msg 4", context)
}

func TestRecentContextScopedToChannel(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	cacheMessage(t, database, "5", "10", "here", now, 2*time.Hour, 200)
	cacheMessage(t, database, "6", "10", "elsewhere", now, 2*time.Hour, 200)

	context, err := RecentContext(database, "1", "5", 10)
	require.NoError(t, err)
	assert.Equal(t, "10: here", context)
}

func TestCachePrunedByAge(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	cacheMessage(t, database, "5", "10", "stale", now.Add(-3*time.Hour), 2*time.Hour, 200)
	cacheMessage(t, database, "5", "10", "fresh", now, 2*time.Hour, 200)

	context, err := RecentContext(database, "1", "5", 10)
	require.NoError(t, err)
	assert.Equal(t, "10: fresh", context)
}

func TestCachePrunedByRowCount(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	for i := 0; i < 4; i++ {
		cacheMessage(t, database, "5", "10", fmt.Sprintf("msg %d", i), now.Add(time.Duration(i)*time.Second), 2*time.Hour, 2)
	}
	// The per-channel cap leaves other channels untouched.
	cacheMessage(t, database, "6", "10", "other", now, 2*time.Hour, 2)

	context, err := RecentContext(database, "1", "5", 10)
	require.NoError(t, err)
	assert.Equal(t, "10: msg 2\n10: msg 3", context)

	context, err = RecentContext(database, "1", "6", 10)
	require.NoError(t, err)
	assert.Equal(t, "10: other", context)
}
