package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

func TestCounts(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")
	createFeed(t, repo, "f2", "Second")
	createFeed(t, repo, "empty", "Empty")
	ingest(t, repo, "f1", article("a1", 0), article("a2", 1))
	ingest(t, repo, "f2", article("b1", 0))
	require.NoError(t, repo.Like(ctx, true, "f2", "b1"))
	_, err := repo.MarkRead(ctx, true, "f1", "a1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		feedID string
		count  func(context.Context, string) (int, error)
		want   int
	}{
		{name: "all articles", count: repo.CountArticles, want: 3},
		{name: "all unread", count: repo.CountUnread, want: 2},
		{name: "all favorites", count: repo.CountFavorites, want: 1},
		{name: "feed articles", feedID: "f1", count: repo.CountArticles, want: 2},
		{name: "feed unread", feedID: "f1", count: repo.CountUnread, want: 1},
		{name: "feed favorites", feedID: "f1", count: repo.CountFavorites, want: 0},
		{name: "empty feed", feedID: "empty", count: repo.CountArticles, want: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.count(ctx, test.feedID)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	_, err = repo.CountUnread(ctx, "nope")
	assert.ErrorIs(t, err, newsstand.ErrNotFound)

	byFeed, err := repo.UnreadByFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"f1": 1, "f2": 1}, byFeed)
}
