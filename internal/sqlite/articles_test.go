package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

func TestIngest_Idempotent(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")

	res, err := repo.Ingest(ctx, "f1", []newsstand.Article{article("a1", 0), article("a2", 1)})
	require.NoError(t, err)
	assert.Equal(t, newsstand.IngestResult{Inserted: 2}, res)

	require.NoError(t, repo.Like(ctx, true, "f1", "a1"))

	changed := article("a1", 5)
	changed.Title = "Rewritten"
	res, err = repo.Ingest(ctx, "f1", []newsstand.Article{changed, article("a3", 2)})
	require.NoError(t, err)
	assert.Equal(t, newsstand.IngestResult{Inserted: 1, Duplicates: 1}, res)

	a1, err := repo.Article(ctx, "f1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Post a1", a1.Title, "re-ingesting never overwrites")
	assert.True(t, a1.Liked, "re-ingesting keeps the state")
	assert.True(t, day0.Equal(a1.Date))

	count, err := repo.CountArticles(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIngest_SkipsInvalid(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")

	noLink := article("a2", 1)
	noLink.Link = ""
	noDate := article("a3", 2)
	noDate.Date = time.Time{}

	res, err := repo.Ingest(ctx, "f1", []newsstand.Article{article("a1", 0), noLink, noDate})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[0], newsstand.ErrInvalidArgument)

	var vErr *newsstand.ValidationError
	require.ErrorAs(t, res.Errors[1], &vErr)
	assert.Equal(t, []newsstand.FieldError{{Field: "date", Error: "is required"}}, vErr.Fields)
}

func TestIngest_Untitled(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")

	untitled := article("a1", 0)
	untitled.Title = ""
	res, err := repo.Ingest(ctx, "f1", []newsstand.Article{untitled})
	require.NoError(t, err)
	assert.Equal(t, newsstand.IngestResult{Inserted: 1}, res)

	a1, err := repo.Article(ctx, "f1", "a1")
	require.NoError(t, err)
	assert.Empty(t, a1.Title)
}

func TestIngest_UnknownFeed(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Ingest(context.Background(), "nope", []newsstand.Article{article("a1", 0)})
	assert.ErrorIs(t, err, newsstand.ErrNotFound)
}

func TestIngest_NormalizesToUTC(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
		est  = time.FixedZone("EST", -5*60*60)
	)
	createFeed(t, repo, "f1", "First")

	// 08:00 EST is 13:00 UTC, after the noon article.
	early := article("early", 0)
	late := article("late", 0)
	late.Date = time.Date(2024, time.January, 1, 8, 0, 0, 0, est)
	ingest(t, repo, "f1", early, late)

	articles, err := repo.Articles(ctx, newsstand.ArticleQuery{FeedID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "early"}, ids(articles))
}

func TestPartitionIsolation(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")
	createFeed(t, repo, "f2", "Second")
	ingest(t, repo, "f1", article("a1", 0))
	ingest(t, repo, "f2", article("a1", 1))

	_, err := repo.MarkRead(ctx, true, "f1", "a1")
	require.NoError(t, err)
	require.NoError(t, repo.DeleteArticle(ctx, "f1", "a1"))

	other, err := repo.Article(ctx, "f2", "a1")
	require.NoError(t, err)
	assert.False(t, other.Read)

	_, err = repo.Article(ctx, "f1", "a1")
	assert.ErrorIs(t, err, newsstand.ErrNotFound)

	assert.NoError(t, repo.DeleteArticle(ctx, "f1", "a1"), "deleting twice is a no-op")
}

func TestReadArticle(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")
	ingest(t, repo, "f1", article("a1", 0))

	a, err := repo.ReadArticle(ctx, "f1", "a1")
	require.NoError(t, err)
	assert.True(t, a.Read)

	stored, err := repo.Article(ctx, "f1", "a1")
	require.NoError(t, err)
	assert.True(t, stored.Read)

	_, err = repo.ReadArticle(ctx, "f1", "nope")
	assert.ErrorIs(t, err, newsstand.ErrNotFound)
}

func TestMarkRead_Idempotent(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")
	ingest(t, repo, "f1", article("a1", 0))

	n, err := repo.MarkRead(ctx, true, "f1", "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.MarkRead(ctx, true, "f1", "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "already read articles aren't written")

	unread, err := repo.CountUnread(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	n, err = repo.MarkRead(ctx, false, "f1", "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.MarkRead(ctx, true, "", "a1")
	assert.ErrorIs(t, err, newsstand.ErrInvalidArgument)
}

func TestLike_RoundTrip(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	createFeed(t, repo, "f1", "First")
	ingest(t, repo, "f1", article("a1", 0), article("a2", 1))

	require.NoError(t, repo.Like(ctx, true, "f1", "a1"))
	require.NoError(t, repo.Like(ctx, true, "f1", "a1"))

	favs, err := repo.Favorites(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids(favs))

	a1, err := repo.Article(ctx, "f1", "a1")
	require.NoError(t, err)
	assert.False(t, a1.Read, "liking doesn't touch read")

	require.NoError(t, repo.Like(ctx, false, "f1", "a1"))
	count, err := repo.CountFavorites(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = repo.Like(ctx, true, "f1", "nope")
	assert.ErrorIs(t, err, newsstand.ErrNotFound)
}

func TestUpdateArticles(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
		yes  = true
	)
	createFeed(t, repo, "f1", "First")
	createFeed(t, repo, "f2", "Second")
	ingest(t, repo, "f1", article("a1", 0), article("a2", 1))
	ingest(t, repo, "f2", article("b1", 0))

	n, err := repo.UpdateArticles(ctx, newsstand.ArticlePatch{Read: &yes, Liked: &yes},
		newsstand.Eq(newsstand.FieldFeedID, "f1"),
	)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	favs, err := repo.Favorites(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1"}, ids(favs))

	_, err = repo.UpdateArticles(ctx, newsstand.ArticlePatch{})
	assert.ErrorIs(t, err, newsstand.ErrInvalidArgument)

	_, err = repo.UpdateArticles(ctx, newsstand.ArticlePatch{Read: &yes}, newsstand.Eq("kind", "article"))
	assert.ErrorIs(t, err, newsstand.ErrInvalidArgument)
}
