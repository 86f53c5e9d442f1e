// Package newsstand holds the domain of the article store: the feeds that are
// subscribed to, the articles ingested for each of them, and the surfaces used
// to query both.
//
// A feed and its articles form a partition keyed by the feed's ID. Articles are
// only unique within their feed.
package newsstand

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type (
	// Feed is the descriptor of a subscribed feed.
	Feed struct {
		ID         string    `db:"feed_id"`
		Title      string    `db:"title"`
		Link       string    `db:"link"`
		SiteLink   string    `db:"site_link"`
		Image      string    `db:"image"`
		MailNotify bool      `db:"mail_notify"`
		ErrorCount int       `db:"error_count"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
	}

	// Article is a single document ingested for a feed.
	Article struct {
		FeedID    string    `db:"feed_id"`
		ID        string    `db:"article_id"`
		Date      time.Time `db:"published_at"`
		Link      string    `db:"link"`
		Title     string    `db:"title"`
		Content   string    `db:"content"`
		Read      bool      `db:"is_read"`
		Liked     bool      `db:"is_liked"`
		CreatedAt time.Time `db:"created_at"`
	}

	// FeedPatch holds the optional fields for updating a feed.
	FeedPatch struct {
		Title      *string
		Link       *string
		SiteLink   *string
		Image      *string
		MailNotify *bool
	}

	// FeedFilter narrows down a listing of feeds. The zero value matches all of them.
	FeedFilter struct {
		// Only feeds with strictly more errors than this.
		MinErrorCount *int
		MailNotify    *bool
	}

	// ArticlePatch holds the state flags that can be changed on an article.
	ArticlePatch struct {
		Read  *bool
		Liked *bool
	}

	// IngestResult reports what happened to each record of an ingestion batch.
	IngestResult struct {
		Inserted   int
		Duplicates int
		Skipped    int
		// One entry per skipped record.
		Errors []error
	}
)

// Empty reports if the patch would not change anything.
func (p FeedPatch) Empty() bool {
	return p.Title == nil && p.Link == nil && p.SiteLink == nil && p.Image == nil && p.MailNotify == nil
}

// Empty reports if the patch would not change anything.
func (p ArticlePatch) Empty() bool {
	return p.Read == nil && p.Liked == nil
}

type (
	// FeedRepo manages the lifecycle of feeds.
	FeedRepo interface {
		CreateFeed(ctx context.Context, feed Feed) (Feed, error)
		Feed(ctx context.Context, id string) (Feed, error)
		// Feeds returns the matching feeds sorted by title, ignoring case.
		Feeds(ctx context.Context, filter FeedFilter) ([]Feed, error)
		FeedIDs(ctx context.Context, filter FeedFilter) ([]string, error)
		UpdateFeed(ctx context.Context, id string, patch FeedPatch) error
		IncrementErrorCount(ctx context.Context, id string) error
		ResetErrorCount(ctx context.Context, id string) error
		// DropFeed removes the feed along with all of its articles.
		DropFeed(ctx context.Context, id string) error
	}

	// ArticleRepo ingests, updates and retrieves articles.
	ArticleRepo interface {
		Ingest(ctx context.Context, feedID string, articles []Article) (IngestResult, error)
		Article(ctx context.Context, feedID, articleID string) (Article, error)
		// ReadArticle fetches an article for display, marking it read.
		ReadArticle(ctx context.Context, feedID, articleID string) (Article, error)
		DeleteArticle(ctx context.Context, feedID, articleID string) error
		UpdateArticles(ctx context.Context, patch ArticlePatch, conds ...Cond) (int64, error)
		MarkRead(ctx context.Context, read bool, feedID, articleID string) (int64, error)
		Like(ctx context.Context, liked bool, feedID, articleID string) error
		Articles(ctx context.Context, q ArticleQuery) ([]Article, error)
		Favorites(ctx context.Context, feedID string) ([]Article, error)
	}

	// CountRepo computes the aggregates shown as badges and notifications.
	//
	// An empty feed ID counts across every feed.
	CountRepo interface {
		CountArticles(ctx context.Context, feedID string) (int, error)
		CountUnread(ctx context.Context, feedID string) (int, error)
		CountFavorites(ctx context.Context, feedID string) (int, error)
		CountMailSubscribers(ctx context.Context) (int, error)
		UnreadByFeed(ctx context.Context) (map[string]int, error)
	}

	// SearchRepo finds articles by text.
	SearchRepo interface {
		// Search groups the matching articles by feed ID. Feeds without a match are absent.
		Search(ctx context.Context, q SearchQuery) (map[string][]Article, error)
	}

	Repository interface {
		FeedRepo
		ArticleRepo
		CountRepo
		SearchRepo
	}
)
