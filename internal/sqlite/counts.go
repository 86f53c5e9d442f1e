package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Counts the articles of a feed, or of every feed when feedID is empty, that
// match where. A feed that doesn't exist has no count.
func (r Repo) countArticles(ctx context.Context, feedID string, where sq.Sqlizer) (int, error) {
	q := sq.Select("COUNT(*)").From("articles")
	if feedID != "" {
		if err := r.requireFeed(ctx, feedID); err != nil {
			return 0, err
		}
		q = q.Where(sq.Eq{"feed_id": feedID})
	}
	if where != nil {
		q = q.Where(where)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error constructing sql: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("error counting articles: %w", err)
	}

	return count, nil
}

func (r Repo) CountArticles(ctx context.Context, feedID string) (int, error) {
	return r.countArticles(ctx, feedID, nil)
}

func (r Repo) CountUnread(ctx context.Context, feedID string) (int, error) {
	return r.countArticles(ctx, feedID, sq.Eq{"is_read": false})
}

func (r Repo) CountFavorites(ctx context.Context, feedID string) (int, error) {
	return r.countArticles(ctx, feedID, sq.Eq{"is_liked": true})
}

// CountMailSubscribers returns the number of feeds with mail notifications on.
func (r Repo) CountMailSubscribers(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM feeds WHERE mail_notify = 1;`

	var count int
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting mail subscribers: %w", err)
	}

	return count, nil
}

// UnreadByFeed returns the number of unread articles per feed. Feeds with
// nothing unread are left out.
func (r Repo) UnreadByFeed(ctx context.Context) (map[string]int, error) {
	const q = `SELECT feed_id, COUNT(*) AS unread FROM articles WHERE is_read = 0 GROUP BY feed_id;`

	var rows []struct {
		FeedID string `db:"feed_id"`
		Unread int    `db:"unread"`
	}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("error counting unread articles: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.FeedID] = row.Unread
	}

	return counts, nil
}
