package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/jdholdren/newsstand/internal/logger"
	"github.com/jdholdren/newsstand/internal/newsstand"
)

func (r Repo) CreateFeed(ctx context.Context, f newsstand.Feed) (newsstand.Feed, error) {
	if err := f.Validate(); err != nil {
		return newsstand.Feed{}, err
	}

	const q = `INSERT INTO feeds (feed_id, title, link, site_link, image, mail_notify, error_count)
	VALUES (:feed_id, :title, :link, :site_link, :image, :mail_notify, :error_count);`
	err := r.withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.NamedExecContext(ctx, q, f)
		return err
	})
	if isConflict(err) {
		return newsstand.Feed{}, fmt.Errorf("feed %q: %w", f.ID, newsstand.ErrAlreadyExists)
	}
	if err != nil {
		return newsstand.Feed{}, fmt.Errorf("error inserting feed: %w", err)
	}

	slog.InfoContext(logger.Ctx(ctx, logger.FeedID(f.ID)), "feed created")

	return r.Feed(ctx, f.ID)
}

func (r Repo) Feed(ctx context.Context, id string) (newsstand.Feed, error) {
	const q = `SELECT * FROM feeds WHERE feed_id = ?;`

	var feed newsstand.Feed
	err := r.db.GetContext(ctx, &feed, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsstand.Feed{}, fmt.Errorf("feed %q: %w", id, newsstand.ErrNotFound)
	}
	if err != nil {
		return newsstand.Feed{}, fmt.Errorf("error fetching feed: %w", err)
	}

	return feed, nil
}

// Checks that the feed exists without loading it.
func (r Repo) requireFeed(ctx context.Context, id string) error {
	const q = `SELECT EXISTS (SELECT 1 FROM feeds WHERE feed_id = ?);`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, id); err != nil {
		return fmt.Errorf("error checking feed: %w", err)
	}
	if !exists {
		return fmt.Errorf("feed %q: %w", id, newsstand.ErrNotFound)
	}

	return nil
}

func feedFilter(q sq.SelectBuilder, filter newsstand.FeedFilter) sq.SelectBuilder {
	if filter.MinErrorCount != nil {
		q = q.Where(sq.Gt{"error_count": *filter.MinErrorCount})
	}
	if filter.MailNotify != nil {
		q = q.Where(sq.Eq{"mail_notify": *filter.MailNotify})
	}

	return q.OrderBy("title COLLATE NOCASE", "feed_id")
}

func (r Repo) Feeds(ctx context.Context, filter newsstand.FeedFilter) ([]newsstand.Feed, error) {
	query, args, err := feedFilter(sq.Select("*").From("feeds"), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	feeds := []newsstand.Feed{}
	if err := r.db.SelectContext(ctx, &feeds, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting feeds: %w", err)
	}

	return feeds, nil
}

func (r Repo) FeedIDs(ctx context.Context, filter newsstand.FeedFilter) ([]string, error) {
	query, args, err := feedFilter(sq.Select("feed_id").From("feeds"), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting feed ids: %w", err)
	}

	return ids, nil
}

func (r Repo) UpdateFeed(ctx context.Context, id string, patch newsstand.FeedPatch) error {
	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", newsstand.ErrInvalidArgument)
	}

	q := sq.Update("feeds")
	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	if patch.Link != nil {
		q = q.Set("link", *patch.Link)
	}
	if patch.SiteLink != nil {
		q = q.Set("site_link", *patch.SiteLink)
	}
	if patch.Image != nil {
		q = q.Set("image", *patch.Image)
	}
	if patch.MailNotify != nil {
		q = q.Set("mail_notify", *patch.MailNotify)
	}
	q = q.Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).Where(sq.Eq{"feed_id": id})

	return r.execFeedUpdate(ctx, id, q)
}

// IncrementErrorCount records a failed fetch of the feed.
func (r Repo) IncrementErrorCount(ctx context.Context, id string) error {
	q := sq.Update("feeds").
		Set("error_count", sq.Expr("error_count + 1")).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"feed_id": id})

	return r.execFeedUpdate(ctx, id, q)
}

// ResetErrorCount records a successful fetch of the feed.
func (r Repo) ResetErrorCount(ctx context.Context, id string) error {
	q := sq.Update("feeds").
		Set("error_count", 0).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"feed_id": id})

	return r.execFeedUpdate(ctx, id, q)
}

func (r Repo) execFeedUpdate(ctx context.Context, id string, q sq.UpdateBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %w", err)
	}

	var n int64
	if err := r.withRetry(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	}); err != nil {
		return fmt.Errorf("error executing feed update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("feed %q: %w", id, newsstand.ErrNotFound)
	}

	return nil
}

// DropFeed deletes the feed and every one of its articles in a single
// transaction. Dropping a feed that doesn't exist is a no-op.
func (r Repo) DropFeed(ctx context.Context, id string) error {
	var articles int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE feed_id = ?;`, id)
		if err != nil {
			return err
		}
		if articles, err = res.RowsAffected(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE feed_id = ?;`, id); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("error dropping feed: %w", err)
	}

	slog.InfoContext(logger.Ctx(ctx, logger.FeedID(id)), "feed dropped", "articles", articles)

	return nil
}
