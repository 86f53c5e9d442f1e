package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/jdholdren/newsstand/internal/logger"
	"github.com/jdholdren/newsstand/internal/metrics"
	"github.com/jdholdren/newsstand/internal/newsstand"
)

// Ingest stores the articles that the feed doesn't have yet.
//
// Each record is written on its own: an invalid or failing record is skipped
// and reported in the result without stopping the rest of the batch. A record
// whose article ID is already known is left untouched.
func (r Repo) Ingest(ctx context.Context, feedID string, articles []newsstand.Article) (newsstand.IngestResult, error) {
	var res newsstand.IngestResult
	if err := r.requireFeed(ctx, feedID); err != nil {
		return res, err
	}

	ctx = logger.Ctx(ctx, logger.FeedID(feedID))
	metrics.IngestBatchSize.Observe(float64(len(articles)))

	const q = `INSERT INTO articles (feed_id, article_id, published_at, link, title, content, is_read, is_liked)
	VALUES (:feed_id, :article_id, :published_at, :link, :title, :content, :is_read, :is_liked)
	ON CONFLICT (feed_id, article_id) DO NOTHING;`
	skip := func(a newsstand.Article, err error) {
		res.Skipped++
		res.Errors = append(res.Errors, fmt.Errorf("article %q: %w", a.ID, err))
		metrics.IngestedArticles.WithLabelValues(metrics.OutcomeSkipped).Inc()
		slog.WarnContext(ctx, "skipping article", "article_id", a.ID, "error", err)
	}

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		a.FeedID = feedID
		a.Date = a.Date.UTC()
		if err := a.Validate(); err != nil {
			skip(a, err)
			continue
		}

		var inserted bool
		err := r.withRetry(ctx, func(ctx context.Context) error {
			result, err := r.db.NamedExecContext(ctx, q, a)
			if err != nil {
				return err
			}
			n, err := result.RowsAffected()
			inserted = n > 0
			return err
		})
		switch {
		case err != nil:
			skip(a, err)
		case inserted:
			res.Inserted++
			metrics.IngestedArticles.WithLabelValues(metrics.OutcomeInserted).Inc()
		default:
			res.Duplicates++
			metrics.IngestedArticles.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		}
	}

	slog.InfoContext(ctx, "ingested articles",
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"skipped", res.Skipped,
	)

	return res, nil
}

func (r Repo) Article(ctx context.Context, feedID, articleID string) (newsstand.Article, error) {
	const q = `SELECT * FROM articles WHERE feed_id = ? AND article_id = ?;`

	var a newsstand.Article
	err := r.db.GetContext(ctx, &a, q, feedID, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return newsstand.Article{}, fmt.Errorf("article %q in feed %q: %w", articleID, feedID, newsstand.ErrNotFound)
	}
	if err != nil {
		return newsstand.Article{}, fmt.Errorf("error fetching article: %w", err)
	}

	return a, nil
}

// ReadArticle fetches the article and marks it read if it wasn't already.
func (r Repo) ReadArticle(ctx context.Context, feedID, articleID string) (newsstand.Article, error) {
	a, err := r.Article(ctx, feedID, articleID)
	if err != nil {
		return newsstand.Article{}, err
	}
	if a.Read {
		return a, nil
	}

	if _, err := r.MarkRead(ctx, true, feedID, articleID); err != nil {
		return newsstand.Article{}, err
	}
	a.Read = true

	return a, nil
}

// DeleteArticle removes the article. Deleting an unknown article is a no-op.
func (r Repo) DeleteArticle(ctx context.Context, feedID, articleID string) error {
	const q = `DELETE FROM articles WHERE feed_id = ? AND article_id = ?;`

	if err := r.withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, q, feedID, articleID)
		return err
	}); err != nil {
		return fmt.Errorf("error deleting article: %w", err)
	}

	return nil
}

// UpdateArticles applies the patch to every article matching all of the
// conditions, and returns how many articles changed.
//
// Articles already in the target state are not written to, so applying the
// same patch twice changes nothing the second time.
func (r Repo) UpdateArticles(ctx context.Context, patch newsstand.ArticlePatch, conds ...newsstand.Cond) (int64, error) {
	if patch.Empty() {
		return 0, fmt.Errorf("%w: nothing to update", newsstand.ErrInvalidArgument)
	}

	where, err := whereConds(conds)
	if err != nil {
		return 0, err
	}

	var (
		q       = sq.Update("articles")
		differs = sq.Or{}
	)
	if patch.Read != nil {
		q = q.Set("is_read", *patch.Read)
		differs = append(differs, sq.NotEq{"articles.is_read": *patch.Read})
	}
	if patch.Liked != nil {
		q = q.Set("is_liked", *patch.Liked)
		differs = append(differs, sq.NotEq{"articles.is_liked": *patch.Liked})
	}
	query, args, err := q.Where(append(where, differs)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error constructing sql: %w", err)
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
		return 0, fmt.Errorf("error updating articles: %w", err)
	}

	return n, nil
}

// MarkRead sets the read state of one article, of a whole feed when articleID
// is empty, or of every article when both are empty.
func (r Repo) MarkRead(ctx context.Context, read bool, feedID, articleID string) (int64, error) {
	var conds []newsstand.Cond
	if feedID != "" {
		conds = append(conds, newsstand.Eq(newsstand.FieldFeedID, feedID))
	}
	if articleID != "" {
		if feedID == "" {
			return 0, fmt.Errorf("%w: article id without a feed id", newsstand.ErrInvalidArgument)
		}
		conds = append(conds, newsstand.Eq(newsstand.FieldArticleID, articleID))
	}

	return r.UpdateArticles(ctx, newsstand.ArticlePatch{Read: &read}, conds...)
}

// Like sets the liked state of an article.
func (r Repo) Like(ctx context.Context, liked bool, feedID, articleID string) error {
	// Distinguishes a missing article from one that's already in the state.
	if _, err := r.Article(ctx, feedID, articleID); err != nil {
		return err
	}

	_, err := r.UpdateArticles(ctx, newsstand.ArticlePatch{Liked: &liked},
		newsstand.Eq(newsstand.FieldFeedID, feedID),
		newsstand.Eq(newsstand.FieldArticleID, articleID),
	)

	return err
}
