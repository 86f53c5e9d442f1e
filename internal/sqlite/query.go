package sqlite

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Builds a case-insensitive substring match on the column.
func contains(column, term string) sq.Sqlizer {
	return sq.Expr(column+` LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(term)+"%")
}

func condSQL(c newsstand.Cond) (sq.Sqlizer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Field {
	case newsstand.FieldRead:
		return sq.Eq{"articles.is_read": c.Value}, nil
	case newsstand.FieldLiked:
		return sq.Eq{"articles.is_liked": c.Value}, nil
	case newsstand.FieldFeedID:
		return sq.Eq{"articles.feed_id": c.Value}, nil
	case newsstand.FieldArticleID:
		return sq.Eq{"articles.article_id": c.Value}, nil
	case newsstand.FieldText:
		m := c.Value.(newsstand.TextMatch).Normalize()
		either := sq.Or{}
		if m.InTitle {
			either = append(either, contains("articles.title", m.Term))
		}
		if m.InContent {
			either = append(either, contains("articles.content", m.Term))
		}
		return either, nil
	}

	return nil, fmt.Errorf("%w: unknown field %q", newsstand.ErrInvalidArgument, c.Field)
}

func whereConds(conds []newsstand.Cond) (sq.And, error) {
	where := sq.And{}
	for _, c := range conds {
		s, err := condSQL(c)
		if err != nil {
			return nil, err
		}
		where = append(where, s)
	}

	return where, nil
}

func orderBy(q sq.SelectBuilder, s newsstand.Sort) sq.SelectBuilder {
	dir := " DESC"
	if s.Asc {
		dir = " ASC"
	}

	switch s.Key {
	case newsstand.SortFeed:
		q = q.Join("feeds ON feeds.feed_id = articles.feed_id").
			OrderBy("feeds.title COLLATE NOCASE"+dir, "articles.published_at DESC")
	case newsstand.SortArticle:
		q = q.OrderBy("articles.title COLLATE NOCASE" + dir)
	default:
		q = q.OrderBy("articles.published_at" + dir)
	}

	// Ties are broken the same way every time
	return q.OrderBy("articles.feed_id", "articles.article_id")
}

// Articles runs the query. Asking for the articles of an unknown feed is
// [newsstand.ErrNotFound].
func (r Repo) Articles(ctx context.Context, aq newsstand.ArticleQuery) ([]newsstand.Article, error) {
	if aq.FeedID != "" {
		if err := r.requireFeed(ctx, aq.FeedID); err != nil {
			return nil, err
		}
		aq.Conds = append([]newsstand.Cond{newsstand.Eq(newsstand.FieldFeedID, aq.FeedID)}, aq.Conds...)
	}

	where, err := whereConds(aq.Conds)
	if err != nil {
		return nil, err
	}

	q := sq.Select("articles.*").From("articles")
	if len(where) > 0 {
		q = q.Where(where)
	}
	q = orderBy(q, aq.Sort)
	if aq.Limit > 0 {
		q = q.Limit(aq.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	articles := []newsstand.Article{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting articles: %w", err)
	}

	return articles, nil
}

// Favorites returns the liked articles of a feed, or of every feed when
// feedID is empty, newest first.
func (r Repo) Favorites(ctx context.Context, feedID string) ([]newsstand.Article, error) {
	return r.Articles(ctx, newsstand.ArticleQuery{
		FeedID: feedID,
		Conds:  []newsstand.Cond{newsstand.Eq(newsstand.FieldLiked, true)},
	})
}
