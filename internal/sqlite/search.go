package sqlite

import (
	"context"
	"time"

	"github.com/jdholdren/newsstand/internal/metrics"
	"github.com/jdholdren/newsstand/internal/newsstand"
)

// Search finds the articles whose content (and/or title) contains the term,
// ignoring ASCII case. Each feed's matches are newest first.
func (r Repo) Search(ctx context.Context, q newsstand.SearchQuery) (map[string][]newsstand.Article, error) {
	results := map[string][]newsstand.Article{}

	m := q.TextMatch.Normalize()
	if m.Term == "" {
		return results, nil
	}

	defer func(start time.Time) {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	articles, err := r.Articles(ctx, newsstand.ArticleQuery{
		Conds: []newsstand.Cond{newsstand.Eq(newsstand.FieldText, m)},
		Limit: q.Limit,
	})
	if err != nil {
		return nil, err
	}

	for _, a := range articles {
		results[a.FeedID] = append(results[a.FeedID], a)
	}

	return results, nil
}
