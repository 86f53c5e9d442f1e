package newsstand_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

func validArticle() newsstand.Article {
	return newsstand.Article{
		ID:      "a1",
		Date:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Link:    "https://example.com/a1",
		Title:   "An article",
		Content: "Some content",
	}
}

func TestArticleValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(a *newsstand.Article)
		wantFields []string
	}{
		{name: "valid", mutate: func(a *newsstand.Article) {}},
		{name: "empty content is fine", mutate: func(a *newsstand.Article) { a.Content = "" }},
		{name: "untitled is fine", mutate: func(a *newsstand.Article) { a.Title = "" }},
		{name: "missing id", mutate: func(a *newsstand.Article) { a.ID = " " }, wantFields: []string{"article_id"}},
		{name: "slash in id", mutate: func(a *newsstand.Article) { a.ID = "a/1" }, wantFields: []string{"article_id"}},
		{name: "long id", mutate: func(a *newsstand.Article) { a.ID = strings.Repeat("x", 513) }, wantFields: []string{"article_id"}},
		{name: "zero date", mutate: func(a *newsstand.Article) { a.Date = time.Time{} }, wantFields: []string{"date"}},
		{name: "relative link", mutate: func(a *newsstand.Article) { a.Link = "/a1" }, wantFields: []string{"link"}},
		{
			name:       "several",
			mutate:     func(a *newsstand.Article) { a.ID = ""; a.Link = ""; a.Title = "" },
			wantFields: []string{"article_id", "link"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArticle()
			tt.mutate(&a)

			err := a.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, newsstand.ErrInvalidArgument)
			var vErr *newsstand.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "article", vErr.Record)

			var got []string
			for _, f := range vErr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestFeedValidate(t *testing.T) {
	require.NoError(t, newsstand.Feed{ID: "f1", Title: "News"}.Validate())
	require.NoError(t, newsstand.Feed{ID: "f1", Link: "https://example.com/rss"}.Validate())

	err := newsstand.Feed{ID: "", Link: "not a url", ErrorCount: -1}.Validate()
	require.ErrorIs(t, err, newsstand.ErrInvalidArgument)
	assert.Equal(t, "invalid feed: feed_id is required, link must be an absolute url, error_count must not be negative", err.Error())
}
