package newsstand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		token string
		want  newsstand.Sort
	}{
		{token: "date", want: newsstand.Sort{Key: newsstand.SortDate}},
		{token: "-date", want: newsstand.Sort{Key: newsstand.SortDate, Asc: true}},
		{token: "feed", want: newsstand.Sort{Key: newsstand.SortFeed}},
		{token: "-feed", want: newsstand.Sort{Key: newsstand.SortFeed, Asc: true}},
		{token: "article", want: newsstand.Sort{Key: newsstand.SortArticle}},
		{token: "-article", want: newsstand.Sort{Key: newsstand.SortArticle, Asc: true}},
		{token: "", want: newsstand.Sort{Key: newsstand.SortDate}},
		{token: "popularity", want: newsstand.Sort{Key: newsstand.SortDate}},
		{token: "-popularity", want: newsstand.Sort{Key: newsstand.SortDate}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, newsstand.ParseSort(tt.token))
		})
	}
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "date", newsstand.Sort{}.String())
	assert.Equal(t, "-article", newsstand.Sort{Key: newsstand.SortArticle, Asc: true}.String())

	for _, token := range []string{"date", "-date", "feed", "-feed", "article", "-article"} {
		assert.Equal(t, token, newsstand.ParseSort(token).String())
	}
}

func TestCondValidate(t *testing.T) {
	tests := []struct {
		name    string
		cond    newsstand.Cond
		wantErr bool
	}{
		{name: "read bool", cond: newsstand.Eq(newsstand.FieldRead, false)},
		{name: "liked bool", cond: newsstand.Eq(newsstand.FieldLiked, true)},
		{name: "feed id", cond: newsstand.Eq(newsstand.FieldFeedID, "f1")},
		{name: "text", cond: newsstand.Eq(newsstand.FieldText, newsstand.TextMatch{Term: "go"})},
		{name: "read as string", cond: newsstand.Eq(newsstand.FieldRead, "false"), wantErr: true},
		{name: "empty feed id", cond: newsstand.Eq(newsstand.FieldFeedID, ""), wantErr: true},
		{name: "blank term", cond: newsstand.Eq(newsstand.FieldText, newsstand.TextMatch{Term: "  "}), wantErr: true},
		{name: "unknown field", cond: newsstand.Eq("author", "me"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cond.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, newsstand.ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTextMatchNormalize(t *testing.T) {
	got := newsstand.TextMatch{Term: "  golang "}.Normalize()
	assert.Equal(t, newsstand.TextMatch{Term: "golang", InContent: true}, got)

	got = newsstand.TextMatch{Term: "golang", InTitle: true}.Normalize()
	assert.Equal(t, newsstand.TextMatch{Term: "golang", InTitle: true}, got)
}
