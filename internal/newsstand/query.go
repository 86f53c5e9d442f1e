package newsstand

import (
	"fmt"
	"strings"
)

// Field is a property of an article that can be used in a condition.
type Field string

const (
	FieldRead   Field = "read"
	FieldLiked  Field = "liked"
	FieldFeedID Field = "feed_id"
	// Only meaningful together with FieldFeedID, article IDs are unique per feed.
	FieldArticleID Field = "article_id"
	// Matches a [TextMatch] against the title and/or content.
	FieldText Field = "text"
)

// Cond is a single condition on an article. Conditions given together are ANDed.
type Cond struct {
	Field Field
	Value any
}

// Eq is shorthand for a condition.
func Eq(field Field, value any) Cond {
	return Cond{Field: field, Value: value}
}

// Validate checks that the field is known and the value has the right type for it.
func (c Cond) Validate() error {
	switch c.Field {
	case FieldRead, FieldLiked:
		if _, ok := c.Value.(bool); !ok {
			return fmt.Errorf("%w: %s needs a bool, got %T", ErrInvalidArgument, c.Field, c.Value)
		}
	case FieldFeedID, FieldArticleID:
		s, ok := c.Value.(string)
		if !ok || s == "" {
			return fmt.Errorf("%w: %s needs a non-empty string", ErrInvalidArgument, c.Field)
		}
	case FieldText:
		m, ok := c.Value.(TextMatch)
		if !ok {
			return fmt.Errorf("%w: %s needs a TextMatch, got %T", ErrInvalidArgument, c.Field, c.Value)
		}
		if strings.TrimSpace(m.Term) == "" {
			return fmt.Errorf("%w: empty search term", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidArgument, c.Field)
	}

	return nil
}

// TextMatch is a case-insensitive substring match.
type TextMatch struct {
	Term      string
	InTitle   bool
	InContent bool
}

// Normalize trims the term and falls back to searching content when no
// field was selected.
func (m TextMatch) Normalize() TextMatch {
	m.Term = strings.TrimSpace(m.Term)
	if !m.InTitle && !m.InContent {
		m.InContent = true
	}

	return m
}

// SortKey is what articles get ordered by.
type SortKey string

const (
	SortDate    SortKey = "date"
	SortFeed    SortKey = "feed"
	SortArticle SortKey = "article"
)

// Sort is an ordering of articles. The zero value is newest first.
type Sort struct {
	Key SortKey
	Asc bool
}

// ParseSort reads a presentation sort token.
//
// A bare key sorts descending and a "-" prefix sorts ascending: "date" is
// newest first, "-feed" is feed titles A to Z. Anything unrecognized sorts by
// date, newest first.
func ParseSort(token string) Sort {
	asc := strings.HasPrefix(token, "-")
	switch key := SortKey(strings.TrimPrefix(token, "-")); key {
	case SortDate, SortFeed, SortArticle:
		return Sort{Key: key, Asc: asc}
	}

	return Sort{Key: SortDate}
}

// String returns the token that parses back into s.
func (s Sort) String() string {
	key := s.Key
	if key == "" {
		key = SortDate
	}
	if s.Asc {
		return "-" + string(key)
	}

	return string(key)
}

// ArticleQuery selects articles.
//
// Without a FeedID every feed is scanned and Limit caps the whole result, not
// each feed.
type ArticleQuery struct {
	FeedID string
	Conds  []Cond
	Sort   Sort
	// Zero means no limit.
	Limit uint64
}

// SearchQuery is a text search across every feed.
type SearchQuery struct {
	TextMatch
	// Caps the total number of articles returned. Zero means no limit.
	Limit uint64
}
