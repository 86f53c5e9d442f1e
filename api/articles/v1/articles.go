package v1

import (
	"fmt"
	"time"

	"github.com/jdholdren/newsstand/api"
)

// Filters accepted by the article listing.
const (
	FilterUnread = "unread"
	FilterRead   = "read"
	FilterLiked  = "liked"
	FilterAll    = "all"
)

type (
	IngestArticle struct {
		ID    string    `json:"id"`
		Date  time.Time `json:"date"`
		Link  string    `json:"link"`
		Title string    `json:"title"`
		// Has to be present, even if empty.
		Content *string `json:"content"`
		Read    bool    `json:"read"`
		Liked   bool    `json:"liked"`
	}

	IngestRequest struct {
		Articles []IngestArticle `json:"articles"`
	}

	IngestResponse struct {
		Inserted   int      `json:"inserted"`
		Duplicates int      `json:"duplicates"`
		Skipped    int      `json:"skipped"`
		Errors     []string `json:"errors,omitempty"`
	}
)

// Validate only checks the envelope. Individual records are validated by the
// store and skipped when malformed.
func (r IngestRequest) Validate() error {
	errs := []api.ErrorDetail{}
	if r.Articles == nil {
		errs = append(errs, api.ErrorDetail{
			Field: "articles",
			Error: "articles is required",
		})
	}

	return api.Invalid(errs)
}

type Article struct {
	FeedID  string    `json:"feed_id"`
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Link    string    `json:"link"`
	Title   string    `json:"title"`
	Content string    `json:"content,omitempty"`
	Read    bool      `json:"read"`
	Liked   bool      `json:"liked"`
}

type ListArticlesResponse struct {
	Articles []Article `json:"articles"`
	Filter   string    `json:"filter"`
	Sort     string    `json:"sort"`
	// Set when a filtered view of a feed came back empty and the caller
	// should show this filter instead.
	RedirectFilter string `json:"redirect_filter,omitempty"`
}

type LikeRequest struct {
	Liked *bool `json:"liked"`
}

func (r LikeRequest) Validate() error {
	return requireBool("liked", r.Liked)
}

type ReadRequest struct {
	Read *bool `json:"read"`
}

func (r ReadRequest) Validate() error {
	return requireBool("read", r.Read)
}

func requireBool(field string, b *bool) error {
	if b != nil {
		return nil
	}

	return api.Invalid([]api.ErrorDetail{{
		Field: field,
		Error: fmt.Sprintf("%s is required", field),
	}})
}

// MarkAllReadRequest marks every matching article read. Without a query
// that's every article of the feed, or of every feed without a FeedID.
type MarkAllReadRequest struct {
	FeedID        string `json:"feed_id"`
	Query         string `json:"query"`
	SearchTitle   bool   `json:"search_title"`
	SearchContent bool   `json:"search_content"`
}

func (r MarkAllReadRequest) Validate() error {
	return nil
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type CountsResponse struct {
	Total     int `json:"total"`
	Unread    int `json:"unread"`
	Favorites int `json:"favorites"`
	// Feeds with mail notifications on, store-wide regardless of feed_id.
	MailSubscribers int `json:"mail_subscribers"`
}

type SearchResponse struct {
	Results map[string][]Article `json:"results"`
}
