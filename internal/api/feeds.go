package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	v1 "github.com/jdholdren/newsstand/api/feeds/v1"
	nserrs "github.com/jdholdren/newsstand/internal/errors"
	"github.com/jdholdren/newsstand/internal/newsstand"
	"github.com/jdholdren/newsstand/internal/serverutil"
)

func apiFeed(f newsstand.Feed, unread int) v1.Feed {
	return v1.Feed{
		ID:         f.ID,
		Title:      f.Title,
		Link:       f.Link,
		SiteLink:   f.SiteLink,
		Image:      f.Image,
		MailNotify: f.MailNotify,
		ErrorCount: f.ErrorCount,
		Unread:     unread,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func (s *Server) postFeed(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[v1.CreateFeedRequest](r.Body)
	if err != nil {
		return err
	}

	feed, err := s.repo.CreateFeed(r.Context(), newsstand.Feed{
		ID:         body.ID,
		Title:      body.Title,
		Link:       body.Link,
		SiteLink:   body.SiteLink,
		Image:      body.Image,
		MailNotify: body.MailNotify,
	})
	if err != nil {
		return storeErr(err)
	}

	return serverutil.WriteJSON(w, http.StatusCreated, apiFeed(feed, 0))
}

// Lists feeds sorted by title, each with its unread count.
//
// in_error=N narrows down to the feeds that failed more than N times.
func (s *Server) getFeeds(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var filter newsstand.FeedFilter
	if raw := r.URL.Query().Get("in_error"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nserrs.E(http.StatusBadRequest, "in_error must be a non-negative integer")
		}
		filter.MinErrorCount = &n
	}

	feeds, err := s.repo.Feeds(ctx, filter)
	if err != nil {
		return storeErr(err)
	}
	unread, err := s.repo.UnreadByFeed(ctx)
	if err != nil {
		return storeErr(err)
	}

	resp := v1.ListFeedsResponse{Feeds: make([]v1.Feed, 0, len(feeds))}
	for _, f := range feeds {
		resp.Feeds = append(resp.Feeds, apiFeed(f, unread[f.ID]))
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		feedID = mux.Vars(r)["feedID"]
	)

	feed, err := s.repo.Feed(ctx, feedID)
	if err != nil {
		return storeErr(err)
	}
	unread, err := s.repo.CountUnread(ctx, feedID)
	if err != nil {
		return storeErr(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, apiFeed(feed, unread))
}

func (s *Server) patchFeed(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		feedID = mux.Vars(r)["feedID"]
	)
	body, err := serverutil.DecodeValid[v1.UpdateFeedRequest](r.Body)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateFeed(ctx, feedID, newsstand.FeedPatch{
		Title:      body.Title,
		Link:       body.Link,
		SiteLink:   body.SiteLink,
		Image:      body.Image,
		MailNotify: body.MailNotify,
	}); err != nil {
		return storeErr(err)
	}

	return s.getFeed(w, r)
}

// Records a failed fetch.
func (s *Server) postFeedError(w http.ResponseWriter, r *http.Request) error {
	if err := s.repo.IncrementErrorCount(r.Context(), mux.Vars(r)["feedID"]); err != nil {
		return storeErr(err)
	}

	return s.getFeed(w, r)
}

// Records a successful fetch.
func (s *Server) deleteFeedErrors(w http.ResponseWriter, r *http.Request) error {
	if err := s.repo.ResetErrorCount(r.Context(), mux.Vars(r)["feedID"]); err != nil {
		return storeErr(err)
	}

	return s.getFeed(w, r)
}

func (s *Server) deleteFeed(w http.ResponseWriter, r *http.Request) error {
	feedID := mux.Vars(r)["feedID"]
	if err := s.repo.DropFeed(r.Context(), feedID); err != nil {
		return storeErr(err)
	}
	s.purgeFeed(feedID)

	w.WriteHeader(http.StatusNoContent)
	return nil
}
