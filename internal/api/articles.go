package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	v1 "github.com/jdholdren/newsstand/api/articles/v1"
	nserrs "github.com/jdholdren/newsstand/internal/errors"
	"github.com/jdholdren/newsstand/internal/newsstand"
	"github.com/jdholdren/newsstand/internal/serverutil"
)

var errMissingContent = fmt.Errorf("%w: content is required", newsstand.ErrInvalidArgument)

// Content is left out of listings, it's only sent when reading one article.
func apiArticle(a newsstand.Article) v1.Article {
	return v1.Article{
		FeedID: a.FeedID,
		ID:     a.ID,
		Date:   a.Date,
		Link:   a.Link,
		Title:  a.Title,
		Read:   a.Read,
		Liked:  a.Liked,
	}
}

func apiArticles(articles []newsstand.Article) []v1.Article {
	ret := make([]v1.Article, 0, len(articles))
	for _, a := range articles {
		ret = append(ret, apiArticle(a))
	}

	return ret
}

func (s *Server) postArticles(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		feedID = mux.Vars(r)["feedID"]
	)
	body, err := serverutil.DecodeValid[v1.IngestRequest](r.Body)
	if err != nil {
		return err
	}

	var (
		articles = make([]newsstand.Article, 0, len(body.Articles))
		resp     = v1.IngestResponse{}
	)
	for _, a := range body.Articles {
		// An absent content field can't be told apart from an empty one past here
		if a.Content == nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("article %q: %s", a.ID, errMissingContent))
			continue
		}

		articles = append(articles, newsstand.Article{
			ID:      a.ID,
			Date:    a.Date,
			Link:    a.Link,
			Title:   a.Title,
			Content: *a.Content,
			Read:    a.Read,
			Liked:   a.Liked,
		})
	}

	res, err := s.repo.Ingest(ctx, feedID, articles)
	if err != nil {
		return storeErr(err)
	}
	resp.Inserted = res.Inserted
	resp.Duplicates = res.Duplicates
	resp.Skipped += res.Skipped
	for _, err := range res.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

// Resolves a filter token to its conditions. Unknown tokens mean unread.
func filterConds(filter string) (string, []newsstand.Cond) {
	switch filter {
	case v1.FilterRead:
		return filter, []newsstand.Cond{newsstand.Eq(newsstand.FieldRead, true)}
	case v1.FilterLiked:
		return filter, []newsstand.Cond{newsstand.Eq(newsstand.FieldLiked, true)}
	case v1.FilterAll:
		return filter, nil
	}

	return v1.FilterUnread, []newsstand.Cond{newsstand.Eq(newsstand.FieldRead, false)}
}

// Reads the limit parameter. "all" lifts the limit.
func (s *Server) parseLimit(raw string) (uint64, error) {
	switch raw {
	case "":
		return s.defaultLimit, nil
	case "all":
		return 0, nil
	}

	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, nserrs.E(http.StatusBadRequest, "limit must be a positive integer or all")
	}

	return limit, nil
}

// Lists articles, unread ones by default.
//
// When a filtered view of a single feed comes back empty the response points
// the caller at the "all" filter instead.
func (s *Server) getArticles(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		params = r.URL.Query()
		feedID = params.Get("feed_id")
	)
	filter, conds := filterConds(params.Get("filter"))
	limit, err := s.parseLimit(params.Get("limit"))
	if err != nil {
		return err
	}
	sort := newsstand.ParseSort(params.Get("sort"))

	articles, err := s.repo.Articles(ctx, newsstand.ArticleQuery{
		FeedID: feedID,
		Conds:  conds,
		Sort:   sort,
		Limit:  limit,
	})
	if err != nil {
		return storeErr(err)
	}

	resp := v1.ListArticlesResponse{
		Articles: apiArticles(articles),
		Filter:   filter,
		Sort:     sort.String(),
	}
	if feedID != "" && filter != v1.FilterAll && len(articles) == 0 {
		resp.RedirectFilter = v1.FilterAll
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

// Reading an article marks it read.
func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)

	a, err := s.repo.ReadArticle(r.Context(), vars["feedID"], vars["articleID"])
	if err != nil {
		return storeErr(err)
	}

	resp := apiArticle(a)
	resp.Content = s.sanitized(a)

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	if err := s.repo.DeleteArticle(r.Context(), vars["feedID"], vars["articleID"]); err != nil {
		return storeErr(err)
	}
	s.purgeArticle(vars["feedID"], vars["articleID"])

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) putLike(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		vars = mux.Vars(r)
	)
	body, err := serverutil.DecodeValid[v1.LikeRequest](r.Body)
	if err != nil {
		return err
	}

	if err := s.repo.Like(ctx, *body.Liked, vars["feedID"], vars["articleID"]); err != nil {
		return storeErr(err)
	}

	return s.writeArticle(w, r)
}

func (s *Server) putRead(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		vars = mux.Vars(r)
	)
	body, err := serverutil.DecodeValid[v1.ReadRequest](r.Body)
	if err != nil {
		return err
	}

	// Checked first: marking zero rows is also what an article in the state looks like
	if _, err := s.repo.Article(ctx, vars["feedID"], vars["articleID"]); err != nil {
		return storeErr(err)
	}
	if _, err := s.repo.MarkRead(ctx, *body.Read, vars["feedID"], vars["articleID"]); err != nil {
		return storeErr(err)
	}

	return s.writeArticle(w, r)
}

// Responds with the article's current state, without touching it.
func (s *Server) writeArticle(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)

	a, err := s.repo.Article(r.Context(), vars["feedID"], vars["articleID"])
	if err != nil {
		return storeErr(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, apiArticle(a))
}

func (s *Server) putMarkAllRead(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	body, err := serverutil.DecodeValid[v1.MarkAllReadRequest](r.Body)
	if err != nil {
		return err
	}

	conds := []newsstand.Cond{}
	if body.FeedID != "" {
		if _, err := s.repo.Feed(ctx, body.FeedID); err != nil {
			return storeErr(err)
		}
		conds = append(conds, newsstand.Eq(newsstand.FieldFeedID, body.FeedID))
	}
	if body.Query != "" {
		m := newsstand.TextMatch{
			Term:      body.Query,
			InTitle:   body.SearchTitle,
			InContent: body.SearchContent,
		}
		// Searching titles is what the reader shows when neither box is ticked
		if !m.InTitle && !m.InContent {
			m.InTitle = true
		}
		conds = append(conds, newsstand.Eq(newsstand.FieldText, m))
	}

	read := true
	n, err := s.repo.UpdateArticles(ctx, newsstand.ArticlePatch{Read: &read}, conds...)
	if err != nil {
		return storeErr(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, v1.MarkAllReadResponse{Updated: n})
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request) error {
	articles, err := s.repo.Favorites(r.Context(), r.URL.Query().Get("feed_id"))
	if err != nil {
		return storeErr(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, v1.ListArticlesResponse{
		Articles: apiArticles(articles),
		Sort:     newsstand.Sort{}.String(),
	})
}

func (s *Server) getCounts(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		feedID = r.URL.Query().Get("feed_id")
		resp   v1.CountsResponse
		err    error
	)

	if resp.Total, err = s.repo.CountArticles(ctx, feedID); err != nil {
		return storeErr(err)
	}
	if resp.Unread, err = s.repo.CountUnread(ctx, feedID); err != nil {
		return storeErr(err)
	}
	if resp.Favorites, err = s.repo.CountFavorites(ctx, feedID); err != nil {
		return storeErr(err)
	}
	if resp.MailSubscribers, err = s.repo.CountMailSubscribers(ctx); err != nil {
		return storeErr(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

// Searches content by default. title=true and content=true pick the fields.
func (s *Server) getSearch(w http.ResponseWriter, r *http.Request) error {
	params := r.URL.Query()
	limit, err := s.parseLimit(params.Get("limit"))
	if err != nil {
		return err
	}

	q := newsstand.SearchQuery{
		TextMatch: newsstand.TextMatch{
			Term:      params.Get("q"),
			InTitle:   params.Get("title") == "true",
			InContent: params.Get("content") == "true",
		},
		Limit: limit,
	}
	results, err := s.repo.Search(r.Context(), q)
	if err != nil {
		return storeErr(err)
	}

	resp := v1.SearchResponse{Results: make(map[string][]v1.Article, len(results))}
	for feedID, articles := range results {
		resp.Results[feedID] = apiArticles(articles)
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}
