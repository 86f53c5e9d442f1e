package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	nserrs "github.com/jdholdren/newsstand/internal/errors"
	"github.com/jdholdren/newsstand/internal/newsstand"
	"github.com/jdholdren/newsstand/internal/serverutil"
)

const (
	defaultLimit     = 1000
	defaultCacheSize = 1024
)

type (
	// Server handles requests from the reader frontend and the feed fetcher.
	Server struct {
		*http.Server

		repo newsstand.Repository

		// Sanitized article content, keyed by contentKey
		contentCache *lru.Cache[string, string]
		policy       *bluemonday.Policy
		defaultLimit uint64
	}

	ServerConfig struct {
		Port       int
		CorsOrigin string
		// Caps listings that don't ask for a limit
		DefaultLimit     uint64
		ContentCacheSize int
	}

	Params struct {
		fx.In

		Config ServerConfig
		Repo   newsstand.Repository
	}
)

func NewServer(lc fx.Lifecycle, p Params) (*Server, error) {
	srvr, err := newServer(p.Config, p.Repo)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srvr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("server stopped", "error", err)
				}
			}()

			slog.Info("started newsstand server", "port", p.Config.Port)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srvr.Shutdown(ctx)
		},
	})

	return srvr, nil
}

func newServer(config ServerConfig, repo newsstand.Repository) (*Server, error) {
	if config.DefaultLimit == 0 {
		config.DefaultLimit = defaultLimit
	}
	if config.ContentCacheSize <= 0 {
		config.ContentCacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, string](config.ContentCacheSize)
	if err != nil {
		return nil, fmt.Errorf("error creating content cache: %w", err)
	}

	r := serverutil.ErrRouter{Router: mux.NewRouter()}
	srvr := &Server{
		repo:         repo,
		contentCache: cache,
		policy:       bluemonday.UGCPolicy(),
		defaultLimit: config.DefaultLimit,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			Handler:      r,
		},
	}
	if config.CorsOrigin != "" {
		srvr.Handler = handlers.CORS(
			handlers.AllowedOrigins([]string{config.CorsOrigin}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"content-type"}),
		)(r)
	}

	r.Use(serverutil.RequestIDMiddleware)
	r.Use(serverutil.AccessLogMiddleware) // Log everything
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Feed management, mostly for the fetcher
	r.HandleFuncE("/api/feeds", srvr.postFeed).Methods(http.MethodPost)
	r.HandleFuncE("/api/feeds", srvr.getFeeds).Methods(http.MethodGet)
	r.HandleFuncE("/api/feeds/{feedID}", srvr.getFeed).Methods(http.MethodGet)
	r.HandleFuncE("/api/feeds/{feedID}", srvr.patchFeed).Methods(http.MethodPatch)
	r.HandleFuncE("/api/feeds/{feedID}", srvr.deleteFeed).Methods(http.MethodDelete)
	r.HandleFuncE("/api/feeds/{feedID}/errors", srvr.postFeedError).Methods(http.MethodPost)
	r.HandleFuncE("/api/feeds/{feedID}/errors", srvr.deleteFeedErrors).Methods(http.MethodDelete)
	r.HandleFuncE("/api/feeds/{feedID}/articles", srvr.postArticles).Methods(http.MethodPost)

	// Reader view
	r.HandleFuncE("/api/articles", srvr.getArticles).Methods(http.MethodGet)
	r.HandleFuncE("/api/feeds/{feedID}/articles/{articleID}", srvr.getArticle).Methods(http.MethodGet)
	r.HandleFuncE("/api/feeds/{feedID}/articles/{articleID}", srvr.deleteArticle).Methods(http.MethodDelete)
	r.HandleFuncE("/api/feeds/{feedID}/articles/{articleID}/like", srvr.putLike).Methods(http.MethodPut)
	r.HandleFuncE("/api/feeds/{feedID}/articles/{articleID}/read", srvr.putRead).Methods(http.MethodPut)
	r.HandleFuncE("/api/mark-all-read", srvr.putMarkAllRead).Methods(http.MethodPut)
	r.HandleFuncE("/api/favorites", srvr.getFavorites).Methods(http.MethodGet)
	r.HandleFuncE("/api/counts", srvr.getCounts).Methods(http.MethodGet)
	r.HandleFuncE("/api/search", srvr.getSearch).Methods(http.MethodGet)

	slog.Debug("configured newsstand server", "port", config.Port)

	return srvr, nil
}

// Translates store errors into ones with a status code.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, newsstand.ErrNotFound):
		return nserrs.E(http.StatusNotFound, err)
	case errors.Is(err, newsstand.ErrAlreadyExists):
		return nserrs.E(http.StatusConflict, err)
	case errors.Is(err, newsstand.ErrStorageUnavailable):
		return nserrs.E(http.StatusServiceUnavailable, err)
	case errors.Is(err, newsstand.ErrInvalidArgument):
		sErr := nserrs.E(http.StatusBadRequest, err)
		var vErr *newsstand.ValidationError
		if errors.As(err, &vErr) {
			for _, f := range vErr.Fields {
				sErr.Details = append(sErr.Details, nserrs.Detail{Field: f.Field, Error: f.Error})
			}
		}
		return sErr
	}

	return err
}

func contentPrefix(feedID, articleID string) string {
	return feedID + "/" + articleID
}

// Keys include a digest of the raw content so that an article re-created
// behind the server's back, by newsctl for instance, never hits a stale entry.
func contentKey(a newsstand.Article) string {
	return contentPrefix(a.FeedID, a.ID) + "@" + strconv.FormatUint(xxhash.Sum64String(a.Content), 16)
}

// Sanitizes an article's content, going through the cache.
func (s *Server) sanitized(a newsstand.Article) string {
	key := contentKey(a)
	if content, ok := s.contentCache.Get(key); ok {
		return content
	}

	content := s.policy.Sanitize(a.Content)
	s.contentCache.Add(key, content)

	return content
}

// Drops the cached content of every article in the feed.
func (s *Server) purgeFeed(feedID string) {
	s.purge(contentPrefix(feedID, ""))
}

// Drops the cached content of an article.
func (s *Server) purgeArticle(feedID, articleID string) {
	s.purge(contentPrefix(feedID, articleID) + "@")
}

func (s *Server) purge(prefix string) {
	for _, key := range s.contentCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.contentCache.Remove(key)
		}
	}
}
