package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

type feedRow struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Unread     int    `json:"unread"`
	ErrorCount int    `json:"error_count"`
}

// NewFeedsCommand lists the feeds.
func NewFeedsCommand(rootOpts *RootOptions) *cobra.Command {
	var inError int

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List feeds with their unread counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := openRepo(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeRepo()

			var filter newsstand.FeedFilter
			if cmd.Flags().Changed("in-error") {
				filter.MinErrorCount = &inError
			}
			feeds, err := repo.Feeds(ctx, filter)
			if err != nil {
				return err
			}
			unread, err := repo.UnreadByFeed(ctx)
			if err != nil {
				return err
			}

			rows := make([]feedRow, 0, len(feeds))
			for _, f := range feeds {
				rows = append(rows, feedRow{ID: f.ID, Title: f.Title, Unread: unread[f.ID], ErrorCount: f.ErrorCount})
			}

			return output(cmd.OutOrStdout(), rootOpts, rows, func(w io.Writer) error {
				cells := make([][]string, 0, len(rows))
				for _, r := range rows {
					cells = append(cells, []string{r.ID, r.Title, strconv.Itoa(r.Unread), strconv.Itoa(r.ErrorCount)})
				}
				return writeTable(w, []string{"id", "title", "unread", "errors"}, cells)
			})
		},
	}
	cmd.Flags().IntVar(&inError, "in-error", 0, "only feeds that failed more than this many times, 0 for any failure")

	return cmd
}

// NewDropCommand removes a feed and all of its articles.
func NewDropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <feed_id>",
		Short: "Delete a feed along with its articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := openRepo(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeRepo()

			if err := repo.DropFeed(ctx, args[0]); err != nil {
				return err
			}

			return output(cmd.OutOrStdout(), rootOpts, map[string]string{"dropped": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "dropped %s\n", args[0])
				return err
			})
		},
	}
}

type searchRow struct {
	FeedID string `json:"feed_id"`
	ID     string `json:"id"`
	Date   string `json:"date"`
	Title  string `json:"title"`
}

// NewSearchCommand searches articles across every feed.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		title   bool
		content bool
		limit   uint64
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find articles containing a term, grouped by feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := openRepo(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeRepo()

			results, err := repo.Search(ctx, newsstand.SearchQuery{
				TextMatch: newsstand.TextMatch{Term: args[0], InTitle: title, InContent: content},
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			rows := []searchRow{}
			for _, feedID := range slices.Sorted(maps.Keys(results)) {
				for _, a := range results[feedID] {
					rows = append(rows, searchRow{FeedID: feedID, ID: a.ID, Date: a.Date.Format("2006-01-02"), Title: a.Title})
				}
			}

			return output(cmd.OutOrStdout(), rootOpts, rows, func(w io.Writer) error {
				cells := make([][]string, 0, len(rows))
				for _, r := range rows {
					cells = append(cells, []string{r.FeedID, r.ID, r.Date, r.Title})
				}
				return writeTable(w, []string{"feed", "article", "date", "title"}, cells)
			})
		},
	}
	cmd.Flags().BoolVar(&title, "title", false, "search titles")
	cmd.Flags().BoolVar(&content, "content", false, "search content, the default when no field is picked")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "cap the number of articles, 0 for all")

	return cmd
}

type counts struct {
	Total     int `json:"total"`
	Unread    int `json:"unread"`
	Favorites int `json:"favorites"`
	// Store-wide, even for a single feed.
	MailSubscribers int `json:"mail_subscribers"`
}

// NewCountsCommand prints the badge counts of a feed, or of the whole store.
func NewCountsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counts [feed_id]",
		Short: "Count articles, unread articles and favorites",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := openRepo(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeRepo()

			var feedID string
			if len(args) == 1 {
				feedID = args[0]
			}

			var c counts
			if c.Total, err = repo.CountArticles(ctx, feedID); err != nil {
				return err
			}
			if c.Unread, err = repo.CountUnread(ctx, feedID); err != nil {
				return err
			}
			if c.Favorites, err = repo.CountFavorites(ctx, feedID); err != nil {
				return err
			}
			if c.MailSubscribers, err = repo.CountMailSubscribers(ctx); err != nil {
				return err
			}

			return output(cmd.OutOrStdout(), rootOpts, c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "total: %d\nunread: %d\nfavorites: %d\nmail subscribers: %d\n", c.Total, c.Unread, c.Favorites, c.MailSubscribers)
				return err
			})
		},
	}
}

// NewMarkReadCommand marks a feed, or everything, read.
func NewMarkReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-read [feed_id]",
		Short: "Mark every article of a feed, or of every feed, read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := openRepo(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeRepo()

			var feedID string
			if len(args) == 1 {
				feedID = args[0]
				if _, err := repo.Feed(ctx, feedID); err != nil {
					return err
				}
			}

			n, err := repo.MarkRead(ctx, true, feedID, "")
			if err != nil {
				return err
			}

			return output(cmd.OutOrStdout(), rootOpts, map[string]int64{"updated": n}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "marked %d articles read\n", n)
				return err
			})
		},
	}
}
