// Package cli is the admin command line for the article store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/jdholdren/newsstand/internal/migrations"
	"github.com/jdholdren/newsstand/internal/newsstand"
	"github.com/jdholdren/newsstand/internal/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string
	Format   string // "json" | "text"
	Timeout  time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// The flags fall back to these.
type env struct {
	Database string `env:"DATABASE"`
}

// NewRootCommand creates the root command for newsctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "newsctl",
		Short: "Administer a newsstand article store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Database != "" {
				return nil
			}

			var e env
			if err := envconfig.Process(cmd.Context(), &e); err != nil {
				return fmt.Errorf("error parsing environment: %w", err)
			}
			if e.Database == "" {
				return fmt.Errorf("no database: set --database or DATABASE")
			}
			opts.Database = e.Database

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main prints them
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "database", "", "path to the sqlite database (default $DATABASE)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "how long to wait for the database")

	cmd.AddCommand(NewFeedsCommand(opts))
	cmd.AddCommand(NewDropCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewCountsCommand(opts))
	cmd.AddCommand(NewMarkReadCommand(opts))

	return cmd
}

// Opens the store, bringing its schema up to date. The returned func closes it.
func openRepo(ctx context.Context, opts *RootOptions) (newsstand.Repository, func(), error) {
	dbx, err := sqlite.Open(ctx, opts.Database, opts.Timeout)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Run(dbx); err != nil {
		dbx.Close()
		return nil, nil, err
	}

	return sqlite.New(dbx, sqlite.Config{}), func() { dbx.Close() }, nil
}

// Writes v as json, or calls text to write it for people.
func output(w io.Writer, opts *RootOptions, v any, text func(io.Writer) error) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	return text(w)
}
