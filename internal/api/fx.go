// Package api serves the article store over JSON HTTP.
//
// It's the presentation surface of the store: listing and toggling articles,
// badge counts, search, and feed management for the fetcher.
package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(
		NewServer,
	),
)
