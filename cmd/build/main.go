// Command build renders a slide deck from a TOML deck definition and a
// crash-record dataset into a single self-contained HTML file.
//
// Usage:
//
//	build -deck deck.toml -out deck.html
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crash-map-deck/internal/boundary"
	"github.com/couchcryptid/crash-map-deck/internal/config"
	"github.com/couchcryptid/crash-map-deck/internal/dataset"
	"github.com/couchcryptid/crash-map-deck/internal/deckspec"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
	"github.com/couchcryptid/crash-map-deck/internal/pipeline"
	"github.com/couchcryptid/crash-map-deck/internal/render"
)

func main() {
	deckPath := flag.String("deck", "deck.toml", "path to the deck definition")
	outPath := flag.String("out", "deck.html", "path for the rendered deck")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	deck, err := deckspec.Load(*deckPath)
	if err != nil {
		logger.Error("failed to load deck definition", "path", *deckPath, "error", err)
		os.Exit(1)
	}

	source := dataset.NewFileSource(deck.Data, logger)

	var boundaries domain.BoundarySource
	if deck.NeedsBoundaries() {
		switch deck.Boundaries.Source {
		case "file":
			boundaries = boundary.NewFileSource(deck.Boundaries.Path, logger)
		default:
			client := boundary.NewClient(cfg.BoundaryBaseURL, cfg.BoundaryToken, cfg.BoundaryTimeout, metrics, logger)
			boundaries = boundary.NewCachedSource(client, cfg.BoundaryCacheSize, metrics)
		}
	}

	renderer, err := render.New(logger)
	if err != nil {
		logger.Error("failed to initialize renderer", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(source, boundaries, renderer, deck, *outPath, logger, metrics)
	if err := p.Build(ctx); err != nil {
		logger.Error("deck build failed", "error", err)
		os.Exit(1)
	}
}
