// Command serve previews a built deck over HTTP alongside health and
// metrics endpoints. The deck file is re-read per request, so rebuilding
// the deck with the build command updates the preview in place.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/crash-map-deck/internal/adapter/http"
	"github.com/couchcryptid/crash-map-deck/internal/config"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
)

func main() {
	deckPath := flag.String("deck", "deck.html", "path to the rendered deck")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	checker := httpadapter.DeckFileChecker{Path: *deckPath}
	srv := httpadapter.NewServer(cfg.HTTPAddr, *deckPath, checker, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
