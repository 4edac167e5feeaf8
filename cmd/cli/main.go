package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/tishanyq/shopsync/internal/client/cli"
	"github.com/tishanyq/shopsync/internal/client/config"
	"github.com/tishanyq/shopsync/internal/logging"
)

func main() {

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
