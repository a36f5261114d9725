package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/insightdelivered/payment-summary-toolkit/internal/api"
	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `OHIP Payment Summary API
by Insight Delivered

Serves payment-summary parsing over HTTP:
  POST /api/convert  multipart PDF upload, parsed from the decoded text layer
  GET  /api/health   liveness check

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	runner := extractor.ExecRunner{Logger: logger}
	handler := &api.Handler{
		Acquirer: &extractor.Acquirer{Runner: runner, Logger: logger},
		Logger:   logger,
	}

	app := handler.App()
	logger.Info("listening", "addr", *addr)
	if err := app.Listen(*addr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
