package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/export"
	"github.com/doni010520/ocr-pdf/internal/ocr"
	"github.com/doni010520/ocr-pdf/internal/ocrspace"
	"github.com/doni010520/ocr-pdf/internal/pipeline"
	"github.com/doni010520/ocr-pdf/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional TOML config file")
		jsonLogs   = flag.Bool("json-logs", false, "emit JSON logs instead of text")
	)
	flag.Parse()

	var handler slog.Handler
	if *jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}
	if cfg.OCR.APIKey == "" {
		logger.Warn("OCR_SPACE_API_KEY not set, using the development key")
	}

	toolkit := ocr.NewToolkit(ocr.Config{
		Pdftotext:     cfg.Tools.Pdftotext,
		Pdftoppm:      cfg.Tools.Pdftoppm,
		Tesseract:     cfg.Tools.Tesseract,
		TesseractLang: cfg.Tools.TesseractLang,
		Timeout:       cfg.Tools.Timeout,
	}, logger)
	toolkit.CheckDependencies()

	remote := ocrspace.NewClient(cfg.OCR.Endpoint, cfg.APIKeyOrDev(), cfg.OCR.Language, cfg.OCR.Timeout, logger)
	proc := pipeline.NewProcessor(toolkit, remote, logger)
	fetcher := pipeline.NewFetcher(cfg.Upload.Dir, cfg.Fetch.MaxBytes, cfg.Fetch.Timeout)
	exporter := export.NewService(logger)
	svc := server.NewService(cfg, proc, fetcher, exporter, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
