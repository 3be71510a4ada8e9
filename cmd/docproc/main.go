// docproc processes local documents in bulk: each input file runs through the
// same pipeline the server uses and produces one JSON result file, validated
// against the published fields schema.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doni010520/ocr-pdf/constants"
	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/extract"
	"github.com/doni010520/ocr-pdf/internal/ocr"
	"github.com/doni010520/ocr-pdf/internal/ocrspace"
	"github.com/doni010520/ocr-pdf/internal/pipeline"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath  = flag.String("config", "", "optional TOML config file")
		modeStr     = flag.String("mode", "smart", "extraction mode: smart, ocr_only or text_only")
		outDir      = flag.String("out", "", "output directory for JSON results (defaults to input directory)")
		concurrency = flag.Int("concurrency", 4, "number of documents processed in parallel")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		printError("usage: docproc [flags] <file-or-dir>...\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	mode, err := pipeline.ParseMode(*modeStr)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	inputs, err := collectInputs(flag.Args())
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		printError("Error: no supported documents found\n")
		os.Exit(1)
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

	start := time.Now()
	var processed, failed int

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	results := make([]error, len(inputs))

	for i, input := range inputs {
		g.Go(func() error {
			results[i] = processOne(ctx, proc, mode, input, *outDir)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			failed++
			logger.Error("document failed", "file", inputs[i], "error", err)
		} else {
			processed++
		}
	}

	logger.Info("batch finished",
		"processed", processed,
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

// collectInputs expands files and directories into the list of supported
// documents, skipping anything with an unknown extension.
func collectInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := constants.NormalizeExt(filepath.Ext(e.Name()))
			if _, ok := constants.AllowedExtensions[ext]; ok {
				inputs = append(inputs, filepath.Join(arg, e.Name()))
			}
		}
	}
	return inputs, nil
}

// processOne runs the pipeline on a single file and writes <name>.json next
// to it (or into outDir). The output is checked against the fields schema
// before anything lands on disk.
func processOne(ctx context.Context, proc *pipeline.Processor, mode pipeline.Mode, input, outDir string) error {
	fi, err := os.Stat(input)
	if err != nil {
		return err
	}
	ext := constants.NormalizeExt(filepath.Ext(input))

	doc := pipeline.Document{
		Path:     input,
		MIMEType: constants.MapExtToMIME(ext),
		Name:     filepath.Base(input),
		Size:     fi.Size(),
	}

	res, err := proc.Process(ctx, doc, mode)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(res.Fields, "", "  ")
	if err != nil {
		return err
	}
	if err := extract.ValidateJSON(data); err != nil {
		return fmt.Errorf("result failed schema validation: %w", err)
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return os.WriteFile(filepath.Join(dir, base+".json"), data, 0o644)
}
