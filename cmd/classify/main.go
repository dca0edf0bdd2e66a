// classify runs the dictionary classifier against a local PDF and prints
// the derived identity without touching storage or the job store. Useful
// for tuning dictionary files.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/unistad/document-archiver/internal/classify"
	"github.com/unistad/document-archiver/internal/common"
	"github.com/unistad/document-archiver/internal/extract"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "classify <file.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	settings, err := common.LoadSettings(cfg.Dictionaries)
	if err != nil {
		logger.Error("loading dictionaries file", "path", cfg.Dictionaries, "error", err)
		os.Exit(1)
	}
	dicts, err := classify.LoadDictionaries(settings)
	if err != nil {
		logger.Error("loading dictionaries", "error", err)
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("opening file", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor := extract.NewPdfToText(extract.Config{Pdftotext: cfg.Extract.Pdftotext}, logger)
	page1, page2, err := extractor.FirstTwoPages(ctx, f)
	if err != nil {
		logger.Error("extracting text", "error", err)
		os.Exit(1)
	}

	res := classify.NameDocument(page1, page2, dicts)
	if !res.OK {
		logger.Error("classification failed", "detail", res.ErrorDetail)
		os.Exit(1)
	}
	logger.Info("classified",
		"unit", res.UnitCode,
		"service", res.ServiceCode,
		"doc_type", res.DocTypeCode,
		"reference", res.Reference,
		"version", res.Version,
		"target_folder", res.TargetFolder,
		"file_name", res.FileName,
	)
}
