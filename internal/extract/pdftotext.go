// Package extract turns an uploaded PDF stream into the plain text of its
// first two pages, which is all the classifier ever looks at.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// PageTexts is the text-extraction collaborator the pipeline consumes.
type PageTexts interface {
	// FirstTwoPages returns the plain text of pages 1 and 2. Page 2 is ""
	// for single-page documents.
	FirstTwoPages(ctx context.Context, pdf io.Reader) (page1, page2 string, err error)
}

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// PdfToText extracts page text by invoking poppler's pdftotext.
type PdfToText struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPdfToText(cfg Config, logger *slog.Logger) *PdfToText {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &PdfToText{cfg: cfg, runner: execRunner{}, logger: logger}
}

// FirstTwoPages spools the stream to a temp file (pdftotext needs a seekable
// input) and extracts pages 1-2. Pages arrive form-feed separated.
func (p *PdfToText) FirstTwoPages(ctx context.Context, pdf io.Reader) (string, string, error) {
	tmp, err := os.CreateTemp("", "da-pdf-*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			p.logger.Warn("failed to remove temp file", "path", tmp.Name(), "error", err)
		}
	}()

	if _, err := io.Copy(tmp, pdf); err != nil {
		tmp.Close()
		return "", "", fmt.Errorf("spool pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", fmt.Errorf("close temp file: %w", err)
	}

	// pdftotext -f 1 -l 2 -enc UTF-8 -eol unix <tmp> -
	out, errb, err := p.runner.Run(ctx, p.cfg.Pdftotext,
		"-f", "1", "-l", "2", "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return "", "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}

	page1, page2 := SplitPages(string(out))
	p.logger.Debug("extracted page text",
		"page1_bytes", len(page1), "page2_bytes", len(page2))
	return page1, page2, nil
}

// SplitPages splits pdftotext output on the form-feed page separator.
func SplitPages(text string) (string, string) {
	parts := strings.SplitN(text, "\f", 3)
	page1 := parts[0]
	page2 := ""
	if len(parts) > 1 {
		page2 = parts[1]
	}
	return page1, page2
}
