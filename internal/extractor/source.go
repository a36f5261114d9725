package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PageBreak separates pages in acquired text, matching the form-feed
// convention of both pdftotext and the OCR concatenation step.
const PageBreak = "\f"

// Acquirer produces page-delimited plain text for a document through one
// of three policies: OCR of rasterized pages, shift-decoded pdftotext
// output, or both (hybrid). It owns no state beyond its collaborators.
type Acquirer struct {
	Runner    Runner
	Renderer  Renderer
	Engine    Engine
	Pdftotext string // binary name or path; defaults to "pdftotext"
	DPI       int
	Logger    *slog.Logger
}

func (a *Acquirer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// OCRText rasterizes every page to a scoped temp directory, recognizes
// each image, and concatenates results with page-break markers. Rendering
// or recognition failure is fatal; the temp directory is removed on every
// exit path.
func (a *Acquirer) OCRText(ctx context.Context, pdfPath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	images, err := a.Renderer.RenderPages(ctx, pdfPath, a.DPI, tmpDir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, img := range images {
		txt, err := a.Engine.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		b.WriteString(txt)
		b.WriteString("\n\f\n")
	}
	return b.String(), nil
}

// DecodedText extracts the raw text layer with pdftotext and reverses the
// constant character shift. layout is "raw" or "layout". When pdftotext is
// unavailable the structured PDF library fills in.
func (a *Acquirer) DecodedText(ctx context.Context, pdfPath, layout string) (string, error) {
	raw, err := a.pdftotext(ctx, pdfPath, layout)
	if err != nil {
		a.logger().Warn("pdftotext unavailable, falling back to library extraction", "error", err)
		pages, libErr := ExtractTextLayer(pdfPath)
		if libErr != nil {
			return "", fmt.Errorf("text-layer extraction failed: %w (pdftotext: %v)", libErr, err)
		}
		raw = strings.Join(pages, "\n"+PageBreak+"\n")
	}

	decoded := Decode(raw)
	if !IsReadableText(SplitPages(decoded)) {
		a.logger().Warn("decoded text failed the readability gate; downstream parsing may degrade")
	}
	return decoded, nil
}

func (a *Acquirer) pdftotext(ctx context.Context, pdfPath, layout string) (string, error) {
	bin := a.Pdftotext
	if bin == "" {
		bin = os.Getenv("PDFTOTEXT")
	}
	if bin == "" {
		bin = "pdftotext"
	}

	args := []string{}
	switch layout {
	case "", "raw":
		args = append(args, "-raw")
	case "layout":
		args = append(args, "-layout")
	default:
		return "", fmt.Errorf("unknown poppler layout %q (want raw or layout)", layout)
	}
	args = append(args, pdfPath, "-")

	out, errb, err := a.Runner.Run(ctx, bin, args...)
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w (stderr: %s)", err, truncate(string(errb), 1<<10))
	}
	return string(out), nil
}

// ReadInput returns the OCR text for an input path. A .txt input is read
// as pre-extracted OCR output unless forceOCR re-runs the pipeline.
func (a *Acquirer) ReadInput(ctx context.Context, inputPath string, forceOCR bool) (string, error) {
	if strings.EqualFold(filepath.Ext(inputPath), ".txt") && !forceOCR {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return a.OCRText(ctx, inputPath)
}

// SplitPages breaks acquired text on page-break markers and trims the
// newline padding around each page.
func SplitPages(text string) []string {
	parts := strings.Split(text, PageBreak)
	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		pages = append(pages, strings.Trim(p, "\n"))
	}
	// A trailing page break leaves one empty phantom page.
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}
