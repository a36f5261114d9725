package extractor

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gen2brain/go-fitz"
)

// Renderer rasterizes PDF pages into PNG files under workDir and returns
// the image paths in page order. Rasterization failure is fatal to the
// caller; there are no retries.
type Renderer interface {
	RenderPages(ctx context.Context, pdfPath string, dpi int, workDir string) ([]string, error)
}

// PopplerRenderer shells out to pdftoppm (poppler-utils).
type PopplerRenderer struct {
	Binary string // defaults to "pdftoppm"
	Runner Runner
}

func (r PopplerRenderer) RenderPages(ctx context.Context, pdfPath string, dpi int, workDir string) ([]string, error) {
	bin := r.Binary
	if bin == "" {
		bin = os.Getenv("PDFTOPPM")
	}
	if bin == "" {
		bin = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}

	prefix := filepath.Join(workDir, "page")
	_, errb, err := r.Runner.Run(ctx, bin, "-r", strconv.Itoa(dpi), "-png", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (stderr: %s)", err, truncate(string(errb), 1<<10))
	}

	// pdftoppm names pages page-1.png, page-2.png, ... (zero-padded for
	// larger documents), so a lexical sort preserves page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	return matches, nil
}

// FitzRenderer rasterizes in-process with MuPDF, avoiding the poppler
// dependency. Mirrors the pdftoppm output layout so downstream code does
// not care which renderer produced the images.
type FitzRenderer struct{}

func (FitzRenderer) RenderPages(ctx context.Context, pdfPath string, dpi int, workDir string) ([]string, error) {
	if dpi <= 0 {
		dpi = 300
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf with mupdf: %w", err)
	}
	defer doc.Close()

	var paths []string
	for i := 0; i < doc.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		out := filepath.Join(workDir, fmt.Sprintf("page-%02d.png", i+1))
		f, err := os.Create(out)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, out)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	return paths, nil
}

// NewRenderer returns the renderer for a --renderer flag value.
func NewRenderer(name string, runner Runner) (Renderer, error) {
	switch name {
	case "", "pdftoppm":
		return PopplerRenderer{Runner: runner}, nil
	case "fitz":
		return FitzRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q (want pdftoppm or fitz)", name)
	}
}
