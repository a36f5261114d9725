package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

func main() {
	pagesFlag := flag.String("pages", "2", "How many pages to OCR: N or 'all'")
	writeFlag := flag.Bool("write", false, "Write each page to its own .txt file")
	rendererFlag := flag.String("renderer", "pdftoppm", "Page renderer: pdftoppm, fitz")
	dpi := flag.Int("dpi", 300, "Rendering DPI")
	ocrEngine := flag.String("ocr-engine", "tesseract", "OCR engine: tesseract, gosseract")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `PDF OCR Dumper
by Insight Delivered

OCRs a PDF and dumps cleaned plaintext per page, with page separators.

Usage:
  ocrdump [flags] <input.pdf>

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "PDF not found: %s\n", pdfPath)
		os.Exit(1)
	}

	numPages := -1
	if !strings.EqualFold(*pagesFlag, "all") {
		n, err := strconv.Atoi(*pagesFlag)
		if err != nil || n <= 0 {
			fmt.Fprintln(os.Stderr, "--pages must be an integer > 0 or 'all'")
			os.Exit(2)
		}
		numPages = n
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runner := extractor.ExecRunner{Logger: logger}

	renderer, err := extractor.NewRenderer(*rendererFlag, runner)
	if err != nil {
		fatalf("%v\n", err)
	}
	engine, err := extractor.NewEngine(*ocrEngine, "eng", nil, runner)
	if err != nil {
		fatalf("%v\n", err)
	}

	ctx := context.Background()
	tmpDir, err := os.MkdirTemp("", "ocrdump-pages-*")
	if err != nil {
		fatalf("Cannot create temp dir: %v\n", err)
	}
	defer os.RemoveAll(tmpDir)

	images, err := renderer.RenderPages(ctx, pdfPath, *dpi, tmpDir)
	if err != nil {
		fatalf("Rendering failed: %v\n", err)
	}
	if numPages > 0 && numPages < len(images) {
		images = images[:numPages]
	}

	var texts []string
	for i, img := range images {
		raw, err := engine.Recognize(ctx, img)
		if err != nil {
			fatalf("OCR failed on page %d: %v\n", i+1, err)
		}
		texts = append(texts, extractor.CleanPageText(raw))
	}

	for i, pageText := range texts {
		fmt.Printf("===== Page %d =====\n", i+1)
		fmt.Print(pageText)
		if i != len(texts)-1 {
			fmt.Println()
		}
	}

	if *writeFlag {
		stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
		dir := filepath.Dir(pdfPath)
		for i, pageText := range texts {
			out := filepath.Join(dir, fmt.Sprintf("%s_ocr_page-%02d.txt", stem, i+1))
			if err := os.WriteFile(out, []byte(pageText), 0o644); err != nil {
				fatalf("Write failed: %v\n", err)
			}
			fmt.Printf("Wrote: %s\n", out)
		}
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
