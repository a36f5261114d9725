package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
	"github.com/insightdelivered/payment-summary-toolkit/internal/paysummary"
	"github.com/insightdelivered/payment-summary-toolkit/internal/writer"
)

const version = "1.0.0"

type arrayFlags []string

func (a *arrayFlags) String() string { return strings.Join(*a, " ") }

func (a *arrayFlags) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	useOCR := flag.Bool("use-ocr", false, "Force OCR even if a text file is provided")
	outDir := flag.String("out-dir", "tables", "Directory to write outputs")
	rendererFlag := flag.String("renderer", "pdftoppm", "Page renderer for OCR: pdftoppm, fitz")
	dpi := flag.Int("dpi", 300, "Rendering DPI for OCR (higher can improve accuracy)")
	source := flag.String("source", "ocr", "Text extraction source: ocr, poppler-decode")
	popplerLayout := flag.String("poppler-layout", "raw", "pdftotext layout mode when using poppler-decode: raw, layout")
	hybrid := flag.Bool("hybrid", false, "Use decoded text for names and OCR for numbers")
	ocrEngine := flag.String("ocr-engine", "tesseract", "OCR engine: tesseract, gosseract")
	xlsxFlag := flag.Bool("xlsx", false, "Also write tables.xlsx")
	htmlFlag := flag.Bool("html", false, "Also write combined_readable.html")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	var tessArgs arrayFlags
	flag.Var(&tessArgs, "tesseract-arg", "Extra arg for tesseract (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `OHIP Payment Summary Parser
by Insight Delivered

Parses an OHIP payment summary PDF (or pre-extracted OCR text) into
clean CSV tables, JSON metadata, and readable text exports.

Usage:
  paysummary [flags] <input.pdf|input.txt>

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # OCR pipeline with default settings
  paysummary Payment.pdf

  # Decode the obfuscated text layer instead of OCR
  paysummary --source=poppler-decode Payment.pdf

  # Hybrid: decoded names and headings, OCR amounts, ID probing
  paysummary --hybrid Payment.pdf

  # In-process rendering and OCR, spreadsheet export
  paysummary --renderer=fitz --ocr-engine=gosseract --xlsx Payment.pdf
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("paysummary v%s\n", version)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	inputPath := flag.Arg(0)
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Input not found: %s\n", inputPath)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create output directory: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	runner := extractor.ExecRunner{Logger: logger}

	renderer, err := extractor.NewRenderer(*rendererFlag, runner)
	if err != nil {
		fatalf("%v\n", err)
	}
	engine, err := extractor.NewEngine(*ocrEngine, "eng", tessArgs, runner)
	if err != nil {
		fatalf("%v\n", err)
	}

	acq := &extractor.Acquirer{
		Runner:   runner,
		Renderer: renderer,
		Engine:   engine,
		DPI:      *dpi,
		Logger:   logger,
	}
	parser := &paysummary.Parser{Engine: engine, Logger: logger}

	var rep *models.Report
	var refText, decodedText string
	var decPages []string

	if *hybrid {
		ocrText, err := acq.ReadInput(ctx, inputPath, true)
		if err != nil {
			fatalf("OCR failed: %v\n", err)
		}
		decodedText, err = acq.DecodedText(ctx, inputPath, *popplerLayout)
		if err != nil {
			fatalf("Text-layer decode failed: %v\n", err)
		}
		ocrPages := extractor.SplitPages(ocrText)
		decPages = extractor.SplitPages(decodedText)
		if len(ocrPages) == 0 || len(decPages) == 0 {
			fmt.Fprintln(os.Stderr, "No pages found in OCR/decoded text.")
			os.Exit(2)
		}

		// The ID probes need the page images around longer than the OCR
		// pass, so render into our own scoped directory.
		imgDir, err := os.MkdirTemp("", "ocr-pages-for-id-*")
		if err != nil {
			fatalf("Cannot create temp dir: %v\n", err)
		}
		defer os.RemoveAll(imgDir)
		images, err := renderer.RenderPages(ctx, inputPath, *dpi, imgDir)
		if err != nil {
			logger.Warn("page rendering for ID probes failed", "error", err)
		}

		rep = parser.BuildHybridReport(ctx, ocrPages, decPages, images)
		refText = ocrText
	} else {
		var text string
		if *source == "poppler-decode" {
			text, err = acq.DecodedText(ctx, inputPath, *popplerLayout)
			if err != nil {
				fatalf("Text-layer decode failed: %v\n", err)
			}
		} else {
			text, err = acq.ReadInput(ctx, inputPath, *useOCR)
			if err != nil {
				fatalf("OCR failed: %v\n", err)
			}
		}
		pages := extractor.SplitPages(text)
		if len(pages) == 0 {
			fmt.Fprintln(os.Stderr, "No pages found in extracted text.")
			os.Exit(2)
		}
		rep = parser.BuildReport(pages)
		refText = text
	}

	files, err := writeOutputs(*outDir, rep, decPages, refText, decodedText, *source, *hybrid, *xlsxFlag, *htmlFlag)
	if err != nil {
		fatalf("Writing outputs failed: %v\n", err)
	}

	fmt.Println("Parsed tables written to:", *outDir)
	fmt.Println("Files created:")
	for _, name := range files {
		fmt.Println(" -", filepath.Join(*outDir, name))
	}
}

// writeOutputs returns the names of the files it actually wrote, so the
// printed summary never lists a file a best-effort step skipped.
func writeOutputs(dir string, rep *models.Report, decPages []string, refText, decodedText, source string, hybrid, xlsx, html bool) ([]string, error) {
	var written []string

	jw := &writer.JSONWriter{}
	if err := jw.WriteToFile(filepath.Join(dir, "metadata.json"), rep.Meta); err != nil {
		return written, err
	}
	written = append(written, "metadata.json")

	cw := &writer.CSVWriter{}
	if err := cw.WriteTables(dir, rep); err != nil {
		return written, err
	}
	written = append(written, "group_categories.csv", "provider_categories.csv", "provider_totals.csv")
	if rep.Hybrid {
		// Section tables are best effort. A bad page layout should
		// still leave the core tables on disk.
		if err := cw.WriteSectionTables(dir, rep, decPages); err != nil {
			slog.Warn("payment section tables skipped", "error", err)
		} else {
			written = append(written, "group_payments.csv", "provider_payments.csv")
		}
	}

	rw := &writer.ReadableWriter{}
	if err := rw.WriteToFiles(dir, rep); err != nil {
		return written, err
	}
	written = append(written, "combined_readable.txt", "combined_readable.md")

	if xlsx {
		xw := &writer.XLSXWriter{}
		if err := xw.WriteToFile(filepath.Join(dir, "tables.xlsx"), rep); err != nil {
			return written, err
		}
		written = append(written, "tables.xlsx")
	}
	if html {
		hw := &writer.HTMLWriter{}
		if err := hw.WriteToFile(filepath.Join(dir, "combined_readable.html"), rep); err != nil {
			return written, err
		}
		written = append(written, "combined_readable.html")
	}

	// Reference dumps of the extracted text, raw and cleaned.
	if hybrid {
		refs := []struct {
			name, content string
		}{
			{"hybrid_reference_ocr.txt", refText},
			{"hybrid_reference_ocr_clean.txt", paysummary.CleanText(refText)},
			{"hybrid_reference_decoded.txt", decodedText},
			{"hybrid_reference_decoded_clean.txt", paysummary.CleanText(decodedText)},
		}
		for _, ref := range refs {
			if err := os.WriteFile(filepath.Join(dir, ref.name), []byte(ref.content), 0o644); err != nil {
				return written, err
			}
			written = append(written, ref.name)
		}
		return written, nil
	}

	base := "ocr_text"
	if source == "poppler-decode" {
		base = "decoded_text"
	}
	if err := os.WriteFile(filepath.Join(dir, base+".txt"), []byte(refText), 0o644); err != nil {
		return written, err
	}
	written = append(written, base+".txt")
	if err := os.WriteFile(filepath.Join(dir, base+"_clean.txt"), []byte(paysummary.CleanText(refText)), 0o644); err != nil {
		return written, err
	}
	return append(written, base+"_clean.txt"), nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
