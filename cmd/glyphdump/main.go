package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `PDF Glyph Inspector
by Insight Delivered

Dumps the text-layer spans of selected pages: font, size, raw text, and
per-character code points. Spans containing U+FFFD are flagged; the code
points reveal constant-shift obfuscation in the text layer.

Usage:
  glyphdump <input.pdf> <page_numbers_comma_sep>

Example:
  glyphdump Payment.pdf 2,9,10,13
`)
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}
	pdfPath := flag.Arg(0)

	var pageNumbers []int
	for _, tok := range strings.Split(flag.Arg(1), ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid page number: %s\n", tok)
			os.Exit(2)
		}
		pageNumbers = append(pageNumbers, n)
	}

	total, err := extractor.NumPages(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open PDF: %v\n", err)
		os.Exit(1)
	}

	for _, pno := range pageNumbers {
		if pno < 1 || pno > total {
			fmt.Printf("Page index out of range: %d/%d\n", pno, total)
			continue
		}
		dumpPageSpans(pdfPath, pno, total)
	}
}

func dumpPageSpans(pdfPath string, pageNum, total int) {
	spans, err := extractor.PageSpans(pdfPath, pageNum)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Span extraction failed on page %d: %v\n", pageNum, err)
		os.Exit(1)
	}

	fmt.Printf("=== PAGE %d of %d ===\n", pageNum, total)
	for _, s := range spans {
		warn := ""
		if s.HasReplacement() {
			warn = " (HAS_U+FFFD)"
		}
		ords := make([]string, 0, len(s.Text))
		for _, r := range s.Text {
			ords = append(ords, fmt.Sprintf("%#x", r))
		}
		fmt.Printf("FONT:%s SIZE:%g%s\n", s.Font, s.FontSize, warn)
		fmt.Printf("RAW: %q\n", s.Text)
		fmt.Printf("ORDS: %s\n", strings.Join(ords, " "))
		fmt.Println(strings.Repeat("-", 60))
	}
}
