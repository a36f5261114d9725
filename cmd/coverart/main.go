package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/audio"
	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

func main() {
	input := flag.String("input", "", "Audio file or directory to process")
	coverFlag := flag.String("cover", "", "Optional cover image (JPEG/PNG), applied to all files")
	recurse := flag.Bool("recurse", false, "Recurse into subdirectories when input is a folder")
	maxDim := flag.Int("max-dim", 300, "Max cover dimension in pixels")
	quality := flag.Int("quality", 85, "JPEG quality (1-95)")
	quiet := flag.Bool("quiet", false, "Reduce stdout output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `PSP-Safe Album Art Embedder
by Insight Delivered

Embeds a single small baseline-JPEG cover into MP3 (ID3v2.3 APIC, APE
tags stripped) and M4A/MP4/AAC (covr atom via AtomicParsley) files.

Usage:
  coverart --input <file-or-folder> [flags]

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}
	root, err := filepath.Abs(*input)
	if err != nil {
		fatalf("%v\n", err)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		fatalf("Input not found: %s\n", root)
	}

	var explicitCover []byte
	if *coverFlag != "" {
		explicitCover, err = os.ReadFile(*coverFlag)
		if err != nil {
			fatalf("Cover image not found: %s\n", *coverFlag)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	embedder := audio.M4AEmbedder{Runner: extractor.ExecRunner{Logger: logger}}
	ctx := context.Background()

	files, err := audio.ListAudioFiles(root, *recurse)
	if err != nil {
		fatalf("%v\n", err)
	}

	total, ok := 0, 0
	for _, path := range files {
		total++
		if processFile(ctx, embedder, path, explicitCover, *maxDim, *quality, *quiet) {
			ok++
		}
	}
	if !*quiet {
		fmt.Printf("Done. Updated %d/%d files.\n", ok, total)
	}
}

func processFile(ctx context.Context, embedder audio.M4AEmbedder, path string, explicitCover []byte, maxDim, quality int, quiet bool) bool {
	cover := explicitCover
	if cover == nil {
		cover = audio.FindCover(path)
	}
	if cover == nil {
		if !quiet {
			fmt.Printf("[skip:no-cover] %s\n", path)
		}
		return false
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		err = audio.EmbedCoverMP3(path, cover, maxDim, quality)
	case ".m4a", ".mp4", ".aac":
		err = embedder.EmbedCover(ctx, path, cover, maxDim, quality)
	default:
		if !quiet {
			fmt.Printf("[skip:unsupported] %s\n", path)
		}
		return false
	}
	if err != nil {
		if !quiet {
			fmt.Printf("[error] %s: %v\n", path, err)
		}
		return false
	}
	if !quiet {
		fmt.Printf("[ok] %s\n", path)
	}
	return true
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
