package extractor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Word is a single recognized token with its pixel bounding box. LineNum
// groups words that share a text line; it is only meaningful relative to
// other words from the same page.
type Word struct {
	Text       string
	Left       int
	Top        int
	Width      int
	Height     int
	LineNum    int
	Confidence float64
}

// Right returns the x coordinate of the word's right edge.
func (w Word) Right() int { return w.Left + w.Width }

// Bottom returns the y coordinate of the word's bottom edge.
func (w Word) Bottom() int { return w.Top + w.Height }

// Engine is the OCR provider contract. Recognize returns the plain text of
// a page image; Words returns per-word positions for the ID probing
// heuristics; RecognizeDigits re-reads an image restricted to a digit/dash
// character set (used on cropped regions).
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
	Words(ctx context.Context, imagePath string) ([]Word, error)
	RecognizeDigits(ctx context.Context, imagePath string) (string, error)
}

// TesseractCLI drives the tesseract binary through a Runner. Args replaces
// the default engine/layout arguments when non-empty, mirroring the
// repeatable --tesseract-arg flag.
type TesseractCLI struct {
	Binary string // defaults to "tesseract"
	Lang   string // defaults to "eng"
	Args   []string
	Runner Runner
}

// Default layout assumptions: LSTM engine, single uniform block of text,
// preserved inter-word spacing.
var defaultTesseractArgs = []string{"--oem", "1", "--psm", "6", "-c", "preserve_interword_spaces=1"}

func (t TesseractCLI) Name() string { return "tesseract" }

func (t TesseractCLI) binary() string {
	if t.Binary != "" {
		return t.Binary
	}
	if env := os.Getenv("TESSERACT"); env != "" {
		return env
	}
	return "tesseract"
}

func (t TesseractCLI) lang() string {
	if t.Lang != "" {
		return t.Lang
	}
	return "eng"
}

func (t TesseractCLI) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.lang()}
	if len(t.Args) > 0 {
		args = append(args, t.Args...)
	} else {
		args = append(args, defaultTesseractArgs...)
	}
	out, errb, err := t.Runner.Run(ctx, t.binary(), args...)
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w (stderr: %s)", err, truncate(string(errb), 1<<10))
	}
	return string(out), nil
}

func (t TesseractCLI) Words(ctx context.Context, imagePath string) ([]Word, error) {
	args := []string{imagePath, "stdout", "-l", t.lang(), "--oem", "1", "--psm", "6", "tsv"}
	out, errb, err := t.Runner.Run(ctx, t.binary(), args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract tsv failed: %w (stderr: %s)", err, truncate(string(errb), 1<<10))
	}
	return parseTesseractTSV(string(out)), nil
}

func (t TesseractCLI) RecognizeDigits(ctx context.Context, imagePath string) (string, error) {
	args := []string{
		imagePath, "stdout", "-l", t.lang(),
		"--oem", "1", "--psm", "7",
		"-c", "tessedit_char_whitelist=0123456789 -",
	}
	out, errb, err := t.Runner.Run(ctx, t.binary(), args...)
	if err != nil {
		return "", fmt.Errorf("tesseract digit pass failed: %w (stderr: %s)", err, truncate(string(errb), 1<<10))
	}
	return string(out), nil
}

// parseTesseractTSV extracts word-level records (level 5) from tesseract's
// TSV output. Rows whose column count disagrees with the header are
// skipped.
func parseTesseractTSV(out string) []Word {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return nil
	}

	header := strings.Split(lines[0], "\t")
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	intField := func(parts []string, name string) int {
		i, ok := col[name]
		if !ok || i >= len(parts) {
			return 0
		}
		n, _ := strconv.Atoi(strings.TrimSpace(parts[i]))
		return n
	}

	var words []Word
	for _, ln := range lines[1:] {
		parts := strings.Split(ln, "\t")
		if len(parts) != len(header) {
			continue
		}
		if intField(parts, "level") != 5 {
			continue
		}
		text := ""
		if i, ok := col["text"]; ok && i < len(parts) {
			text = strings.TrimSpace(parts[i])
		}
		conf := 0.0
		if i, ok := col["conf"]; ok && i < len(parts) {
			conf, _ = strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		}
		words = append(words, Word{
			Text:       text,
			Left:       intField(parts, "left"),
			Top:        intField(parts, "top"),
			Width:      intField(parts, "width"),
			Height:     intField(parts, "height"),
			LineNum:    intField(parts, "line_num"),
			Confidence: conf,
		})
	}
	return words
}

// assignLines numbers words by text line for engines that only report raw
// bounding boxes. Words whose vertical centers fall within half the taller
// box's height are considered the same line.
func assignLines(words []Word) []Word {
	if len(words) == 0 {
		return words
	}

	type centered struct {
		idx    int
		center int
		height int
	}
	cs := make([]centered, len(words))
	for i, w := range words {
		cs[i] = centered{idx: i, center: w.Top + w.Height/2, height: w.Height}
	}
	// Stable walk in reading order: top-to-bottom, then left-to-right.
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1].center > cs[j].center; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}

	line := 1
	prev := cs[0]
	out := make([]Word, len(words))
	copy(out, words)
	out[prev.idx].LineNum = line
	for _, c := range cs[1:] {
		tol := prev.height
		if c.height > tol {
			tol = c.height
		}
		if c.center-prev.center > tol/2 {
			line++
		}
		out[c.idx].LineNum = line
		prev = c
	}
	return out
}
