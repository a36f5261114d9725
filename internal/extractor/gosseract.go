package extractor

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine performs OCR in-process through the gosseract client,
// avoiding the tesseract binary round-trip. A fresh client is created per
// call; gosseract clients are not safe for reuse across configurations.
type GosseractEngine struct {
	Lang string // defaults to "eng"
}

func (GosseractEngine) Name() string { return "gosseract" }

func (e GosseractEngine) lang() string {
	if e.Lang != "" {
		return e.Lang
	}
	return "eng"
}

func (e GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.lang()); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

func (e GosseractEngine) Words(ctx context.Context, imagePath string) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.lang()); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Left:       b.Box.Min.X,
			Top:        b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
			Confidence: b.Confidence,
		})
	}
	// Tesseract's TSV mode numbers lines for us; here we have to rebuild
	// them from the box geometry.
	return assignLines(words), nil
}

func (e GosseractEngine) RecognizeDigits(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.lang()); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := c.SetWhitelist("0123456789 -"); err != nil {
		return "", fmt.Errorf("set whitelist: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize digits: %w", err)
	}
	return text, nil
}

// NewEngine returns the OCR engine for an --ocr-engine flag value.
func NewEngine(name, lang string, extraArgs []string, runner Runner) (Engine, error) {
	switch name {
	case "", "tesseract":
		return TesseractCLI{Lang: lang, Args: extraArgs, Runner: runner}, nil
	case "gosseract":
		return GosseractEngine{Lang: lang}, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q (want tesseract or gosseract)", name)
	}
}
