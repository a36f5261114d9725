package audio

import (
	"context"
	"fmt"
	"os"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

// M4AEmbedder writes the covr atom of MP4-family files through the
// external AtomicParsley tool.
type M4AEmbedder struct {
	Binary string // defaults to "AtomicParsley", overridable via ATOMICPARSLEY
	Runner extractor.Runner
}

func (e M4AEmbedder) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	if env := os.Getenv("ATOMICPARSLEY"); env != "" {
		return env
	}
	return "AtomicParsley"
}

// EmbedCover replaces any existing artwork with a single PSP-safe JPEG
// cover, rewriting the file in place.
func (e M4AEmbedder) EmbedCover(ctx context.Context, path string, cover []byte, maxDim, quality int) error {
	jpg, err := MakePSPJPEG(cover, maxDim, quality)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "cover-*.jpg")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(jpg); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cover temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	_, stderr, err := e.Runner.Run(ctx, e.binary(),
		path,
		"--artwork", "REMOVE_ALL",
		"--artwork", tmpPath,
		"--overWrite",
	)
	if err != nil {
		return fmt.Errorf("AtomicParsley failed on %q: %w (stderr: %s)", path, err, stderr)
	}
	return nil
}
