package paysummary

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

func TestBuildIDMap(t *testing.T) {
	pages := []string{
		"header noise\n" +
			"LIBBY, THOMAS  010255 | PROVIDER SUMMARY TOTAL 9,385.61 38,370.25\n",
		"MCDONALD, ANGUS 445566 | GROUP PAYMENTS TO PROVIDER TOTAL 1.00 2.00\n" +
			"some line with PROVIDER SUMMARY TOTAL but no id\n",
	}
	idMap := BuildIDMap(pages)
	if len(idMap) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(idMap), idMap)
	}
	if idMap[canonNameForMatch("LIBBY, THOMAS")] != "010255" {
		t.Errorf("libby: %v", idMap)
	}
	if idMap[canonNameForMatch("MCDONALD, ANGUS")] != "445566" {
		t.Errorf("mcdonald: %v", idMap)
	}
}

func TestIDFromOCRPages(t *testing.T) {
	pages := []string{
		"nothing relevant\n",
		"Libby Thomas 010255 NETWORK BASE RATE PAYMENT\n",
	}
	id, err := IDFromOCRPages(pages, "Libby Thomas")
	if err != nil {
		t.Fatalf("IDFromOCRPages: %v", err)
	}
	if id != "010255" {
		t.Errorf("id = %q", id)
	}

	if _, err := IDFromOCRPages(pages, "Nobody Here"); err == nil {
		t.Error("expected error for absent provider")
	}
}

func TestIDFromOCRPagesSpacedDigits(t *testing.T) {
	pages := []string{"Libby Thomas 01 02-55 total\n"}
	id, err := IDFromOCRPages(pages, "Libby Thomas")
	if err != nil {
		t.Fatalf("IDFromOCRPages: %v", err)
	}
	if id != "010255" {
		t.Errorf("id = %q", id)
	}
}

func TestIDFromDecodedSummary(t *testing.T) {
	// Decoded summary lines carry '=' delimiters and no comma in the name.
	page := "LIBBY THOMAS = 010255 = GROUP PAYMENTS TO PROVIDER TOTAL = 1 00 = 2 00\n"
	id, err := IDFromDecodedSummary(page, "Libby Thomas")
	if err != nil {
		t.Fatalf("IDFromDecodedSummary: %v", err)
	}
	if id != "010255" {
		t.Errorf("id = %q", id)
	}

	if _, err := IDFromDecodedSummary("no summary here\n", "Libby Thomas"); err == nil {
		t.Error("expected error without summary total")
	}
}

func TestIDFromOCRSummary(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"spaced digits", "LIBBY, THOMAS 01 02 55 PROVIDER SUMMARY TOTAL 1.00", "010255"},
		{"plain digits", "LIBBY THOMAS 010255 PROVIDER SUMMARY TOTAL 1.00", "010255"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := IDFromOCRSummary(tt.page, "Libby Thomas")
			if err != nil {
				t.Fatalf("IDFromOCRSummary: %v", err)
			}
			if id != tt.want {
				t.Errorf("id = %q, want %q", id, tt.want)
			}
		})
	}
}

func nameWords() []extractor.Word {
	return []extractor.Word{
		{Text: "Libby", Left: 100, Top: 200, Width: 60, Height: 20, LineNum: 4},
		{Text: "Thomas", Left: 170, Top: 200, Width: 80, Height: 20, LineNum: 4},
		{Text: "Network", Left: 100, Top: 300, Width: 90, Height: 20, LineNum: 7},
	}
}

func TestNameBBox(t *testing.T) {
	box, ok := NameBBox(nameWords(), "Libby Thomas")
	if !ok {
		t.Fatal("name not found")
	}
	want := image.Rect(100, 200, 250, 220)
	if box != want {
		t.Errorf("box = %v, want %v", box, want)
	}
}

func TestIDNearName(t *testing.T) {
	words := append(nameWords(),
		extractor.Word{Text: "010255", Left: 300, Top: 205, Width: 70, Height: 20, LineNum: 4},
		// In band but left of the name; loses to the right-side token.
		extractor.Word{Text: "999999", Left: 10, Top: 205, Width: 70, Height: 20, LineNum: 4},
		// Outside the vertical band.
		extractor.Word{Text: "888888", Left: 300, Top: 500, Width: 70, Height: 20, LineNum: 9},
	)
	id, err := IDNearName(words, "Libby Thomas")
	if err != nil {
		t.Fatalf("IDNearName: %v", err)
	}
	if id != "010255" {
		t.Errorf("id = %q", id)
	}
}

func TestIDNearNameNoDigits(t *testing.T) {
	if _, err := IDNearName(nameWords(), "Libby Thomas"); err == nil {
		t.Error("expected error with no digit tokens in band")
	}
}

func TestCropRightOfName(t *testing.T) {
	box := image.Rect(100, 200, 250, 220)
	crop := CropRightOfName(box)
	want := image.Rect(255, 160, 1050, 420)
	if crop != want {
		t.Errorf("crop = %v, want %v", crop, want)
	}
}

type digitEngine struct {
	text string
	path string
}

func (e *digitEngine) Name() string { return "stub" }

func (e *digitEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	return "", nil
}

func (e *digitEngine) Words(ctx context.Context, imagePath string) ([]extractor.Word, error) {
	return nil, nil
}

func (e *digitEngine) RecognizeDigits(ctx context.Context, imagePath string) (string, error) {
	e.path = imagePath
	return e.text, nil
}

func TestDigitsFromCrop(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "page.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 400, 300))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	eng := &digitEngine{text: "junk 01-02 55 and 1234567 end"}
	got, err := DigitsFromCrop(context.Background(), eng, imgPath, image.Rect(50, 50, 200, 150))
	if err != nil {
		t.Fatalf("DigitsFromCrop: %v", err)
	}
	if len(got) != 2 || got[0] != "1234567" || got[1] != "010255" {
		t.Errorf("digits = %v", got)
	}
	if eng.path == "" {
		t.Error("engine never saw a crop image")
	}
}

func TestDigitsFromCropOutsideBounds(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "page.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 50, 50))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := DigitsFromCrop(context.Background(), &digitEngine{}, imgPath, image.Rect(500, 500, 600, 600)); err == nil {
		t.Error("expected error for crop outside image bounds")
	}
}
