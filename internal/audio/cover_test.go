package audio

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestMakePSPJPEG(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		maxDim       int
		wantW, wantH int
	}{
		{"wide downscale", 600, 300, 300, 300, 150},
		{"tall downscale", 300, 600, 300, 150, 300},
		{"small untouched", 100, 50, 300, 100, 50},
		{"square at limit", 300, 300, 300, 300, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MakePSPJPEG(pngBytes(t, tt.srcW, tt.srcH), tt.maxDim, 85)
			if err != nil {
				t.Fatal(err)
			}
			img, format, err := image.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output not decodable: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("format = %q", format)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestMakePSPJPEGBadInput(t *testing.T) {
	if _, err := MakePSPJPEG([]byte("not an image"), 300, 85); err == nil {
		t.Error("expected decode error")
	}
}

func TestFindCover(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "track.mp3")
	if err := os.WriteFile(track, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := FindCover(track); got != nil {
		t.Errorf("empty dir: got %d bytes", len(got))
	}

	if err := os.WriteFile(filepath.Join(dir, "other.jpg"), []byte("glob"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FindCover(track); string(got) != "glob" {
		t.Errorf("glob fallback: got %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("cover"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FindCover(track); string(got) != "cover" {
		t.Errorf("cover.jpg: got %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "track.jpg"), []byte("same-name"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FindCover(track); string(got) != "same-name" {
		t.Errorf("same-name: got %q", got)
	}
}

func TestListAudioFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "album")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.mp3", "b.m4a", "notes.txt", "album/c.MP3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	flat, err := ListAudioFiles(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 2 {
		t.Errorf("flat = %v", flat)
	}

	deep, err := ListAudioFiles(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(deep) != 3 {
		t.Errorf("deep = %v", deep)
	}

	single, err := ListAudioFiles(filepath.Join(dir, "a.mp3"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(single) != 1 {
		t.Errorf("single = %v", single)
	}

	none, err := ListAudioFiles(filepath.Join(dir, "notes.txt"), false)
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("unsupported file = %v", none)
	}
}
