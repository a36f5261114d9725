// Package audio embeds PSP-safe album art into MP3 and M4A files. The PSP
// firmware only renders small baseline JPEG covers and crashes on files
// carrying APE tags or multiple pictures, so covers are re-encoded and
// competing tags stripped before embedding.
package audio

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// SupportedAudioExts are the file extensions the embedder processes.
var SupportedAudioExts = map[string]bool{
	".mp3": true,
	".m4a": true,
	".mp4": true,
	".aac": true,
}

// MakePSPJPEG re-encodes an image as a baseline JPEG fitted within
// maxDim x maxDim with aspect ratio preserved, metadata dropped.
func MakePSPJPEG(src []byte, maxDim, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
		img = scaled
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode cover JPEG: %w", err)
	}
	return out.Bytes(), nil
}

// FindCover locates a JPEG cover near an audio file: same-name .jpg/.jpeg
// first, then cover/folder images in the same directory, then any JPEG in
// the directory. Returns nil when nothing is found.
func FindCover(audioPath string) []byte {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	for _, ext := range []string{".jpg", ".jpeg"} {
		if data, err := os.ReadFile(base + ext); err == nil {
			return data
		}
	}
	dir := filepath.Dir(audioPath)
	for _, name := range []string{"cover.jpg", "folder.jpg", "cover.jpeg", "folder.jpeg"} {
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			return data
		}
	}
	for _, pattern := range []string{"*.jpg", "*.jpeg"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, cand := range matches {
			if data, err := os.ReadFile(cand); err == nil {
				return data
			}
		}
	}
	return nil
}

// ListAudioFiles returns the audio files under root. A file root yields
// itself if supported; a directory yields its audio files, descending into
// subdirectories only when recurse is set.
func ListAudioFiles(root string, recurse bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if SupportedAudioExts[strings.ToLower(filepath.Ext(root))] {
			return []string{root}, nil
		}
		return nil, nil
	}

	var out []string
	if recurse {
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && SupportedAudioExts[strings.ToLower(filepath.Ext(path))] {
				out = append(out, path)
			}
			return nil
		})
		return out, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() && SupportedAudioExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(root, e.Name()))
		}
	}
	return out, nil
}
