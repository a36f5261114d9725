package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
)

// EmbedCoverMP3 writes cover as the single front-cover APIC frame of an
// ID3v2.3 tag, removing existing pictures and any trailing APEv2 tag first.
func EmbedCoverMP3(path string, cover []byte, maxDim, quality int) error {
	if err := StripAPETag(path); err != nil {
		return fmt.Errorf("failed to strip APE tag from %q: %w", path, err)
	}

	jpg, err := MakePSPJPEG(cover, maxDim, quality)
	if err != nil {
		return err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open ID3 tag in %q: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		// v2.3 has no UTF-8 text encoding.
		Encoding:    id3v2.EncodingISO,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover (front)",
		Picture:     jpg,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save ID3 tag in %q: %w", path, err)
	}
	return nil
}

var (
	apeMagic  = []byte("APETAGEX")
	id3v1Tag  = []byte("TAG")
	footerLen = int64(32)
)

// StripAPETag removes a trailing APEv2 tag from an MP3, keeping a trailing
// ID3v1 tag in place if one follows the APE tag. No-op when no tag exists.
func StripAPETag(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	// The APE footer sits at EOF, or just before a 128-byte ID3v1 tag.
	var id3v1 []byte
	footerEnd := size
	if size >= 128 {
		buf := make([]byte, 128)
		if _, err := f.ReadAt(buf, size-128); err != nil {
			return err
		}
		if bytes.Equal(buf[:3], id3v1Tag) {
			id3v1 = buf
			footerEnd = size - 128
		}
	}
	if footerEnd < footerLen {
		return nil
	}

	footer := make([]byte, footerLen)
	if _, err := f.ReadAt(footer, footerEnd-footerLen); err != nil {
		return err
	}
	if !bytes.Equal(footer[:8], apeMagic) {
		return nil
	}

	tagSize := int64(binary.LittleEndian.Uint32(footer[12:16]))
	flags := binary.LittleEndian.Uint32(footer[20:24])
	total := tagSize
	if flags&(1<<31) != 0 { // header present; tagSize excludes it
		total += footerLen
	}
	if total <= 0 || total > footerEnd {
		return fmt.Errorf("APE tag size %d out of range for file of %d bytes", total, size)
	}

	cut := footerEnd - total
	if id3v1 != nil {
		if _, err := f.WriteAt(id3v1, cut); err != nil {
			return err
		}
		cut += 128
	}
	return f.Truncate(cut)
}
