package extractor

import (
	"regexp"
	"strings"
)

var dumpControlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)

// CleanPageText tidies raw OCR output for dumping: control characters
// removed, line endings normalized, trailing spaces stripped, and runs of
// blank lines collapsed to one. Always ends with a single newline.
func CleanPageText(raw string) string {
	text := dumpControlChars.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}
