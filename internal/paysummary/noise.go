package paysummary

import (
	"regexp"
	"strings"
	"unicode"
)

var unicodePunct = strings.NewReplacer(
	"—", "-", // em dash
	"–", "-", // en dash
	"‐", "-",
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
	" ", " ",
)

// NormalizeUnicodePunct folds the unicode punctuation OCR tends to emit
// down to plain ASCII.
func NormalizeUnicodePunct(s string) string {
	return unicodePunct.Replace(s)
}

var (
	punctOnly = regexp.MustCompile(`^[~*_\-\s\[\]\(\)\|=\\/]+$`)
	junkRun   = regexp.MustCompile(`~{3,}|\*{3,}|_{3,}|\-{5,}`)
	scOnly    = regexp.MustCompile(`^[SC\s]+$`)
)

// LooksLikeNoise reports whether a line is decorative or garbled: pure
// punctuation, long rules, S/C-only OCR junk of length 6+, or a line
// whose alphanumeric ratio is below 0.15.
func LooksLikeNoise(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return true
	}
	if punctOnly.MatchString(s) {
		return true
	}
	if junkRun.MatchString(s) {
		return true
	}
	up := strings.ToUpper(s)
	if scOnly.MatchString(up) && len(strings.ReplaceAll(up, " ", "")) >= 6 {
		return true
	}
	alnum := 0
	runes := []rune(s)
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return float64(alnum)/float64(len(runes)) < 0.15
}

// CleanText drops decorative and garbled lines, normalizes punctuation and
// collapses run-on whitespace, while preserving page breaks.
func CleanText(raw string) string {
	pages := strings.Split(raw, "\f")
	cleaned := make([]string, 0, len(pages))
	for _, pg := range pages {
		var out []string
		for _, ln := range strings.Split(pg, "\n") {
			ln = NormalizeUnicodePunct(ln)
			ln = collapseSpaces(ln)
			if ln == "" || LooksLikeNoise(ln) {
				continue
			}
			out = append(out, ln)
		}
		cleaned = append(cleaned, strings.Join(out, "\n"))
	}
	return strings.Join(cleaned, "\n\f\n")
}
