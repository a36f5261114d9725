package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Span is a run of text drawn with a single font at a single size, in PDF
// user-space coordinates. The glyph inspector dumps these to expose the
// obfuscated code points in the text layer.
type Span struct {
	Font     string
	FontSize float64
	Text     string
	X        float64
	Y        float64
}

// HasReplacement reports whether the span contains U+FFFD, which marks
// glyphs the text layer could not map to Unicode.
func (s Span) HasReplacement() bool {
	return strings.ContainsRune(s.Text, '�')
}

// NumPages returns the page count of a PDF.
func NumPages(filePath string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

// PageSpans returns the text spans of a 1-based page, grouping consecutive
// fragments that share a font and size.
func PageSpans(filePath string, pageNum int) (spans []Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if pageNum < 1 || pageNum > r.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", pageNum, r.NumPage())
	}
	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content", pageNum)
	}

	content := page.Content()
	var cur *Span
	for _, t := range content.Text {
		if cur != nil && t.Font == cur.Font && t.FontSize == cur.FontSize && math.Abs(t.Y-cur.Y) < 0.5 {
			cur.Text += t.S
			continue
		}
		if cur != nil {
			spans = append(spans, *cur)
		}
		cur = &Span{Font: t.Font, FontSize: t.FontSize, Text: t.S, X: t.X, Y: t.Y}
	}
	if cur != nil {
		spans = append(spans, *cur)
	}
	return spans, nil
}

// ExtractTextLayer reads the PDF text layer with the structured library,
// reconstructing rows from text coordinates. Used as the in-process
// fallback when pdftotext is unavailable.
func ExtractTextLayer(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content := page.Content()

		// Group text by Y coordinate (row), allowing small tolerance.
		type textItem struct {
			x float64
			s string
		}
		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y runs bottom-to-top, so rows sort descending.
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var parts []string
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					// A large x gap means a column boundary.
					parts = append(parts, "  ")
				}
				parts = append(parts, item.s)
				prevX = item.x
			}
			line := strings.TrimSpace(strings.Join(parts, ""))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages, nil
}

// textQuality returns the ratio of basic readable characters to total.
// Strict ASCII plus the control codes the decode step repurposes as
// numeric separators; unicode.IsLetter would wave through the garbage
// produced by identity-encoded fonts.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				r == '.' || r == ',' || r == '-' || r == '/' || r == ':' ||
				r == ';' || r == '(' || r == ')' || r == '\'' || r == '"' ||
				r == '$' || r == '%' || r == '#' || r == '=' || r == '|' ||
				r == '\x0f' || r == '\x10' || r == '\x11' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords that appear in every OHIP payment summary. If the decoded
// text contains none of these, the decode went wrong.
var commonWords = []string{
	"payment", "provider", "group", "summary", "total", "period",
	"remittance", "current month", "year to date", "claims payable",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// IsReadableText checks that pages contain enough text, that it is mostly
// readable characters, and that at least one expected report word appears.
func IsReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
