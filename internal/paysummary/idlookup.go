package paysummary

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
)

// Provider IDs rarely survive a single extraction path: the text layer
// encodes its digits, and OCR mangles them under the summary-table rules.
// The lookups below are ordered cheapest first; BuildHybridReport walks
// them until one yields digits.

var (
	idMapLineRE   = regexp.MustCompile(`(?i)^(.+?)\s+(\d{5,})\s*\|\s*(GROUP PAYMENTS TO PROVIDER TOTAL|PROVIDER SUMMARY TOTAL)`)
	strictDigits  = regexp.MustCompile(`^[0-9]{6,}$`)
	digitChunksRE = regexp.MustCompile(`[0-9][0-9 \-]{4,}[0-9]`)
)

// BuildIDMap scans OCR pages for summary-total lines of the form
// "LIBBY, THOMAS  010255 | PROVIDER SUMMARY TOTAL ..." and maps
// canonicalized provider names to their IDs.
func BuildIDMap(ocrPages []string) map[string]string {
	idMap := make(map[string]string)
	for _, pg := range ocrPages {
		for _, raw := range strings.Split(pg, "\n") {
			u := strings.ToUpper(raw)
			if !strings.Contains(u, "PROVIDER SUMMARY TOTAL") && !strings.Contains(u, "GROUP PAYMENTS TO PROVIDER TOTAL") {
				continue
			}
			m := idMapLineRE.FindStringSubmatch(raw)
			if m == nil {
				continue
			}
			canon := canonNameForMatch(strings.TrimSpace(m[1]))
			if canon != "" && m[2] != "" {
				idMap[canon] = m[2]
			}
		}
	}
	return idMap
}

// IDFromOCRPages is the lenient scan: any OCR line carrying all the name
// tokens and a 5+ digit chunk yields that chunk's digits.
func IDFromOCRPages(ocrPages []string, providerName string) (string, error) {
	toks := nameTokens(providerName)
	if len(toks) == 0 {
		return "", fmt.Errorf("no usable name tokens in %q", providerName)
	}
	for _, pg := range ocrPages {
		for _, raw := range strings.Split(pg, "\n") {
			lineUp := strings.ToUpper(raw)
			if !lineHasAllTokens(lineUp, toks) {
				continue
			}
			m := richDigitsRE.FindString(raw)
			if m == "" {
				if sm := idDigitsRE.FindStringSubmatch(raw); sm != nil {
					m = sm[1]
				}
			}
			if m == "" {
				continue
			}
			digits := nonDigit.ReplaceAllString(m, "")
			if len(digits) >= 5 {
				return digits, nil
			}
		}
	}
	return "", fmt.Errorf("no ID line for %q in OCR text", providerName)
}

func lineHasAllTokens(lineUp string, toks []string) bool {
	for _, t := range toks {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToUpper(t)) + `\b`)
		if err != nil || !re.MatchString(lineUp) {
			return false
		}
	}
	return true
}

// IDFromDecodedSummary reads an ID off a decoded summary page: digits on
// the same stretch as the provider name, before the section total label.
func IDFromDecodedSummary(pageText, providerName string) (string, error) {
	namePat, err := tolerantNamePattern(providerName, false)
	if err != nil {
		return "", err
	}
	pt := strings.ReplaceAll(stripControlChars(pageText), "=", " ")
	re, err := regexp.Compile(`(?is)` + namePat + `.*?\b([0-9]{5,})\b.*?(GROUP\s+PAYMENTS\s+TO\s+PROVIDER\s+TOTAL|PROVIDER\s+SUMMARY\s+TOTAL)`)
	if err != nil {
		return "", err
	}
	if m := re.FindStringSubmatch(pt); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("no decoded summary ID for %q", providerName)
}

// IDFromOCRSummary reads an ID off an OCR summary page's plain text,
// between the provider name and "PROVIDER SUMMARY TOTAL". Tries a
// spaced/dashed digit run first, then plain digits.
func IDFromOCRSummary(pageText, providerName string) (string, error) {
	namePat, err := tolerantNamePattern(providerName, true)
	if err != nil {
		return "", err
	}
	for _, tail := range []string{
		`.*?([0-9][0-9\s:\-\.]{4,}[0-9]).*?PROVIDER\s+SUMMARY\s+TOTAL`,
		`.*?\b([0-9]{5,})\b.*?PROVIDER\s+SUMMARY\s+TOTAL`,
	} {
		re, err := regexp.Compile(`(?is)` + namePat + tail)
		if err != nil {
			return "", err
		}
		if m := re.FindStringSubmatch(pageText); m != nil {
			digits := nonDigit.ReplaceAllString(m[1], "")
			if len(digits) >= 5 {
				return digits, nil
			}
		}
	}
	return "", fmt.Errorf("no OCR summary ID for %q", providerName)
}

// nameLineWords locates the provider name's word line: the median TSV line
// of the tokens that match the name.
func nameLineWords(words []extractor.Word, providerName string) []extractor.Word {
	toks := nameTokens(providerName)
	if len(words) == 0 || len(toks) == 0 {
		return nil
	}
	var nameRows []extractor.Word
	for _, w := range words {
		for _, tok := range toks {
			if strings.EqualFold(strings.TrimSpace(w.Text), tok) {
				nameRows = append(nameRows, w)
				break
			}
		}
	}
	if len(nameRows) == 0 {
		return nil
	}
	lineNums := make([]int, len(nameRows))
	for i, w := range nameRows {
		lineNums[i] = w.LineNum
	}
	sort.Ints(lineNums)
	target := lineNums[len(lineNums)/2]
	var line []extractor.Word
	for _, w := range words {
		if w.LineNum == target {
			line = append(line, w)
		}
	}
	if len(line) == 0 {
		return nameRows
	}
	return line
}

// NameBBox returns the bounding box of the provider name line in page
// pixel coordinates.
func NameBBox(words []extractor.Word, providerName string) (image.Rectangle, bool) {
	line := nameLineWords(words, providerName)
	if len(line) == 0 {
		return image.Rectangle{}, false
	}
	box := image.Rect(line[0].Left, line[0].Top, line[0].Right(), line[0].Bottom())
	for _, w := range line[1:] {
		box = box.Union(image.Rect(w.Left, w.Top, w.Right(), w.Bottom()))
	}
	return box, true
}

// IDNearName probes recognized words for a 6+ digit token within a 40px
// vertical band around the provider name line, preferring tokens to the
// right of the name.
func IDNearName(words []extractor.Word, providerName string) (string, error) {
	box, ok := NameBBox(words, providerName)
	if !ok {
		return "", fmt.Errorf("name %q not found among OCR words", providerName)
	}
	bandTop := max(0, box.Min.Y-40)
	bandBottom := box.Max.Y + 40

	type cand struct {
		text  string
		score int
	}
	var cands []cand
	for _, w := range words {
		txt := strings.TrimSpace(w.Text)
		if !strictDigits.MatchString(txt) {
			continue
		}
		if (bandTop <= w.Top && w.Top <= bandBottom) || (bandTop <= w.Bottom() && w.Bottom() <= bandBottom) {
			cands = append(cands, cand{text: txt, score: w.Left - box.Max.X})
		}
	}
	if len(cands) == 0 {
		return "", fmt.Errorf("no digit token near %q", providerName)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return bandRank(cands[i].score) < bandRank(cands[j].score)
	})
	return cands[0].text, nil
}

// bandRank orders candidates by proximity, with left-of-name pushed far
// behind anything to the right.
func bandRank(score int) int {
	if score >= 0 {
		return score
	}
	return -score + 10000
}

// DigitsFromCrop crops a region out of a page image, re-OCRs it with a
// digit whitelist, and returns the 6+ digit runs found, longest first.
func DigitsFromCrop(ctx context.Context, eng extractor.Engine, imagePath string, crop image.Rectangle) ([]string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open page image: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}

	crop = crop.Intersect(img.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("crop %v outside image bounds %v", crop, img.Bounds())
	}

	sub := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := 0; y < crop.Dy(); y++ {
		for x := 0; x < crop.Dx(); x++ {
			sub.Set(x, y, img.At(crop.Min.X+x, crop.Min.Y+y))
		}
	}

	tmp, err := os.CreateTemp("", "id-crop-*.png")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if err := png.Encode(tmp, sub); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	raw, err := eng.RecognizeDigits(ctx, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("re-OCR crop %s: %w", filepath.Base(imagePath), err)
	}

	var out []string
	for _, m := range digitChunksRE.FindAllString(raw, -1) {
		digits := nonDigit.ReplaceAllString(m, "")
		if len(digits) >= 6 {
			out = append(out, digits)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out, nil
}

// CropRightOfName is the probe region for a digit re-OCR: a band starting
// just right of the name box and extending 800px across and well below it.
func CropRightOfName(box image.Rectangle) image.Rectangle {
	return image.Rect(box.Max.X+5, max(0, box.Min.Y-40), box.Max.X+800, box.Max.Y+200)
}
