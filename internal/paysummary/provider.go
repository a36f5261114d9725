package paysummary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
	nonNameChars  = regexp.MustCompile(`[^A-Za-z\s\-']`)
	wordToken     = regexp.MustCompile(`^[A-Za-z][A-Za-z\-']*$`)
	scJunkToken   = regexp.MustCompile(`^[scSC]{2,}$`)
	nonLetters    = regexp.MustCompile(`[^A-Z]+`)
	upperWords    = regexp.MustCompile(`[A-Z]+`)
	pageNumberRE  = regexp.MustCompile(`(?i)Page:\s*(\d+)\s+of\s+\d+`)
	idDigitsRE    = regexp.MustCompile(`\b(\d{5,})\b`)
	nonDigit      = regexp.MustCompile(`\D`)
	richDigitsRE  = regexp.MustCompile(`[0-9][0-9\s:\-\.]{4,}[0-9]`)
	nameSplitRE   = regexp.MustCompile(`[^A-Za-z]+`)
)

func stripControlChars(s string) string {
	return controlChars.ReplaceAllString(s, " ")
}

// CleanProviderName scrubs OCR noise from a provider name candidate. It
// strips non-letter punctuation, drops S/C-run junk and single-letter
// tokens, keeps at most the first four tokens, and title-cases with Mc
// handling. An empty string means the candidate was not a plausible name
// (fewer than two usable tokens).
func CleanProviderName(cand string) string {
	clean := nonNameChars.ReplaceAllString(cand, " ")
	clean = collapseSpaces(clean)
	if clean == "" {
		return ""
	}
	var tokens []string
	for _, tok := range strings.Split(clean, " ") {
		if !wordToken.MatchString(tok) {
			continue
		}
		if scJunkToken.MatchString(tok) {
			continue
		}
		// Single letters are header bleed or OCR shrapnel, wherever they
		// fall in the candidate.
		if len(tok) == 1 {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) < 2 {
		return ""
	}
	if len(tokens) > 4 {
		tokens = tokens[:4]
	}
	for i, t := range tokens {
		tokens[i] = fixNameCase(t)
	}
	return strings.Join(tokens, " ")
}

func fixNameCase(t string) string {
	if len(t) >= 3 && strings.EqualFold(t[:2], "mc") {
		return "Mc" + titleCase(t[2:])
	}
	return titleCase(t)
}

func titleCase(t string) string {
	if t == "" {
		return t
	}
	return strings.ToUpper(t[:1]) + strings.ToLower(t[1:])
}

// canonNameForMatch reduces a provider name to uppercase letters with
// collapsed spacing, for fuzzy equality across OCR runs.
func canonNameForMatch(name string) string {
	name = strings.ToUpper(name)
	name = nonLetters.ReplaceAllString(name, " ")
	return collapseSpaces(name)
}

// nameTokens splits a provider name into its letter-only tokens of length
// two or more.
func nameTokens(name string) []string {
	var out []string
	for _, t := range nameSplitRE.Split(name, -1) {
		if len(t) >= 2 {
			out = append(out, t)
		}
	}
	return out
}

// ProviderFromPage finds the provider name on an OCR page by scanning the
// lines above "NETWORK BASE RATE PAYMENT". Returns "Unknown Provider" when
// nothing plausible survives cleaning.
func ProviderFromPage(pageText string) string {
	norm := stripControlChars(pageText)
	lines := strings.Split(norm, "\n")

	idx := -1
	for i, ln := range lines {
		if strings.Contains(strings.ToUpper(ln), "NETWORK BASE RATE PAYMENT") {
			idx = i
			break
		}
	}
	if idx == -1 {
		// Fallback: any early line with letters and a sane length.
		for _, ln := range lines[:min(10, len(lines))] {
			cand := strings.TrimSpace(ln)
			if hasLetter.MatchString(cand) && len(cand) <= 60 {
				idx = 0
				break
			}
		}
	}

	var name string
	for j := max(0, idx-6); j < idx; j++ {
		if cleaned := CleanProviderName(strings.TrimSpace(lines[j])); cleaned != "" {
			name = cleaned
		}
	}
	if name == "" {
		return "Unknown Provider"
	}
	return name
}

// ParseProviderPage parses one OCR provider page into the provider name
// and its category rows, with boilerplate lines filtered out.
func ParseProviderPage(pageText string) (string, []models.CategoryRow) {
	provider := ProviderFromPage(pageText)
	var rows []models.CategoryRow
	for _, raw := range strings.Split(pageText, "\n") {
		cat, cur, ytd, ok := SplitCategoryAmounts(raw)
		if !ok {
			continue
		}
		up := strings.ToUpper(cat)
		if IsMetaCategory(cat) || strings.Contains(up, "BROOKLIN MEDICAL CENTRE") {
			continue
		}
		rows = append(rows, models.CategoryRow{Category: cat, CurrentMonth: cur, YearToDate: ytd})
	}
	return provider, rows
}

// ProviderNameAndIDFromDecoded reads the provider name, and opportunistically
// an ID, from a decoded provider page. The name follows the "GROUP PAYMENTS
// TO PROVIDER" heading; the ID is only present when the text layer decoded
// its digits, so "" is the common case.
func ProviderNameAndIDFromDecoded(pageText string) (name, id string) {
	norm := stripControlChars(pageText)

	var lines []string
	for _, ln := range strings.Split(norm, "\n") {
		if ln = collapseSpaces(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	// Letter-only uppercase projections for header matching.
	upper := make([]string, len(lines))
	for i, ln := range lines {
		upper[i] = strings.Join(upperWords.FindAllString(strings.ToUpper(ln), -1), " ")
	}

	nameIdx := -1
	for i, up := range upper {
		if !containsAll(up, "GROUP", "PAYMENTS", "TO", "PROVIDER") {
			continue
		}
		for j := i + 1; j < min(i+8, len(lines)); j++ {
			if strings.Contains(upper[j], "CURRENT MONTH") && strings.Contains(upper[j], "YEAR TO DATE") {
				continue
			}
			if clean := CleanProviderName(lines[j]); clean != "" {
				name = clean
				nameIdx = j
				break
			}
		}
		break
	}
	if name == "" {
		if name = CleanProviderName(norm); name == "" {
			name = "Unknown Provider"
		}
	}

	if nameIdx >= 0 {
		for k := max(0, nameIdx-1); k < min(len(lines), nameIdx+4); k++ {
			ln := lines[k]
			// Amount lines carry two big currency numbers; skip them.
			if len(currencyToken.FindAllString(ln, -1)) >= 2 {
				continue
			}
			if m := idDigitsRE.FindStringSubmatch(ln); m != nil {
				id = m[1]
				break
			}
		}
	}
	return name, id
}

func containsAll(s string, words ...string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

// PageNumber extracts the "Page: X of Y" footer page number, or 0.
func PageNumber(pageText string) int {
	m := pageNumberRE.FindStringSubmatch(pageText)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FindSummaryPages returns the decoded page indices that hold a provider
// summary section for the named provider.
func FindSummaryPages(decodedPages []string, providerName string) []int {
	toks := nameTokens(strings.ToUpper(providerName))
	var indices []int
	for idx, pg := range decodedPages {
		up := strings.ToUpper(stripControlChars(pg))
		up = strings.ReplaceAll(up, "=", " ")
		if !strings.Contains(up, "PROVIDER SUMMARY") && !strings.Contains(up, "GROUP PAYMENTS TO PROVIDER TOTAL") {
			continue
		}
		all := true
		for _, tok := range toks {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(tok) + `\b`)
			if err != nil || !re.MatchString(up) {
				all = false
				break
			}
		}
		if all {
			indices = append(indices, idx)
		}
	}
	return indices
}

// tolerantNamePattern builds a case-insensitive regexp fragment matching
// the provider name tokens in order with flexible separators.
func tolerantNamePattern(providerName string, allowComma bool) (string, error) {
	toks := nameTokens(providerName)
	if len(toks) == 0 {
		return "", fmt.Errorf("no usable name tokens in %q", providerName)
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = regexp.QuoteMeta(t)
	}
	sep := `\s+`
	if allowComma {
		sep = `\s*,?\s*`
	}
	return `\b` + strings.Join(parts, sep) + `\b`, nil
}
