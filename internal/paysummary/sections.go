package paysummary

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

// Decoded text encodes number punctuation as control characters:
// \x0f thousands separator, \x11 decimal point, \x10 minus sign.
var decodedNumReplacer = strings.NewReplacer("\x0f", ",", "\x11", ".", "\x10", "-")

var (
	groupedDecimalRE = regexp.MustCompile(`^(-?\d+(?:\s\d{3})+)\s(\d{2})$`)
	plainDecimalRE   = regexp.MustCompile(`^(-?\d+)\s+(\d{2})$`)
	nonAmountChars   = regexp.MustCompile(`[^0-9.\-]`)
)

// DecodedAmount parses a numeric token from decoded text, reconstructing
// decimals that arrive as a space-separated trailing two-digit group,
// e.g. "38 370 25" is 38370.25.
func DecodedAmount(token string) (float64, bool) {
	if token == "" {
		return 0, false
	}
	s := strings.TrimSpace(decodedNumReplacer.Replace(token))
	if !strings.Contains(s, ".") {
		if m := groupedDecimalRE.FindStringSubmatch(s); m != nil {
			intPart := spaceRun.ReplaceAllString(m[1], "")
			if v, err := strconv.ParseFloat(intPart+"."+m[2], 64); err == nil {
				return v, true
			}
		}
		if m := plainDecimalRE.FindStringSubmatch(s); m != nil {
			if v, err := strconv.ParseFloat(m[1]+"."+m[2], 64); err == nil {
				return v, true
			}
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = nonAmountChars.ReplaceAllString(s, "")
	switch s {
	case "", "-", ".", "-.":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var (
	totalPaymentDirectRE = regexp.MustCompile(`(?is)TOTAL\s+PAYMENT[^=]*=\s*[A-Z][^=]*=\s*([0-9\x0f\x11\s]+)\s*=\s*(\d{4}(?:\x10|-)\d{2}(?:\x10|-)\d{2})`)
	encodedDateRE        = regexp.MustCompile(`\d{4}\x10\d{2}\x10\d{2}`)
	spacedDateRE         = regexp.MustCompile(`^(\d{4})\s+(\d{2})\s+(\d{2})$`)
	dashedDateRE         = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// TotalPaymentAB extracts the TOTAL PAYMENT A B amount and payment date
// from the decoded first page. Three attempts, most to least structured:
// a direct capture of the "= amount = date" tail, an '='-split of the
// TOTAL PAYMENT line, and finally the largest parseable token on it.
// found is false only if no amount and no date could be recovered.
func TotalPaymentAB(firstPageDecoded string) (date string, amount float64, found bool) {
	src := firstPageDecoded
	if m := totalPaymentDirectRE.FindStringSubmatch(src); m != nil {
		amt, ok := DecodedAmount(m[1])
		if ok {
			amount = amt
		}
		return strings.ReplaceAll(m[2], "\x10", "-"), amount, true
	}

	for _, ln := range strings.Split(src, "\n") {
		up := strings.ToUpper(ln)
		if !strings.Contains(up, "TOTAL") || !strings.Contains(up, "PAYMENT") {
			continue
		}
		parts := strings.Split(ln, "=")
		if len(parts) < 3 {
			continue
		}
		rawAmt := strings.TrimSpace(parts[len(parts)-2])
		rawDate := strings.TrimSpace(parts[len(parts)-1])
		amt, amtOK := DecodedAmount(rawAmt)
		var dateNorm string
		if encodedDateRE.MatchString(rawDate) && len(rawDate) == 10 {
			dateNorm = strings.ReplaceAll(rawDate, "\x10", "-")
		} else if m := spacedDateRE.FindStringSubmatch(strings.TrimSpace(stripControlChars(rawDate))); m != nil {
			dateNorm = m[1] + "-" + m[2] + "-" + m[3]
		}
		if dateNorm != "" || amtOK {
			if amtOK {
				amount = amt
			}
			return dateNorm, amount, true
		}
	}

	clean := stripControlChars(src)
	for _, ln := range strings.Split(clean, "\n") {
		up := strings.ToUpper(ln)
		if !strings.Contains(up, "TOTAL") || !strings.Contains(up, "PAYMENT") {
			continue
		}
		if m := encodedDateRE.FindString(ln); m != "" {
			date = strings.ReplaceAll(m, "\x10", "-")
		}
		var best float64
		var any bool
		for _, p := range strings.Split(ln, "=") {
			if v, ok := DecodedAmount(strings.TrimSpace(p)); ok && (!any || v > best) {
				best, any = v, true
			}
		}
		return date, best, any || date != ""
	}

	// Last resort: any date-looking token on the page.
	if all := encodedDateRE.FindAllString(clean, -1); len(all) > 0 {
		return strings.ReplaceAll(all[len(all)-1], "\x10", "-"), 0, true
	}
	if all := dashedDateRE.FindAllString(clean, -1); len(all) > 0 {
		return all[len(all)-1], 0, true
	}
	return "", 0, false
}

// GroupSections walks the decoded pages and collects group-level payment
// rows for the four section kinds the report carries. A section's rows only
// start after its CURRENT MONTH / YEAR TO DATE matrix header; rows are
// '='-separated triples, and TOTAL rows are excluded. Provider pages reset
// the state.
func GroupSections(decodedPages []string) []models.SectionRow {
	var out []models.SectionRow
	var paymentType string
	expectMatrix := false

	for _, pg := range decodedPages {
		for _, raw := range strings.Split(pg, "\n") {
			ln := stripControlChars(raw)
			up := strings.ToUpper(ln)

			switch {
			case strings.Contains(up, "GROUP PAYMENTS TO PROVIDER"):
				paymentType = ""
				expectMatrix = false
				continue
			case strings.Contains(up, "GROUP PAYMENTS ALL PROVIDERS"):
				paymentType = "GROUP PAYMENTS ALL PROVIDERS"
				expectMatrix = false
				continue
			case strings.Contains(up, "SUMMARY") && strings.Contains(up, "ALL PROVIDERS"):
				paymentType = "SUMMARY ALL PROVIDERS"
				expectMatrix = false
				continue
			}

			hasMatrixHeader := strings.Contains(up, "CURRENT MONTH") && strings.Contains(up, "YEAR TO DATE")
			if strings.Contains(up, "GROUP PAYMENTS") && !strings.Contains(up, "EXCEPTION") {
				paymentType = "GROUP PAYMENTS"
				expectMatrix = hasMatrixHeader || expectMatrix
				continue
			}
			if strings.Contains(up, "EXCEPTION PAYMENTS") {
				paymentType = "EXCEPTION PAYMENTS"
				expectMatrix = hasMatrixHeader || expectMatrix
				continue
			}
			if paymentType != "" && hasMatrixHeader {
				expectMatrix = true
				continue
			}
			if paymentType == "" || !expectMatrix {
				continue
			}

			if row, ok := matrixRow(ln, paymentType); ok {
				out = append(out, row)
			}
		}
	}
	return out
}

// ProviderSectionRows parses the '='-separated rows of one named section
// on a decoded provider page. sectionName is "GROUP PAYMENTS TO PROVIDER"
// or "PROVIDER SUMMARY".
func ProviderSectionRows(pageText, sectionName string) []models.CategoryRow {
	var rows []models.CategoryRow
	expectMatrix := false
	for _, raw := range strings.Split(pageText, "\n") {
		ln := stripControlChars(raw)
		up := strings.ToUpper(ln)
		if strings.Contains(up, sectionName) {
			expectMatrix = false
			continue
		}
		if strings.Contains(up, "CURRENT MONTH") && strings.Contains(up, "YEAR TO DATE") {
			expectMatrix = true
			continue
		}
		if !expectMatrix {
			continue
		}
		if row, ok := matrixRow(ln, ""); ok {
			rows = append(rows, models.CategoryRow{Category: row.Label, CurrentMonth: row.CurrentMonth, YearToDate: row.YearToDate})
		}
	}
	return rows
}

func matrixRow(raw, paymentType string) (models.SectionRow, bool) {
	if !strings.Contains(raw, "=") {
		return models.SectionRow{}, false
	}
	parts := strings.Split(raw, "=")
	if len(parts) < 3 {
		return models.SectionRow{}, false
	}
	label := NormalizeCategory(strings.TrimSpace(parts[0]))
	if strings.Contains(strings.ToUpper(label), "TOTAL") {
		return models.SectionRow{}, false
	}
	cur, okCur := DecodedAmount(strings.TrimSpace(parts[len(parts)-2]))
	ytd, okYTD := DecodedAmount(strings.TrimSpace(parts[len(parts)-1]))
	if !okCur || !okYTD {
		return models.SectionRow{}, false
	}
	return models.SectionRow{PaymentType: paymentType, Label: label, CurrentMonth: cur, YearToDate: ytd}, true
}
