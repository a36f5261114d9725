package paysummary

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

// currencyToken matches currency-like numbers: optional sign, optional
// thousands separators, optional two-decimal fraction.
var currencyToken = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)

var hasLetter = regexp.MustCompile(`[A-Za-z]`)

// parseAmount converts "1,234.56" to 1234.56.
func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// SplitCategoryAmounts heuristically parses a line that ends with two
// currency-like numbers into (category, current-month, year-to-date).
// ok is false when the line has fewer than two numeric tokens or the
// leading text has no letters.
//
// This is a greedy rightmost-two-numbers rule. A label that itself ends in
// digits (a year range, say) can in principle misparse when only two
// numeric groups precede the real amounts; that hazard is inherited from
// the document family and deliberately left unguarded.
func SplitCategoryAmounts(line string) (category string, current, yearToDate float64, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", 0, 0, false
	}

	nums := currencyToken.FindAllString(line, -1)
	if len(nums) < 2 {
		return "", 0, 0, false
	}

	cur, err := parseAmount(nums[len(nums)-2])
	if err != nil {
		return "", 0, 0, false
	}
	ytd, err := parseAmount(nums[len(nums)-1])
	if err != nil {
		return "", 0, 0, false
	}

	// Strip the trailing two number tokens to isolate the label. The
	// common case has them adjacent at the end of the line; otherwise peel
	// them off one at a time from the right.
	head := line
	tail := nums[len(nums)-2] + " " + nums[len(nums)-1]
	if strings.HasSuffix(line, tail) {
		head = strings.TrimRight(line[:len(line)-len(tail)], " ")
	} else {
		if i := strings.LastIndex(head, nums[len(nums)-1]); i >= 0 {
			head = strings.TrimRight(head[:i], " ")
		}
		if i := strings.LastIndex(head, nums[len(nums)-2]); i >= 0 {
			head = strings.TrimRight(head[:i], " ")
		}
	}

	if !hasLetter.MatchString(head) {
		return "", 0, 0, false
	}

	head = collapseSpaces(head)
	head = strings.Trim(head, ":-–— ")
	return NormalizeCategory(head), cur, ytd, true
}

// GroupCategories parses group-level categories from the first two pages
// (the summary pages), dropping boilerplate lines. Later occurrences of a
// category overwrite earlier ones; first-seen order is kept.
func GroupCategories(pages []string) []models.CategoryRow {
	seen := make(map[string]int)
	var rows []models.CategoryRow

	for pi := 0; pi < 2 && pi < len(pages); pi++ {
		for _, raw := range strings.Split(pages[pi], "\n") {
			cat, cur, ytd, ok := SplitCategoryAmounts(raw)
			if !ok {
				continue
			}
			if IsMetaCategory(cat) || strings.Contains(strings.ToUpper(cat), "BROOKLIN MEDICAL CENTRE") {
				continue
			}
			row := models.CategoryRow{Category: cat, CurrentMonth: cur, YearToDate: ytd}
			if i, dup := seen[cat]; dup {
				rows[i] = row
				continue
			}
			seen[cat] = len(rows)
			rows = append(rows, row)
		}
	}
	return rows
}
