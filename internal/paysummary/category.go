package paysummary

import (
	"regexp"
	"strings"
)

// Canonical category labels (uppercased), keyed by the variants OCR and
// the decode path commonly produce. Normalization is best-effort, not a
// closed vocabulary: labels with no canonical match pass through.
var categoryCanon = map[string]string{
	"ACCESS BONUS PAYMENT":                     "ACCESS BONUS PAYMENT",
	"LTC ACCESS BONUS PAYMENT":                 "LTC ACCESS BONUS PAYMENT",
	"GROUP MANAGEMENT LEADERSHIP PAYMENT":      "GROUP MANAGEMENT LEADERSHIP PAYMENT",
	"OFFICE PRACTICE ADMINISTRATION PAYMENT":   "OFFICE PRACTICE ADMINISTRATION PAYMENT",
	"HCP RELATIVITY PAYMENT":                   "HCP RELATIVITY PAYMENT",
	"RMB RELATIVITY PAYMENT":                   "RMB RELATIVITY PAYMENT",
	"WSIB RELATIVITY PAYMENT":                  "WSIB RELATIVITY PAYMENT",
	"YEAR 1 (2024-2025) COMPENSATION INCREASE": "YEAR 1 (2024-2025) COMPENSATION INCREASE",
	"NETWORK BASE RATE PAYMENT":                "NETWORK BASE RATE PAYMENT",
	"BASE RATE PAYMENT RECONCILIATION ADJMT":   "BASE RATE PAYMENT RECONCILIATION ADJMT",
	"BASE RATE ACUITY PAYMENT":                 "BASE RATE ACUITY PAYMENT",
	"BASE RATE ACUITY ADJUSTMENT":              "BASE RATE ACUITY ADJUSTMENT",
	"COMP CARE CAPITATION":                     "COMP CARE CAPITATION",
	"COMP CARE RECONCILIATION":                 "COMP CARE RECONCILIATION",
	"BLENDED FEE-FOR-SERVICE PREMIUM":          "BLENDED FEE-FOR-SERVICE PREMIUM",
	"BLENDED FEE FOR SERVICE PREMIUM":          "BLENDED FEE-FOR-SERVICE PREMIUM",
	"PREVENTIVE CARE BONUS":                    "PREVENTIVE CARE BONUS",
	"TOTAL CLAIMS PAYABLE":                     "TOTAL CLAIMS PAYABLE",
	"AGE PREMIUM PAYMENT":                      "AGE PREMIUM PAYMENT",
	"SPECIAL PREMIUM PAYMENT":                  "SPECIAL PREMIUM PAYMENT",
}

// metaTokens mark header/footer content that must never be treated as a
// payment category.
var metaTokens = []string{
	"REPORT", "RUN DATE", "PAGE:", "GROUP #", "REMITTANCE",
	"FOR PERIOD", "OHIP PAYMENT SUMMARY",
}

// IsMetaCategory reports whether a label is report boilerplate rather than
// a payment category.
func IsMetaCategory(label string) bool {
	up := strings.ToUpper(label)
	for _, tok := range metaTokens {
		if strings.Contains(up, tok) {
			return true
		}
	}
	return false
}

var (
	spaceRun = regexp.MustCompile(`\s+`)
	// "YEAR 1(2024-2025)COMPENSATION INCREASE" → consistent spacing
	yearCompensation = regexp.MustCompile(`\bYEAR\s*(\d)\s*\((\d{4}-\d{4})\)\s*COMPENSATION\s*INCREASE`)
)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// NormalizeCategory maps a raw label to its canonical form: uppercase,
// dash variants folded, the YEAR compensation line respaced, then an
// exact and a dash-insensitive lookup. Unmatched labels are returned in
// their original trimmed form.
func NormalizeCategory(raw string) string {
	cat := strings.ToUpper(raw)
	cat = strings.ReplaceAll(cat, "—", "-")
	cat = strings.ReplaceAll(cat, "–", "-")
	cat = yearCompensation.ReplaceAllString(cat, "YEAR $1 ($2) COMPENSATION INCREASE")
	cat = strings.Trim(cat, " :-")
	cat = strings.ReplaceAll(cat, "FEE - FOR - SERVICE", "FEE FOR SERVICE")
	cat = collapseSpaces(cat)

	if canon, ok := categoryCanon[cat]; ok {
		return canon
	}
	// Relaxed match: OCR often reads hyphens as spaces or drops them.
	relaxed := strings.ReplaceAll(cat, "-", " ")
	if canon, ok := categoryCanon[relaxed]; ok {
		return canon
	}
	return strings.TrimSpace(raw)
}
