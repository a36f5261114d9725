package paysummary

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

var (
	periodRE     = regexp.MustCompile(`FOR PERIOD .*?:\s*(\d{4}-\d{2}-\d{2})\s*TO\s*(\d{4}-\d{2}-\d{2})`)
	remittanceRE = regexp.MustCompile(`REMITTANCE ADVICE:\s*([A-Za-z]+\s+\d{4})`)
	runDateRE    = regexp.MustCompile(`(?i)Run Date:\s*([0-9\-: ]+[AP]M)`)
	groupLineRE  = regexp.MustCompile(`GROUP:\s*(.+?)\s+PAYMENT TO:\s*(\w+)`)
	groupNoRE    = regexp.MustCompile(`GROUP\s*#:\s*([A-Z0-9]+)`)
)

// ParseMetadata pulls the report header fields out of the first page's
// text. Fields the header does not contain stay empty.
func ParseMetadata(header string) models.Metadata {
	var meta models.Metadata
	if m := periodRE.FindStringSubmatch(header); m != nil {
		meta.PeriodFrom = m[1]
		meta.PeriodTo = m[2]
	}
	if m := remittanceRE.FindStringSubmatch(header); m != nil {
		meta.RemittanceAdvice = m[1]
	}
	if m := runDateRE.FindStringSubmatch(header); m != nil {
		meta.RunDate = m[1]
	}
	if m := groupLineRE.FindStringSubmatch(header); m != nil {
		meta.GroupName = strings.TrimSpace(m[1])
		meta.PaymentTo = m[2]
	}
	if m := groupNoRE.FindStringSubmatch(header); m != nil {
		meta.GroupNo = m[1]
	}
	return meta
}
