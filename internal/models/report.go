package models

// Metadata holds the header fields pulled from page 1 of a payment summary.
// Absent fields are empty strings and serialize as JSON nulls.
type Metadata struct {
	PeriodFrom       string `json:"period_from"`
	PeriodTo         string `json:"period_to"`
	RemittanceAdvice string `json:"remittance_advice"`
	RunDate          string `json:"run_date"`
	GroupName        string `json:"group_name"`
	GroupNo          string `json:"group_no"`
	PaymentTo        string `json:"payment_to"`
}

// Period returns the "<from> to <to>" range, or "" if either end is missing.
func (m Metadata) Period() string {
	if m.PeriodFrom == "" || m.PeriodTo == "" {
		return ""
	}
	return m.PeriodFrom + " to " + m.PeriodTo
}

// CategoryRow is one payment category line: canonical (or pass-through)
// label plus the current-month and year-to-date amounts.
type CategoryRow struct {
	Category     string  `json:"category"`
	CurrentMonth float64 `json:"currentMonth"`
	YearToDate   float64 `json:"yearToDate"`
}

// ProviderEntry is one billing provider within a group payment report.
type ProviderEntry struct {
	Name string `json:"name"`
	// ID is the numeric provider identifier, or "" when every lookup
	// strategy failed. Missing is not an error.
	ID           string        `json:"id,omitempty"`
	Rows         []CategoryRow `json:"rows"`
	TotalCurrent float64       `json:"totalCurrent"`
	TotalYTD     float64       `json:"totalYTD"`
}

// SectionRow is one line item of a group-level payment section from the
// decoded text layer (hybrid mode only).
type SectionRow struct {
	PaymentType  string  `json:"paymentType"`
	Label        string  `json:"label"`
	CurrentMonth float64 `json:"currentMonth"`
	YearToDate   float64 `json:"yearToDate"`
}

// Report is the reconstructed payment summary for a single run. Everything
// is recomputed per invocation; nothing persists past process exit.
type Report struct {
	Meta      Metadata
	GroupRows []CategoryRow
	Providers []ProviderEntry

	// Hybrid-mode extras, parsed from the decoded text layer.
	Sections        []SectionRow
	TotalPaymentAB  float64
	TotalPaymentABD string // payment date, YYYY-MM-DD
	HasTotalPayment bool

	Hybrid bool
}
