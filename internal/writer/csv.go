package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
	"github.com/insightdelivered/payment-summary-toolkit/internal/paysummary"
)

// CSVWriter writes the parsed report as a set of flat CSV tables.
type CSVWriter struct{}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// WriteGroupCategories writes the group-level category table.
func (w *CSVWriter) WriteGroupCategories(out io.Writer, rows []models.CategoryRow) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if err := cw.Write([]string{"category", "current_month", "year_to_date"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Category, amount(r.CurrentMonth), amount(r.YearToDate)}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return cw.Error()
}

// WriteProviderCategories writes the long-format table of every provider
// category line. Boilerplate categories are dropped.
func (w *CSVWriter) WriteProviderCategories(out io.Writer, providers []models.ProviderEntry) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if err := cw.Write([]string{"provider", "provider_id", "category", "current_month", "year_to_date"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range providers {
		for _, r := range p.Rows {
			if paysummary.IsMetaCategory(r.Category) {
				continue
			}
			row := []string{p.Name, p.ID, r.Category, amount(r.CurrentMonth), amount(r.YearToDate)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	return cw.Error()
}

// WriteProviderTotals writes one row per provider with its claims-payable
// totals.
func (w *CSVWriter) WriteProviderTotals(out io.Writer, providers []models.ProviderEntry) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	header := []string{"provider", "provider_id", "current_month_total_claims_payable", "ytd_total_claims_payable"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range providers {
		row := []string{p.Name, p.ID, amount(p.TotalCurrent), amount(p.TotalYTD)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return cw.Error()
}

// WriteGroupPayments writes the group-level payment sections with the
// report metadata repeated on every row.
func (w *CSVWriter) WriteGroupPayments(out io.Writer, rep *models.Report) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	header := []string{"group_num", "period", "total_payment_ab_date", "total_payment_ab", "payment_type", "line_item_desc", "current_month_amt", "year_to_date_amt"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range rep.Sections {
		row := []string{
			rep.Meta.GroupNo,
			rep.Meta.Period(),
			rep.TotalPaymentABD,
			amount(rep.TotalPaymentAB),
			s.PaymentType,
			s.Label,
			amount(s.CurrentMonth),
			amount(s.YearToDate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return cw.Error()
}

// WriteProviderPayments writes per-provider detail lines for the
// GROUP PAYMENTS TO PROVIDER section (from the parsed rows) and the
// PROVIDER SUMMARY sections found on the decoded pages.
func (w *CSVWriter) WriteProviderPayments(out io.Writer, rep *models.Report, decodedPages []string) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	header := []string{"group_num", "period", "total_payment_ab_date", "total_payment_ab", "ohip_number", "provider_name", "line_item", "current_month_amt", "year_to_date_amt", "section"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	write := func(p models.ProviderEntry, r models.CategoryRow, section string) error {
		row := []string{
			rep.Meta.GroupNo,
			rep.Meta.Period(),
			rep.TotalPaymentABD,
			amount(rep.TotalPaymentAB),
			p.ID,
			p.Name,
			r.Category,
			amount(r.CurrentMonth),
			amount(r.YearToDate),
			section,
		}
		return cw.Write(row)
	}

	for _, p := range rep.Providers {
		for _, r := range p.Rows {
			if paysummary.IsMetaCategory(r.Category) {
				continue
			}
			if err := write(p, r, "GROUP PAYMENTS TO PROVIDER"); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	for _, p := range rep.Providers {
		for _, si := range paysummary.FindSummaryPages(decodedPages, p.Name) {
			for _, r := range paysummary.ProviderSectionRows(decodedPages[si], "PROVIDER SUMMARY") {
				if err := write(p, r, "PROVIDER SUMMARY"); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
	}
	return cw.Error()
}

// WriteTables writes the core CSV tables into dir.
func (w *CSVWriter) WriteTables(dir string, rep *models.Report) error {
	if err := writeFile(filepath.Join(dir, "group_categories.csv"), func(out io.Writer) error {
		return w.WriteGroupCategories(out, rep.GroupRows)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "provider_categories.csv"), func(out io.Writer) error {
		return w.WriteProviderCategories(out, rep.Providers)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "provider_totals.csv"), func(out io.Writer) error {
		return w.WriteProviderTotals(out, rep.Providers)
	})
}

// WriteSectionTables writes the hybrid-only payment-section tables into
// dir. Callers treat a failure here as a degraded run, not a fatal one.
func (w *CSVWriter) WriteSectionTables(dir string, rep *models.Report, decodedPages []string) error {
	if err := writeFile(filepath.Join(dir, "group_payments.csv"), func(out io.Writer) error {
		return w.WriteGroupPayments(out, rep)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "provider_payments.csv"), func(out io.Writer) error {
		return w.WriteProviderPayments(out, rep, decodedPages)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()
	return fn(f)
}
