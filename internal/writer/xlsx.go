package writer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
	"github.com/insightdelivered/payment-summary-toolkit/internal/paysummary"
)

// XLSXWriter writes the report as a single workbook with one sheet per
// table, mirroring the CSV outputs.
type XLSXWriter struct{}

// WriteToFile writes the workbook to the given path.
func (w *XLSXWriter) WriteToFile(path string, rep *models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Group Categories", groupCategoryGrid(rep.GroupRows)); err != nil {
		return err
	}
	if err := writeSheet(f, "Provider Categories", providerCategoryGrid(rep.Providers)); err != nil {
		return err
	}
	if err := writeSheet(f, "Provider Totals", providerTotalsGrid(rep.Providers)); err != nil {
		return err
	}
	if rep.Hybrid {
		if err := writeSheet(f, "Group Payments", sectionGrid(rep)); err != nil {
			return err
		}
	}

	// The workbook starts with a default sheet we never populate.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook %q: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, grid [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	for r, row := range grid {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, val); err != nil {
				return fmt.Errorf("failed to set cell %s!%s: %w", name, cell, err)
			}
		}
	}
	return nil
}

func groupCategoryGrid(rows []models.CategoryRow) [][]interface{} {
	grid := [][]interface{}{{"category", "current_month", "year_to_date"}}
	for _, r := range rows {
		grid = append(grid, []interface{}{r.Category, r.CurrentMonth, r.YearToDate})
	}
	return grid
}

func providerCategoryGrid(providers []models.ProviderEntry) [][]interface{} {
	grid := [][]interface{}{{"provider", "provider_id", "category", "current_month", "year_to_date"}}
	for _, p := range providers {
		for _, r := range p.Rows {
			if paysummary.IsMetaCategory(r.Category) {
				continue
			}
			grid = append(grid, []interface{}{p.Name, p.ID, r.Category, r.CurrentMonth, r.YearToDate})
		}
	}
	return grid
}

func providerTotalsGrid(providers []models.ProviderEntry) [][]interface{} {
	grid := [][]interface{}{{"provider", "provider_id", "current_month_total_claims_payable", "ytd_total_claims_payable"}}
	for _, p := range providers {
		grid = append(grid, []interface{}{p.Name, p.ID, p.TotalCurrent, p.TotalYTD})
	}
	return grid
}

func sectionGrid(rep *models.Report) [][]interface{} {
	grid := [][]interface{}{{"group_num", "period", "total_payment_ab_date", "total_payment_ab", "payment_type", "line_item_desc", "current_month_amt", "year_to_date_amt"}}
	for _, s := range rep.Sections {
		grid = append(grid, []interface{}{
			rep.Meta.GroupNo, rep.Meta.Period(), rep.TotalPaymentABD, rep.TotalPaymentAB,
			s.PaymentType, s.Label, s.CurrentMonth, s.YearToDate,
		})
	}
	return grid
}
