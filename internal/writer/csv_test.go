package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Meta: models.Metadata{
			PeriodFrom: "2024-06-01",
			PeriodTo:   "2024-06-30",
			GroupNo:    "1234",
		},
		GroupRows: []models.CategoryRow{
			{Category: "ACCESS BONUS PAYMENT", CurrentMonth: 100, YearToDate: 200},
		},
		Providers: []models.ProviderEntry{
			{
				Name: "Libby Thomas",
				ID:   "010255",
				Rows: []models.CategoryRow{
					{Category: "NETWORK BASE RATE PAYMENT", CurrentMonth: 9385.25, YearToDate: 38370.25},
					{Category: "PAGE: 3 OF 14", CurrentMonth: 3, YearToDate: 14},
				},
				TotalCurrent: 9385.25,
				TotalYTD:     38370.25,
			},
		},
		Sections: []models.SectionRow{
			{PaymentType: "GROUP PAYMENTS", Label: "SPECIAL PREMIUM PAYMENT", CurrentMonth: 5, YearToDate: 10},
		},
		TotalPaymentAB:  38370.25,
		TotalPaymentABD: "2024-06-30",
		HasTotalPayment: true,
		Hybrid:          true,
	}
}

func TestWriteGroupCategories(t *testing.T) {
	var buf bytes.Buffer
	var w CSVWriter
	if err := w.WriteGroupCategories(&buf, sampleReport().GroupRows); err != nil {
		t.Fatal(err)
	}
	want := "category,current_month,year_to_date\n" +
		"ACCESS BONUS PAYMENT,100.00,200.00\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteProviderCategories(t *testing.T) {
	var buf bytes.Buffer
	var w CSVWriter
	if err := w.WriteProviderCategories(&buf, sampleReport().Providers); err != nil {
		t.Fatal(err)
	}
	want := "provider,provider_id,category,current_month,year_to_date\n" +
		"Libby Thomas,010255,NETWORK BASE RATE PAYMENT,9385.25,38370.25\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteProviderTotals(t *testing.T) {
	var buf bytes.Buffer
	var w CSVWriter
	if err := w.WriteProviderTotals(&buf, sampleReport().Providers); err != nil {
		t.Fatal(err)
	}
	want := "provider,provider_id,current_month_total_claims_payable,ytd_total_claims_payable\n" +
		"Libby Thomas,010255,9385.25,38370.25\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteGroupPayments(t *testing.T) {
	var buf bytes.Buffer
	var w CSVWriter
	if err := w.WriteGroupPayments(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	want := "group_num,period,total_payment_ab_date,total_payment_ab,payment_type,line_item_desc,current_month_amt,year_to_date_amt\n" +
		"1234,2024-06-01 to 2024-06-30,2024-06-30,38370.25,GROUP PAYMENTS,SPECIAL PREMIUM PAYMENT,5.00,10.00\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteProviderPayments(t *testing.T) {
	decoded := []string{
		"PROVIDER SUMMARY\n" +
			"LIBBY THOMAS 010255\n" +
			"CURRENT MONTH YEAR TO DATE\n" +
			"COMP CARE CAPITATION = 1 00 = 2 00\n" +
			"PROVIDER SUMMARY TOTAL = 1 00 = 2 00\n",
	}

	var buf bytes.Buffer
	var w CSVWriter
	if err := w.WriteProviderPayments(&buf, sampleReport(), decoded); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "group_num,period,total_payment_ab_date,total_payment_ab,ohip_number,provider_name,line_item,current_month_amt,year_to_date_amt,section" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "1234,2024-06-01 to 2024-06-30,2024-06-30,38370.25,010255,Libby Thomas,NETWORK BASE RATE PAYMENT,9385.25,38370.25,GROUP PAYMENTS TO PROVIDER" {
		t.Errorf("provider row = %q", lines[1])
	}
	if lines[2] != "1234,2024-06-01 to 2024-06-30,2024-06-30,38370.25,010255,Libby Thomas,COMP CARE CAPITATION,1.00,2.00,PROVIDER SUMMARY" {
		t.Errorf("summary row = %q", lines[2])
	}
}

func TestWriteTables(t *testing.T) {
	var w CSVWriter

	t.Run("core", func(t *testing.T) {
		dir := t.TempDir()
		if err := w.WriteTables(dir, sampleReport()); err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"group_categories.csv", "provider_categories.csv", "provider_totals.csv"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("%s: %v", name, err)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "group_payments.csv")); err == nil {
			t.Error("group_payments.csv written by core table pass")
		}
	})

	t.Run("sections", func(t *testing.T) {
		dir := t.TempDir()
		if err := w.WriteSectionTables(dir, sampleReport(), nil); err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"group_payments.csv", "provider_payments.csv"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("%s: %v", name, err)
			}
		}
	})
}
