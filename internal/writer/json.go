package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

// JSONWriter writes the report metadata as a JSON document. Fields the
// header did not yield are emitted as nulls rather than empty strings, so
// downstream consumers can tell "absent" from "blank".
type JSONWriter struct{}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Write writes the metadata JSON to the given writer.
func (w *JSONWriter) Write(out io.Writer, meta models.Metadata) error {
	doc := map[string]*string{
		"period_from":       nullable(meta.PeriodFrom),
		"period_to":         nullable(meta.PeriodTo),
		"remittance_advice": nullable(meta.RemittanceAdvice),
		"run_date":          nullable(meta.RunDate),
		"group_name":        nullable(meta.GroupName),
		"group_no":          nullable(meta.GroupNo),
		"payment_to":        nullable(meta.PaymentTo),
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode metadata JSON: %w", err)
	}
	return nil
}

// WriteToFile writes the metadata JSON to a file at the given path.
func (w *JSONWriter) WriteToFile(path string, meta models.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()
	return w.Write(f, meta)
}
