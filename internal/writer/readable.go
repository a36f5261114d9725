package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
	"github.com/insightdelivered/payment-summary-toolkit/internal/paysummary"
)

// ReadableWriter produces the combined human-friendly export: metadata,
// group summary, a providers index, and per-provider detail, in plain text
// and in Markdown. Rows stay in document order.
type ReadableWriter struct{}

// grouped formats an amount with comma thousands grouping, e.g. 38370.25
// as "38,370.25".
func grouped(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	s = intPart + "." + frac
	if neg {
		return "-" + s
	}
	return s
}

func groupLine(meta models.Metadata) string {
	var bits []string
	if meta.GroupName != "" {
		bits = append(bits, meta.GroupName)
	}
	if meta.GroupNo != "" {
		bits = append(bits, "#"+meta.GroupNo)
	}
	if meta.PaymentTo != "" {
		bits = append(bits, "(Payment to: "+meta.PaymentTo+")")
	}
	return strings.Join(bits, " ")
}

func providerLabel(p models.ProviderEntry) string {
	if p.ID != "" {
		return fmt.Sprintf("%s (ID: %s)", p.Name, p.ID)
	}
	return p.Name
}

// WriteText writes the plain-text rendition.
func (w *ReadableWriter) WriteText(out io.Writer, rep *models.Report) error {
	var lines []string
	lines = append(lines, "OHIP Payment Summary")
	if period := rep.Meta.Period(); period != "" {
		lines = append(lines, "Period: "+period)
	}
	if rep.Meta.RemittanceAdvice != "" {
		lines = append(lines, "Remittance Advice: "+rep.Meta.RemittanceAdvice)
	}
	if rep.Meta.RunDate != "" {
		lines = append(lines, "Run Date: "+rep.Meta.RunDate)
	}
	if grp := groupLine(rep.Meta); grp != "" {
		lines = append(lines, "Group: "+grp)
	}
	lines = append(lines, "", "Group Summary (Current Month; Year to Date):")
	for _, r := range rep.GroupRows {
		lines = append(lines, fmt.Sprintf("- %s: %s; %s", r.Category, grouped(r.CurrentMonth), grouped(r.YearToDate)))
	}
	lines = append(lines, "", "Providers Index (TOTAL CLAIMS PAYABLE):")
	for _, p := range rep.Providers {
		lines = append(lines, fmt.Sprintf("- %s: %s; %s", providerLabel(p), grouped(p.TotalCurrent), grouped(p.TotalYTD)))
	}
	lines = append(lines, "", "Provider Details:")
	for _, p := range rep.Providers {
		lines = append(lines, "Provider: "+providerLabel(p))
		for _, r := range p.Rows {
			if paysummary.IsMetaCategory(r.Category) {
				continue
			}
			lines = append(lines, fmt.Sprintf("  - %s: %s; %s", r.Category, grouped(r.CurrentMonth), grouped(r.YearToDate)))
		}
		lines = append(lines, "")
	}
	doc := strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
	_, err := io.WriteString(out, doc)
	return err
}

// WriteMarkdown writes the Markdown rendition.
func (w *ReadableWriter) WriteMarkdown(out io.Writer, rep *models.Report) error {
	var lines []string
	lines = append(lines, "# OHIP Payment Summary")
	var meta []string
	if period := rep.Meta.Period(); period != "" {
		meta = append(meta, "**Period**: "+period)
	}
	if rep.Meta.RemittanceAdvice != "" {
		meta = append(meta, "**Remittance Advice**: "+rep.Meta.RemittanceAdvice)
	}
	if rep.Meta.RunDate != "" {
		meta = append(meta, "**Run Date**: "+rep.Meta.RunDate)
	}
	if grp := groupLine(rep.Meta); grp != "" {
		meta = append(meta, "**Group**: "+grp)
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, "\n"))
	}
	lines = append(lines, "\n## Group Summary (Current Month; Year to Date)")
	for _, r := range rep.GroupRows {
		lines = append(lines, fmt.Sprintf("- %s: %s; %s", r.Category, grouped(r.CurrentMonth), grouped(r.YearToDate)))
	}
	lines = append(lines, "\n## Providers Index (TOTAL CLAIMS PAYABLE)")
	for _, p := range rep.Providers {
		lines = append(lines, fmt.Sprintf("- %s: %s; %s", providerLabel(p), grouped(p.TotalCurrent), grouped(p.TotalYTD)))
	}
	lines = append(lines, "\n## Provider Details")
	for _, p := range rep.Providers {
		lines = append(lines, "### "+providerLabel(p))
		for _, r := range p.Rows {
			if paysummary.IsMetaCategory(r.Category) {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s: %s; %s", r.Category, grouped(r.CurrentMonth), grouped(r.YearToDate)))
		}
		lines = append(lines, "")
	}
	doc := strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
	_, err := io.WriteString(out, doc)
	return err
}

// WriteToFiles writes combined_readable.txt and combined_readable.md
// into dir.
func (w *ReadableWriter) WriteToFiles(dir string, rep *models.Report) error {
	txt, err := os.Create(filepath.Join(dir, "combined_readable.txt"))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer txt.Close()
	if err := w.WriteText(txt, rep); err != nil {
		return err
	}

	md, err := os.Create(filepath.Join(dir, "combined_readable.md"))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer md.Close()
	return w.WriteMarkdown(md, rep)
}
