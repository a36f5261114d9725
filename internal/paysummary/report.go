package paysummary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

// Parser assembles a Report from extracted page text. Engine is only
// needed for hybrid runs, where provider IDs may require word-box probes
// and digit re-OCR of page images.
type Parser struct {
	Engine extractor.Engine
	Logger *slog.Logger
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// BuildReport parses a single-source run: pages from OCR or from the
// decoded text layer. Page 1 carries the metadata, pages 1-2 the group
// summary, and everything from page 3 on is treated as provider pages.
func (p *Parser) BuildReport(pages []string) *models.Report {
	rep := &models.Report{
		Meta:      ParseMetadata(pages[0]),
		GroupRows: GroupCategories(pages),
	}
	if len(pages) > 2 {
		for _, page := range pages[2:] {
			name, rows := ParseProviderPage(page)
			entry := models.ProviderEntry{Name: name, Rows: rows}
			entry.TotalCurrent, entry.TotalYTD = providerTotals(rows)
			rep.Providers = append(rep.Providers, entry)
		}
	}
	return rep
}

// providerTotals prefers the TOTAL CLAIMS PAYABLE row; absent that it sums
// the category rows.
func providerTotals(rows []models.CategoryRow) (cur, ytd float64) {
	for _, r := range rows {
		if strings.Contains(strings.ToUpper(r.Category), "TOTAL CLAIMS PAYABLE") {
			return r.CurrentMonth, r.YearToDate
		}
	}
	for _, r := range rows {
		cur += r.CurrentMonth
		ytd += r.YearToDate
	}
	return cur, ytd
}

// BuildHybridReport combines both extraction sources: OCR pages supply the
// amounts, decoded pages supply provider names and section structure, and
// pageImages back the word-box and crop probes for provider IDs. Metadata
// and group rows come from OCR; Sections and the TOTAL PAYMENT A B line
// come from the decoded layer.
func (p *Parser) BuildHybridReport(ctx context.Context, ocrPages, decPages, pageImages []string) *models.Report {
	rep := &models.Report{
		Meta:      ParseMetadata(ocrPages[0]),
		GroupRows: GroupCategories(ocrPages),
		Sections:  GroupSections(decPages),
		Hybrid:    true,
	}
	if len(decPages) > 0 {
		if date, amount, found := TotalPaymentAB(decPages[0]); found {
			rep.TotalPaymentABD = date
			rep.TotalPaymentAB = amount
			rep.HasTotalPayment = true
		}
	}

	idMap := BuildIDMap(ocrPages)

	n := min(len(ocrPages), len(decPages))
	var providerIndices []int
	for i := 1; i < n; i++ {
		if strings.Contains(strings.ToUpper(stripControlChars(decPages[i])), "GROUP PAYMENTS TO PROVIDER") {
			providerIndices = append(providerIndices, i)
		}
	}
	if len(providerIndices) == 0 {
		// Header detection failed outright; fall back to positional pages.
		for i := 2; i < n; i++ {
			providerIndices = append(providerIndices, i)
		}
	}

	for _, i := range providerIndices {
		name, id := ProviderNameAndIDFromDecoded(decPages[i])

		if id == "" {
			if mapped, ok := idMap[canonNameForMatch(name)]; ok {
				id = mapped
			}
		}
		if id == "" {
			if found, err := IDFromOCRPages(ocrPages, name); err == nil {
				id = found
			} else {
				p.logger().Debug("lenient OCR ID scan failed", "provider", name, "err", err)
			}
		}

		var rows []models.CategoryRow
		for _, ln := range strings.Split(ocrPages[i], "\n") {
			if cat, cur, ytd, ok := SplitCategoryAmounts(ln); ok {
				rows = append(rows, models.CategoryRow{Category: cat, CurrentMonth: cur, YearToDate: ytd})
			}
		}

		// Run even without page images: the summary-page text lookups
		// inside the ladder need none, and the image probes no-op.
		if id == "" {
			id = p.probeID(ctx, name, decPages, i, ocrPages, pageImages)
		}

		entry := models.ProviderEntry{Name: name, ID: id, Rows: rows}
		entry.TotalCurrent, entry.TotalYTD = providerTotals(rows)
		rep.Providers = append(rep.Providers, entry)
	}
	return rep
}

// probeID runs the remaining ID strategies: word-box band probe and
// digit-whitelist crop on the provider page, then the summary-page text
// lookups and the same image ladder on each summary page. The image steps
// skip themselves when no engine or page image is available.
func (p *Parser) probeID(ctx context.Context, name string, decPages []string, pageIdx int, ocrPages, pageImages []string) string {
	log := p.logger().With("provider", name)

	if id := p.probeImage(ctx, name, pageForIndex(decPages, pageIdx, pageImages)); id != "" {
		return id
	}

	for _, si := range FindSummaryPages(decPages, name) {
		if id, err := IDFromDecodedSummary(decPages[si], name); err == nil {
			return id
		}
		pn := PageNumber(decPages[si])
		if pn == 0 {
			pn = si + 1
		}
		if ocrIdx := pn - 1; ocrIdx >= 0 && ocrIdx < len(ocrPages) {
			if id, err := IDFromOCRSummary(ocrPages[ocrIdx], name); err == nil {
				return id
			}
		}
		if id := p.probeImage(ctx, name, pageForIndex(decPages, si, pageImages)); id != "" {
			return id
		}
	}
	log.Debug("provider ID not found by any strategy")
	return ""
}

// probeImage tries the two image strategies on a single page image.
func (p *Parser) probeImage(ctx context.Context, name, imagePath string) string {
	if p.Engine == nil || imagePath == "" {
		return ""
	}
	log := p.logger().With("provider", name, "image", imagePath)

	words, err := p.Engine.Words(ctx, imagePath)
	if err != nil {
		log.Debug("word probe failed", "err", err)
		return ""
	}
	if id, err := IDNearName(words, name); err == nil {
		return id
	}
	box, ok := NameBBox(words, name)
	if !ok {
		return ""
	}
	cands, err := DigitsFromCrop(ctx, p.Engine, imagePath, CropRightOfName(box))
	if err != nil {
		log.Debug("crop re-OCR failed", "err", err)
		return ""
	}
	if len(cands) > 0 {
		return cands[0]
	}
	return ""
}

// pageForIndex maps a decoded page index to its rendered image via the
// "Page: X of Y" footer, clamped to the available images.
func pageForIndex(decPages []string, idx int, pageImages []string) string {
	if len(pageImages) == 0 {
		return ""
	}
	pn := PageNumber(decPages[idx])
	if pn == 0 {
		pn = idx + 1
	}
	imgIdx := pn - 1
	if imgIdx < 0 {
		imgIdx = 0
	}
	if imgIdx >= len(pageImages) {
		imgIdx = len(pageImages) - 1
	}
	return pageImages[imgIdx]
}
