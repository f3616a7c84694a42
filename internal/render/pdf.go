package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/seoscan/internal/report"
)

// Layout constants. lineHeight drives the pagination rule below, so changing
// it moves page breaks.
const (
	lineHeight   = 6.0
	headerHeight = 16.0
	marginBottom = 15.0
)

// WritePDF renders the report into a paginated PDF at outPath. The layout is
// fixed: banded header, score summary, section listing, one detail block per
// section, deduplicated recommendations, footer stamp.
func WritePDF(r *report.Report, outPath string) error {
	pdf := newDoc()
	writeHeader(pdf, r)
	writeSummary(pdf, r)
	writeSectionListing(pdf, r)
	for _, name := range report.SectionNames {
		writeSectionDetail(pdf, r.Sections[name])
	}
	writeRecommendations(pdf, r)
	writeFooter(pdf, r)
	return pdf.OutputFileAndClose(outPath)
}

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Page breaks are decided explicitly by ensureSpace, never by gofpdf.
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()
	return pdf
}

// ensureSpace starts a new page when the projected height of the next block
// (line count times line height) would exceed the remaining space on the
// current page. This is the only rule that decides where page breaks fall.
func ensureSpace(pdf *gofpdf.Fpdf, lines int) {
	_, pageH := pdf.GetPageSize()
	needed := float64(lines) * lineHeight
	if pdf.GetY()+needed > pageH-marginBottom {
		pdf.AddPage()
	}
}

func writeHeader(pdf *gofpdf.Fpdf, r *report.Report) {
	ensureSpace(pdf, 3)
	pdf.SetFillColor(33, 53, 85)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, headerHeight, "SEO Analysis Report", "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, lineHeight, "Generated "+r.Timestamp.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight / 2)
}

func writeSummary(pdf *gofpdf.Fpdf, r *report.Report) {
	ensureSpace(pdf, 3)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, lineHeight, "URL: "+r.URL, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Overall score: %d / 100 (%s)", r.OverallScore, report.StatusLabel(r.OverallScore)), "", 1, "L", false, 0, "")
	pdf.Ln(lineHeight / 2)
}

func writeSectionListing(pdf *gofpdf.Fpdf, r *report.Report) {
	ensureSpace(pdf, len(report.SectionNames)+1)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, "Section scores", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, name := range report.SectionNames {
		sec := r.Sections[name]
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("%s: %d / 100", name, sec.Score), "", 1, "L", false, 0, "")
	}
	pdf.Ln(lineHeight / 2)
}

func writeSectionDetail(pdf *gofpdf.Fpdf, sec report.SectionScore) {
	metrics := sortedMetricLines(sec.SubMetrics)
	// heading + metrics + issues, projected as whole block
	ensureSpace(pdf, 1+len(metrics)+len(sec.Issues))
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("%s (%d / 100)", sec.Name, sec.Score), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range metrics {
		pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
	}
	for _, issue := range sec.Issues {
		pdf.CellFormat(0, lineHeight, "- "+issue, "", 1, "L", false, 0, "")
	}
	pdf.Ln(lineHeight / 2)
}

func writeRecommendations(pdf *gofpdf.Fpdf, r *report.Report) {
	recs := dedupe(r.Recommendations)
	ensureSpace(pdf, 1+len(recs))
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, "Recommendations", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, rec := range recs {
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("%d. %s", i+1, rec), "", 1, "L", false, 0, "")
	}
	pdf.Ln(lineHeight / 2)
}

func writeFooter(pdf *gofpdf.Fpdf, r *report.Report) {
	ensureSpace(pdf, 1)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("seoscan report schema v%d / generated %s", report.SchemaVersion, r.Timestamp.Format("2006-01-02T15:04:05Z07:00")), "", 1, "C", false, 0, "")
}

// sortedMetricLines renders the sub-metric map in stable key order so the
// same report always lays out identically.
func sortedMetricLines(metrics map[string]any) []string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, metrics[k]))
	}
	return lines
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		key := strings.TrimSpace(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
