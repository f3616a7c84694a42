package report

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion identifies the persisted report JSON shape. Bump it whenever
// a field changes meaning; persistence and rendering consume this one
// contract.
const SchemaVersion = 1

// The six fixed SEO categories.
const (
	SectionMeta            = "meta"
	SectionPageQuality     = "pageQuality"
	SectionLinkStructure   = "linkStructure"
	SectionPerformance     = "performance"
	SectionCrawlability    = "crawlability"
	SectionExternalFactors = "externalFactors"
)

// SectionNames lists the categories in presentation order.
var SectionNames = []string{
	SectionMeta,
	SectionPageQuality,
	SectionLinkStructure,
	SectionPerformance,
	SectionCrawlability,
	SectionExternalFactors,
}

// SectionScore is one category's result: a 0-100 score, the raw counts that
// fed it, and the issues charged against it.
type SectionScore struct {
	Name       string         `json:"name"`
	Score      int            `json:"score"`
	SubMetrics map[string]any `json:"subMetrics"`
	Issues     []string       `json:"issues"`
}

// Report is the fully assembled output of one analysis pass. It is immutable
// once assembled; a re-scan produces a new Report, never an in-place update.
type Report struct {
	SchemaVersion   int                     `json:"schemaVersion"`
	URL             string                  `json:"url"`
	Timestamp       time.Time               `json:"timestamp"`
	OverallScore    int                     `json:"overallScore"`
	Sections        map[string]SectionScore `json:"sections"`
	Issues          []string                `json:"issues"`
	Recommendations []string                `json:"recommendations"`
	LoadTime        int                     `json:"loadTime"`
}

// StatusLabel maps a score onto the three-tier quality label used across the
// rendered report and the assistant summary.
func StatusLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// FileName derives the deterministic artifact name for this report from its
// URL and timestamp.
func (r *Report) FileName() string {
	return fmt.Sprintf("seo-report-%s-%d.pdf", slug(r.URL), r.Timestamp.Unix())
}

// slug reduces a URL to a filesystem-safe token: scheme stripped, every run
// of non-alphanumeric characters collapsed to a single dash.
func slug(rawURL string) string {
	s := strings.ToLower(rawURL)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
