package score

import (
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperifyio/seoscan/internal/analyze"
	"github.com/hyperifyio/seoscan/internal/report"
	"github.com/hyperifyio/seoscan/internal/rules"
)

// Config holds the per-section penalty constants. The penalties are
// deliberate configuration rather than hidden behavior: every issue charged
// to a section subtracts that section's constant from its score.
type Config struct {
	Penalties map[string]int
}

// DefaultConfig returns the reference penalty table. Sections with fewer
// applicable rules carry heavier penalties so a single failure still moves
// the score.
func DefaultConfig() Config {
	return Config{Penalties: map[string]int{
		report.SectionMeta:            15,
		report.SectionPageQuality:     12,
		report.SectionLinkStructure:   20,
		report.SectionPerformance:     30,
		report.SectionCrawlability:    25,
		report.SectionExternalFactors: 15,
	}}
}

// sectionsByCode is the static membership table routing each finding to the
// categories it counts against. A finding may belong to more than one
// section; Open Graph gaps hurt both metadata quality and external sharing.
var sectionsByCode = map[rules.Code][]string{
	rules.CodeMissingTitle:        {report.SectionMeta},
	rules.CodeTitleTooLong:        {report.SectionMeta},
	rules.CodeTitleTooShort:       {report.SectionMeta},
	rules.CodeMissingDescription:  {report.SectionMeta},
	rules.CodeDescriptionTooLong:  {report.SectionMeta},
	rules.CodeDescriptionTooShort: {report.SectionMeta},
	rules.CodeMissingCanonical:    {report.SectionMeta},
	rules.CodeIncompleteOpenGraph: {report.SectionMeta, report.SectionExternalFactors},
	rules.CodeMissingH1:           {report.SectionPageQuality},
	rules.CodeMultipleH1:          {report.SectionPageQuality},
	rules.CodeNoH2:                {report.SectionPageQuality},
	rules.CodeImagesMissingAlt:    {report.SectionPageQuality},
	rules.CodeContentTooShort:     {report.SectionPageQuality},
	rules.CodeNoInternalLinks:     {report.SectionLinkStructure},
	rules.CodeSlowLoadTime:        {report.SectionPerformance},
	rules.CodeNoStructuredData:    {report.SectionCrawlability},
	rules.CodeNoindex:             {report.SectionCrawlability},
	rules.CodeNotHTTPS:            {report.SectionExternalFactors},
}

// Assemble maps the signals and findings into six section scores and
// combines them into a single immutable report. Identical inputs always
// produce an identical report apart from the timestamp.
func Assemble(s *analyze.Signals, findings []rules.Finding, cfg Config, now time.Time) *report.Report {
	scores := make(map[string]int, len(report.SectionNames))
	sectionIssues := make(map[string][]string, len(report.SectionNames))
	for _, name := range report.SectionNames {
		scores[name] = 100
		sectionIssues[name] = []string{}
	}

	issues := make([]string, 0, len(findings))
	recommendations := make([]string, 0, len(findings))
	for _, f := range findings {
		issues = append(issues, f.Issue)
		recommendations = append(recommendations, f.Recommendation)
		for _, name := range sectionsByCode[f.Code] {
			scores[name] -= cfg.Penalties[name]
			sectionIssues[name] = append(sectionIssues[name], f.Issue)
		}
	}

	sections := make(map[string]report.SectionScore, len(report.SectionNames))
	total := 0
	for _, name := range report.SectionNames {
		sc := scores[name]
		if sc < 0 {
			sc = 0
		}
		total += sc
		sections[name] = report.SectionScore{
			Name:       name,
			Score:      sc,
			SubMetrics: subMetrics(name, s),
			Issues:     sectionIssues[name],
		}
	}

	overall := int(math.Round(float64(total) / float64(len(report.SectionNames))))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	return &report.Report{
		SchemaVersion:   report.SchemaVersion,
		URL:             s.URL,
		Timestamp:       now,
		OverallScore:    overall,
		Sections:        sections,
		Issues:          issues,
		Recommendations: recommendations,
		LoadTime:        s.LoadTime,
	}
}

// subMetrics exposes the raw counts behind each section score.
func subMetrics(name string, s *analyze.Signals) map[string]any {
	switch name {
	case report.SectionMeta:
		return map[string]any{
			"titleLength":       optLen(s.Title),
			"descriptionLength": optLen(s.Description),
			"hasCanonical":      s.CanonicalURL != nil,
			"openGraphComplete": s.OpenGraph.Complete(),
		}
	case report.SectionPageQuality:
		return map[string]any{
			"h1Count":          len(s.H1Tags),
			"h2Count":          len(s.H2Tags),
			"h3Count":          len(s.H3Tags),
			"wordCount":        s.WordCount,
			"imageCount":       len(s.Images),
			"imagesMissingAlt": s.MissingAltCount(),
		}
	case report.SectionLinkStructure:
		return map[string]any{
			"internalLinks": s.InternalLinkCount(),
			"externalLinks": s.ExternalLinkCount(),
			"totalLinks":    len(s.Links),
		}
	case report.SectionPerformance:
		return map[string]any{
			"loadTimeMs": s.LoadTime,
		}
	case report.SectionCrawlability:
		return map[string]any{
			"hasRobotsMeta":        s.Robots != nil,
			"structuredDataBlocks": len(s.StructuredData),
		}
	case report.SectionExternalFactors:
		return map[string]any{
			"openGraphComplete": s.OpenGraph.Complete(),
			"hasTwitterCard":    s.TwitterCard.Present(),
			"https":             isHTTPS(s.URL),
		}
	}
	return map[string]any{}
}

func optLen(v *string) int {
	if v == nil {
		return 0
	}
	return utf8.RuneCountInString(*v)
}

func isHTTPS(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}
