package rules

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/seoscan/internal/analyze"
)

// Code is the stable identifier of a rule outcome. Messages shown to users
// may embed counts; the code never does, so section membership lookups stay
// a plain table.
type Code string

const (
	CodeMissingTitle        Code = "missing_title"
	CodeTitleTooLong        Code = "title_too_long"
	CodeTitleTooShort       Code = "title_too_short"
	CodeMissingDescription  Code = "missing_description"
	CodeDescriptionTooLong  Code = "description_too_long"
	CodeDescriptionTooShort Code = "description_too_short"
	CodeMissingH1           Code = "missing_h1"
	CodeMultipleH1          Code = "multiple_h1"
	CodeNoH2                Code = "no_h2"
	CodeImagesMissingAlt    Code = "images_missing_alt"
	CodeMissingCanonical    Code = "missing_canonical"
	CodeIncompleteOpenGraph Code = "incomplete_open_graph"
	CodeContentTooShort     Code = "content_too_short"
	CodeNoStructuredData    Code = "no_structured_data"
	CodeSlowLoadTime        Code = "slow_load_time"
	CodeNoInternalLinks     Code = "no_internal_links"
	CodeNotHTTPS            Code = "not_https"
	CodeNoindex             Code = "noindex"
)

// Thresholds for the length and timing rules.
const (
	titleMinLen       = 30
	titleMaxLen       = 60
	descriptionMinLen = 120
	descriptionMaxLen = 160
	minWordCount      = 300
	maxLoadTimeMS     = 3000
)

// Finding pairs one detected issue with the recommendation that remediates
// it. Findings are appended strictly in rule order and never reordered or
// deduplicated, so identical signals always yield an identical list.
type Finding struct {
	Code           Code
	Issue          string
	Recommendation string
}

// A rule inspects the signals and yields at most one finding. Rules are total
// over the signal domain: absent and zero values are valid inputs, never
// errors. Rules do not read each other's output.
type rule func(s *analyze.Signals) *Finding

// ordered is the fixed evaluation order. Reports must be reproducible, so
// new rules are appended at the end rather than inserted.
var ordered = []rule{
	titleRule,
	descriptionRule,
	h1Rule,
	h2Rule,
	imageAltRule,
	canonicalRule,
	openGraphRule,
	wordCountRule,
	structuredDataRule,
	loadTimeRule,
	internalLinkRule,
	httpsRule,
	noindexRule,
}

// Evaluate runs every rule in order against the signals and returns the
// paired findings.
func Evaluate(s *analyze.Signals) []Finding {
	findings := []Finding{}
	for _, r := range ordered {
		if f := r(s); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

func titleRule(s *analyze.Signals) *Finding {
	if s.Title == nil {
		return &Finding{
			Code:           CodeMissingTitle,
			Issue:          "Missing page title",
			Recommendation: "Add a descriptive <title> tag of 30-60 characters.",
		}
	}
	switch n := utf8.RuneCountInString(*s.Title); {
	case n > titleMaxLen:
		return &Finding{
			Code:           CodeTitleTooLong,
			Issue:          "Title too long",
			Recommendation: "Shorten the title to at most 60 characters so it is not truncated in search results.",
		}
	case n < titleMinLen:
		return &Finding{
			Code:           CodeTitleTooShort,
			Issue:          "Title too short",
			Recommendation: "Expand the title to at least 30 characters to better describe the page.",
		}
	}
	return nil
}

func descriptionRule(s *analyze.Signals) *Finding {
	if s.Description == nil {
		return &Finding{
			Code:           CodeMissingDescription,
			Issue:          "Missing meta description",
			Recommendation: "Add a meta description of 120-160 characters summarizing the page.",
		}
	}
	switch n := utf8.RuneCountInString(*s.Description); {
	case n > descriptionMaxLen:
		return &Finding{
			Code:           CodeDescriptionTooLong,
			Issue:          "Meta description too long",
			Recommendation: "Trim the meta description to at most 160 characters.",
		}
	case n < descriptionMinLen:
		return &Finding{
			Code:           CodeDescriptionTooShort,
			Issue:          "Meta description too short",
			Recommendation: "Lengthen the meta description to at least 120 characters.",
		}
	}
	return nil
}

func h1Rule(s *analyze.Signals) *Finding {
	switch n := len(s.H1Tags); {
	case n == 0:
		return &Finding{
			Code:           CodeMissingH1,
			Issue:          "Missing H1 tag",
			Recommendation: "Add exactly one <h1> heading describing the page topic.",
		}
	case n > 1:
		return &Finding{
			Code:           CodeMultipleH1,
			Issue:          "Multiple H1 tags",
			Recommendation: "Keep a single <h1> and demote the others to <h2>.",
		}
	}
	return nil
}

func h2Rule(s *analyze.Signals) *Finding {
	if len(s.H2Tags) == 0 {
		return &Finding{
			Code:           CodeNoH2,
			Issue:          "No H2 tags found",
			Recommendation: "Structure the content with <h2> subheadings.",
		}
	}
	return nil
}

func imageAltRule(s *analyze.Signals) *Finding {
	n := s.MissingAltCount()
	if n == 0 {
		return nil
	}
	return &Finding{
		Code:           CodeImagesMissingAlt,
		Issue:          fmt.Sprintf("%d images missing alt text", n),
		Recommendation: "Add descriptive alt attributes to every image.",
	}
}

func canonicalRule(s *analyze.Signals) *Finding {
	if s.CanonicalURL == nil {
		return &Finding{
			Code:           CodeMissingCanonical,
			Issue:          "Missing canonical URL",
			Recommendation: "Add a <link rel=\"canonical\"> tag to avoid duplicate-content penalties.",
		}
	}
	return nil
}

func openGraphRule(s *analyze.Signals) *Finding {
	if !s.OpenGraph.Complete() {
		return &Finding{
			Code:           CodeIncompleteOpenGraph,
			Issue:          "Incomplete Open Graph tags",
			Recommendation: "Add og:title and og:description meta tags for link previews.",
		}
	}
	return nil
}

func wordCountRule(s *analyze.Signals) *Finding {
	if s.WordCount < minWordCount {
		return &Finding{
			Code:           CodeContentTooShort,
			Issue:          "Content too short",
			Recommendation: "Expand the page to at least 300 words of substantive content.",
		}
	}
	return nil
}

func structuredDataRule(s *analyze.Signals) *Finding {
	if len(s.StructuredData) == 0 {
		return &Finding{
			Code:           CodeNoStructuredData,
			Issue:          "No structured data found",
			Recommendation: "Add JSON-LD structured data so search engines can show rich results.",
		}
	}
	return nil
}

func loadTimeRule(s *analyze.Signals) *Finding {
	if s.LoadTime > maxLoadTimeMS {
		return &Finding{
			Code:           CodeSlowLoadTime,
			Issue:          "Slow page load time",
			Recommendation: "Reduce page weight and server response time to load within 3 seconds.",
		}
	}
	return nil
}

func internalLinkRule(s *analyze.Signals) *Finding {
	if s.InternalLinkCount() == 0 {
		return &Finding{
			Code:           CodeNoInternalLinks,
			Issue:          "No internal links found",
			Recommendation: "Link to related pages on the same site to improve crawl depth.",
		}
	}
	return nil
}

func httpsRule(s *analyze.Signals) *Finding {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return &Finding{
			Code:           CodeNotHTTPS,
			Issue:          "Not using HTTPS",
			Recommendation: "Serve the page over HTTPS; search engines favor secure pages.",
		}
	}
	return nil
}

func noindexRule(s *analyze.Signals) *Finding {
	if s.Robots != nil && strings.Contains(strings.ToLower(*s.Robots), "noindex") {
		return &Finding{
			Code:           CodeNoindex,
			Issue:          "Page blocked from indexing",
			Recommendation: "Remove the noindex directive from the robots meta tag if the page should rank.",
		}
	}
	return nil
}
