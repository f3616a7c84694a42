package analyze

import "encoding/json"

// Link classification values. A link is internal iff its resolved hostname
// equals the hostname of the analyzed page.
const (
	LinkInternal = "internal"
	LinkExternal = "external"
)

// Signals is the immutable record of on-page facts extracted from a single
// fetched document. Optional tags are represented as nil pointers so a rule
// can distinguish "tag absent" from "tag present but empty". Slices preserve
// document order. A Signals value is built once per fetch and never mutated.
type Signals struct {
	URL            string            `json:"url"`
	Title          *string           `json:"title,omitempty"`
	Description    *string           `json:"description,omitempty"`
	MetaKeywords   *string           `json:"metaKeywords,omitempty"`
	CanonicalURL   *string           `json:"canonicalUrl,omitempty"`
	Robots         *string           `json:"robots,omitempty"`
	OpenGraph      OpenGraph         `json:"openGraph"`
	TwitterCard    TwitterCard       `json:"twitterCard"`
	H1Tags         []string          `json:"h1Tags"`
	H2Tags         []string          `json:"h2Tags"`
	H3Tags         []string          `json:"h3Tags"`
	Images         []Image           `json:"images"`
	Links          []Link            `json:"links"`
	StructuredData []json.RawMessage `json:"structuredData"`
	WordCount      int               `json:"wordCount"`
	LoadTime       int               `json:"loadTime"`
}

// OpenGraph holds the og:* meta properties found in the document head.
type OpenGraph struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// Complete reports whether the page carries the minimum Open Graph tags
// needed for a usable share preview.
func (og OpenGraph) Complete() bool {
	return og.Title != nil && og.Description != nil
}

// TwitterCard holds the twitter:* meta properties found in the document head.
type TwitterCard struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// Present reports whether any twitter card tag was found at all.
func (tc TwitterCard) Present() bool {
	return tc.Title != nil || tc.Description != nil || tc.Image != nil
}

// Image is one <img> element with its resolved absolute source URL. Alt is
// the empty string when the attribute is missing; rules treat "" as the
// missing-alt sentinel.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Link is one anchor with visible text, resolved to an absolute URL and
// classified as internal or external.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// MissingAltCount returns how many images lack alt text.
func (s *Signals) MissingAltCount() int {
	n := 0
	for _, img := range s.Images {
		if img.Alt == "" {
			n++
		}
	}
	return n
}

// InternalLinkCount returns how many links point back at the page's own host.
func (s *Signals) InternalLinkCount() int {
	n := 0
	for _, l := range s.Links {
		if l.Type == LinkInternal {
			n++
		}
	}
	return n
}

// ExternalLinkCount returns how many links point at other hosts.
func (s *Signals) ExternalLinkCount() int {
	return len(s.Links) - s.InternalLinkCount()
}
