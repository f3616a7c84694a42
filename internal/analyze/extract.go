package analyze

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnparsableDocument is returned when the fetched body cannot be turned
// into a document tree at all. Malformed individual elements never trigger
// it; they are skipped element by element.
var ErrUnparsableDocument = errors.New("unparsable document")

// Extract walks the parsed document once and records every on-page signal.
// pageURL must be a well-formed absolute URL; relative references inside the
// page are resolved against it. loadTimeMS is the fetch wall time carried
// into the signals for the performance rule.
func Extract(body []byte, pageURL string, loadTimeMS int) (*Signals, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("page url %q: not an absolute URL", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableDocument, err)
	}

	s := &Signals{
		URL:            pageURL,
		H1Tags:         []string{},
		H2Tags:         []string{},
		H3Tags:         []string{},
		Images:         []Image{},
		Links:          []Link{},
		StructuredData: []json.RawMessage{},
		LoadTime:       loadTimeMS,
	}

	s.Title = optText(doc.Find("title").First())
	s.Description = optAttr(doc.Find(`meta[name="description"]`).First(), "content")
	s.MetaKeywords = optAttr(doc.Find(`meta[name="keywords"]`).First(), "content")
	s.CanonicalURL = optAttr(doc.Find(`link[rel="canonical"]`).First(), "href")
	s.Robots = optAttr(doc.Find(`meta[name="robots"]`).First(), "content")

	s.OpenGraph = OpenGraph{
		Title:       optAttr(doc.Find(`meta[property="og:title"]`).First(), "content"),
		Description: optAttr(doc.Find(`meta[property="og:description"]`).First(), "content"),
		Image:       optAttr(doc.Find(`meta[property="og:image"]`).First(), "content"),
		Type:        optAttr(doc.Find(`meta[property="og:type"]`).First(), "content"),
	}
	s.TwitterCard = TwitterCard{
		Title:       optAttr(doc.Find(`meta[name="twitter:title"]`).First(), "content"),
		Description: optAttr(doc.Find(`meta[name="twitter:description"]`).First(), "content"),
		Image:       optAttr(doc.Find(`meta[name="twitter:image"]`).First(), "content"),
	}

	s.H1Tags = headings(doc, "h1")
	s.H2Tags = headings(doc, "h2")
	s.H3Tags = headings(doc, "h3")

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		resolved, err := base.Parse(strings.TrimSpace(src))
		if err != nil {
			// A bad src skips this image only.
			return
		}
		s.Images = append(s.Images, Image{
			Src: resolved.String(),
			Alt: strings.TrimSpace(sel.AttrOr("alt", "")),
		})
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		// mailto:, tel:, javascript: and friends carry no link equity.
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		kind := LinkExternal
		if strings.EqualFold(resolved.Hostname(), base.Hostname()) {
			kind = LinkInternal
		}
		s.Links = append(s.Links, Link{Href: resolved.String(), Text: text, Type: kind})
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" || !json.Valid([]byte(raw)) {
			// One broken block never aborts the remaining blocks.
			return
		}
		s.StructuredData = append(s.StructuredData, json.RawMessage(raw))
	})

	s.WordCount = visibleWordCount(doc)

	return s, nil
}

// headings returns the trimmed text of every non-empty heading of the given
// level, in document order.
func headings(doc *goquery.Document, tag string) []string {
	out := []string{}
	doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// visibleWordCount counts whitespace-separated tokens in the body text,
// excluding script, style and other non-rendered content.
func visibleWordCount(doc *goquery.Document) int {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return 0
	}
	clone := body.Clone()
	clone.Find("script, style, noscript, template").Remove()
	return len(strings.Fields(clone.Text()))
}

// optText returns the trimmed text of the first matched element, or nil when
// the element is absent or empty.
func optText(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	return optString(sel.Text())
}

// optAttr returns the trimmed attribute value of the first matched element,
// or nil when the element or attribute is absent or empty.
func optAttr(sel *goquery.Selection, attr string) *string {
	if sel.Length() == 0 {
		return nil
	}
	v, ok := sel.Attr(attr)
	if !ok {
		return nil
	}
	return optString(v)
}

func optString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
