package analyze

import (
	"strings"
	"testing"
)

const fixturePage = `<!doctype html>
<html>
  <head>
    <title>  Widgets and More  </title>
    <meta name="description" content="A catalog of widgets.">
    <meta name="keywords" content="widgets, gadgets">
    <meta name="robots" content="index, follow">
    <link rel="canonical" href="https://example.com/widgets">
    <meta property="og:title" content="Widgets">
    <meta property="og:description" content="All the widgets.">
    <meta property="og:image" content="https://example.com/og.png">
    <meta name="twitter:title" content="Widgets on Twitter">
    <script type="application/ld+json">{"@type":"Product","name":"Widget"}</script>
    <script type="application/ld+json">{not valid json</script>
    <script type="application/ld+json">{"@type":"Organization"}</script>
  </head>
  <body>
    <h1>Widget Catalog</h1>
    <h2>Featured</h2>
    <h2>   </h2>
    <h3>Blue widgets</h3>
    <p>Widgets come in many shapes and sizes for every occasion.</p>
    <img src="/img/widget.png" alt="A widget">
    <img src="relative.png">
    <img src="%zz">
    <img alt="no source">
    <a href="/catalog">Full catalog</a>
    <a href="https://other.example.org/review">Independent review</a>
    <a href="mailto:sales@example.com">Email us</a>
    <a href="/empty-text"><img src="/icon.png"></a>
    <script>var hidden = "not counted words here";</script>
  </body>
</html>`

func TestExtract_Fixture(t *testing.T) {
	s, err := Extract([]byte(fixturePage), "https://example.com/widgets", 1200)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if s.Title == nil || *s.Title != "Widgets and More" {
		t.Fatalf("expected trimmed title, got %v", s.Title)
	}
	if s.Description == nil || *s.Description != "A catalog of widgets." {
		t.Fatalf("unexpected description: %v", s.Description)
	}
	if s.MetaKeywords == nil || *s.MetaKeywords != "widgets, gadgets" {
		t.Fatalf("unexpected keywords: %v", s.MetaKeywords)
	}
	if s.CanonicalURL == nil || *s.CanonicalURL != "https://example.com/widgets" {
		t.Fatalf("unexpected canonical: %v", s.CanonicalURL)
	}
	if s.Robots == nil || *s.Robots != "index, follow" {
		t.Fatalf("unexpected robots: %v", s.Robots)
	}
	if s.LoadTime != 1200 {
		t.Fatalf("expected load time 1200, got %d", s.LoadTime)
	}
}

func TestExtract_OpenGraphAndTwitter(t *testing.T) {
	s, err := Extract([]byte(fixturePage), "https://example.com/widgets", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if s.OpenGraph.Title == nil || *s.OpenGraph.Title != "Widgets" {
		t.Fatalf("unexpected og title: %v", s.OpenGraph.Title)
	}
	if !s.OpenGraph.Complete() {
		t.Fatalf("expected complete open graph")
	}
	if s.OpenGraph.Type != nil {
		t.Fatalf("og:type is absent in fixture, got %v", s.OpenGraph.Type)
	}
	if s.TwitterCard.Title == nil || *s.TwitterCard.Title != "Widgets on Twitter" {
		t.Fatalf("unexpected twitter title: %v", s.TwitterCard.Title)
	}
	if s.TwitterCard.Image != nil {
		t.Fatalf("twitter image is absent in fixture, got %v", s.TwitterCard.Image)
	}
}

func TestExtract_HeadingsInOrderSkippingEmpty(t *testing.T) {
	s, err := Extract([]byte(fixturePage), "https://example.com/widgets", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(s.H1Tags) != 1 || s.H1Tags[0] != "Widget Catalog" {
		t.Fatalf("unexpected h1 tags: %v", s.H1Tags)
	}
	// The whitespace-only h2 must be skipped.
	if len(s.H2Tags) != 1 || s.H2Tags[0] != "Featured" {
		t.Fatalf("unexpected h2 tags: %v", s.H2Tags)
	}
	if len(s.H3Tags) != 1 || s.H3Tags[0] != "Blue widgets" {
		t.Fatalf("unexpected h3 tags: %v", s.H3Tags)
	}
}

func TestExtract_ImagesResolvedAndBadSrcSkipped(t *testing.T) {
	s, err := Extract([]byte(fixturePage), "https://example.com/widgets", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// Four img tags in the body: one absolute-resolvable with alt, one
	// relative without alt, one with an unresolvable src (skipped), one
	// without src (skipped). Plus the icon inside the textless anchor.
	if len(s.Images) != 3 {
		t.Fatalf("expected 3 images, got %d: %v", len(s.Images), s.Images)
	}
	if s.Images[0].Src != "https://example.com/img/widget.png" || s.Images[0].Alt != "A widget" {
		t.Fatalf("unexpected first image: %+v", s.Images[0])
	}
	if s.Images[1].Src != "https://example.com/relative.png" || s.Images[1].Alt != "" {
		t.Fatalf("expected relative src resolved with empty alt sentinel, got %+v", s.Images[1])
	}
	if s.MissingAltCount() != 2 {
		t.Fatalf("expected 2 images missing alt, got %d", s.MissingAltCount())
	}
}

func TestExtract_LinkClassification(t *testing.T) {
	s, err := Extract([]byte(fixturePage), "https://example.com/widgets", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// mailto and the textless anchor are skipped.
	if len(s.Links) != 2 {
		t.Fatalf("expected 2 links, got %d: %v", len(s.Links), s.Links)
	}
	if s.Links[0].Type != LinkInternal || s.Links[0].Href != "https://example.com/catalog" {
		t.Fatalf("unexpected first link: %+v", s.Links[0])
	}
	if s.Links[1].Type != LinkExternal || s.Links[1].Href != "https://other.example.org/review" {
		t.Fatalf("unexpected second link: %+v", s.Links[1])
	}
	if s.InternalLinkCount() != 1 || s.ExternalLinkCount() != 1 {
		t.Fatalf("unexpected link counts: internal=%d external=%d", s.InternalLinkCount(), s.ExternalLinkCount())
	}
}

func TestExtract_StructuredDataSkipsInvalidBlock(t *testing.T) {
	s, err := Extract([]byte(fixturePage), "https://example.com/widgets", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// The invalid middle block is skipped; the blocks around it survive.
	if len(s.StructuredData) != 2 {
		t.Fatalf("expected 2 structured data blocks, got %d", len(s.StructuredData))
	}
	if !strings.Contains(string(s.StructuredData[0]), "Product") {
		t.Fatalf("unexpected first block: %s", s.StructuredData[0])
	}
	if !strings.Contains(string(s.StructuredData[1]), "Organization") {
		t.Fatalf("unexpected second block: %s", s.StructuredData[1])
	}
}

func TestExtract_WordCountExcludesScripts(t *testing.T) {
	html := `<html><head><title>t</title></head><body>
	<p>one two three</p>
	<script>var x = "four five six seven eight nine ten";</script>
	</body></html>`
	s, err := Extract([]byte(html), "https://example.com/", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if s.WordCount != 3 {
		t.Fatalf("expected word count 3, got %d", s.WordCount)
	}
}

func TestExtract_EmptyDocumentYieldsAbsentSignals(t *testing.T) {
	s, err := Extract([]byte("<html><body></body></html>"), "https://example.com/", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if s.Title != nil || s.Description != nil || s.CanonicalURL != nil || s.Robots != nil {
		t.Fatalf("expected absent optional signals, got %+v", s)
	}
	if len(s.H1Tags) != 0 || len(s.Images) != 0 || len(s.Links) != 0 || len(s.StructuredData) != 0 {
		t.Fatalf("expected empty sequences, got %+v", s)
	}
	if s.WordCount != 0 {
		t.Fatalf("expected zero word count, got %d", s.WordCount)
	}
}

func TestExtract_EmptyTitleTagIsAbsent(t *testing.T) {
	s, err := Extract([]byte("<html><head><title>   </title></head><body></body></html>"), "https://example.com/", 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if s.Title != nil {
		t.Fatalf("whitespace-only title should be treated as absent, got %q", *s.Title)
	}
}

func TestExtract_RejectsRelativePageURL(t *testing.T) {
	if _, err := Extract([]byte("<html></html>"), "/not/absolute", 0); err == nil {
		t.Fatalf("expected error for relative page URL")
	}
}
