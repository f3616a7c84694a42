package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperifyio/seoscan/internal/fetch"
	"github.com/hyperifyio/seoscan/internal/report"
)

const pipelineHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>Widget Shop | Hand Built Widgets And Spare Parts</title>
    <meta name="description" content="We build widgets by hand and ship them worldwide with spare parts, repair guides and a lifetime warranty on every order.">
  </head>
  <body>
    <h1>Hand built widgets</h1>
    <h2>Why ours last longer</h2>
    <p>` + "Widgets are simple machines and ours are built to last. " + `</p>
    <a href="/catalog">Catalog</a>
  </body>
</html>`

func TestAnalyze_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		body := pipelineHTML
		// Pad the paragraph so the word count rule stays quiet.
		body = strings.Replace(body, "built to last. ", "built to last. "+strings.Repeat("More words about widgets here. ", 70), 1)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	a, err := New(context.Background(), Config{FetchTimeout: 2 * time.Second}, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer a.Close()

	rep, err := a.Analyze(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.SchemaVersion != report.SchemaVersion {
		t.Fatalf("unexpected schema version %d", rep.SchemaVersion)
	}
	if rep.OverallScore < 0 || rep.OverallScore > 100 {
		t.Fatalf("score out of bounds: %d", rep.OverallScore)
	}
	if len(rep.Sections) != 6 {
		t.Fatalf("expected six sections, got %d", len(rep.Sections))
	}
	if rep.URL != srv.URL {
		t.Fatalf("report url %q does not match input %q", rep.URL, srv.URL)
	}
}

func TestAnalyze_WritesPDFWhenEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pipelineHTML))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := Config{FetchTimeout: 2 * time.Second, EnablePDF: true, ReportDir: dir}
	a, err := New(context.Background(), cfg, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer a.Close()

	if _, err := a.Analyze(context.Background(), srv.URL); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read report dir: %v", err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".pdf" {
		t.Fatalf("expected one pdf in report dir, got %v", entries)
	}
}

func TestAnalyze_RejectsInvalidURL(t *testing.T) {
	a, err := New(context.Background(), Config{FetchTimeout: time.Second}, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer a.Close()

	if _, err := a.Analyze(context.Background(), "://nope"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://example.com/page", want: "https://example.com/page"},
		{in: "  https://example.com/page  ", want: "https://example.com/page"},
		{in: "HTTP://example.com", want: "http://example.com"},
		{in: "example.com/page", wantErr: true},
		{in: "ftp://example.com/file", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "", wantErr: true},
		{in: "not a url", wantErr: true},
	}
	for _, tc := range cases {
		got, err := normalizeURL(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidURL) {
				t.Fatalf("%q: expected ErrInvalidURL, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestFailureKind(t *testing.T) {
	if got := failureKind(fetch.ErrTimeout); got != "timeout" {
		t.Fatalf("timeout classified as %q", got)
	}
	if got := failureKind(&fetch.StatusError{Code: 404}); got != "target_status" {
		t.Fatalf("status error classified as %q", got)
	}
	if got := failureKind(errors.New("boom")); got != "internal" {
		t.Fatalf("generic error classified as %q", got)
	}
}

func TestLatestReport_NotFoundWithoutStore(t *testing.T) {
	a, err := New(context.Background(), Config{FetchTimeout: time.Second}, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer a.Close()

	if _, err := a.LatestReport(context.Background(), "https://example.com/"); err == nil {
		t.Fatalf("expected not found error")
	}
}
