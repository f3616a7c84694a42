package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperifyio/seoscan/internal/app"
)

const targetHTML = `<!doctype html>
<html>
  <head><title>A perfectly reasonable page title here</title></head>
  <body><h1>Heading</h1><p>Some body text.</p></body>
</html>`

func newTestRouter(t *testing.T, fetchTimeout time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := app.Config{
		FetchTimeout:   fetchTimeout,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	a, err := app.New(context.Background(), cfg, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	t.Cleanup(a.Close)
	return NewRouter(a, cfg, time.Now())
}

func postAnalyze(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"url": url})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, time.Second)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAnalyze_Success(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(targetHTML))
	}))
	defer target.Close()

	router := newTestRouter(t, 2*time.Second)
	w := postAnalyze(t, router, target.URL)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success  bool `json:"success"`
		Analysis *struct {
			URL          string   `json:"url"`
			OverallScore int      `json:"overallScore"`
			Issues       []string `json:"issues"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Analysis == nil {
		t.Fatalf("expected success with analysis: %s", w.Body.String())
	}
	if resp.Analysis.OverallScore < 0 || resp.Analysis.OverallScore > 100 {
		t.Fatalf("score out of bounds: %d", resp.Analysis.OverallScore)
	}
}

func TestAnalyze_MalformedURL(t *testing.T) {
	router := newTestRouter(t, time.Second)
	w := postAnalyze(t, router, "not a url at all")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyze_MissingBody(t *testing.T) {
	router := newTestRouter(t, time.Second)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyze_TimeoutIsDistinct(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
	}))
	defer target.Close()

	router := newTestRouter(t, 50*time.Millisecond)
	w := postAnalyze(t, router, target.URL)
	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("expected 408, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyze_TargetNotFoundPassthrough(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer target.Close()

	router := newTestRouter(t, time.Second)
	w := postAnalyze(t, router, target.URL)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAnalyze_TargetServerErrorMapsToBadGateway(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer target.Close()

	router := newTestRouter(t, time.Second)
	w := postAnalyze(t, router, target.URL)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestReports_NotFoundWithoutStore(t *testing.T) {
	router := newTestRouter(t, time.Second)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?url=https://example.com/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAssistant_RequiresExistingReport(t *testing.T) {
	router := newTestRouter(t, time.Second)
	body, _ := json.Marshal(map[string]string{"url": "https://example.com/", "question": "how do I rank?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := app.Config{FetchTimeout: time.Second, RateLimitRPS: 1, RateLimitBurst: 1}
	a, err := app.New(context.Background(), cfg, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	t.Cleanup(a.Close)
	router := NewRouter(a, cfg, time.Now())

	first := postAnalyze(t, router, "not a url")
	if first.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for first request, got %d", first.Code)
	}
	second := postAnalyze(t, router, "not a url")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", second.Code)
	}
}
