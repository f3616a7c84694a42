package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/seoscan/internal/analyze"
	"github.com/hyperifyio/seoscan/internal/assistant"
	"github.com/hyperifyio/seoscan/internal/cache"
	"github.com/hyperifyio/seoscan/internal/fetch"
	"github.com/hyperifyio/seoscan/internal/metrics"
	"github.com/hyperifyio/seoscan/internal/render"
	"github.com/hyperifyio/seoscan/internal/report"
	"github.com/hyperifyio/seoscan/internal/rules"
	"github.com/hyperifyio/seoscan/internal/score"
	"github.com/hyperifyio/seoscan/internal/store"
)

// ErrInvalidURL marks a request rejected before any fetch is attempted.
var ErrInvalidURL = errors.New("invalid url")

// App owns the long-lived client handles and runs the analysis pipeline.
// Every external collaborator is constructed once here and passed in, so
// tests can substitute any of them.
type App struct {
	cfg     Config
	fetcher *fetch.Client
	scoring score.Config
	store   *store.Postgres
	cache   *cache.Reports
	chain   *assistant.Chain
	metrics *metrics.Metrics
}

// New wires the application from its configuration. Postgres, Redis and the
// assistant providers are optional; leaving them unconfigured disables the
// corresponding side effect.
func New(ctx context.Context, cfg Config, reg prometheus.Registerer) (*App, error) {
	a := &App{
		cfg: cfg,
		fetcher: &fetch.Client{
			UserAgent:       cfg.UserAgent,
			Timeout:         cfg.FetchTimeout,
			RedirectMaxHops: cfg.RedirectMaxHops,
		},
		scoring: score.DefaultConfig(),
		metrics: metrics.New(reg),
		chain:   &assistant.Chain{},
	}

	if cfg.PostgresDSN != "" {
		st, err := store.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		if err := st.Init(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("init store: %w", err)
		}
		a.store = st
	}

	if cfg.RedisAddr != "" {
		rc := cache.NewReports(cfg.RedisAddr, cfg.CacheTTL)
		// Preflight is best effort; a down cache degrades to misses.
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable; report cache degraded to misses")
		}
		cancel()
		a.cache = rc
	}

	for _, p := range cfg.Providers {
		clientCfg := openai.DefaultConfig(p.APIKey)
		if p.BaseURL != "" {
			clientCfg.BaseURL = p.BaseURL
		}
		a.chain.Providers = append(a.chain.Providers, &assistant.OpenAIProvider{
			Label: p.Name,
			Model: p.Model,
			Inner: openai.NewClientWithConfig(clientCfg),
		})
	}

	if cfg.EnablePDF {
		if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
			return nil, fmt.Errorf("report dir: %w", err)
		}
	}

	return a, nil
}

func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// Analyze runs the full pipeline for one URL: validate, fetch, extract,
// evaluate rules, score and assemble. Persistence, caching and PDF rendering
// are best-effort side effects; their failures never fail the analysis.
func (a *App) Analyze(ctx context.Context, rawURL string) (*report.Report, error) {
	started := time.Now()

	pageURL, err := normalizeURL(rawURL)
	if err != nil {
		a.metrics.IncFailure("invalid_url")
		return nil, err
	}

	res, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		a.metrics.IncFailure(failureKind(err))
		return nil, err
	}
	a.metrics.ObserveFetch(res.Elapsed)

	signals, err := analyze.Extract(res.Body, pageURL, int(res.Elapsed.Milliseconds()))
	if err != nil {
		a.metrics.IncFailure("parse")
		return nil, err
	}

	findings := rules.Evaluate(signals)
	rep := score.Assemble(signals, findings, a.scoring, time.Now().UTC())

	log.Info().
		Str("url", pageURL).
		Int("score", rep.OverallScore).
		Int("issues", len(rep.Issues)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")

	if a.cache != nil {
		a.cache.Set(ctx, rep)
	}
	if a.store != nil {
		if err := a.store.Save(ctx, rep); err != nil {
			a.metrics.IncFailure("store")
			log.Error().Err(err).Str("url", pageURL).Msg("persist report failed")
		}
	}
	if a.cfg.EnablePDF {
		path := filepath.Join(a.cfg.ReportDir, rep.FileName())
		if err := render.WritePDF(rep, path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("render pdf failed")
		} else {
			log.Debug().Str("path", path).Msg("wrote pdf report")
		}
	}

	a.metrics.ObserveAnalysis(time.Since(started))
	return rep, nil
}

// LatestReport returns the most recent report for the URL, preferring the
// cache over the store.
func (a *App) LatestReport(ctx context.Context, rawURL string) (*report.Report, error) {
	pageURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		if rep, ok := a.cache.Get(ctx, pageURL); ok {
			return rep, nil
		}
	}
	if a.store == nil {
		return nil, store.ErrNotFound
	}
	rep, err := a.store.Latest(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Set(ctx, rep)
	}
	return rep, nil
}

// Ask answers a question about the latest report for the URL through the
// assistant provider chain.
func (a *App) Ask(ctx context.Context, rawURL, question string) (assistant.Answer, error) {
	rep, err := a.LatestReport(ctx, rawURL)
	if err != nil {
		return assistant.Answer{}, err
	}
	return a.chain.Ask(ctx, rep, question), nil
}

// normalizeURL validates that the input is a well-formed absolute http(s)
// URL and returns its canonical string form.
func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if !u.IsAbs() || u.Host == "" || (scheme != "http" && scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return u.String(), nil
}

func failureKind(err error) string {
	if errors.Is(err, fetch.ErrTimeout) {
		return "timeout"
	}
	var se *fetch.StatusError
	if errors.As(err, &se) {
		return "target_status"
	}
	return "internal"
}
