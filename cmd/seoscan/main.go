package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/seoscan/internal/api"
	"github.com/hyperifyio/seoscan/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath   string
		serve        bool
		listenAddr   string
		analyzeURL   string
		outputPath   string
		enablePDF    bool
		reportDir    string
		fetchTimeout time.Duration
		userAgent    string
		postgresDSN  string
		redisAddr    string
		cacheTTL     time.Duration
		llmBase      string
		llmModel     string
		llmKey       string
		llmFbBase    string
		llmFbModel   string
		llmFbKey     string
		verbose      bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("SEOSCAN_CONFIG"), "Path to YAML/JSON config file (optional)")
	flag.BoolVar(&serve, "serve", false, "Run the HTTP API server")
	flag.StringVar(&listenAddr, "listen", os.Getenv("SEOSCAN_LISTEN"), "HTTP listen address (default :8080)")
	flag.StringVar(&analyzeURL, "url", "", "Analyze a single URL and exit")
	flag.StringVar(&outputPath, "output", "", "Path to write the report JSON (default stdout)")
	flag.BoolVar(&enablePDF, "pdf", false, "Also render the report to a PDF")
	flag.StringVar(&reportDir, "pdf.dir", "reports", "Directory for rendered PDF reports")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Per-fetch timeout bound (default 10s)")
	flag.StringVar(&userAgent, "fetch.ua", "seoscan/1.0 (+https://github.com/hyperifyio/seoscan)", "User-Agent for page fetches")
	flag.StringVar(&postgresDSN, "postgres.dsn", os.Getenv("POSTGRES_DSN"), "Postgres DSN for report persistence (optional)")
	flag.StringVar(&redisAddr, "redis.addr", os.Getenv("REDIS_ADDR"), "Redis address for report caching (optional)")
	flag.DurationVar(&cacheTTL, "redis.ttl", 0, "Report cache TTL (default 1h)")
	flag.StringVar(&llmBase, "llm.base", os.Getenv("LLM_BASE_URL"), "Primary assistant OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Primary assistant model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "Primary assistant API key")
	flag.StringVar(&llmFbBase, "llm.fallback.base", os.Getenv("LLM_FALLBACK_BASE_URL"), "Fallback assistant base URL")
	flag.StringVar(&llmFbModel, "llm.fallback.model", os.Getenv("LLM_FALLBACK_MODEL"), "Fallback assistant model name")
	flag.StringVar(&llmFbKey, "llm.fallback.key", os.Getenv("LLM_FALLBACK_API_KEY"), "Fallback assistant API key")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		ListenAddr:   listenAddr,
		FetchTimeout: fetchTimeout,
		UserAgent:    userAgent,
		PostgresDSN:  postgresDSN,
		RedisAddr:    redisAddr,
		CacheTTL:     cacheTTL,
		ReportDir:    reportDir,
		EnablePDF:    enablePDF,
		Verbose:      verbose,
	}
	if llmModel != "" {
		cfg.Providers = append(cfg.Providers, app.ProviderConfig{
			Name: "primary", BaseURL: llmBase, Model: llmModel, APIKey: llmKey,
		})
	}
	if llmFbModel != "" {
		cfg.Providers = append(cfg.Providers, app.ProviderConfig{
			Name: "fallback", BaseURL: llmFbBase, Model: llmFbModel, APIKey: llmFbKey,
		})
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}
	if err := app.ValidateConfig(&cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if !serve && analyzeURL == "" {
		fmt.Fprintln(os.Stderr, "usage: seoscan -serve | seoscan -url https://example.com [-output report.json] [-pdf]")
		os.Exit(2)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}
	defer a.Close()

	if serve {
		runServer(a, cfg)
		return
	}
	if err := runOnce(ctx, a, cfg, analyzeURL, outputPath); err != nil {
		log.Error().Err(err).Msg("analysis failed")
		os.Exit(1)
	}
}

// runOnce analyzes one URL and writes the report JSON to outputPath or
// stdout.
func runOnce(ctx context.Context, a *app.App, cfg app.Config, url, outputPath string) error {
	rep, err := a.Analyze(ctx, url)
	if err != nil {
		return err
	}
	blob, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if outputPath == "" {
		fmt.Println(string(blob))
	} else if err := os.WriteFile(outputPath, blob, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if cfg.EnablePDF {
		// Analyze already rendered the PDF as a side effect; just point at it.
		log.Info().Str("path", filepath.Join(cfg.ReportDir, rep.FileName())).Msg("pdf report")
	}
	return nil
}

func runServer(a *app.App, cfg app.Config) {
	router := api.NewRouter(a, cfg, time.Now())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("seoscan listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
