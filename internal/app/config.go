package app

import "time"

// Config holds runtime configuration for the service. It is assembled from
// flags, environment and an optional config file in main, then passed in
// explicitly; nothing reads configuration at package level.
type Config struct {
	// HTTP API
	ListenAddr string

	// Fetching
	FetchTimeout    time.Duration
	UserAgent       string
	RedirectMaxHops int

	// Persistence and caching. Empty values disable the component.
	PostgresDSN string
	RedisAddr   string
	CacheTTL    time.Duration

	// PDF artifacts
	ReportDir string
	EnablePDF bool

	// Assistant fallback chain, tried in order.
	Providers []ProviderConfig

	// Rate limiting for the API group.
	RateLimitRPS   float64
	RateLimitBurst int

	Verbose bool
}

// ProviderConfig describes one OpenAI-compatible assistant backend.
type ProviderConfig struct {
	Name    string
	BaseURL string
	Model   string
	APIKey  string
}
