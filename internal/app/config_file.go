package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// duration wraps time.Duration so config files can say "10s" instead of
// nanosecond integers.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(parsed)
	return nil
}

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally to flags and env.
type FileConfig struct {
	Server struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"server" json:"server"`

	Fetch struct {
		Timeout      duration `yaml:"timeout" json:"timeout"`
		UserAgent    string   `yaml:"userAgent" json:"userAgent"`
		MaxRedirects int      `yaml:"maxRedirects" json:"maxRedirects"`
	} `yaml:"fetch" json:"fetch"`

	Storage struct {
		PostgresDSN string   `yaml:"postgresDSN" json:"postgresDSN"`
		RedisAddr   string   `yaml:"redisAddr" json:"redisAddr"`
		CacheTTL    duration `yaml:"cacheTTL" json:"cacheTTL"`
	} `yaml:"storage" json:"storage"`

	PDF struct {
		Enable bool   `yaml:"enable" json:"enable"`
		Dir    string `yaml:"dir" json:"dir"`
	} `yaml:"pdf" json:"pdf"`

	Assistant struct {
		Providers []struct {
			Name    string `yaml:"name" json:"name"`
			BaseURL string `yaml:"base" json:"base"`
			Model   string `yaml:"model" json:"model"`
			APIKey  string `yaml:"key" json:"key"`
		} `yaml:"providers" json:"providers"`
	} `yaml:"assistant" json:"assistant"`

	RateLimit struct {
		RPS   float64 `yaml:"rps" json:"rps"`
		Burst int     `yaml:"burst" json:"burst"`
	} `yaml:"rateLimit" json:"rateLimit"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields
// that are currently unset. Flags should already have been parsed; the file
// supplies defaults while explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.ListenAddr == "" && fc.Server.Addr != "" {
		cfg.ListenAddr = fc.Server.Addr
	}
	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.RedirectMaxHops == 0 && fc.Fetch.MaxRedirects > 0 {
		cfg.RedirectMaxHops = fc.Fetch.MaxRedirects
	}
	if cfg.PostgresDSN == "" && fc.Storage.PostgresDSN != "" {
		cfg.PostgresDSN = fc.Storage.PostgresDSN
	}
	if cfg.RedisAddr == "" && fc.Storage.RedisAddr != "" {
		cfg.RedisAddr = fc.Storage.RedisAddr
	}
	if cfg.CacheTTL == 0 && fc.Storage.CacheTTL > 0 {
		cfg.CacheTTL = time.Duration(fc.Storage.CacheTTL)
	}
	if !cfg.EnablePDF && fc.PDF.Enable {
		cfg.EnablePDF = true
	}
	if cfg.ReportDir == "" && fc.PDF.Dir != "" {
		cfg.ReportDir = fc.PDF.Dir
	}
	if len(cfg.Providers) == 0 {
		for _, p := range fc.Assistant.Providers {
			cfg.Providers = append(cfg.Providers, ProviderConfig{
				Name:    p.Name,
				BaseURL: p.BaseURL,
				Model:   p.Model,
				APIKey:  p.APIKey,
			})
		}
	}
	if cfg.RateLimitRPS == 0 && fc.RateLimit.RPS > 0 {
		cfg.RateLimitRPS = fc.RateLimit.RPS
	}
	if cfg.RateLimitBurst == 0 && fc.RateLimit.Burst > 0 {
		cfg.RateLimitBurst = fc.RateLimit.Burst
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation and fills defaults for
// required settings.
func ValidateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.FetchTimeout < 0 {
		return errors.New("config: negative fetch timeout is not allowed")
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 5
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 10
	}
	for _, p := range cfg.Providers {
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("config: assistant provider %q has no model", p.Name)
		}
	}
	return nil
}
