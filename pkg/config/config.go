package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds global settings for the Phishguard gateway.
// All settings can be configured via environment variables, an optional
// YAML file (PHISHGUARD_CONFIG), or programmatically.
type Config struct {
	// === Trust Anchors ===
	TrustedDomainsPath string `yaml:"trusted_domains_path"` // flat file of trusted domains (required)
	BlocklistPath      string `yaml:"blocklist_path"`       // flat file of blocked hosts (created if missing)
	KnownPhishPath     string `yaml:"known_phish_path"`     // confirmed-campaign corpus for the lookalike index (optional)

	// === Classifier Artifacts ===
	ModelPath       string `yaml:"model_path"`        // tabular ONNX artifact (optional, heuristics-only without it)
	ModelMetaPath   string `yaml:"model_meta_path"`   // sidecar path, defaults to ModelPath + ".meta.json"
	URLModelPath    string `yaml:"url_model_path"`    // transformer URL model directory (optional fallback)
	OnnxLibraryPath string `yaml:"onnx_library_path"` // libonnxruntime location, empty = platform default

	// === Blend Weights ===
	// Applied on the model path only; the heuristic fallback weights are fixed.
	MLWeight        float64 `yaml:"ml_weight"`        // default 0.9
	HomoglyphWeight float64 `yaml:"homoglyph_weight"` // default 0.1

	// === Persistence ===
	DatabaseURL string `yaml:"database_url"` // Postgres DSN for verdict/alert history (optional)

	// === Caching ===
	RedisAddr     string        `yaml:"redis_addr"`     // empty disables the verdict cache
	RedisPassword string        `yaml:"redis_password"` //
	RedisDB       int           `yaml:"redis_db"`       //
	CacheTTL      time.Duration `yaml:"cache_ttl"`      // default 5m

	// === Alerting ===
	AlertWebhookURL string `yaml:"alert_webhook_url"` // POST target for Medium/High verdicts (optional)

	// === Server ===
	ListenAddr string `yaml:"listen_addr"` // default :8080
}

// NewDefaultConfig creates a Config from environment variables with
// sensible defaults, overlaying PHISHGUARD_CONFIG when set.
func NewDefaultConfig() *Config {
	cfg := &Config{
		TrustedDomainsPath: GetEnv("PHISHGUARD_TRUSTED_DOMAINS", "trusted_domains.txt"),
		BlocklistPath:      GetEnv("PHISHGUARD_BLOCKLIST", "blocklist.txt"),
		KnownPhishPath:     GetEnv("PHISHGUARD_KNOWN_PHISH", ""),

		ModelPath:       GetEnv("PHISHGUARD_MODEL_PATH", ""),
		ModelMetaPath:   GetEnv("PHISHGUARD_MODEL_META_PATH", ""),
		URLModelPath:    GetEnv("PHISHGUARD_URL_MODEL_PATH", ""),
		OnnxLibraryPath: GetEnv("ONNX_LIBRARY_PATH", ""),

		MLWeight:        GetEnvFloat("PHISHGUARD_ML_WEIGHT", 0.9),
		HomoglyphWeight: GetEnvFloat("PHISHGUARD_HOMOGLYPH_WEIGHT", 0.1),

		DatabaseURL: GetEnv("PHISHGUARD_DATABASE_URL", ""),

		RedisAddr:     GetEnv("PHISHGUARD_REDIS_ADDR", ""),
		RedisPassword: GetEnv("PHISHGUARD_REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("PHISHGUARD_REDIS_DB", 0),
		CacheTTL:      time.Duration(GetEnvInt("PHISHGUARD_CACHE_TTL_SECONDS", 300)) * time.Second,

		AlertWebhookURL: GetEnv("PHISHGUARD_ALERT_WEBHOOK", ""),

		ListenAddr: GetEnv("PHISHGUARD_LISTEN_ADDR", ":8080"),
	}

	if path := os.Getenv("PHISHGUARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			log.Printf("[WARN] config file %s not applied: %v", path, err)
		}
	}

	return cfg
}

// NewLocalConfig creates a Config for fully offline operation: no
// database, no cache, no webhook. Use for development and air-gapped
// deployments.
func NewLocalConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.DatabaseURL = ""
	cfg.RedisAddr = ""
	cfg.AlertWebhookURL = ""
	return cfg
}

// loadFile overlays values from a YAML file. File values win over
// environment values; zero values in the file are left alone.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	applyString(&c.TrustedDomainsPath, overlay.TrustedDomainsPath)
	applyString(&c.BlocklistPath, overlay.BlocklistPath)
	applyString(&c.KnownPhishPath, overlay.KnownPhishPath)
	applyString(&c.ModelPath, overlay.ModelPath)
	applyString(&c.ModelMetaPath, overlay.ModelMetaPath)
	applyString(&c.URLModelPath, overlay.URLModelPath)
	applyString(&c.OnnxLibraryPath, overlay.OnnxLibraryPath)
	applyString(&c.DatabaseURL, overlay.DatabaseURL)
	applyString(&c.RedisAddr, overlay.RedisAddr)
	applyString(&c.RedisPassword, overlay.RedisPassword)
	applyString(&c.AlertWebhookURL, overlay.AlertWebhookURL)
	applyString(&c.ListenAddr, overlay.ListenAddr)
	if overlay.MLWeight != 0 {
		c.MLWeight = overlay.MLWeight
	}
	if overlay.HomoglyphWeight != 0 {
		c.HomoglyphWeight = overlay.HomoglyphWeight
	}
	if overlay.RedisDB != 0 {
		c.RedisDB = overlay.RedisDB
	}
	if overlay.CacheTTL != 0 {
		c.CacheTTL = overlay.CacheTTL
	}
	return nil
}

func applyString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks that required configuration is present and coherent.
func (c *Config) Validate() error {
	if c.TrustedDomainsPath == "" {
		return fmt.Errorf("trusted domains path is required (PHISHGUARD_TRUSTED_DOMAINS)")
	}
	if _, err := os.Stat(c.TrustedDomainsPath); err != nil {
		return fmt.Errorf("trusted domains file: %w", err)
	}
	if c.MLWeight < 0 || c.HomoglyphWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative (ml=%v homoglyph=%v)", c.MLWeight, c.HomoglyphWeight)
	}
	if c.MLWeight == 0 && c.HomoglyphWeight == 0 {
		return fmt.Errorf("at least one blend weight must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must be non-negative, got %v", c.CacheTTL)
	}
	return nil
}

// MustValidate is Validate for main(): it exits on error.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[FATAL] invalid configuration: %v", err)
	}
}

// Helper functions for environment variable parsing.
// Exported for use by other packages.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
