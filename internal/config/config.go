package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Evaluation modes.
const (
	EvaluationModeAsync  = "async"
	EvaluationModeInline = "inline"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	NATSSubject       string
	JWTSecret         string
	DashboardCacheTTL time.Duration
	AIProvider        string
	AIAPIKey          string
	AIBaseURL         string
	AIModel           string
	AIJSONMode        bool
	AITimeout         time.Duration
	EvaluationMode    string
	EvaluationWorkers int
	GitHubAPIURL      string
	GitHubToken       string
	OEmbedURL         string
	SourceTimeout     time.Duration
	SubmitRateLimit   int
	DefaultCriteria   string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HACKJUDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "hackjudge")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("database.url", "sqlite://hackathon.db")
	v.SetDefault("nats.subject", "hackjudge.evaluations")
	v.SetDefault("dashboard.cache_ttl", "15s")
	v.SetDefault("ai.provider", "cerebras")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("evaluation.mode", EvaluationModeAsync)
	v.SetDefault("evaluation.workers", 4)
	v.SetDefault("sources.timeout", "30s")
	v.SetDefault("ratelimit.submit_per_minute", 30)
	v.SetDefault("hackathon.default_criteria", "Evaluate based on innovation and impact.")

	ttl, err := parseDuration(v, "dashboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	aiTimeout, err := parseDuration(v, "ai.timeout")
	if err != nil {
		return Config{}, err
	}
	sourceTimeout, err := parseDuration(v, "sources.timeout")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		JWTSecret:         v.GetString("jwt.secret"),
		DashboardCacheTTL: ttl,
		AIProvider:        strings.ToLower(v.GetString("ai.provider")),
		AIAPIKey:          v.GetString("ai.api_key"),
		AIBaseURL:         v.GetString("ai.base_url"),
		AIModel:           v.GetString("ai.model"),
		AIJSONMode:        v.GetBool("ai.json_mode"),
		AITimeout:         aiTimeout,
		EvaluationMode:    strings.ToLower(v.GetString("evaluation.mode")),
		EvaluationWorkers: v.GetInt("evaluation.workers"),
		GitHubAPIURL:      v.GetString("sources.github_api_url"),
		GitHubToken:       v.GetString("sources.github_token"),
		OEmbedURL:         v.GetString("sources.oembed_url"),
		SourceTimeout:     sourceTimeout,
		SubmitRateLimit:   v.GetInt("ratelimit.submit_per_minute"),
		DefaultCriteria:   v.GetString("hackathon.default_criteria"),
	}

	if cfg.AIAPIKey == "" {
		// Unprefixed CEREBRAS_API_KEY is accepted as a fallback.
		_ = v.BindEnv("cerebras_api_key", "CEREBRAS_API_KEY")
		cfg.AIAPIKey = v.GetString("cerebras_api_key")
	}

	switch cfg.EvaluationMode {
	case EvaluationModeAsync, EvaluationModeInline:
	default:
		return Config{}, fmt.Errorf("invalid evaluation mode %q", cfg.EvaluationMode)
	}

	if cfg.EvaluationWorkers <= 0 {
		cfg.EvaluationWorkers = 4
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}
