package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/sdk"
)

type Config struct {
	Port               string
	DatabaseURL        string
	AppEnv             string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	FrontendURL        string
	AllowedEmails      []string

	// Redirect
	DownloadURL    string
	RegionHeader   string
	TrackTimeout   time.Duration
	IPHashSalt     string
	RateLimitRPS   float64
	RateLimitBurst int

	// Deep link parsing
	DeepLinkDomain         string
	DeepLinkScheme         string
	DeepLinkCustomScheme   string
	DeepLinkPathPrefix     string
	DeepLinkRequiredParams []string
	DeepLinkExpiration     time.Duration
	DeepLinkFallbackURL    string
	DeepLinkParamPrefix    string
	DeepLinkLogLevel       string
}

// Load reads .env (if present), then an optional config.yaml from . or
// ./configs. Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "file:db.sqlite")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("FRONTEND_URL", "http://localhost:8080/dashboard")
	v.SetDefault("ALLOWED_EMAILS", "")

	v.SetDefault("DOWNLOAD_URL", "https://example.com/download")
	v.SetDefault("REGION_HEADER", "CF-IPCountry")
	v.SetDefault("TRACK_TIMEOUT", "5s")
	v.SetDefault("IP_HASH_SALT", "")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("DEEPLINK_DOMAIN", "")
	v.SetDefault("DEEPLINK_SCHEME", sdk.DefaultScheme)
	v.SetDefault("DEEPLINK_CUSTOM_SCHEME", "")
	v.SetDefault("DEEPLINK_PATH_PREFIX", sdk.DefaultPathPrefix)
	v.SetDefault("DEEPLINK_REQUIRED_PARAMS", "")
	v.SetDefault("DEEPLINK_EXPIRATION", sdk.DefaultLinkExpiration.String())
	v.SetDefault("DEEPLINK_FALLBACK_URL", "")
	v.SetDefault("DEEPLINK_PARAM_PREFIX", sdk.DefaultCustomParameterPrefix)
	v.SetDefault("DEEPLINK_LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               v.GetString("PORT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		AppEnv:             v.GetString("APP_ENV"),
		BaseURL:            v.GetString("BASE_URL"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		FrontendURL:        v.GetString("FRONTEND_URL"),
		AllowedEmails:      splitList(v.GetString("ALLOWED_EMAILS")),

		DownloadURL:    v.GetString("DOWNLOAD_URL"),
		RegionHeader:   v.GetString("REGION_HEADER"),
		TrackTimeout:   v.GetDuration("TRACK_TIMEOUT"),
		IPHashSalt:     v.GetString("IP_HASH_SALT"),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		DeepLinkDomain:         v.GetString("DEEPLINK_DOMAIN"),
		DeepLinkScheme:         v.GetString("DEEPLINK_SCHEME"),
		DeepLinkCustomScheme:   v.GetString("DEEPLINK_CUSTOM_SCHEME"),
		DeepLinkPathPrefix:     v.GetString("DEEPLINK_PATH_PREFIX"),
		DeepLinkRequiredParams: splitList(v.GetString("DEEPLINK_REQUIRED_PARAMS")),
		DeepLinkExpiration:     v.GetDuration("DEEPLINK_EXPIRATION"),
		DeepLinkFallbackURL:    v.GetString("DEEPLINK_FALLBACK_URL"),
		DeepLinkParamPrefix:    v.GetString("DEEPLINK_PARAM_PREFIX"),
		DeepLinkLogLevel:       v.GetString("DEEPLINK_LOG_LEVEL"),
	}
}

// DeepLinkEnabled reports whether enough is configured to run the deep link parser.
func (c *Config) DeepLinkEnabled() bool {
	return c.DeepLinkDomain != "" && c.DeepLinkCustomScheme != ""
}

// DeepLink builds and validates the SDK configuration.
func (c *Config) DeepLink() (sdk.Config, error) {
	cfg := sdk.DefaultConfig(c.DeepLinkDomain, c.DeepLinkCustomScheme)
	if c.DeepLinkScheme != "" {
		cfg.Scheme = c.DeepLinkScheme
	}
	if c.DeepLinkPathPrefix != "" {
		cfg.PathPrefix = c.DeepLinkPathPrefix
	}
	cfg.RequiredParameters = c.DeepLinkRequiredParams
	cfg.LinkExpiration = c.DeepLinkExpiration
	cfg.CustomParameterPrefix = c.DeepLinkParamPrefix

	if c.DeepLinkFallbackURL != "" {
		u, err := url.Parse(c.DeepLinkFallbackURL)
		if err != nil {
			return sdk.Config{}, fmt.Errorf("DEEPLINK_FALLBACK_URL: %w", err)
		}
		cfg.FallbackURL = u
	}

	level, err := sdk.ParseLogLevel(c.DeepLinkLogLevel)
	if err != nil {
		return sdk.Config{}, fmt.Errorf("DEEPLINK_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return sdk.Config{}, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
