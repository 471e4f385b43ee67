package sdk

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig("links.example.com", "myapp")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"uppercase scheme", func(c *Config) { c.Scheme = "HTTPS" }, nil},
		{"http scheme", func(c *Config) { c.Scheme = "http" }, nil},
		{"empty domain", func(c *Config) { c.Domain = "" }, ErrInvalidDomain},
		{"ftp scheme", func(c *Config) { c.Scheme = "ftp" }, ErrInvalidScheme},
		{"empty scheme", func(c *Config) { c.Scheme = "" }, ErrInvalidScheme},
		{"empty custom scheme", func(c *Config) { c.CustomScheme = "" }, ErrInvalidScheme},
		{"zero expiration", func(c *Config) { c.LinkExpiration = 0 }, ErrInvalidExpirationTime},
		{"negative expiration", func(c *Config) { c.LinkExpiration = -time.Second }, ErrInvalidExpirationTime},
		{"empty prefix", func(c *Config) { c.CustomParameterPrefix = "" }, ErrInvalidParameterPrefix},
		{"first failure wins", func(c *Config) {
			c.Domain = ""
			c.Scheme = "ftp"
			c.CustomParameterPrefix = ""
		}, ErrInvalidDomain},
		{"scheme before expiration", func(c *Config) {
			c.CustomScheme = ""
			c.LinkExpiration = 0
		}, ErrInvalidScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"none":    LogNone,
		"ERROR":   LogError,
		"warn":    LogWarning,
		"warning": LogWarning,
		"":        LogInfo,
		"debug":   LogDebug,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestURLBuilders(t *testing.T) {
	cfg := DefaultConfig("links.example.com", "myapp")
	params := map[string]string{"id": "42", "custom_ref": "mail"}

	if got, want := cfg.DeepLinkURL(params).String(), "https://links.example.com/app/?custom_ref=mail&id=42"; got != want {
		t.Errorf("DeepLinkURL() = %q, want %q", got, want)
	}
	if got, want := cfg.CustomSchemeURL(params).String(), "myapp://open?custom_ref=mail&id=42"; got != want {
		t.Errorf("CustomSchemeURL() = %q, want %q", got, want)
	}
	if got, want := cfg.CustomSchemeURL(nil).String(), "myapp://open"; got != want {
		t.Errorf("CustomSchemeURL(nil) = %q, want %q", got, want)
	}
}

func TestConfigureStoresCopy(t *testing.T) {
	fallback, _ := url.Parse("https://example.com/fallback")
	cfg := DefaultConfig("links.example.com", "myapp")
	cfg.RequiredParameters = []string{"id"}
	cfg.FallbackURL = fallback

	c, err := NewConfigured(cfg, WithLogger(LoggerFunc(func(LogLevel, string) {})))
	if err != nil {
		t.Fatal(err)
	}
	cfg.RequiredParameters[0] = "changed"
	fallback.Host = "changed.example.com"

	stored, err := c.Config()
	if err != nil {
		t.Fatal(err)
	}
	if stored.RequiredParameters[0] != "id" {
		t.Errorf("required parameters were shared with the caller")
	}
	if stored.FallbackURL.Host != "example.com" {
		t.Errorf("fallback URL was shared with the caller")
	}
}
