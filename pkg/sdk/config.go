package sdk

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Defaults applied by DefaultConfig.
const (
	DefaultPathPrefix            = "/app/"
	DefaultScheme                = "https"
	DefaultLinkExpiration        = time.Hour
	DefaultCustomParameterPrefix = "custom_"
)

// LogLevel gates SDK log output. A message is emitted when its level is at or
// below the configured level.
type LogLevel int

const (
	LogNone LogLevel = iota
	LogError
	LogWarning
	LogInfo
	LogDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogNone:
		return "none"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel accepts the names returned by LogLevel.String, plus "warn".
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return LogNone, nil
	case "error":
		return LogError, nil
	case "warning", "warn":
		return LogWarning, nil
	case "info", "":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	}
	return LogNone, fmt.Errorf("unknown log level %q", s)
}

// Config describes which URLs the client accepts and how it extracts parameters.
type Config struct {
	Domain                string
	PathPrefix            string
	Scheme                string
	CustomScheme          string
	RequiredParameters    []string
	LinkExpiration        time.Duration
	FallbackURL           *url.URL
	CustomParameterPrefix string
	LogLevel              LogLevel
}

// DefaultConfig returns a Config for domain and customScheme with the remaining
// fields at their defaults.
func DefaultConfig(domain, customScheme string) Config {
	return Config{
		Domain:                domain,
		PathPrefix:            DefaultPathPrefix,
		Scheme:                DefaultScheme,
		CustomScheme:          customScheme,
		LinkExpiration:        DefaultLinkExpiration,
		CustomParameterPrefix: DefaultCustomParameterPrefix,
		LogLevel:              LogInfo,
	}
}

// Validate checks the fields in a fixed order and reports the first failure.
func (c Config) Validate() error {
	if c.Domain == "" {
		return ErrInvalidDomain
	}
	switch strings.ToLower(c.Scheme) {
	case "http", "https":
	default:
		return ErrInvalidScheme
	}
	if c.CustomScheme == "" {
		return ErrInvalidScheme
	}
	if c.LinkExpiration <= 0 {
		return ErrInvalidExpirationTime
	}
	if c.CustomParameterPrefix == "" {
		return ErrInvalidParameterPrefix
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.RequiredParameters = append([]string(nil), c.RequiredParameters...)
	if c.FallbackURL != nil {
		u := *c.FallbackURL
		out.FallbackURL = &u
	}
	return out
}

// DeepLinkURL builds {scheme}://{domain}{pathPrefix}?params.
func (c Config) DeepLinkURL(params map[string]string) *url.URL {
	return &url.URL{
		Scheme:   c.Scheme,
		Host:     c.Domain,
		Path:     c.PathPrefix,
		RawQuery: encodeQuery(params),
	}
}

// CustomSchemeURL builds {customScheme}://open?params.
func (c Config) CustomSchemeURL(params map[string]string) *url.URL {
	return &url.URL{
		Scheme:   c.CustomScheme,
		Host:     "open",
		RawQuery: encodeQuery(params),
	}
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Set(k, params[k])
	}
	return q.Encode()
}
