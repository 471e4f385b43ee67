// Package sdk validates and parses incoming app links (custom scheme or
// universal links) against a link configuration.
//
// A Client starts unconfigured and accepts exactly one successful Configure
// call. The caller owns the Client; there is no package-level instance.
package sdk

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

type Client struct {
	mu          sync.Mutex // guards initialized and config
	initialized bool
	config      *Config

	currentMu sync.RWMutex
	current   *DeepLink

	logger Logger
	opener Opener
	now    func() time.Time
}

type Option func(*Client)

// WithLogger sets the sink for gated log output.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOpener sets the capability used to open the fallback URL.
func WithOpener(o Opener) Option {
	return func(c *Client) { c.opener = o }
}

// WithClock overrides the time source used for DeepLink timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns an unconfigured Client.
func New(opts ...Option) *Client {
	c := &Client{
		logger: NewStdLogger(nil),
		opener: nopOpener{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewConfigured returns a Client that has already accepted cfg.
func NewConfigured(cfg Config, opts ...Option) (*Client, error) {
	c := New(opts...)
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure validates cfg and stores a copy of it. It fails with
// ErrAlreadyInitialized once a previous call succeeded.
func (c *Client) Configure(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stored := cfg.clone()
	c.config = &stored
	c.initialized = true
	return nil
}

// Reset returns the client to its unconfigured state. Intended for tests.
func (c *Client) Reset() {
	c.mu.Lock()
	c.config = nil
	c.initialized = false
	c.mu.Unlock()

	c.currentMu.Lock()
	c.current = nil
	c.currentMu.Unlock()
}

// IsConfigured reports whether Configure has succeeded since the last Reset.
func (c *Client) IsConfigured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Config returns a copy of the active configuration.
func (c *Client) Config() (Config, error) {
	cfg, err := c.activeConfig()
	if err != nil {
		return Config{}, err
	}
	return cfg.clone(), nil
}

// CurrentLink returns the most recent successfully handled link. Concurrent
// handlers overwrite each other; callers needing per-request results should use
// Parse instead.
func (c *Client) CurrentLink() (DeepLink, bool) {
	c.currentMu.RLock()
	defer c.currentMu.RUnlock()
	if c.current == nil {
		return DeepLink{}, false
	}
	return *c.current, true
}

// HandleDeepLink parses raw and handles it as HandleURL does. A string that is
// not a URL is reported as unhandled, not as an error.
func (c *Client) HandleDeepLink(raw string) (bool, error) {
	cfg, err := c.activeConfig()
	if err != nil {
		return false, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		c.log(cfg, LogError, fmt.Sprintf("Failed to parse URL: %v", err))
		return false, nil
	}
	return c.handle(cfg, u)
}

// HandleURL reports whether u was accepted and became the current link.
//
// URLs whose scheme matches neither configured scheme return false without an
// error. A parse failure (such as a missing required parameter) is returned as
// an error unless a fallback URL is configured, in which case the fallback is
// opened and false is returned.
func (c *Client) HandleURL(u *url.URL) (bool, error) {
	cfg, err := c.activeConfig()
	if err != nil {
		return false, err
	}
	if u == nil {
		c.log(cfg, LogError, "Failed to parse URL components")
		return false, nil
	}
	return c.handle(cfg, u)
}

// Parse runs validation and extraction on u without touching the current link
// or opening the fallback URL. ok is false for URLs the client does not handle.
func (c *Client) Parse(u *url.URL) (link DeepLink, ok bool, err error) {
	cfg, err := c.activeConfig()
	if err != nil {
		return DeepLink{}, false, err
	}
	link, ok = c.parse(cfg, u)
	return link, ok, nil
}

func (c *Client) handle(cfg Config, u *url.URL) (bool, error) {
	link, ok := c.parse(cfg, u)
	if !ok {
		return false, nil
	}

	if !link.IsValid() {
		if cfg.FallbackURL != nil {
			c.log(cfg, LogWarning, "Redirecting to fallback URL: "+cfg.FallbackURL.String())
			c.opener.Open(cfg.FallbackURL)
			return false, nil
		}
		c.log(cfg, LogError, "Link validation failed: "+link.Err.Error())
		return false, link.Err
	}

	c.currentMu.Lock()
	c.current = &link
	c.currentMu.Unlock()

	c.log(cfg, LogInfo, "Successfully processed deep link: "+u.String())
	return true, nil
}

func (c *Client) parse(cfg Config, u *url.URL) (DeepLink, bool) {
	if u == nil {
		return DeepLink{}, false
	}
	if !strings.EqualFold(u.Scheme, cfg.Scheme) && !strings.EqualFold(u.Scheme, cfg.CustomScheme) {
		c.log(cfg, LogDebug, fmt.Sprintf("Invalid scheme: %q", u.Scheme))
		return DeepLink{}, false
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		c.log(cfg, LogError, fmt.Sprintf("Failed to parse URL components: %v", err))
		return DeepLink{}, false
	}

	params := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			params[key] = values[len(values)-1]
		}
	}

	var linkErr error
	for _, name := range cfg.RequiredParameters {
		if _, ok := params[name]; !ok {
			c.log(cfg, LogError, "Missing required parameter: "+name)
			linkErr = missingParameter(name)
			break
		}
	}

	custom := map[string]string{}
	for key, value := range params {
		if !strings.HasPrefix(key, cfg.CustomParameterPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, cfg.CustomParameterPrefix)
		if name == "" {
			if linkErr == nil {
				linkErr = invalidParameter(key)
			}
			continue
		}
		custom[name] = value
	}

	return DeepLink{
		URL:              u,
		Parameters:       params,
		CustomParameters: custom,
		Timestamp:        c.now(),
		Err:              linkErr,
	}, true
}

func (c *Client) activeConfig() (Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return Config{}, ErrNotInitialized
	}
	if c.config == nil {
		return Config{}, ErrConfigurationMissing
	}
	return *c.config, nil
}

func (c *Client) log(cfg Config, level LogLevel, message string) {
	if level == LogNone || level > cfg.LogLevel {
		return
	}
	c.logger.Log(level, message)
}
