// Package deeplink picks the best app link for a platform from a link's
// deep-link configuration, degrading to store pages and finally to a download page.
package deeplink

import (
	"errors"
	"net/url"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
)

// DefaultDownloadURL is used when a platform has no usable configuration.
const DefaultDownloadURL = "https://example.com/download"

var ErrNoValidConfiguration = errors.New("no valid link configuration provided")

// Target is the outcome of link generation. Fallback is set when the URL is the
// download page rather than something derived from the platform config.
type Target struct {
	URL      string
	Fallback bool
}

type Generator struct {
	downloadURL string
}

// NewGenerator returns a Generator falling back to downloadURL, or to
// DefaultDownloadURL when downloadURL is empty.
func NewGenerator(downloadURL string) *Generator {
	if downloadURL == "" {
		downloadURL = DefaultDownloadURL
	}
	return &Generator{downloadURL: downloadURL}
}

func (g *Generator) DownloadURL() string {
	return g.downloadURL
}

// IOSLink prefers the universal link, then the custom scheme, then the App Store page.
func (g *Generator) IOSLink(cfg *domain.IOSConfig) (string, error) {
	if cfg == nil {
		return "", ErrNoValidConfiguration
	}
	switch {
	case cfg.UniversalLink != "":
		return cfg.UniversalLink, nil
	case cfg.CustomScheme != "":
		return cfg.CustomScheme, nil
	case cfg.AppStoreID != "":
		return "https://apps.apple.com/app/id" + cfg.AppStoreID, nil
	}
	return "", ErrNoValidConfiguration
}

// AndroidLink prefers the app link, then the custom scheme, then the Play Store page.
func (g *Generator) AndroidLink(cfg *domain.AndroidConfig) (string, error) {
	if cfg == nil {
		return "", ErrNoValidConfiguration
	}
	switch {
	case cfg.AppLink != "":
		return cfg.AppLink, nil
	case cfg.CustomScheme != "":
		return cfg.CustomScheme, nil
	case cfg.PackageName != "":
		return "https://play.google.com/store/apps/details?id=" + url.QueryEscape(cfg.PackageName), nil
	}
	return "", ErrNoValidConfiguration
}

// FallbackLink tries the platform generator and returns the download page on
// any failure. It never fails.
func (g *Generator) FallbackLink(p domain.Platform, cfg domain.DeepLinkConfig) Target {
	var (
		link string
		err  error
	)
	switch {
	case p == domain.PlatformIOS && cfg.IOS != nil:
		link, err = g.IOSLink(cfg.IOS)
	case p == domain.PlatformAndroid && cfg.Android != nil:
		link, err = g.AndroidLink(cfg.Android)
	default:
		return g.download()
	}
	if err != nil {
		return g.download()
	}
	return Target{URL: link}
}

// DeepLink dispatches on platform. Anything other than ios/android, or a
// platform without usable configuration, yields the download page.
func (g *Generator) DeepLink(p domain.Platform, cfg domain.DeepLinkConfig) Target {
	switch p {
	case domain.PlatformIOS:
		if cfg.IOS != nil {
			if link, err := g.IOSLink(cfg.IOS); err == nil {
				return Target{URL: link}
			}
		}
	case domain.PlatformAndroid:
		if cfg.Android != nil {
			if link, err := g.AndroidLink(cfg.Android); err == nil {
				return Target{URL: link}
			}
		}
	}
	return g.FallbackLink(p, cfg)
}

func (g *Generator) download() Target {
	return Target{URL: g.downloadURL, Fallback: true}
}
