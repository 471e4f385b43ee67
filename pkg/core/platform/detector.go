// Package platform classifies a client's user agent into the platform, browser
// and device class used for redirect rules and analytics.
//
// Detection is a plain substring heuristic over the lower-cased user agent.
// The order of the checks matters: Android phones advertise "mobile" and must
// be ruled out of the tablet branch before they reach the mobile branch.
package platform

import (
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
)

// DefaultRegionHeader is the header edge proxies use to pass the client country.
const DefaultRegionHeader = "CF-IPCountry"

// Detect classifies userAgent. Region is left empty.
func Detect(userAgent string) domain.DeviceInfo {
	ua := strings.ToLower(userAgent)
	return domain.DeviceInfo{
		Platform: detectPlatform(ua),
		Browser:  detectBrowser(ua),
		Device:   detectDevice(ua),
	}
}

// DetectRequest classifies the request's user agent and reads the region from
// regionHeader when set.
func DetectRequest(r *http.Request, regionHeader string) domain.DeviceInfo {
	info := Detect(r.UserAgent())
	if regionHeader != "" {
		info.Region = strings.ToUpper(strings.TrimSpace(r.Header.Get(regionHeader)))
	}
	return info
}

func DetectPlatform(userAgent string) domain.Platform {
	return detectPlatform(strings.ToLower(userAgent))
}

func DetectBrowser(userAgent string) domain.Browser {
	return detectBrowser(strings.ToLower(userAgent))
}

func DetectDevice(userAgent string) domain.DeviceClass {
	return detectDevice(strings.ToLower(userAgent))
}

func detectPlatform(ua string) domain.Platform {
	switch {
	case containsAny(ua, "iphone", "ipad", "ipod"):
		return domain.PlatformIOS
	case strings.Contains(ua, "android"):
		return domain.PlatformAndroid
	default:
		return domain.PlatformWeb
	}
}

func detectBrowser(ua string) domain.Browser {
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		return domain.BrowserChrome
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		return domain.BrowserSafari
	case strings.Contains(ua, "firefox"):
		return domain.BrowserFirefox
	case strings.Contains(ua, "edg"):
		return domain.BrowserEdge
	default:
		return domain.BrowserOther
	}
}

func detectDevice(ua string) domain.DeviceClass {
	switch {
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return domain.DeviceTablet
	case containsAny(ua, "iphone", "ipod", "android"):
		return domain.DeviceMobile
	default:
		return domain.DeviceDesktop
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
