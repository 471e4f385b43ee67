package platform

import (
	"net/http/httptest"
	"testing"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
)

const (
	iphoneUA        = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"
	ipadUA          = "Mozilla/5.0 (iPad; CPU OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"
	androidPhoneUA  = "Mozilla/5.0 (Linux; Android 10; SM-A505FN) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.105 Mobile Safari/537.36"
	androidTabletUA = "Mozilla/5.0 (Linux; Android 10; SM-T500) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.105 Safari/537.36"
	chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36"
	safariDesktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Safari/605.1.15"
	firefoxUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:86.0) Gecko/20100101 Firefox/86.0"
	edgeUA          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36 Edg/89.0.774.57"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want domain.DeviceInfo
	}{
		{"iPhone", iphoneUA, domain.DeviceInfo{Platform: domain.PlatformIOS, Browser: domain.BrowserSafari, Device: domain.DeviceMobile}},
		{"iPad", ipadUA, domain.DeviceInfo{Platform: domain.PlatformIOS, Browser: domain.BrowserSafari, Device: domain.DeviceTablet}},
		{"Android phone", androidPhoneUA, domain.DeviceInfo{Platform: domain.PlatformAndroid, Browser: domain.BrowserChrome, Device: domain.DeviceMobile}},
		{"Android tablet", androidTabletUA, domain.DeviceInfo{Platform: domain.PlatformAndroid, Browser: domain.BrowserChrome, Device: domain.DeviceTablet}},
		{"Chrome desktop", chromeDesktopUA, domain.DeviceInfo{Platform: domain.PlatformWeb, Browser: domain.BrowserChrome, Device: domain.DeviceDesktop}},
		{"Safari desktop", safariDesktopUA, domain.DeviceInfo{Platform: domain.PlatformWeb, Browser: domain.BrowserSafari, Device: domain.DeviceDesktop}},
		{"Firefox", firefoxUA, domain.DeviceInfo{Platform: domain.PlatformWeb, Browser: domain.BrowserFirefox, Device: domain.DeviceDesktop}},
		{"Edge", edgeUA, domain.DeviceInfo{Platform: domain.PlatformWeb, Browser: domain.BrowserEdge, Device: domain.DeviceDesktop}},
		{"Empty", "", domain.DeviceInfo{Platform: domain.PlatformWeb, Browser: domain.BrowserOther, Device: domain.DeviceDesktop}},
		{"curl", "curl/8.1.2", domain.DeviceInfo{Platform: domain.PlatformWeb, Browser: domain.BrowserOther, Device: domain.DeviceDesktop}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.ua); got != tt.want {
				t.Errorf("Detect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDetectDeviceAndroidPhoneIsNotTablet(t *testing.T) {
	if got := DetectDevice(androidPhoneUA); got != domain.DeviceMobile {
		t.Errorf("DetectDevice() = %s, want mobile", got)
	}
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	if got := DetectPlatform("SOMETHING IPHONE"); got != domain.PlatformIOS {
		t.Errorf("DetectPlatform() = %s, want ios", got)
	}
	if got := DetectBrowser("FIREFOX/1.0"); got != domain.BrowserFirefox {
		t.Errorf("DetectBrowser() = %s, want firefox", got)
	}
}

func TestDetectRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/abc", nil)
	req.Header.Set("User-Agent", iphoneUA)
	req.Header.Set(DefaultRegionHeader, " jp ")

	got := DetectRequest(req, DefaultRegionHeader)
	if got.Region != "JP" {
		t.Errorf("Region = %q, want JP", got.Region)
	}
	if got.Platform != domain.PlatformIOS {
		t.Errorf("Platform = %s, want ios", got.Platform)
	}

	if got := DetectRequest(req, ""); got.Region != "" {
		t.Errorf("Region without header = %q, want empty", got.Region)
	}
}
