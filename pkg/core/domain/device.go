package domain

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

type Browser string

const (
	BrowserChrome  Browser = "chrome"
	BrowserSafari  Browser = "safari"
	BrowserFirefox Browser = "firefox"
	BrowserEdge    Browser = "edge"
	BrowserOther   Browser = "other"
)

type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// DeviceInfo is derived per request from the client's user agent.
// It is never stored verbatim, only folded into analytics counters.
type DeviceInfo struct {
	Platform Platform    `json:"platform"`
	Browser  Browser     `json:"browser"`
	Device   DeviceClass `json:"device"`
	Region   string      `json:"region,omitempty"`
}
