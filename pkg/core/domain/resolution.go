package domain

// ResolutionSource tells which rung of the fallback ladder produced a target.
type ResolutionSource string

const (
	SourceRule     ResolutionSource = "rule"
	SourceDeepLink ResolutionSource = "deeplink"
	SourceDownload ResolutionSource = "download"
	SourceOriginal ResolutionSource = "original"
)

// Resolution is the destination chosen for one request
type Resolution struct {
	LinkID    string           `json:"link_id"`
	TargetURL string           `json:"target_url"`
	Source    ResolutionSource `json:"source"`
	Rule      *RedirectRule    `json:"rule,omitempty"`
	Device    DeviceInfo       `json:"device"`
}

// VisitContext is what the redirect endpoint knows about the requester
type VisitContext struct {
	Device  DeviceInfo
	Referer string
	IP      string
}
