package domain

import "time"

// LinkStatus is the lifecycle state of a link record
type LinkStatus string

const (
	StatusActive   LinkStatus = "active"
	StatusInactive LinkStatus = "inactive"
	StatusExpired  LinkStatus = "expired"
)

// PlanType is the billing tier a link belongs to
type PlanType string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"
)

// Link represents a dynamic link record addressed by its short code
type Link struct {
	ID             string         `json:"id" yaml:"id"` // short code, immutable
	OriginalURL    string         `json:"original_url" yaml:"original_url"`
	CustomPath     string         `json:"custom_path,omitempty" yaml:"custom_path,omitempty"`
	Clicks         int64          `json:"clicks" yaml:"clicks"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" yaml:"updated_at"`
	Platform       Platform       `json:"platform" yaml:"platform"`
	DeepLinkConfig DeepLinkConfig `json:"deep_link_config" yaml:"deep_link_config"`
	RedirectRules  []RedirectRule `json:"redirect_rules" yaml:"redirect_rules"`
	Analytics      Analytics      `json:"analytics" yaml:"analytics"`
	Status         LinkStatus     `json:"status" yaml:"status"`
	PlanType       PlanType       `json:"plan_type" yaml:"plan_type"`
}

// IsActive reports whether the link may be redirected
func (l *Link) IsActive() bool {
	return l.Status == "" || l.Status == StatusActive
}

// ApplyDefaults fills the fields older or partially written records may lack.
func (l *Link) ApplyDefaults() {
	if l.Platform == "" {
		l.Platform = PlatformWeb
	}
	if l.RedirectRules == nil {
		l.RedirectRules = []RedirectRule{}
	}
	l.Analytics.init()
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.PlanType == "" {
		l.PlanType = PlanFree
	}
}

// DeepLinkConfig holds the per-platform app link settings of a link
type DeepLinkConfig struct {
	IOS     *IOSConfig     `json:"ios,omitempty" yaml:"ios,omitempty"`
	Android *AndroidConfig `json:"android,omitempty" yaml:"android,omitempty"`
}

type IOSConfig struct {
	UniversalLink string `json:"universal_link,omitempty" yaml:"universal_link,omitempty"`
	CustomScheme  string `json:"custom_scheme,omitempty" yaml:"custom_scheme,omitempty"`
	AppStoreID    string `json:"app_store_id,omitempty" yaml:"app_store_id,omitempty"`
}

type AndroidConfig struct {
	AppLink      string `json:"app_link,omitempty" yaml:"app_link,omitempty"`
	CustomScheme string `json:"custom_scheme,omitempty" yaml:"custom_scheme,omitempty"`
	PackageName  string `json:"package_name,omitempty" yaml:"package_name,omitempty"`
}

// RedirectRule sends matching clients to TargetURL. Higher priority wins.
type RedirectRule struct {
	Priority  int           `json:"priority" yaml:"priority"`
	Condition RuleCondition `json:"condition" yaml:"condition"`
	TargetURL string        `json:"target_url" yaml:"target_url"`
}

// RuleCondition fields are optional; an empty field matches anything.
type RuleCondition struct {
	Platform Platform    `json:"platform,omitempty" yaml:"platform,omitempty"`
	Device   DeviceClass `json:"device,omitempty" yaml:"device,omitempty"`
	Browser  Browser     `json:"browser,omitempty" yaml:"browser,omitempty"`
	Region   string      `json:"region,omitempty" yaml:"region,omitempty"`
}

// Matches reports whether every present field equals the device's value
func (c RuleCondition) Matches(d DeviceInfo) bool {
	if c.Platform != "" && c.Platform != d.Platform {
		return false
	}
	if c.Device != "" && c.Device != d.Device {
		return false
	}
	if c.Browser != "" && c.Browser != d.Browser {
		return false
	}
	if c.Region != "" && c.Region != d.Region {
		return false
	}
	return true
}

// Analytics holds aggregated click counters per dimension
type Analytics struct {
	Platforms map[string]int64 `json:"platforms" yaml:"platforms"`
	Devices   map[string]int64 `json:"devices" yaml:"devices"`
	Browsers  map[string]int64 `json:"browsers" yaml:"browsers"`
	Regions   map[string]int64 `json:"regions" yaml:"regions"`
}

func (a *Analytics) init() {
	if a.Platforms == nil {
		a.Platforms = map[string]int64{}
	}
	if a.Devices == nil {
		a.Devices = map[string]int64{}
	}
	if a.Browsers == nil {
		a.Browsers = map[string]int64{}
	}
	if a.Regions == nil {
		a.Regions = map[string]int64{}
	}
}

// Copy returns an independent copy with every map allocated
func (a Analytics) Copy() Analytics {
	out := Analytics{
		Platforms: copyCounts(a.Platforms),
		Devices:   copyCounts(a.Devices),
		Browsers:  copyCounts(a.Browsers),
		Regions:   copyCounts(a.Regions),
	}
	out.init()
	return out
}

// Record adds one click for the given device. Region is counted only when known.
func (a *Analytics) Record(d DeviceInfo) {
	a.init()
	a.Platforms[string(d.Platform)]++
	a.Devices[string(d.Device)]++
	a.Browsers[string(d.Browser)]++
	if d.Region != "" {
		a.Regions[d.Region]++
	}
}

// CreateLinkRequest holds the user supplied fields of a new link
type CreateLinkRequest struct {
	OriginalURL    string         `json:"original_url" yaml:"original_url"`
	CustomPath     string         `json:"custom_path,omitempty" yaml:"custom_path,omitempty"`
	Platform       Platform       `json:"platform,omitempty" yaml:"platform,omitempty"`
	DeepLinkConfig DeepLinkConfig `json:"deep_link_config" yaml:"deep_link_config"`
	RedirectRules  []RedirectRule `json:"redirect_rules,omitempty" yaml:"redirect_rules,omitempty"`
	PlanType       PlanType       `json:"plan_type,omitempty" yaml:"plan_type,omitempty"`
}

// UpdateLinkRequest carries a partial update; nil fields are left unchanged
type UpdateLinkRequest struct {
	OriginalURL    *string         `json:"original_url,omitempty"`
	Platform       *Platform       `json:"platform,omitempty"`
	DeepLinkConfig *DeepLinkConfig `json:"deep_link_config,omitempty"`
	RedirectRules  *[]RedirectRule `json:"redirect_rules,omitempty"`
	Status         *LinkStatus     `json:"status,omitempty"`
	PlanType       *PlanType       `json:"plan_type,omitempty"`
}

// Clone returns a deep copy of the link
func (l *Link) Clone() *Link {
	out := *l
	if l.DeepLinkConfig.IOS != nil {
		ios := *l.DeepLinkConfig.IOS
		out.DeepLinkConfig.IOS = &ios
	}
	if l.DeepLinkConfig.Android != nil {
		android := *l.DeepLinkConfig.Android
		out.DeepLinkConfig.Android = &android
	}
	if l.RedirectRules != nil {
		out.RedirectRules = append([]RedirectRule(nil), l.RedirectRules...)
	}
	out.Analytics = l.Analytics.Copy()
	return &out
}

func copyCounts(m map[string]int64) map[string]int64 {
	if m == nil {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
