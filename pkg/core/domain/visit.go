package domain

import "time"

// Visit represents a click on a short link
type Visit struct {
	ID        string      `json:"id"`
	LinkID    string      `json:"link_id"`
	Platform  Platform    `json:"platform"`
	Device    DeviceClass `json:"device"`
	Browser   Browser     `json:"browser"`
	Region    string      `json:"region,omitempty"`
	Referer   string      `json:"referer"`
	IPHash    string      `json:"ip_hash"` // Anonymized IP
	CreatedAt time.Time   `json:"created_at"`
}

// DeviceInfo returns the device signature the visit was recorded for
func (v *Visit) DeviceInfo() DeviceInfo {
	return DeviceInfo{Platform: v.Platform, Browser: v.Browser, Device: v.Device, Region: v.Region}
}

// Stats represents aggregated statistics for a link
type LinkStats struct {
	TotalClicks int64            `json:"total_clicks"`
	Analytics   Analytics        `json:"analytics"`
	Referrers   map[string]int64 `json:"referrers"`    // count by domain
	DailyClicks []DailyClick     `json:"daily_clicks"` // timeline
}

type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
