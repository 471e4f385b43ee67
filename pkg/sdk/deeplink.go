package sdk

import (
	"net/url"
	"time"
)

// DeepLink is the result of one parse attempt. It is never modified after the
// client hands it out.
type DeepLink struct {
	URL              *url.URL
	Parameters       map[string]string
	CustomParameters map[string]string
	Timestamp        time.Time
	Err              error
}

func (d DeepLink) IsValid() bool {
	return d.Err == nil
}

// Parameter returns the value of a query parameter.
func (d DeepLink) Parameter(name string) (string, bool) {
	v, ok := d.Parameters[name]
	return v, ok
}

// CustomParameter looks up a custom parameter by its name without the prefix.
func (d DeepLink) CustomParameter(name string) (string, bool) {
	v, ok := d.CustomParameters[name]
	return v, ok
}
