package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/sdk"
)

// DeepLinkHandler exposes the deep link parser over HTTP. client is nil when
// the server has no deep link configuration.
type DeepLinkHandler struct {
	client *sdk.Client
}

func NewDeepLinkHandler(client *sdk.Client) *DeepLinkHandler {
	return &DeepLinkHandler{client: client}
}

type ParseDeepLinkRequest struct {
	URL string `json:"url"`
}

type ParseDeepLinkResponse struct {
	Handled          bool              `json:"handled"`
	Valid            bool              `json:"valid"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	CustomParameters map[string]string `json:"custom_parameters,omitempty"`
	Timestamp        *time.Time        `json:"timestamp,omitempty"`
	Error            string            `json:"error,omitempty"`
	FallbackURL      string            `json:"fallback_url,omitempty"`
}

type BuildDeepLinkRequest struct {
	Parameters map[string]string `json:"parameters"`
}

func (h *DeepLinkHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeError(w, http.StatusServiceUnavailable, "deep link parsing is not configured")
		return
	}

	var req ParseDeepLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		writeJSON(w, http.StatusOK, ParseDeepLinkResponse{Error: sdk.ErrInvalidURL.Error()})
		return
	}

	link, ok, err := h.client.Parse(u)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	resp := ParseDeepLinkResponse{Handled: ok}
	if ok {
		ts := link.Timestamp
		resp.Valid = link.IsValid()
		resp.Parameters = link.Parameters
		resp.CustomParameters = link.CustomParameters
		resp.Timestamp = &ts
		if link.Err != nil {
			resp.Error = link.Err.Error()
			if cfg, err := h.client.Config(); err == nil && cfg.FallbackURL != nil {
				resp.FallbackURL = cfg.FallbackURL.String()
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Build returns the universal and custom scheme URLs carrying the given parameters
func (h *DeepLinkHandler) Build(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeError(w, http.StatusServiceUnavailable, "deep link parsing is not configured")
		return
	}

	var req BuildDeepLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.client.Config()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"universal_link": cfg.DeepLinkURL(req.Parameters).String(),
		"custom_scheme":  cfg.CustomSchemeURL(req.Parameters).String(),
	})
}
