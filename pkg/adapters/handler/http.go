package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/platform"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/services"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
)

type HTTPHandler struct {
	service      ports.LinkService
	redirects    ports.RedirectService
	regionHeader string
}

func NewHTTPHandler(service ports.LinkService, redirects ports.RedirectService, regionHeader string) *HTTPHandler {
	if regionHeader == "" {
		regionHeader = platform.DefaultRegionHeader
	}
	return &HTTPHandler{service: service, redirects: redirects, regionHeader: regionHeader}
}

// ResolveRequest payload for previewing a resolution. Empty fields are
// detected from the request's user agent.
type ResolveRequest struct {
	UserAgent string             `json:"user_agent,omitempty"`
	Platform  domain.Platform    `json:"platform,omitempty"`
	Browser   domain.Browser     `json:"browser,omitempty"`
	Device    domain.DeviceClass `json:"device,omitempty"`
	Region    string             `json:"region,omitempty"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.service.Shorten(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// Redirect to the destination chosen for the requesting device
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Short code missing")
		return
	}

	visit := domain.VisitContext{
		Device:  platform.DetectRequest(r, h.regionHeader),
		Referer: r.Referer(),
		IP:      clientIP(r),
	}

	var (
		res domain.Resolution
		err error
	)
	// no_stat skips tracking (link checkers, previews)
	if r.URL.Query().Get("no_stat") != "" {
		res, err = h.redirects.Preview(r.Context(), code, visit.Device)
	} else {
		res, err = h.redirects.ResolveShortCode(r.Context(), code, visit)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, res.TargetURL, http.StatusFound)
}

// Get Public Link (without redirect, for metadata resolution)
func (h *HTTPHandler) GetPublicByShortCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Short code missing")
		return
	}

	link, err := h.service.GetLink(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           link.ID,
		"original_url": link.OriginalURL,
		"platform":     link.Platform,
		"status":       link.Status,
		"created_at":   link.CreatedAt,
	})
}

// ResolvePublic reports where a device would be sent, without recording a visit
func (h *HTTPHandler) ResolvePublic(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Short code missing")
		return
	}

	// an empty body resolves for the calling client
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	device := platform.DetectRequest(r, h.regionHeader)
	if req.UserAgent != "" {
		region := device.Region
		device = platform.Detect(req.UserAgent)
		device.Region = region
	}
	if req.Platform != "" {
		device.Platform = req.Platform
	}
	if req.Browser != "" {
		device.Browser = req.Browser
	}
	if req.Device != "" {
		device.Device = req.Device
	}
	if req.Region != "" {
		device.Region = strings.ToUpper(req.Region)
	}

	res, err := h.redirects.Preview(r.Context(), code, device)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Get Stats for a Link
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetLinkStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Get Dashboard
func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")
	domainFilter := r.URL.Query().Get("domain")

	links, total, err := h.service.GetDashboard(r.Context(), limit, search, domainFilter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"top_links":           links,
		"total_system_clicks": total,
	})
}

// List Links
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")

	links, count, err := h.service.ListLinks(r.Context(), page, limit, search)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  links,
		"total": count,
		"page":  page,
		"limit": limit,
	})
}

// Update Link
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	link, err := h.service.UpdateLink(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLink(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "Link not found")
	case errors.Is(err, services.ErrLinkInactive):
		writeError(w, http.StatusGone, "Link is no longer active")
	case errors.Is(err, services.ErrCustomPathTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidURL),
		errors.Is(err, services.ErrInvalidCustomPath),
		errors.Is(err, services.ErrInvalidRule),
		errors.Is(err, services.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// clientIP prefers the first X-Forwarded-For hop, as set by the platform's proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
