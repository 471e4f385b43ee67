package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/config"
)

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "testservlet",
	}
	mw := NewMiddleware(cfg)

	tests := []struct {
		name           string
		path           string
		cookieName     string
		cookieValue    string
		expectedStatus int
	}{
		{
			name:           "No Cookie - API",
			path:           "/api/v1/links",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "No Cookie - Browser",
			path:           "/dashboard",
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "Invalid Cookie - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    "invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Cookie - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, cfg.JWTSecret),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookieName != "" {
				req.AddCookie(&http.Cookie{Name: tt.cookieName, Value: tt.cookieValue})
			}

			rr := httptest.NewRecorder()
			handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tt.expectedStatus)
			}
		})
	}
}

func generateTestToken(t *testing.T, secret string) string {
	expirationTime := time.Now().Add(5 * time.Minute)
	claims := &jwt.RegisteredClaims{
		Subject:   "test@example.com",
		ExpiresAt: jwt.NewNumericDate(expirationTime),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}

func TestAuthMiddlewareSetsUserEmail(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testservlet"}
	mw := NewMiddleware(cfg)

	var got string
	handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserEmail(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/links", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: generateTestToken(t, cfg.JWTSecret)})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "test@example.com" {
		t.Errorf("UserEmail = %q, want test@example.com", got)
	}
}

func TestRequestLogger(t *testing.T) {
	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
	if seen == "" || rr.Header().Get("X-Request-ID") != seen {
		t.Errorf("request id %q not echoed: %q", seen, rr.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "upstream-id" {
		t.Errorf("incoming request id not kept: %q", seen)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/abc123", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// other clients have their own bucket
	req := httptest.NewRequest("GET", "/abc123", nil)
	req.RemoteAddr = "192.0.2.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("second client got %d", rr.Code)
	}
}

func TestRateLimiterManyClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	for i := 0; i < sweepEvery-1; i++ {
		rl.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	allowed := 0
	for i := 0; i < 5; i++ {
		if rl.Allow("192.0.2.99") {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("allowed = %d, want 1", allowed)
	}
	if got := len(rl.limiters); got != sweepEvery {
		t.Errorf("tracked clients = %d, want %d", got, sweepEvery)
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	for i := 0; i < sweepEvery; i++ {
		rl.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	stale := time.Now().Add(-2 * rl.idle)
	for _, v := range rl.limiters {
		v.lastSeen = stale
	}

	if !rl.Allow("192.0.2.99") {
		t.Fatal("new client should be allowed")
	}
	if got := len(rl.limiters); got != 1 {
		t.Errorf("tracked clients = %d, want 1", got)
	}
	if rl.Allow("192.0.2.99") {
		t.Error("new client should keep its bucket after the sweep")
	}
}
