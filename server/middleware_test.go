package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/narratives-api/config"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path     string
		expected int64
	}{
		{"/", 0},
		{"/favicon.ico", 0},
		{"/metrics", 0},
		{"/health", 5},
		{"/generate", 50},
		{"/generate/tsv", 50},
		{"/generate/xlsx", 100},
		{"/unknown", 20},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if got := getTokenCost(req); got != tt.expected {
				t.Errorf("Expected cost %d for %s, got %d", tt.expected, tt.path, got)
			}
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		expected string
	}{
		{"single IP", "203.0.113.7", "203.0.113.7"},
		{"proxy chain", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"no header", "", "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("Expected RemoteAddr %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 16, MaxHeaderSize: 64}

	var bodyErr error
	h := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, bodyErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		body           string
		chunked        bool
		header         string
		expectedStatus int
		expectBodyErr  bool
	}{
		{"small body", "hello", false, "", http.StatusOK, false},
		{"exactly max size", strings.Repeat("a", 16), false, "", http.StatusOK, false},
		{"content length too large", strings.Repeat("a", 17), false, "", http.StatusRequestEntityTooLarge, false},
		{"unknown length capped while reading", strings.Repeat("a", 40), true, "", http.StatusOK, true},
		{"headers too large", "", false, strings.Repeat("h", 100), http.StatusRequestHeaderFieldsTooLarge, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyErr = nil
			req := httptest.NewRequest("POST", "/generate", strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			if tt.header != "" {
				req.Header.Set("X-Large", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if tt.expectBodyErr && bodyErr == nil {
				t.Error("Expected reading an oversized body to fail")
			}
			if !tt.expectBodyErr && bodyErr != nil {
				t.Errorf("Unexpected body error: %v", bodyErr)
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// xlsx costs 100 tokens, the bucket holds 1000
	var limited bool
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest("POST", "/generate/xlsx", nil)
		req.RemoteAddr = "198.51.100.4:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code == http.StatusTooManyRequests {
			limited = true
			if rr.Header().Get("Retry-After") == "" {
				t.Error("Expected Retry-After header")
			}
			break
		}
		if rr.Header().Get("X-RateLimit-Limit") != "1000" {
			t.Errorf("Expected X-RateLimit-Limit 1000, got %s", rr.Header().Get("X-RateLimit-Limit"))
		}
	}

	if !limited {
		t.Error("Expected the client to be rate limited")
	}

	// a different port of the same client shares the bucket
	req := httptest.NewRequest("POST", "/generate/xlsx", nil)
	req.RemoteAddr = "198.51.100.4:6666"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected shared bucket to be exhausted, got %d", rr.Code)
	}

	if rl.Len() != 1 {
		t.Errorf("Expected 1 tracked client, got %d", rl.Len())
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter()

	rl.getBucket("idle")
	busy := rl.getBucket("busy")
	busy.TakeAvailable(500)

	if remaining := rl.Sweep(); remaining != 1 {
		t.Errorf("Expected 1 bucket after sweep, got %d", remaining)
	}

	rl.mu.RLock()
	_, busyKept := rl.clients["busy"]
	_, idleKept := rl.clients["idle"]
	rl.mu.RUnlock()

	if !busyKept || idleKept {
		t.Errorf("Expected only the busy client to remain (busy=%v idle=%v)", busyKept, idleKept)
	}
}

func TestClientKey(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:1234": "192.0.2.1",
		"[::1]:8080":     "::1",
		"203.0.113.7":    "203.0.113.7",
	}
	for in, expected := range tests {
		if got := clientKey(in); got != expected {
			t.Errorf("clientKey(%q) = %q, expected %q", in, got, expected)
		}
	}
}
