package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/medication-catalog/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("allowed"))
	})
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		target       string
		expectedCost int64
	}{
		{"health is free", http.MethodGet, "/health", 0},
		{"metrics is free", http.MethodGet, "/metrics", 0},
		{"raw database page", http.MethodGet, "/database?table=medications", 50},
		{"statistics page", http.MethodGet, "/statistics", 20},
		{"statistics api", http.MethodGet, "/api/statistics", 20},
		{"import page", http.MethodGet, "/import", 2},
		{"import upload", http.MethodPost, "/import", 100},
		{"delete all", http.MethodPost, "/database/medications/delete-all", 50},
		{"api search", http.MethodGet, "/api/medications?q=amox", 10},
		{"api list", http.MethodGet, "/api/medications", 5},
		{"api detail", http.MethodGet, "/api/medications/3", 5},
		{"home page", http.MethodGet, "/", 2},
		{"medication page", http.MethodGet, "/medications/3", 2},
		{"unknown path", http.MethodGet, "/unknown", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if got := getTokenCost(req); got != tt.expectedCost {
				t.Errorf("getTokenCost(%s %s) = %d, want %d", tt.method, tt.target, got, tt.expectedCost)
			}
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		expected   string
	}{
		{"single forwarded ip", "127.0.0.1:1234", "192.168.1.10", "192.168.1.10"},
		{"forwarded chain keeps first", "127.0.0.1:1234", "10.0.0.5, 10.0.0.1", "10.0.0.5"},
		{"no header keeps remote addr", "127.0.0.1:1234", "", "127.0.0.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if seen != tt.expected {
				t.Errorf("RemoteAddr = %q, want %q", seen, tt.expected)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1024, MaxHeaderSize: 256}

	tests := []struct {
		name          string
		contentLength int64
		header        string
		expected      int
	}{
		{"no body", 0, "", http.StatusOK},
		{"exactly max body", 1024, "", http.StatusOK},
		{"body too large", 2048, "", http.StatusRequestEntityTooLarge},
		{"headers too large", 0, strings.Repeat("x", 300), http.StatusRequestHeaderFieldsTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/medications", nil)
			req.ContentLength = tt.contentLength
			if tt.header != "" {
				req.Header.Set("X-Padding", tt.header)
			}

			rr := httptest.NewRecorder()
			RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Errorf("status = %d, want %d", rr.Code, tt.expected)
			}
			if tt.expected != http.StatusOK && !strings.Contains(rr.Body.String(), "Maximum allowed size") {
				t.Errorf("expected JSON error body, got %q", rr.Body.String())
			}
		})
	}
}

func TestRequestSizeMiddlewareCapsUndeclaredBody(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 8, MaxHeaderSize: 1024}

	var readErr error
	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("more than eight bytes"))
	req.ContentLength = -1
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Fatal("expected reading past the cap to fail")
	}
}

func TestRateLimiterHandler(t *testing.T) {
	rl := NewRateLimiter(0.001, 10)
	handler := rl.Handler(okHandler())

	call := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = "192.168.1.20:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := call("/api/medications")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", got)
	}
	if got := first.Header().Get("X-RateLimit-Remaining"); got != "5" {
		t.Errorf("X-RateLimit-Remaining = %q, want 5", got)
	}

	call("/api/medications")
	limited := call("/api/medications")
	if limited.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", limited.Code)
	}
	if limited.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After on 429")
	}

	// Free endpoints stay reachable with an empty bucket.
	if rr := call("/health"); rr.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rr.Code)
	}
}

func TestRateLimiterSharesBucketAcrossPorts(t *testing.T) {
	rl := NewRateLimiter(0.001, 5)
	handler := rl.Handler(okHandler())

	for i, addr := range []string{"10.0.0.7:1000", "10.0.0.7:2000"} {
		req := httptest.NewRequest(http.MethodGet, "/api/medications", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		want := http.StatusOK
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if rr.Code != want {
			t.Errorf("request from %s: status = %d, want %d", addr, rr.Code, want)
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(0.001, 100)

	rl.getBucket("10.0.0.1")
	busy := rl.getBucket("10.0.0.2")
	busy.TakeAvailable(10)

	if removed := rl.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1", removed)
	}

	rl.mu.RLock()
	_, kept := rl.clients["10.0.0.2"]
	rl.mu.RUnlock()
	if !kept {
		t.Error("client with spent tokens should be kept")
	}
}
