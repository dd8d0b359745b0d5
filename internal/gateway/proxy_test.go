package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"
)

func TestProxyStripsRoutePrefix(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path, "host": r.Host})
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	if err != nil {
		t.Fatalf("failed to parse upstream url: %v", err)
	}

	proxy := NewProxy(target, "/store", zap.NewNop())

	tests := []struct {
		requestPath string
		wantPath    string
	}{
		{"/store/api/products", "/api/products"},
		{"/store/api/categories/abc/products", "/api/categories/abc/products"},
		{"/store", "/"},
		{"/store/", "/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.requestPath, nil)
		rec := httptest.NewRecorder()

		proxy.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", tt.requestPath, rec.Code)
			continue
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Errorf("%s: failed to decode body: %v", tt.requestPath, err)
			continue
		}
		if body["path"] != tt.wantPath {
			t.Errorf("%s: upstream saw path %q, want %q", tt.requestPath, body["path"], tt.wantPath)
		}
		if body["host"] != target.Host {
			t.Errorf("%s: upstream saw host %q, want %q", tt.requestPath, body["host"], target.Host)
		}
	}
}

func TestProxyForwardsQueryAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]string{
			"query": r.URL.RawQuery,
			"body":  string(body),
		})
	}))
	defer upstream.Close()

	target, _ := url.Parse(upstream.URL)
	proxy := NewProxy(target, "/store", zap.NewNop())

	req := httptest.NewRequest("POST", "/store/api/products?page=2&limit=4", nil)
	rec := httptest.NewRecorder()

	proxy.ServeHTTP(rec, req)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["query"] != "page=2&limit=4" {
		t.Errorf("query = %q, want %q", body["query"], "page=2&limit=4")
	}
}

func TestProxyReportsBadGatewayOnDeadUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target, _ := url.Parse(upstream.URL)
	upstream.Close()

	proxy := NewProxy(target, "/support", zap.NewNop())

	req := httptest.NewRequest("POST", "/support/help", nil)
	rec := httptest.NewRecorder()

	proxy.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] != "Bad Gateway" {
		t.Errorf("error = %q, want %q", body["error"], "Bad Gateway")
	}
}
