package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	wrapped := CORS(CORSConfig{})(corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("no CORS headers should be set when CORS is disabled")
	}
}

func TestCORS_SameOriginRequest(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://app.example"})
	wrapped := CORS(cfg)(corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://app.example"})
	wrapped := CORS(cfg)(corsTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/feed", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want https://app.example", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://app.example"})
	wrapped := CORS(cfg)(corsTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/feed", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://app.example"})
	wrapped := CORS(cfg)(corsTestHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/feed", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Access-Control-Allow-Methods missing from preflight response")
	}
	if rec.Header().Get("Access-Control-Max-Age") != "600" {
		t.Errorf("Access-Control-Max-Age = %q, want 600", rec.Header().Get("Access-Control-Max-Age"))
	}
	if rec.Body.Len() != 0 {
		t.Error("preflight response should have an empty body")
	}
}

func TestCORS_Credentials(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://app.example"})
	cfg.AllowCredentials = true
	wrapped := CORS(cfg)(corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}
