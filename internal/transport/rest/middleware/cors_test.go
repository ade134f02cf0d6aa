package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pinot/internal/config"
)

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins: "https://pinot.example",
		AllowedMethods: "GET, POST",
		AllowedHeaders: "Content-Type",
	}

	called := false
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/events", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if called {
			t.Error("Expected preflight not to reach the handler")
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != cfg.AllowedOrigins {
			t.Errorf("Expected origin %q, got %q", cfg.AllowedOrigins, got)
		}
	})

	t.Run("passthrough", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))

		if !called {
			t.Error("Expected handler to be called")
		}
		if rec.Code != http.StatusTeapot {
			t.Errorf("Expected 418, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got != cfg.AllowedMethods {
			t.Errorf("Expected methods %q, got %q", cfg.AllowedMethods, got)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(r); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
