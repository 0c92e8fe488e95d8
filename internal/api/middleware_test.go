package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code to be 200, got %d", rw.statusCode)
	}

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code to be 404, got %d", rw.statusCode)
	}

	data := []byte("Hello, World!")
	n, err := rw.Write(data)
	if err != nil {
		t.Errorf("Write returned error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}
	if rw.responseSize != len(data) {
		t.Errorf("Expected response size to be %d, got %d", len(data), rw.responseSize)
	}

	n2, _ := rw.Write(data)
	if rw.responseSize != len(data)+n2 {
		t.Errorf("Expected cumulative response size to be %d, got %d", len(data)+n2, rw.responseSize)
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	// httptest.ResponseRecorder does not implement http.Hijacker
	rw := newResponseWriter(httptest.NewRecorder())

	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected error when underlying writer cannot hijack")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	wrapped := MetricsMiddleware(handler)

	// Route pattern extraction needs a chi routing context
	r := chi.NewRouter()
	r.Get("/api/overview", func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r)
	})

	req := httptest.NewRequest("GET", "/api/overview", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestMetricsMiddleware_Error(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	})

	wrapped := MetricsMiddleware(handler)

	req := httptest.NewRequest("GET", "/api/error", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware("https://pulse.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("sets allow origin header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/overview", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://pulse.example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})

	t.Run("answers preflight directly", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("preflight status = %d, want 200", w.Code)
		}
	})
}
