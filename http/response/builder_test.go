package response // import "github.com/epustaka/epustaka/http/response"

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseHasCommonHeaders(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}

	for header, expected := range headers {
		actual := resp.Header.Get(header)
		if actual != expected {
			t.Fatalf(`Unexpected header value, got %q instead of %q`, actual, expected)
		}
	}
}

func TestSmallBodyIsNotCompressed(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Accept-Encoding", "br, gzip")

	w := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).WithBody("small").Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	if encoding := resp.Header.Get("Content-Encoding"); encoding != "" {
		t.Fatalf(`Small body should not be compressed, got %q`, encoding)
	}
}

func TestLargeBodyIsCompressedWithBrotli(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Accept-Encoding", "br")

	w := httptest.NewRecorder()

	body := strings.Repeat("epustaka ", 512)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).WithBody(body).Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	if encoding := resp.Header.Get("Content-Encoding"); encoding != "br" {
		t.Fatalf(`Expected brotli encoding, got %q`, encoding)
	}
}

func TestLargeBodyIsCompressedWithGzip(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Accept-Encoding", "gzip")

	w := httptest.NewRecorder()

	body := strings.Repeat("epustaka ", 512)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).WithBody(body).Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	if encoding := resp.Header.Get("Content-Encoding"); encoding != "gzip" {
		t.Fatalf(`Expected gzip encoding, got %q`, encoding)
	}
}

func TestStatusCode(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).WithStatus(http.StatusTeapot).Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf(`Unexpected status code, got %d instead of %d`, resp.StatusCode, http.StatusTeapot)
	}
}
