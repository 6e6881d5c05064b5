package response // import "github.com/epustaka/epustaka/http/response"

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

const compressionThreshold = 1024

// Builder assembles an HTTP response, negotiating compression from the
// Accept-Encoding header when the body is large enough to bother.
type Builder struct {
	w          http.ResponseWriter
	r          *http.Request
	statusCode int
	headers    map[string]string
	body       interface{}
}

func New(w http.ResponseWriter, r *http.Request) *Builder {
	return &Builder{
		w:          w,
		r:          r,
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *Builder) WithStatus(statusCode int) *Builder {
	b.statusCode = statusCode
	return b
}

func (b *Builder) WithHeader(key, value string) *Builder {
	b.headers[key] = value
	return b
}

func (b *Builder) WithBody(body interface{}) *Builder {
	b.body = body
	return b
}

func (b *Builder) Write() {
	if b.body == nil {
		b.writeHeaders()
		b.w.WriteHeader(b.statusCode)
		return
	}

	switch v := b.body.(type) {
	case []byte:
		b.compress(v)
	case string:
		b.compress([]byte(v))
	case io.Reader:
		// Streams are never buffered for compression
		b.writeHeaders()
		b.w.WriteHeader(b.statusCode)
		io.Copy(b.w, v)
	}
}

func (b *Builder) writeHeaders() {
	b.headers["X-Content-Type-Options"] = "nosniff"
	b.headers["X-Frame-Options"] = "DENY"

	for key, value := range b.headers {
		b.w.Header().Set(key, value)
	}
}

func (b *Builder) compress(data []byte) {
	if len(data) > compressionThreshold {
		acceptEncoding := b.r.Header.Get("Accept-Encoding")

		switch {
		case strings.Contains(acceptEncoding, "br"):
			b.headers["Content-Encoding"] = "br"
			b.writeHeaders()
			b.w.WriteHeader(b.statusCode)

			brotliWriter := brotli.NewWriter(b.w)
			defer brotliWriter.Close()
			brotliWriter.Write(data)
			return
		case strings.Contains(acceptEncoding, "gzip"):
			b.headers["Content-Encoding"] = "gzip"
			b.writeHeaders()
			b.w.WriteHeader(b.statusCode)

			gzipWriter := gzip.NewWriter(b.w)
			defer gzipWriter.Close()
			gzipWriter.Write(data)
			return
		case strings.Contains(acceptEncoding, "deflate"):
			b.headers["Content-Encoding"] = "deflate"
			b.writeHeaders()
			b.w.WriteHeader(b.statusCode)

			flateWriter, err := flate.NewWriter(b.w, -1)
			if err == nil {
				defer flateWriter.Close()
				flateWriter.Write(data)
				return
			}
		}
	}

	b.writeHeaders()
	b.w.WriteHeader(b.statusCode)
	b.w.Write(data)
}
