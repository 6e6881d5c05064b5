package server

import (
	"context"
	"net/http"

	"github.com/epustaka/epustaka/http/request"
)

func middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.FindClientIP(r)
		ctx := r.Context()
		ctx = context.WithValue(ctx, request.ClientIPContextKey, clientIP)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
