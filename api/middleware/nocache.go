package middleware

import (
	"context"
	"net/http"

	"github.com/fullscopemd/storefront/api/web"
)

// NoCache forbids any intermediary or browser from storing the response.
func NoCache() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("Cache-Control", "max-age=0, no-cache, no-store, must-revalidate, private")
			w.Header().Set("Expires", "0")

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
