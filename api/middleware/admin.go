package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
)

const AdminTokenHeader = "X-Admin-Token"

// Admin lets through only requests presenting the configured admin token.
// An empty token disables admin routes.
func Admin(token string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			got := r.Header.Get(AdminTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return weberr.NotAuthorized(errors.New("missing or invalid admin token"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
