package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/rate"
)

// RateLimit rejects clients, keyed by remote IP, that exceed the limiter.
func RateLimit(l *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			ip := clientIP(r)
			if !l.Check(ip) {
				return weberr.TooManyRequests(
					fmt.Errorf("client %s exceeded the rate limit", ip),
					weberr.WithFields(map[string]interface{}{"client": ip}),
				)
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
