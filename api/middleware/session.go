package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fullscopemd/storefront/api/web"
)

// LoadAndSave loads the browser session into the request context and commits
// it, when modified, before the response is written. Handlers that must not
// answer for an unsaved session commit earlier through web.CommitSession.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.Header().Add("Vary", "Cookie")

			var token string
			if cookie, err := r.Cookie(sm.Cookie.Name); err == nil {
				token = cookie.Value
			}

			ctx, err := sm.Load(ctx, token)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			sw := &sessionWriter{
				ResponseWriter: w,
				ctx:            ctx,
				sm:             sm,
			}

			ctx = web.WithSessionCommit(ctx, sw.commitOnce)

			err = handler(ctx, sw, r.WithContext(ctx))
			sw.commitOnce()
			if err == nil {
				err = sw.failed
			}
			return err
		}
		return h
	}
	return m
}

// sessionWriter commits the session right before the first header write, as
// the cookie must be part of the headers.
type sessionWriter struct {
	http.ResponseWriter
	ctx       context.Context
	sm        *scs.SessionManager
	committed bool
	failed    error
}

func (sw *sessionWriter) commitOnce() error {
	if !sw.committed {
		sw.failed = sw.commit()
	}
	return sw.failed
}

func (sw *sessionWriter) commit() error {
	sw.committed = true

	switch sw.sm.Status(sw.ctx) {
	case scs.Modified:
		token, expiry, err := sw.sm.Commit(sw.ctx)
		if err != nil {
			return fmt.Errorf("committing session: %w", err)
		}
		sw.sm.WriteSessionCookie(sw.ctx, sw.ResponseWriter, token, expiry)
	case scs.Destroyed:
		sw.sm.WriteSessionCookie(sw.ctx, sw.ResponseWriter, "", time.Time{})
	}
	return nil
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commitOnce()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commitOnce()
	return sw.ResponseWriter.Write(b)
}
