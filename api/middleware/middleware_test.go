package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/rate"
	"github.com/sirupsen/logrus"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func serve(h web.Handler, mw ...web.Middleware) http.Handler {
	h = web.WrapMiddleware(mw, h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h(r.Context(), w, r)
	})
}

func ok(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, map[string]bool{"ok": true}, http.StatusOK)
}

func TestAdmin(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		status     int
	}{
		{"valid token", "s3cret", "s3cret", http.StatusOK},
		{"wrong token", "s3cret", "guess", http.StatusUnauthorized},
		{"no token", "s3cret", "", http.StatusUnauthorized},
		{"admin disabled", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := serve(ok, Errors(quietLog()), Admin(tt.configured))

			r := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
			if tt.sent != "" {
				r.Header.Set(AdminTokenHeader, tt.sent)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestErrorsHidesInternalErrors(t *testing.T) {
	h := serve(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("pq: connection refused")
	}, Errors(quietLog()))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body weberr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("internal error leaked: %q", body.Error)
	}
}

func TestPanicsBecome500(t *testing.T) {
	h := serve(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	}, Errors(quietLog()), Panics())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestNoCache(t *testing.T) {
	w := httptest.NewRecorder()
	serve(ok, NoCache()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart/summary", nil))

	if got := w.Header().Get("Cache-Control"); got != "max-age=0, no-cache, no-store, must-revalidate, private" {
		t.Fatalf("Cache-Control = %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	l := rate.NewLimiter(2, 1, rate.Every(1e12))
	defer l.Close()

	h := serve(ok, Errors(quietLog()), RateLimit(l))

	var codes []int
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/newsletter/subscribe", nil)
		r.RemoteAddr = "203.0.113.9:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("status codes = %v", codes)
	}
}

func TestRequestID(t *testing.T) {
	h := serve(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, ContextRequestID(ctx), http.StatusOK)
	}, RequestID(4))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abcdefgh")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get(RequestIDHeader); got != "abcd" {
		t.Fatalf("request id = %q, want abcd", got)
	}
}

func TestLoadAndSaveCommitsModifiedSession(t *testing.T) {
	sm := scs.New()

	h := serve(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if r.Method == http.MethodPost {
			sm.Put(ctx, "cart", "x")
		}
		return web.Respond(ctx, w, sm.GetString(ctx, "cart"), http.StatusOK)
	}, LoadAndSave(sm))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("untouched session set a cookie")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sm.Cookie.Name {
		t.Fatalf("modified session not committed: %v", cookies)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var got string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != "x" {
		t.Fatalf("session value = %q, want x", got)
	}
}

type brokenStore struct{}

var errStoreDown = errors.New("session store down")

func (brokenStore) Delete(token string) error                           { return errStoreDown }
func (brokenStore) Find(token string) ([]byte, bool, error)             { return nil, false, nil }
func (brokenStore) Commit(token string, b []byte, expiry time.Time) error { return errStoreDown }

func TestCommitSessionFailsRequest(t *testing.T) {
	sm := scs.New()
	sm.Store = brokenStore{}

	h := serve(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		sm.Put(ctx, "cart", "x")
		if err := web.CommitSession(ctx); err != nil {
			return err
		}
		return web.Respond(ctx, w, "saved", http.StatusOK)
	}, LoadAndSave(sm), Errors(quietLog()))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("cookie issued for an unsaved session")
	}
}

func TestCommitSessionWithoutSession(t *testing.T) {
	if err := web.CommitSession(context.Background()); err != nil {
		t.Fatalf("commit without a session: %v", err)
	}
}
