package newsletter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM \n"); got != "jane.doe@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{"none", "", FallbackRedirect},
		{"same host", "https://fullscopemd.com/programs/weight-loss", "https://fullscopemd.com/programs/weight-loss"},
		{"relative", "/blog?topic=skin", "/blog?topic=skin"},
		{"foreign host", "https://evil.example/phish", FallbackRedirect},
		{"protocol relative", "//evil.example/phish", FallbackRedirect},
		{"backslash", "/\\evil.example", FallbackRedirect},
		{"other scheme", "javascript:alert(1)", FallbackRedirect},
		{"bare path", "blog", FallbackRedirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "https://fullscopemd.com/newsletter/subscribe", nil)
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			if got := RedirectTarget(r); got != tt.want {
				t.Fatalf("RedirectTarget(%q) = %q, want %q", tt.referer, got, tt.want)
			}
		})
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	// The address is checked before the database is touched.
	_, err := Subscribe(context.Background(), nil, "not-an-email", time.Now())
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
}

func TestHandleSubscribeIgnoresInvalidEmail(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := HandleSubscribe(nil, log)

	r := httptest.NewRequest(http.MethodPost, "https://fullscopemd.com/newsletter/subscribe", strings.NewReader("email=nope"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Referer", "https://fullscopemd.com/blog")
	w := httptest.NewRecorder()

	if err := h(r.Context(), w, r); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if w.Code != http.StatusFound || w.Header().Get("Location") != "https://fullscopemd.com/blog" {
		t.Fatalf("status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestTokenMatches(t *testing.T) {
	tests := []struct {
		want, got string
		ok        bool
	}{
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := TokenMatches(tt.want, tt.got); got != tt.ok {
			t.Errorf("TokenMatches(%q, %q) = %v, want %v", tt.want, tt.got, got, tt.ok)
		}
	}
}
