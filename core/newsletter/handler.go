package newsletter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// FallbackRedirect is where a signup lands when the form carries no Referer.
const FallbackRedirect = "/blog"

// HandleSubscribe records the address posted in the "email" form field and
// always sends the visitor back where they came from. Bad addresses are
// ignored silently.
func HandleSubscribe(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<14)
		if err := r.ParseForm(); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to parse form: %w", err))
		}

		email := NormalizeEmail(r.PostForm.Get("email"))
		if email != "" {
			_, err := Subscribe(ctx, db, email, time.Now().UTC())
			switch {
			case errors.Is(err, ErrInvalidEmail):
				log.WithField("email", email).Info("newsletter: ignoring invalid address")
			case err != nil:
				return err
			}
		}

		http.Redirect(w, r, RedirectTarget(r), http.StatusFound)
		return nil
	}
}

func HandleUnsubscribe(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		email := NormalizeEmail(r.URL.Query().Get("email"))
		token := r.URL.Query().Get("token")

		if err := Unsubscribe(ctx, db, email, token, time.Now().UTC()); err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, map[string]bool{"ok": true}, http.StatusOK)
	}
}

// RedirectTarget is the page that posted the form when it is on this site,
// or FallbackRedirect.
func RedirectTarget(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return FallbackRedirect
	}

	u, err := url.Parse(ref)
	if err != nil {
		return FallbackRedirect
	}

	switch {
	case u.Scheme == "" && u.Host == "":
		// A relative reference must stay a path; "//host" is protocol-relative.
		if strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(ref, "//") && !strings.HasPrefix(ref, "/\\") {
			return ref
		}
	case (u.Scheme == "http" || u.Scheme == "https") && strings.EqualFold(u.Host, r.Host):
		return ref
	}
	return FallbackRedirect
}
