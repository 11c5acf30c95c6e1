// Package newsletter records newsletter signups and their opt-outs.
package newsletter

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fullscopemd/storefront/database"
	"github.com/fullscopemd/storefront/random"
	"github.com/fullscopemd/storefront/validate"
	"github.com/jmoiron/sqlx"
)

// TokenLength is the size of the unsubscribe token sent with every mailing.
const TokenLength = 32

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidToken = errors.New("invalid unsubscribe token")
)

type Subscription struct {
	ID             int64      `json:"id" db:"subscription_id"`
	Email          string     `json:"email" db:"email"`
	Active         bool       `json:"active" db:"is_active"`
	Token          string     `json:"-" db:"token"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt" db:"unsubscribed_at"`
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Subscribe creates the subscription of email, or reactivates it when it was
// cancelled. Subscribing an active address changes nothing. email must
// already be normalized; a malformed address yields ErrInvalidEmail.
func Subscribe(ctx context.Context, db sqlx.ExtContext, email string, now time.Time) (Subscription, error) {
	if !validate.Email(email) {
		return Subscription{}, ErrInvalidEmail
	}

	token, err := random.StringSecure(TokenLength)
	if err != nil {
		return Subscription{}, fmt.Errorf("generating unsubscribe token: %w", err)
	}

	const q = `
	INSERT INTO newsletter_subscriptions (email, is_active, token, created_at)
	VALUES ($1, TRUE, $2, $3)
	ON CONFLICT (email) DO UPDATE SET
		is_active = TRUE,
		unsubscribed_at = NULL
	RETURNING subscription_id, email, is_active, token, created_at, unsubscribed_at`

	var s Subscription
	if err := sqlx.GetContext(ctx, db, &s, q, email, token, now); err != nil {
		return Subscription{}, fmt.Errorf("subscribing %s: %w", email, err)
	}
	return s, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (Subscription, error) {
	const q = `
	SELECT subscription_id, email, is_active, token, created_at, unsubscribed_at
	FROM newsletter_subscriptions
	WHERE email = $1`

	var s Subscription
	if err := sqlx.GetContext(ctx, db, &s, q, email); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Subscription{}, ErrInvalidToken
		}
		return Subscription{}, fmt.Errorf("selecting subscription %s: %w", email, err)
	}
	return s, nil
}

// Unsubscribe deactivates the subscription of email when token matches.
// Unknown addresses and wrong tokens are indistinguishable to the caller.
func Unsubscribe(ctx context.Context, db sqlx.ExtContext, email, token string, now time.Time) error {
	s, err := FetchByEmail(ctx, db, email)
	if err != nil {
		return err
	}

	if !TokenMatches(s.Token, token) {
		return ErrInvalidToken
	}
	if !s.Active {
		return nil
	}

	const q = `
	UPDATE newsletter_subscriptions SET
		is_active = FALSE,
		unsubscribed_at = $2
	WHERE subscription_id = $1`

	if _, err := db.ExecContext(ctx, q, s.ID, now); err != nil {
		return fmt.Errorf("unsubscribing %s: %w", email, err)
	}
	return nil
}

func TokenMatches(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
