package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/database"
	"github.com/fullscopemd/storefront/validate"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("feedback not found")

// Stars is the rating scale shown next to a testimonial.
const Stars = 5

type Feedback struct {
	ID          int64     `json:"id" db:"feedback_id"`
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	Email       string    `json:"-" db:"email"`
	ProductID   *int64    `json:"productId" db:"product_id"`
	ProductName *string   `json:"productName" db:"product_name"`
	Testimonial string    `json:"testimonial" db:"testimonial"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	StarRating  int       `json:"starRating" db:"star_rating"`
	Active      bool      `json:"active" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type FeedbackNew struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	ProductID   *int64 `json:"productId" validate:"omitempty,gt=0"`
	Testimonial string `json:"testimonial" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required,max=255"`
	StarRating  int    `json:"starRating" validate:"omitempty,min=1,max=5"`
	Active      *bool  `json:"active"`
}

func Create(ctx context.Context, db sqlx.ExtContext, f Feedback) (int64, error) {
	const q = `
	INSERT INTO feedbacks
		(first_name, last_name, email, product_id, testimonial, image_url, star_rating, is_active,
		 created_at, updated_at)
	VALUES
		(:first_name, :last_name, :email, :product_id, :testimonial, :image_url, :star_rating, :is_active,
		 :created_at, :updated_at)
	RETURNING feedback_id`

	id, err := database.NamedQueryRowID(ctx, db, q, f)
	if err != nil {
		return 0, fmt.Errorf("inserting feedback: %w", err)
	}
	return id, nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id int64) error {
	const q = `DELETE FROM feedbacks WHERE feedback_id = $1`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting feedback[%d]: %w", id, err)
	}
	if err := database.RowsAffected(res); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListActive returns the published testimonials, newest first.
func ListActive(ctx context.Context, db sqlx.ExtContext) ([]Feedback, error) {
	const q = `
	SELECT
		f.feedback_id, f.first_name, f.last_name, f.email, f.product_id, p.name AS product_name,
		f.testimonial, f.image_url, f.star_rating, f.is_active, f.created_at, f.updated_at
	FROM feedbacks AS f
	LEFT JOIN products AS p ON p.product_id = f.product_id
	WHERE f.is_active
	ORDER BY f.created_at DESC`

	fs := []Feedback{}
	if err := sqlx.SelectContext(ctx, db, &fs, q); err != nil {
		return nil, fmt.Errorf("selecting feedbacks: %w", err)
	}
	return fs, nil
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var fn FeedbackNew
		if err := web.Decode(w, r, &fn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(fn); err != nil {
			return weberr.Invalid(err)
		}

		f := FromNew(fn, time.Now().UTC())

		id, err := Create(ctx, db, f)
		if err != nil {
			if errors.Is(err, database.ErrDBReference) {
				return weberr.BadRequest(fmt.Errorf("product[%d]: %w", *f.ProductID, err))
			}
			return err
		}
		f.ID = id

		return web.Respond(ctx, w, f, http.StatusCreated)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		if err := Delete(ctx, db, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(fmt.Errorf("feedback[%d]: %w", id, err))
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func FromNew(fn FeedbackNew, now time.Time) Feedback {
	f := Feedback{
		FirstName:   strings.TrimSpace(fn.FirstName),
		LastName:    strings.TrimSpace(fn.LastName),
		Email:       strings.ToLower(strings.TrimSpace(fn.Email)),
		ProductID:   fn.ProductID,
		Testimonial: fn.Testimonial,
		ImageURL:    fn.ImageURL,
		StarRating:  fn.StarRating,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f.StarRating == 0 {
		f.StarRating = Stars
	}
	if fn.Active != nil {
		f.Active = *fn.Active
	}
	return f
}
