package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/database"
	"github.com/fullscopemd/storefront/validate"
	"github.com/jmoiron/sqlx"
)

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn PostNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.Invalid(err)
		}

		p := FromNew(pn, time.Now().UTC())

		id, err := Create(ctx, db, p)
		if err != nil {
			if errors.Is(err, database.ErrDBDuplicate) {
				return weberr.Conflict(err, "a post with this slug already exists")
			}
			return err
		}
		p.ID = id

		return web.Respond(ctx, w, p, http.StatusCreated)
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
				return weberr.NotFound(fmt.Errorf("post[%d]: %w", id, err))
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// FromNew fills the defaults of a post: slug from the title, badge from the
// topic, publication date today.
func FromNew(pn PostNew, now time.Time) Post {
	p := Post{
		Title:         pn.Title,
		Slug:          pn.Slug,
		Topic:         pn.Topic,
		BadgeLabel:    pn.BadgeLabel,
		Excerpt:       pn.Excerpt,
		Body:          pn.Body,
		MainImageURL:  pn.MainImageURL,
		ReadTimeLabel: pn.ReadTimeLabel,
		FeaturedHome:  pn.FeaturedHome,
		FeaturedPage:  pn.FeaturedPage,
		Active:        true,
		SortOrder:     pn.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
		PublishedAt:   now.Truncate(24 * time.Hour),
	}

	if p.Topic == "" {
		p.Topic = TopicWeight
	}
	if p.Slug == "" {
		p.Slug = validate.Slugify(p.Title)
	}
	if p.BadgeLabel == "" {
		p.BadgeLabel = p.Topic.DisplayName()
	}
	if p.ReadTimeLabel == "" {
		p.ReadTimeLabel = DefaultReadTime
	}
	if pn.PublishedAt != nil {
		p.PublishedAt = *pn.PublishedAt
	}
	if pn.Active != nil {
		p.Active = *pn.Active
	}

	bs := append(append([]string{}, pn.Bullets...), "", "", "")
	p.Bullet1, p.Bullet2, p.Bullet3 = bs[0], bs[1], bs[2]

	return p
}
