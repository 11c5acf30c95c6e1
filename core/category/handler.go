package category

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/database"
	"github.com/fullscopemd/storefront/validate"
	"github.com/jmoiron/sqlx"
)

// Invalidator drops every cached view derived from the catalog.
type Invalidator interface {
	Bump(ctx context.Context) int64
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			return mapErr(err, id)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CategoryNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.Invalid(err)
		}

		c := Category{
			Name:             cn.Name,
			Slug:             cn.Slug,
			Kind:             cn.Kind,
			Tagline:          cn.Tagline,
			ShortDescription: cn.ShortDescription,
			LongDescription:  cn.LongDescription,
			ImageURL:         cn.ImageURL,
			SortOrder:        cn.SortOrder,
			Active:           cn.Active == nil || *cn.Active,
			Bullets:          []Bullet{},
		}
		if c.Slug == "" {
			c.Slug = validate.Slugify(c.Name)
		}
		if c.Kind == "" {
			c.Kind = KindProgram
		}

		id, err := Create(ctx, db, c)
		if err != nil {
			return mapErr(err, 0)
		}
		c.ID = id

		inv.Bump(ctx)
		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var cu CategoryUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.Invalid(err)
		}

		var c Category
		err = database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
			var err error
			if c, err = FetchForUpdate(ctx, tx, id); err != nil {
				return mapErr(err, id)
			}

			if cu.Name != nil {
				c.Name = *cu.Name
			}
			if cu.Slug != nil {
				c.Slug = *cu.Slug
			}
			if cu.Kind != nil {
				c.Kind = *cu.Kind
			}
			if cu.Tagline != nil {
				c.Tagline = *cu.Tagline
			}
			if cu.ShortDescription != nil {
				c.ShortDescription = *cu.ShortDescription
			}
			if cu.LongDescription != nil {
				c.LongDescription = *cu.LongDescription
			}
			if cu.ImageURL != nil {
				c.ImageURL = *cu.ImageURL
			}
			if cu.SortOrder != nil {
				c.SortOrder = *cu.SortOrder
			}
			if cu.Active != nil {
				c.Active = *cu.Active
			}
			if c.Slug == "" {
				c.Slug = validate.Slugify(c.Name)
			}

			if err := Update(ctx, tx, c); err != nil {
				return mapErr(err, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		inv.Bump(ctx)
		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		if err := Delete(ctx, db, id); err != nil {
			return mapErr(err, id)
		}

		inv.Bump(ctx)
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleCreateBullet(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var bn BulletNew
		if err := web.Decode(w, r, &bn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(bn); err != nil {
			return weberr.Invalid(err)
		}

		b := Bullet{
			CategoryID: id,
			Text:       bn.Text,
			SortOrder:  bn.SortOrder,
			Active:     bn.Active == nil || *bn.Active,
		}

		bid, err := CreateBullet(ctx, db, b)
		if err != nil {
			if errors.Is(err, database.ErrDBReference) {
				return weberr.NotFound(ErrNotFound)
			}
			return err
		}
		b.ID = bid

		inv.Bump(ctx)
		return web.Respond(ctx, w, b, http.StatusCreated)
	}
}

func HandleDeleteBullet(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}
		bid, err := web.ParamInt64(r, "bullet_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		if err := DeleteBullet(ctx, db, id, bid); err != nil {
			if errors.Is(err, ErrBulletNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		inv.Bump(ctx)
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func mapErr(err error, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return weberr.NotFound(fmt.Errorf("category[%d]: %w", id, err))
	case errors.Is(err, ErrHasProducts):
		return weberr.Conflict(err, "category still has products")
	case errors.Is(err, database.ErrDBDuplicate):
		return weberr.Conflict(err, "a category with this name or slug already exists")
	}
	return err
}
