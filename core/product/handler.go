package product

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

		p, err := Fetch(ctx, db, id)
		if err != nil {
			return mapErr(err, id)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.Invalid(err)
		}

		now := time.Now().UTC()
		p := Product{
			CategoryID:           pn.CategoryID,
			Name:                 pn.Name,
			Slug:                 pn.Slug,
			ShortDetails:         pn.ShortDetails,
			LongDetails:          pn.LongDetails,
			MainImageURL:         pn.MainImageURL,
			Price:                pn.Price,
			Stock:                pn.Stock,
			DiscountType:         pn.DiscountType,
			DiscountValue:        pn.DiscountValue,
			Active:               pn.Active == nil || *pn.Active,
			RequiresPrescription: pn.RequiresPrescription,
			RequiresConsultation: pn.RequiresConsultation,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		normalize(&p)

		if err := CheckDiscount(p.Price, p.DiscountType, p.DiscountValue); err != nil {
			return weberr.Invalid(err)
		}

		id, err := Create(ctx, db, p)
		if err != nil {
			return mapErr(err, 0)
		}
		p.ID = id

		inv.Bump(ctx)
		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var pu ProductUp
		if err := web.Decode(w, r, &pu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(pu); err != nil {
			return weberr.Invalid(err)
		}

		var p Product
		err = database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
			var err error
			if p, err = FetchForUpdate(ctx, tx, id); err != nil {
				return mapErr(err, id)
			}

			apply(&p, pu)
			normalize(&p)
			p.UpdatedAt = time.Now().UTC()

			if err := CheckDiscount(p.Price, p.DiscountType, p.DiscountValue); err != nil {
				return weberr.Invalid(err)
			}

			if err := Update(ctx, tx, p); err != nil {
				return mapErr(err, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		inv.Bump(ctx)
		return web.Respond(ctx, w, p, http.StatusOK)
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

func HandleCreateImage(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var in ImageNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.Invalid(err)
		}

		img := Image{
			ProductID: id,
			URL:       in.URL,
			AltText:   in.AltText,
			SortOrder: in.SortOrder,
			Active:    in.Active == nil || *in.Active,
			CreatedAt: time.Now().UTC(),
		}

		iid, err := CreateImage(ctx, db, img)
		if err != nil {
			if errors.Is(err, database.ErrDBReference) {
				return weberr.NotFound(fmt.Errorf("product[%d]: %w", id, ErrNotFound))
			}
			return err
		}
		img.ID = iid

		inv.Bump(ctx)
		return web.Respond(ctx, w, img, http.StatusCreated)
	}
}

func HandleUpdateImage(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}
		iid, err := web.ParamInt64(r, "image_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var iu ImageUp
		if err := web.Decode(w, r, &iu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(iu); err != nil {
			return weberr.Invalid(err)
		}

		var img Image
		err = database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
			var err error
			if img, err = FetchImageForUpdate(ctx, tx, id, iid); err != nil {
				return mapErr(err, id)
			}

			if iu.URL != nil {
				img.URL = *iu.URL
			}
			if iu.AltText != nil {
				img.AltText = *iu.AltText
			}
			if iu.SortOrder != nil {
				img.SortOrder = *iu.SortOrder
			}
			if iu.Active != nil {
				img.Active = *iu.Active
			}

			if err := UpdateImage(ctx, tx, img); err != nil {
				return mapErr(err, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		inv.Bump(ctx)
		return web.Respond(ctx, w, img, http.StatusOK)
	}
}

func HandleDeleteImage(db *sqlx.DB, inv Invalidator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt64(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}
		iid, err := web.ParamInt64(r, "image_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		if err := DeleteImage(ctx, db, id, iid); err != nil {
			return mapErr(err, id)
		}

		inv.Bump(ctx)
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func apply(p *Product, pu ProductUp) {
	if pu.CategoryID != nil {
		p.CategoryID = *pu.CategoryID
	}
	if pu.Name != nil {
		p.Name = *pu.Name
	}
	if pu.Slug != nil {
		p.Slug = *pu.Slug
	}
	if pu.ShortDetails != nil {
		p.ShortDetails = *pu.ShortDetails
	}
	if pu.LongDetails != nil {
		p.LongDetails = *pu.LongDetails
	}
	if pu.MainImageURL != nil {
		p.MainImageURL = *pu.MainImageURL
	}
	if pu.Price != nil {
		p.Price = *pu.Price
	}
	if pu.Stock != nil {
		p.Stock = *pu.Stock
	}
	if pu.DiscountType != nil {
		p.DiscountType = *pu.DiscountType
	}
	if pu.DiscountValue != nil {
		p.DiscountValue = *pu.DiscountValue
	}
	if pu.Active != nil {
		p.Active = *pu.Active
	}
	if pu.RequiresPrescription != nil {
		p.RequiresPrescription = *pu.RequiresPrescription
	}
	if pu.RequiresConsultation != nil {
		p.RequiresConsultation = *pu.RequiresConsultation
	}
}

func normalize(p *Product) {
	if p.Slug == "" {
		p.Slug = validate.Slugify(p.Name)
	}
	if p.DiscountType == "" {
		p.DiscountType = DiscountNone
	}
	if p.MainImageURL == "" {
		p.MainImageURL = DefaultImage
	}
}

func mapErr(err error, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrImageNotFound):
		return weberr.NotFound(fmt.Errorf("product[%d]: %w", id, err))
	case errors.Is(err, database.ErrDBDuplicate):
		return weberr.Conflict(err, "a product with this name or slug already exists")
	case errors.Is(err, database.ErrDBReference):
		return weberr.Invalid(errors.New("category does not exist"))
	}
	return err
}
