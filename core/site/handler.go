package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/core/cart"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/product"
)

func HandleHome(s *Site) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		pg, err := s.Home(ctx)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

func HandlePrograms(s *Site) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		pg, err := s.Programs(ctx)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

func HandleProgram(s *Site) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		slug := web.Param(r, "slug")

		pg, err := s.Program(ctx, slug)
		if err != nil {
			return notFound(err, slug)
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

func HandleProduct(s *Site) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		slug := web.Param(r, "slug")

		pg, err := s.Product(ctx, slug)
		if err != nil {
			return notFound(err, slug)
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

func HandleBlog(s *Site) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q := r.URL.Query()

		pg, err := s.Blog(ctx, q.Get("topic"), q.Get("slug"))
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

// HandleStatic serves the static page registered under the request path.
func HandleStatic(s *Site) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		pg, err := s.Static(ctx, r.URL.Path)
		if err != nil {
			return notFound(err, r.URL.Path)
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

// HandleNotFound answers unrouted paths with the 404 envelope.
func HandleNotFound() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		body := struct {
			Error string `json:"error"`
			Meta  Meta   `json:"meta"`
		}{
			Error: "the resource could not be found",
			Meta:  NotFoundMeta(),
		}
		return weberr.Wrap(
			fmt.Errorf("no route for %s %s", r.Method, r.URL.Path),
			weberr.WithResponse(body, http.StatusNotFound),
		)
	}
}

type CartPage struct {
	Nav         []category.Category `json:"nav"`
	Items       []cart.PayloadItem  `json:"items"`
	TotalQty    int                 `json:"totalQty"`
	TotalPrice  string              `json:"totalPrice"`
	CheckoutURL string              `json:"checkoutUrl"`
	Meta        Meta                `json:"meta"`
}

// HandleCart is the full cart page. Unlike the cart endpoints it carries the
// navigation and the external checkout link.
func HandleCart(s *Site, c *cart.Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		nav, err := s.Nav(ctx)
		if err != nil {
			return err
		}

		sum, err := c.Summarize(ctx)
		if err != nil {
			return err
		}
		pl := cart.NewPayload(sum)

		pg := CartPage{
			Nav:         nav,
			Items:       pl.Items,
			TotalQty:    pl.TotalQty,
			TotalPrice:  pl.TotalPrice,
			CheckoutURL: s.cfg.CheckoutURL,
			Meta:        Meta{Title: s.title("Cart"), Robots: noIndex},
		}
		return web.Respond(ctx, w, pg, http.StatusOK)
	}
}

func notFound(err error, what string) error {
	switch {
	case errors.Is(err, category.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, ErrUnknownPage):
		return weberr.NotFound(fmt.Errorf("%s: %w", what, err))
	}
	return err
}
