package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/core/product"
)

type mutation struct {
	ProductID int64 `json:"product_id"`
	Qty       *int  `json:"qty"`
}

func HandleAdd(c *Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		m, err := decodeMutation(w, r)
		if err != nil {
			return err
		}

		p, qty, err := Guard(ctx, c.catalog, m.ProductID, m.qty())
		if err != nil {
			return refuse(err, m.ProductID)
		}

		c.Add(ctx, p.ID, qty, false)
		return respond(ctx, w, c)
	}
}

func HandleUpdate(c *Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		m, err := decodeMutation(w, r)
		if err != nil {
			return err
		}

		p, qty, err := Guard(ctx, c.catalog, m.ProductID, m.qty())
		if err != nil {
			return refuse(err, m.ProductID)
		}

		c.Set(ctx, p.ID, qty)
		return respond(ctx, w, c)
	}
}

func HandleRemove(c *Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		m, err := decodeMutation(w, r)
		if err != nil {
			return err
		}

		c.Remove(ctx, m.ProductID)
		return respond(ctx, w, c)
	}
}

func HandleClear(c *Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c.Clear(ctx)
		return respond(ctx, w, c)
	}
}

func HandleSummary(c *Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return respond(ctx, w, c)
	}
}

// respond stores the session before answering, so a payload is never sent
// for a cart that was not saved.
func respond(ctx context.Context, w http.ResponseWriter, c *Cart) error {
	if err := web.CommitSession(ctx); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}

	s, err := c.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("summarizing cart: %w", err)
	}
	return web.Respond(ctx, w, NewPayload(s), http.StatusOK)
}

// refuse maps a guard failure onto the cart failure envelope.
func refuse(err error, productID int64) error {
	fields := weberr.WithFields(map[string]interface{}{"product_id": productID})

	switch {
	case errors.Is(err, ErrOutOfStock):
		return weberr.Wrap(err, fields, weberr.WithResponse(Failure{Error: "Out of stock"}, http.StatusBadRequest))
	case errors.Is(err, product.ErrNotFound):
		return weberr.Wrap(err, fields, weberr.WithResponse(Failure{Error: "Not found"}, http.StatusNotFound))
	}
	return fmt.Errorf("checking product[%d]: %w", productID, err)
}

// decodeMutation reads {product_id, qty} from a JSON body or a form.
func decodeMutation(w http.ResponseWriter, r *http.Request) (mutation, error) {
	var m mutation

	if web.IsJSON(r) {
		if err := web.Decode(w, r, &m); err != nil {
			return m, invalid(fmt.Errorf("unable to decode payload: %w", err))
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
		if err := r.ParseForm(); err != nil {
			return m, invalid(fmt.Errorf("unable to parse form: %w", err))
		}

		id, err := strconv.ParseInt(r.PostForm.Get("product_id"), 10, 64)
		if err != nil {
			return m, invalid(fmt.Errorf("product_id: %w", err))
		}
		m.ProductID = id

		if v := r.PostForm.Get("qty"); v != "" {
			qty, err := strconv.Atoi(v)
			if err != nil {
				return m, invalid(fmt.Errorf("qty: %w", err))
			}
			m.Qty = &qty
		}
	}

	if m.ProductID <= 0 {
		return m, invalid(errors.New("product_id must be a positive integer"))
	}
	return m, nil
}

func invalid(err error) error {
	return weberr.Wrap(err, weberr.WithResponse(Failure{Error: "Invalid request"}, http.StatusBadRequest))
}

func (m mutation) qty() int {
	if m.Qty == nil {
		return 1
	}
	return *m.Qty
}
