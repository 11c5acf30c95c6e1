// Package cart keeps the shopping cart of a browser session.
//
// The session only ever holds product ids and requested quantities. Prices,
// names and stock are read from the catalog every time the cart is read, so
// a price change between add-to-cart and checkout is always honoured and a
// client can never smuggle a price in.
package cart

import (
	"context"
	"encoding/gob"
	"fmt"

	"github.com/fullscopemd/storefront/core/product"
	"github.com/shopspring/decimal"
)

// SessionKey is where the cart lives in the session.
const SessionKey = "cart"

// MaxQty is the most units of one product a cart line can hold. Requested
// and accumulated quantities saturate at it.
const MaxQty = 999

// Entry is one stored cart row.
type Entry struct {
	ProductID int64
	Qty       int
}

// State is the stored cart, in insertion order.
type State []Entry

func init() {
	gob.Register(State{})
}

// Session is the part of the session manager the cart relies on. Put marks
// the session modified so that it is persisted at the end of the request.
type Session interface {
	Get(ctx context.Context, key string) interface{}
	Put(ctx context.Context, key string, val interface{})
	Remove(ctx context.Context, key string)
}

// Catalog is the product read API.
type Catalog interface {
	// FetchMany returns the existing products among ids in one round trip.
	FetchMany(ctx context.Context, ids []int64) ([]product.Product, error)
	// FetchActive returns a product only if it and its category are active.
	FetchActive(ctx context.Context, id int64) (product.Product, error)
}

// Line is a cart row priced from the current catalog.
type Line struct {
	Product   product.Product
	Qty       int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Cart operates on the cart of the session carried by the context.
type Cart struct {
	sess    Session
	catalog Catalog
}

func New(sess Session, catalog Catalog) *Cart {
	return &Cart{sess: sess, catalog: catalog}
}

// Add puts qty units of a product in the cart, on top of any already there,
// or in place of them when replace is set. qty is raised to at least 1 and
// the stored quantity never exceeds MaxQty. The product is not checked
// against the catalog; see Guard.
func (c *Cart) Add(ctx context.Context, productID int64, qty int, replace bool) {
	qty = bounded(qty)
	s := c.state(ctx)

	i := s.index(productID)
	if i < 0 {
		s = append(s, Entry{ProductID: productID})
		i = len(s) - 1
	}

	if replace {
		s[i].Qty = qty
	} else {
		s[i].Qty = saturatingAdd(s[i].Qty, qty)
	}

	c.sess.Put(ctx, SessionKey, s)
	mutations.WithLabelValues("add").Inc()
}

// Set overwrites the quantity of a product, kept within 1..MaxQty.
func (c *Cart) Set(ctx context.Context, productID int64, qty int) {
	qty = bounded(qty)
	s := c.state(ctx)

	if i := s.index(productID); i >= 0 {
		s[i].Qty = qty
	} else {
		s = append(s, Entry{ProductID: productID, Qty: qty})
	}

	c.sess.Put(ctx, SessionKey, s)
	mutations.WithLabelValues("set").Inc()
}

// Remove drops a product from the cart. Removing an absent product is a no-op
// and leaves the session untouched.
func (c *Cart) Remove(ctx context.Context, productID int64) {
	s := c.state(ctx)

	i := s.index(productID)
	if i < 0 {
		return
	}

	s = append(s[:i], s[i+1:]...)
	c.sess.Put(ctx, SessionKey, s)
	mutations.WithLabelValues("remove").Inc()
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.sess.Remove(ctx, SessionKey)
	mutations.WithLabelValues("clear").Inc()
}

// Entries returns a copy of the stored rows.
func (c *Cart) Entries(ctx context.Context) State {
	return c.state(ctx)
}

// Items prices the cart against the catalog in a single lookup.
//
// Rows whose product no longer exists are left out: a stale reference is not
// an error. Each remaining row takes the current final price of its product
// and has its quantity lowered to the tracked stock, never raised.
func (c *Cart) Items(ctx context.Context) ([]Line, error) {
	s := c.state(ctx)
	if len(s) == 0 {
		return []Line{}, nil
	}

	ids := make([]int64, len(s))
	for i, e := range s {
		ids[i] = e.ProductID
	}

	ps, err := c.catalog.FetchMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching %d cart products: %w", len(ids), err)
	}

	byID := make(map[int64]product.Product, len(ps))
	for _, p := range ps {
		byID[p.ID] = p
	}

	live := make(State, 0, len(s))
	for _, e := range s {
		if _, ok := byID[e.ProductID]; ok {
			live = append(live, e)
		}
	}

	lines := make([]Line, 0, len(live))
	for _, e := range live {
		p := byID[e.ProductID]
		unit := p.FinalPrice()
		qty := p.Stock.Clamp(e.Qty)

		lines = append(lines, Line{
			Product:   p,
			Qty:       qty,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lines, nil
}

// TotalQty sums the stored quantities. It ignores the catalog entirely, so it
// may exceed the sum of the quantities reported by Items when stock is short
// or products are gone.
func (c *Cart) TotalQty(ctx context.Context) int {
	var n int
	for _, e := range c.state(ctx) {
		n += e.Qty
	}
	return n
}

// TotalPrice sums the line totals reported by Items.
func (c *Cart) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	lines, err := c.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return sumLines(lines), nil
}

// Summary is the cart as shown to the client.
type Summary struct {
	Lines      []Line
	TotalQty   int
	TotalPrice decimal.Decimal
}

// Summarize prices the cart once and computes both totals from that pass.
func (c *Cart) Summarize(ctx context.Context) (Summary, error) {
	lines, err := c.Items(ctx)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Lines:      lines,
		TotalQty:   c.TotalQty(ctx),
		TotalPrice: sumLines(lines),
	}, nil
}

func (c *Cart) state(ctx context.Context) State {
	s, ok := c.sess.Get(ctx, SessionKey).(State)
	if !ok {
		return State{}
	}
	// The session hands back its own slice; never mutate it in place.
	return append(State(nil), s...)
}

func (s State) index(productID int64) int {
	for i, e := range s {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

func sumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// bounded keeps qty within 1..MaxQty.
func bounded(qty int) int {
	return min(max(qty, 1), MaxQty)
}

// saturatingAdd adds two quantities, stopping at MaxQty. stored may come from
// an older session and is not trusted to be in range.
func saturatingAdd(stored, qty int) int {
	if stored < 0 {
		stored = 0
	}
	if stored >= MaxQty || qty >= MaxQty-stored {
		return MaxQty
	}
	return stored + qty
}
