package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fullscopemd/storefront/core/product"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

type memSession struct {
	data map[string]interface{}
	puts int
}

func newMemSession() *memSession {
	return &memSession{data: map[string]interface{}{}}
}

func (s *memSession) Get(ctx context.Context, key string) interface{} { return s.data[key] }

func (s *memSession) Put(ctx context.Context, key string, val interface{}) {
	s.data[key] = val
	s.puts++
}

func (s *memSession) Remove(ctx context.Context, key string) { delete(s.data, key) }

type memCatalog struct {
	products  map[int64]product.Product
	inactive  map[int64]bool
	manyCalls int
}

func newMemCatalog(ps ...product.Product) *memCatalog {
	c := &memCatalog{products: map[int64]product.Product{}, inactive: map[int64]bool{}}
	for _, p := range ps {
		c.products[p.ID] = p
	}
	return c
}

func (c *memCatalog) FetchMany(ctx context.Context, ids []int64) ([]product.Product, error) {
	c.manyCalls++
	var ps []product.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			ps = append(ps, p)
		}
	}
	return ps, nil
}

func (c *memCatalog) FetchActive(ctx context.Context, id int64) (product.Product, error) {
	p, ok := c.products[id]
	if !ok || c.inactive[id] {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func prod(id int64, price string, stock product.Stock) product.Product {
	return product.Product{
		ID:           id,
		Name:         "product",
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		DiscountType: product.DiscountNone,
	}
}

func TestAddAccumulatesAndReplaces(t *testing.T) {
	ctx := context.Background()
	c := New(newMemSession(), newMemCatalog())

	c.Add(ctx, 7, 3, false)
	c.Add(ctx, 7, 2, false)
	if got := c.Entries(ctx); !cmp.Equal(got, State{{ProductID: 7, Qty: 5}}) {
		t.Fatalf("after two adds: %v", got)
	}

	c.Add(ctx, 7, 2, true)
	if got := c.Entries(ctx); !cmp.Equal(got, State{{ProductID: 7, Qty: 2}}) {
		t.Fatalf("after replace: %v", got)
	}
}

func TestQuantityRaisedToOne(t *testing.T) {
	ctx := context.Background()
	c := New(newMemSession(), newMemCatalog())

	c.Add(ctx, 1, 0, false)
	c.Add(ctx, 2, -4, false)
	c.Set(ctx, 3, 0)

	want := State{{1, 1}, {2, 1}, {3, 1}}
	if diff := cmp.Diff(want, c.Entries(ctx)); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestQuantitySaturates(t *testing.T) {
	ctx := context.Background()
	sess := newMemSession()
	c := New(sess, newMemCatalog(prod(1, "10.00", product.Untracked())))

	c.Add(ctx, 1, math.MaxInt, false)
	c.Add(ctx, 1, math.MaxInt, false)
	c.Set(ctx, 2, math.MaxInt)
	c.Add(ctx, 3, MaxQty-1, false)
	c.Add(ctx, 3, 5, false)

	want := State{{1, MaxQty}, {2, MaxQty}, {3, MaxQty}}
	if diff := cmp.Diff(want, c.Entries(ctx)); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	// A corrupt stored row is not carried into the sum.
	sess.data[SessionKey] = State{{ProductID: 1, Qty: -50}}
	c.Add(ctx, 1, 2, false)
	if got := c.Entries(ctx); !cmp.Equal(got, State{{ProductID: 1, Qty: 2}}) {
		t.Fatalf("after add on corrupt row: %v", got)
	}
}

func TestInsertionOrderKept(t *testing.T) {
	ctx := context.Background()
	c := New(newMemSession(), newMemCatalog())

	for _, id := range []int64{9, 4, 6} {
		c.Add(ctx, id, 1, false)
	}
	c.Set(ctx, 4, 8)

	want := State{{9, 1}, {4, 8}, {6, 1}}
	if diff := cmp.Diff(want, c.Entries(ctx)); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	sess := newMemSession()
	c := New(sess, newMemCatalog())

	c.Add(ctx, 1, 1, false)
	c.Add(ctx, 2, 1, false)
	puts := sess.puts

	c.Remove(ctx, 42)
	if sess.puts != puts {
		t.Fatalf("removing an absent product touched the session")
	}

	c.Remove(ctx, 1)
	if diff := cmp.Diff(State{{2, 1}}, c.Entries(ctx)); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	c.Clear(ctx)
	if got := c.Entries(ctx); len(got) != 0 {
		t.Fatalf("cart not empty after clear: %v", got)
	}
}

func TestStoredStateNotAliased(t *testing.T) {
	ctx := context.Background()
	sess := newMemSession()
	c := New(sess, newMemCatalog())

	c.Add(ctx, 1, 1, false)
	before := sess.data[SessionKey].(State)
	c.Add(ctx, 1, 4, false)

	if before[0].Qty != 1 {
		t.Fatalf("previous session value mutated in place: %v", before)
	}
}

func TestItemsDropsStaleAndClamps(t *testing.T) {
	ctx := context.Background()
	cat := newMemCatalog(
		prod(1, "10.00", product.Untracked()),
		prod(2, "5.00", product.Tracked(2)),
		prod(3, "1.00", product.Tracked(0)),
	)
	c := New(newMemSession(), cat)

	c.Add(ctx, 1, 3, false)
	c.Add(ctx, 99, 4, false)
	c.Set(ctx, 2, 5)
	c.Add(ctx, 3, 1, false)

	lines, err := c.Items(ctx)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if cat.manyCalls != 1 {
		t.Fatalf("catalog queried %d times, want 1", cat.manyCalls)
	}

	type row struct {
		ID    int64
		Qty   int
		Total string
	}
	var got []row
	for _, l := range lines {
		got = append(got, row{l.Product.ID, l.Qty, l.LineTotal.StringFixed(2)})
	}
	want := []row{{1, 3, "30.00"}, {2, 2, "10.00"}, {3, 0, "0.00"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	// The stored quantities are untouched by pricing.
	if got := c.TotalQty(ctx); got != 3+4+5+1 {
		t.Fatalf("total qty = %d, want %d", got, 13)
	}

	total, err := c.TotalPrice(ctx)
	if err != nil {
		t.Fatalf("total price: %v", err)
	}
	if total.StringFixed(2) != "40.00" {
		t.Fatalf("total price = %s, want 40.00", total.StringFixed(2))
	}
}

func TestEmptyCartSkipsCatalog(t *testing.T) {
	ctx := context.Background()
	cat := newMemCatalog()
	c := New(newMemSession(), cat)

	s, err := c.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if cat.manyCalls != 0 {
		t.Fatalf("catalog queried for an empty cart")
	}
	if len(s.Lines) != 0 || s.TotalQty != 0 || !s.TotalPrice.IsZero() {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestDiscountedLine(t *testing.T) {
	ctx := context.Background()
	p := prod(5, "100.00", product.Untracked())
	p.DiscountType = product.DiscountPercent
	p.DiscountValue = decimal.NewFromInt(25)

	c := New(newMemSession(), newMemCatalog(p))
	c.Add(ctx, 5, 2, false)

	pl, err := c.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	got := NewPayload(pl)
	want := Payload{
		OK: true,
		Items: []PayloadItem{{
			ID:        5,
			Name:      "product",
			Qty:       2,
			UnitPrice: "75.00",
			LineTotal: "150.00",
			Stock:     product.StockSentinel,
		}},
		TotalQty:   2,
		TotalPrice: "150.00",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	cat := newMemCatalog(
		prod(1, "1.00", product.Untracked()),
		prod(2, "1.00", product.Tracked(3)),
		prod(3, "1.00", product.Tracked(0)),
		prod(4, "1.00", product.Tracked(5)),
	)
	cat.inactive[4] = true

	tests := []struct {
		name    string
		id      int64
		qty     int
		wantQty int
		wantErr error
	}{
		{"untracked keeps qty", 1, 40, 40, nil},
		{"zero qty raised", 1, 0, 1, nil},
		{"untracked capped", 1, math.MaxInt, MaxQty, nil},
		{"tracked clamps", 2, 10, 3, nil},
		{"out of stock", 3, 1, 0, ErrOutOfStock},
		{"inactive", 4, 1, 0, product.ErrNotFound},
		{"missing", 77, 1, 0, product.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, qty, err := Guard(ctx, cat, tt.id, tt.qty)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if qty != tt.wantQty {
				t.Fatalf("qty = %d, want %d", qty, tt.wantQty)
			}
		})
	}
}
