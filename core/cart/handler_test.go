package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/google/go-cmp/cmp"
)

func postForm(vals url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func postJSON(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodePayload(t *testing.T, w *httptest.ResponseRecorder) Payload {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var p Payload
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	return p
}

func TestHandleAdd(t *testing.T) {
	ctx := context.Background()
	c := New(newMemSession(), newMemCatalog(prod(1, "12.50", product.Tracked(4))))
	h := HandleAdd(c)

	w := httptest.NewRecorder()
	if err := h(ctx, w, postForm(url.Values{"product_id": {"1"}, "qty": {"3"}})); err != nil {
		t.Fatalf("add: %v", err)
	}
	decodePayload(t, w)

	w = httptest.NewRecorder()
	if err := h(ctx, w, postJSON(`{"product_id":1,"qty":1}`)); err != nil {
		t.Fatalf("add json: %v", err)
	}
	p := decodePayload(t, w)

	want := Payload{
		OK: true,
		Items: []PayloadItem{{
			ID: 1, Name: "product", Qty: 4, UnitPrice: "12.50", LineTotal: "50.00", Stock: 4,
		}},
		TotalQty:   4,
		TotalPrice: "50.00",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleAddRefused(t *testing.T) {
	ctx := context.Background()
	sess := newMemSession()
	c := New(sess, newMemCatalog(prod(1, "1.00", product.Tracked(0))))
	h := HandleAdd(c)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		body   interface{}
	}{
		{"out of stock", postForm(url.Values{"product_id": {"1"}}), http.StatusBadRequest, Failure{Error: "Out of stock"}},
		{"unknown product", postForm(url.Values{"product_id": {"2"}}), http.StatusNotFound, Failure{Error: "Not found"}},
		{"bad id", postForm(url.Values{"product_id": {"abc"}}), http.StatusBadRequest, Failure{Error: "Invalid request"}},
		{"missing id", postJSON(`{"qty":2}`), http.StatusBadRequest, Failure{Error: "Invalid request"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h(ctx, httptest.NewRecorder(), tt.req)
			body, status, ok := weberr.Response(err)
			if !ok {
				t.Fatalf("error carries no response: %v", err)
			}
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if diff := cmp.Diff(tt.body, body); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if sess.puts != 0 {
		t.Fatalf("refused mutations wrote the session %d times", sess.puts)
	}
}

func TestHandleUpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	c := New(newMemSession(), newMemCatalog(
		prod(1, "2.00", product.Untracked()),
		prod(2, "3.00", product.Untracked()),
	))

	c.Add(ctx, 1, 1, false)
	c.Add(ctx, 2, 1, false)

	w := httptest.NewRecorder()
	if err := HandleUpdate(c)(ctx, w, postForm(url.Values{"product_id": {"1"}, "qty": {"6"}})); err != nil {
		t.Fatalf("update: %v", err)
	}
	if p := decodePayload(t, w); p.TotalQty != 7 || p.TotalPrice != "15.00" {
		t.Fatalf("after update: %+v", p)
	}

	w = httptest.NewRecorder()
	if err := HandleRemove(c)(ctx, w, postForm(url.Values{"product_id": {"2"}})); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p := decodePayload(t, w); p.TotalQty != 6 || len(p.Items) != 1 {
		t.Fatalf("after remove: %+v", p)
	}

	w = httptest.NewRecorder()
	if err := HandleClear(c)(ctx, w, httptest.NewRequest(http.MethodDelete, "/cart", nil)); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if p := decodePayload(t, w); p.TotalQty != 0 || p.TotalPrice != "0.00" || len(p.Items) != 0 {
		t.Fatalf("after clear: %+v", p)
	}
}

func TestHandleAddHugeQuantity(t *testing.T) {
	ctx := context.Background()
	c := New(newMemSession(), newMemCatalog(prod(1, "10.00", product.Untracked())))
	h := HandleAdd(c)

	var p Payload
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		if err := h(ctx, w, postForm(url.Values{"product_id": {"1"}, "qty": {"9223372036854775807"}})); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		p = decodePayload(t, w)
	}

	if p.TotalQty != MaxQty || p.TotalPrice != "9990.00" {
		t.Fatalf("total_qty = %d, total_price = %s; want %d, 9990.00", p.TotalQty, p.TotalPrice, MaxQty)
	}
	if len(p.Items) != 1 || p.Items[0].Qty != MaxQty {
		t.Fatalf("items = %+v", p.Items)
	}
}

func TestHandleAddUnsavedSession(t *testing.T) {
	errDown := errors.New("session store down")
	ctx := web.WithSessionCommit(context.Background(), func() error { return errDown })

	c := New(newMemSession(), newMemCatalog(prod(1, "10.00", product.Untracked())))

	w := httptest.NewRecorder()
	err := HandleAdd(c)(ctx, w, postForm(url.Values{"product_id": {"1"}}))
	if !errors.Is(err, errDown) {
		t.Fatalf("err = %v, want the commit failure", err)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("payload sent for an unsaved cart: %s", w.Body)
	}
}
