package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/fullscopemd/storefront/core/cart"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/fullscopemd/storefront/core/site"
	"github.com/google/go-cmp/cmp"
)

type storefrontTest struct {
	*TestEnv
}

func TestStorefront(t *testing.T) {
	env, err := NewTestEnv(t, "storefront_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}
	st := &storefrontTest{env}

	c := st.createCategoryOK(t, map[string]any{"name": "Weight Loss", "kind": "program"})

	sema := st.createProductOK(t, map[string]any{
		"categoryId":    c.ID,
		"name":          "Semaglutide",
		"price":         "100.00",
		"discountType":  "percent",
		"discountValue": "25",
	})
	tirz := st.createProductOK(t, map[string]any{
		"categoryId": c.ID,
		"name":       "Tirzepatide",
		"price":      "50.00",
		"stock":      0,
	})

	st.rejectPercentOver100(t, c.ID)

	st.cartAddOK(t, sema.ID, 2)
	got := st.cartSummaryOK(t)
	if got.TotalPrice != "150.00" || got.Items[0].UnitPrice != "75.00" {
		t.Fatalf("unexpected cart %+v", got)
	}

	st.cartAddOutOfStock(t, tirz.ID)

	st.pageInvalidatedOnWrite(t, c, sema)
	st.rejectedUpdateLeavesProduct(t, tirz)
	st.updateImageOK(t, tirz.ID)

	st.deleteProductOK(t, sema.ID)
	got = st.cartSummaryOK(t)
	if len(got.Items) != 0 || got.TotalQty != 2 {
		t.Fatalf("stale line not dropped or raw qty lost: %+v", got)
	}
}

func (st *storefrontTest) admin(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(method, st.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Admin-Token", AdminToken)

	return st.Do(t, r)
}

func (st *storefrontTest) createCategoryOK(t *testing.T, body map[string]any) category.Category {
	w := st.admin(t, http.MethodPost, "/admin/categories", body)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create category: status code %s", w.Status)
	}

	var c category.Category
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("cannot unmarshal created category: %v", err)
	}
	return c
}

func (st *storefrontTest) createProductOK(t *testing.T, body map[string]any) product.Product {
	w := st.admin(t, http.MethodPost, "/admin/products", body)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create product: status code %s", w.Status)
	}

	var p product.Product
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("cannot unmarshal created product: %v", err)
	}
	return p
}

func (st *storefrontTest) deleteProductOK(t *testing.T, id int64) {
	w := st.admin(t, http.MethodDelete, "/admin/products/"+strconv.FormatInt(id, 10), nil)
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't delete product: status code %s", w.Status)
	}
}

func (st *storefrontTest) rejectPercentOver100(t *testing.T, categoryID int64) {
	before := st.Gate.CurrentVersion(context.Background())

	w := st.admin(t, http.MethodPost, "/admin/products", map[string]any{
		"categoryId":    categoryID,
		"name":          "Too Cheap",
		"price":         "10.00",
		"discountType":  "percent",
		"discountValue": "150",
	})
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("percent 150 accepted: status code %s", w.Status)
	}

	if after := st.Gate.CurrentVersion(context.Background()); after != before {
		t.Fatalf("rejected write bumped the cache: %d -> %d", before, after)
	}
}

func (st *storefrontTest) cartAdd(t *testing.T, id int64, qty int) *http.Response {
	form := url.Values{
		"product_id": {strconv.FormatInt(id, 10)},
		"qty":        {strconv.Itoa(qty)},
	}

	r, err := http.NewRequest(http.MethodPost, st.URL+"/cart/add", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return st.Do(t, r)
}

func (st *storefrontTest) cartAddOK(t *testing.T, id int64, qty int) {
	w := st.cartAdd(t, id, qty)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't add to cart: status code %s", w.Status)
	}
	if cc := w.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Fatalf("cart response cacheable: %q", cc)
	}
}

func (st *storefrontTest) cartAddOutOfStock(t *testing.T, id int64) {
	w := st.cartAdd(t, id, 1)
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of stock product added: status code %s", w.Status)
	}

	var got cart.Failure
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cart.Failure{Error: "Out of stock"}, got); diff != "" {
		t.Fatalf("failure mismatch (-want +got):\n%s", diff)
	}
}

func (st *storefrontTest) cartSummaryOK(t *testing.T) cart.Payload {
	r, err := http.NewRequest(http.MethodGet, st.URL+"/cart/summary", nil)
	if err != nil {
		t.Fatal(err)
	}

	w := st.Do(t, r)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't read cart: status code %s", w.Status)
	}

	var p cart.Payload
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("cannot unmarshal cart: %v", err)
	}
	return p
}

// pageInvalidatedOnWrite reads a cached program page, renames its product
// through the admin API and expects the next read to show the new name.
func (st *storefrontTest) pageInvalidatedOnWrite(t *testing.T, c category.Category, p product.Product) {
	names := func() []string {
		r, err := http.NewRequest(http.MethodGet, st.URL+"/programs/"+c.Slug, nil)
		if err != nil {
			t.Fatal(err)
		}
		w := st.Do(t, r)
		if w.StatusCode != http.StatusOK {
			t.Fatalf("can't read program page: status code %s", w.Status)
		}

		var pg site.ProgramPage
		if err := json.NewDecoder(w.Body).Decode(&pg); err != nil {
			t.Fatal(err)
		}
		var ns []string
		for _, p := range pg.Products {
			ns = append(ns, p.Name)
		}
		return ns
	}

	if diff := cmp.Diff([]string{"Semaglutide", "Tirzepatide"}, names()); diff != "" {
		t.Fatalf("program products mismatch (-want +got):\n%s", diff)
	}

	w := st.admin(t, http.MethodPut, "/admin/products/"+strconv.FormatInt(p.ID, 10), map[string]any{"name": "Semaglutide Plus"})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't update product: status code %s", w.Status)
	}

	if diff := cmp.Diff([]string{"Semaglutide Plus", "Tirzepatide"}, names()); diff != "" {
		t.Fatalf("stale program page (-want +got):\n%s", diff)
	}
}

// rejectedUpdateLeavesProduct sends an update that fails validation after the
// product row was read and locked, and expects nothing to change.
func (st *storefrontTest) rejectedUpdateLeavesProduct(t *testing.T, p product.Product) {
	path := "/admin/products/" + strconv.FormatInt(p.ID, 10)
	before := st.Gate.CurrentVersion(context.Background())

	w := st.admin(t, http.MethodPut, path, map[string]any{
		"name":          "Renamed",
		"discountType":  "percent",
		"discountValue": "150",
	})
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("percent 150 accepted on update: status code %s", w.Status)
	}
	if after := st.Gate.CurrentVersion(context.Background()); after != before {
		t.Fatalf("rejected update bumped the cache: %d -> %d", before, after)
	}

	got, err := product.Fetch(context.Background(), st.DB, p.ID)
	if err != nil {
		t.Fatalf("fetching product: %v", err)
	}
	if got.Name != p.Name || got.DiscountType != p.DiscountType {
		t.Fatalf("rejected update persisted: %+v", got)
	}
}

func (st *storefrontTest) updateImageOK(t *testing.T, productID int64) {
	base := "/admin/products/" + strconv.FormatInt(productID, 10) + "/images"

	w := st.admin(t, http.MethodPost, base, map[string]any{"url": "/media/vial.webp", "altText": "vial"})
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create image: status code %s", w.Status)
	}
	var img product.Image
	if err := json.NewDecoder(w.Body).Decode(&img); err != nil {
		t.Fatal(err)
	}

	before := st.Gate.CurrentVersion(context.Background())

	w = st.admin(t, http.MethodPut, base+"/"+strconv.FormatInt(img.ID, 10), map[string]any{"altText": "a vial"})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't update image: status code %s", w.Status)
	}
	var got product.Image
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.AltText != "a vial" || got.URL != img.URL {
		t.Fatalf("image not updated: %+v", got)
	}
	if after := st.Gate.CurrentVersion(context.Background()); after <= before {
		t.Fatalf("image update did not bump the cache: %d -> %d", before, after)
	}

	w = st.admin(t, http.MethodPut, base+"/999999", map[string]any{"altText": "x"})
	if w.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown image updated: status code %s", w.Status)
	}
}
