package cart

import (
	"context"
	"errors"

	"github.com/fullscopemd/storefront/core/product"
)

var ErrOutOfStock = errors.New("out of stock")

// Guard vets a cart mutation before it reaches the Cart. The product must be
// active in an active category and either untracked or with stock left. The
// returned quantity is at least 1 and at most the tracked stock and MaxQty.
func Guard(ctx context.Context, catalog Catalog, productID int64, qty int) (product.Product, int, error) {
	p, err := catalog.FetchActive(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			rejections.WithLabelValues("not_found").Inc()
		}
		return product.Product{}, 0, err
	}

	if !p.Stock.Available() {
		rejections.WithLabelValues("out_of_stock").Inc()
		return p, 0, ErrOutOfStock
	}

	return p, p.Stock.Clamp(bounded(qty)), nil
}
