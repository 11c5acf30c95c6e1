package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/fullscopemd/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectProducts = `
SELECT
	p.product_id, p.category_id, c.name AS category_name, c.slug AS category_slug,
	p.name, p.slug, p.short_details, p.long_details, p.main_image_url,
	p.price, p.quantity, p.discount_type, p.discount_value, p.is_active,
	p.requires_prescription, p.requires_consultation, p.created_at, p.updated_at
FROM products AS p
JOIN categories AS c ON c.category_id = p.category_id`

const visible = `p.is_active AND c.is_active`

// Store is the catalog read API backed by Postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FetchMany(ctx context.Context, ids []int64) ([]Product, error) {
	return FetchMany(ctx, s.db, ids)
}

func (s *Store) FetchActive(ctx context.Context, id int64) (Product, error) {
	return FetchActive(ctx, s.db, id)
}

func Create(ctx context.Context, db sqlx.ExtContext, p Product) (int64, error) {
	const q = `
	INSERT INTO products
		(category_id, name, slug, short_details, long_details, main_image_url, price, quantity,
		 discount_type, discount_value, is_active, requires_prescription, requires_consultation,
		 created_at, updated_at)
	VALUES
		(:category_id, :name, :slug, :short_details, :long_details, :main_image_url, :price, :quantity,
		 :discount_type, :discount_value, :is_active, :requires_prescription, :requires_consultation,
		 :created_at, :updated_at)
	RETURNING product_id`

	id, err := database.NamedQueryRowID(ctx, db, q, p)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}
	return id, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	UPDATE products SET
		"category_id" = :category_id,
		"name" = :name,
		"slug" = :slug,
		"short_details" = :short_details,
		"long_details" = :long_details,
		"main_image_url" = :main_image_url,
		"price" = :price,
		"quantity" = :quantity,
		"discount_type" = :discount_type,
		"discount_value" = :discount_value,
		"is_active" = :is_active,
		"requires_prescription" = :requires_prescription,
		"requires_consultation" = :requires_consultation,
		"updated_at" = :updated_at
	WHERE product_id = :product_id`

	res, err := database.NamedExecContext(ctx, db, q, p)
	if err != nil {
		return fmt.Errorf("updating product[%d]: %w", p.ID, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrNotFound)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id int64) error {
	const q = `DELETE FROM products WHERE product_id = $1`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting product[%d]: %w", id, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrNotFound)
	}
	return nil
}

// Fetch returns a product regardless of its visibility.
func Fetch(ctx context.Context, db sqlx.ExtContext, id int64) (Product, error) {
	q := selectProducts + ` WHERE p.product_id = $1`

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		return Product{}, notFound(err, ErrNotFound)
	}
	return p, nil
}

// FetchForUpdate is Fetch holding a row lock on the product until the
// surrounding transaction ends.
func FetchForUpdate(ctx context.Context, db sqlx.ExtContext, id int64) (Product, error) {
	q := selectProducts + ` WHERE p.product_id = $1 FOR UPDATE OF p`

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		return Product{}, notFound(err, ErrNotFound)
	}
	return p, nil
}

// FetchActive returns a product only when it and its category are active.
func FetchActive(ctx context.Context, db sqlx.ExtContext, id int64) (Product, error) {
	q := selectProducts + ` WHERE p.product_id = $1 AND ` + visible

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		return Product{}, notFound(err, ErrNotFound)
	}
	return p, nil
}

func FetchBySlug(ctx context.Context, db sqlx.ExtContext, slug string) (Product, error) {
	q := selectProducts + ` WHERE p.slug = $1 AND ` + visible

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, slug); err != nil {
		return Product{}, notFound(err, ErrNotFound)
	}
	return p, nil
}

// FetchMany loads every existing product among ids in a single query.
// Unknown ids are absent from the result.
func FetchMany(ctx context.Context, db sqlx.ExtContext, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	q := selectProducts + ` WHERE p.product_id = ANY($1)`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("selecting %d products: %w", len(ids), err)
	}
	return ps, nil
}

func ListActive(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	q := selectProducts + ` WHERE ` + visible + ` ORDER BY p.name`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("selecting active products: %w", err)
	}
	return ps, nil
}

func ListByCategory(ctx context.Context, db sqlx.ExtContext, categoryID int64) ([]Product, error) {
	q := selectProducts + ` WHERE p.category_id = $1 AND ` + visible + ` ORDER BY p.name`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, categoryID); err != nil {
		return nil, fmt.Errorf("selecting products of category[%d]: %w", categoryID, err)
	}
	return ps, nil
}

// ListRelated returns up to limit visible products sharing the category of
// the excluded one.
func ListRelated(ctx context.Context, db sqlx.ExtContext, categoryID, excludeID int64, limit int) ([]Product, error) {
	q := selectProducts + ` WHERE p.category_id = $1 AND p.product_id <> $2 AND ` + visible +
		` ORDER BY p.name LIMIT $3`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, categoryID, excludeID, limit); err != nil {
		return nil, fmt.Errorf("selecting products related to product[%d]: %w", excludeID, err)
	}
	return ps, nil
}

func CreateImage(ctx context.Context, db sqlx.ExtContext, img Image) (int64, error) {
	const q = `
	INSERT INTO product_images (product_id, image_url, alt_text, sort_order, is_active, created_at)
	VALUES (:product_id, :image_url, :alt_text, :sort_order, :is_active, :created_at)
	RETURNING image_id`

	id, err := database.NamedQueryRowID(ctx, db, q, img)
	if err != nil {
		return 0, fmt.Errorf("inserting image for product[%d]: %w", img.ProductID, err)
	}
	return id, nil
}

func UpdateImage(ctx context.Context, db sqlx.ExtContext, img Image) error {
	const q = `
	UPDATE product_images SET
		"image_url" = :image_url,
		"alt_text" = :alt_text,
		"sort_order" = :sort_order,
		"is_active" = :is_active
	WHERE image_id = :image_id AND product_id = :product_id`

	res, err := database.NamedExecContext(ctx, db, q, img)
	if err != nil {
		return fmt.Errorf("updating image[%d]: %w", img.ID, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrImageNotFound)
	}
	return nil
}

func DeleteImage(ctx context.Context, db sqlx.ExtContext, productID, imageID int64) error {
	const q = `DELETE FROM product_images WHERE image_id = $1 AND product_id = $2`

	res, err := db.ExecContext(ctx, q, imageID, productID)
	if err != nil {
		return fmt.Errorf("deleting image[%d]: %w", imageID, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrImageNotFound)
	}
	return nil
}

// FetchImageForUpdate returns an image of a product, holding a row lock on
// it until the surrounding transaction ends.
func FetchImageForUpdate(ctx context.Context, db sqlx.ExtContext, productID, imageID int64) (Image, error) {
	const q = `
	SELECT image_id, product_id, image_url, alt_text, sort_order, is_active, created_at
	FROM product_images
	WHERE image_id = $1 AND product_id = $2
	FOR UPDATE`

	var img Image
	if err := sqlx.GetContext(ctx, db, &img, q, imageID, productID); err != nil {
		return Image{}, notFound(err, ErrImageNotFound)
	}
	return img, nil
}

// ListImages returns the active gallery of a product.
func ListImages(ctx context.Context, db sqlx.ExtContext, productID int64) ([]Image, error) {
	const q = `
	SELECT image_id, product_id, image_url, alt_text, sort_order, is_active, created_at
	FROM product_images
	WHERE product_id = $1 AND is_active
	ORDER BY sort_order, image_id`

	imgs := []Image{}
	if err := sqlx.SelectContext(ctx, db, &imgs, q, productID); err != nil {
		return nil, fmt.Errorf("selecting images of product[%d]: %w", productID, err)
	}
	return imgs, nil
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, database.ErrDBNotFound) {
		return sentinel
	}
	return err
}
