package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/fullscopemd/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectCategories = `
SELECT
	c.category_id, c.name, c.slug, c.kind, c.tagline, c.short_description, c.long_description,
	c.image_url, c.sort_order, c.is_active, 0 AS product_count
FROM categories AS c`

func Create(ctx context.Context, db sqlx.ExtContext, c Category) (int64, error) {
	const q = `
	INSERT INTO categories
		(name, slug, kind, tagline, short_description, long_description, image_url, sort_order, is_active)
	VALUES
		(:name, :slug, :kind, :tagline, :short_description, :long_description, :image_url, :sort_order, :is_active)
	RETURNING category_id`

	id, err := database.NamedQueryRowID(ctx, db, q, c)
	if err != nil {
		return 0, fmt.Errorf("inserting category: %w", err)
	}
	return id, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Category) error {
	const q = `
	UPDATE categories SET
		"name" = :name,
		"slug" = :slug,
		"kind" = :kind,
		"tagline" = :tagline,
		"short_description" = :short_description,
		"long_description" = :long_description,
		"image_url" = :image_url,
		"sort_order" = :sort_order,
		"is_active" = :is_active
	WHERE category_id = :category_id`

	res, err := database.NamedExecContext(ctx, db, q, c)
	if err != nil {
		return fmt.Errorf("updating category[%d]: %w", c.ID, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrNotFound)
	}
	return nil
}

// Delete removes a category. Categories still referenced by products are
// protected and yield ErrHasProducts.
func Delete(ctx context.Context, db sqlx.ExtContext, id int64) error {
	const q = `DELETE FROM categories WHERE category_id = $1`

	res, err := database.ExecContext(ctx, db, q, id)
	if err != nil {
		if errors.Is(err, database.ErrDBReference) {
			return ErrHasProducts
		}
		return fmt.Errorf("deleting category[%d]: %w", id, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrNotFound)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id int64) (Category, error) {
	q := selectCategories + ` WHERE c.category_id = $1`

	var c Category
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Category{}, notFound(err, ErrNotFound)
	}
	return c, nil
}

// FetchForUpdate is Fetch holding a row lock on the category until the
// surrounding transaction ends.
func FetchForUpdate(ctx context.Context, db sqlx.ExtContext, id int64) (Category, error) {
	q := selectCategories + ` WHERE c.category_id = $1 FOR UPDATE`

	var c Category
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Category{}, notFound(err, ErrNotFound)
	}
	return c, nil
}

// FetchActive loads an active category with its active bullets.
func FetchActive(ctx context.Context, db sqlx.ExtContext, id int64) (Category, error) {
	q := selectCategories + ` WHERE c.category_id = $1 AND c.is_active`

	var c Category
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Category{}, notFound(err, ErrNotFound)
	}

	cs := []Category{c}
	if err := attachBullets(ctx, db, cs); err != nil {
		return Category{}, err
	}
	return cs[0], nil
}

// FetchIDBySlug resolves the id of an active category.
func FetchIDBySlug(ctx context.Context, db sqlx.ExtContext, slug string) (int64, error) {
	const q = `SELECT category_id FROM categories WHERE slug = $1 AND is_active`

	var id int64
	if err := sqlx.GetContext(ctx, db, &id, q, slug); err != nil {
		return 0, notFound(err, ErrNotFound)
	}
	return id, nil
}

// ListActive returns active categories with their active bullets, in menu
// order.
func ListActive(ctx context.Context, db sqlx.ExtContext) ([]Category, error) {
	q := selectCategories + ` WHERE c.is_active ORDER BY c.sort_order, c.name`

	cs := []Category{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting active categories: %w", err)
	}

	if err := attachBullets(ctx, db, cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// ListActiveWithCounts returns active categories annotated with the number
// of their active products.
func ListActiveWithCounts(ctx context.Context, db sqlx.ExtContext) ([]Category, error) {
	const q = `
	SELECT
		c.category_id, c.name, c.slug, c.kind, c.tagline, c.short_description, c.long_description,
		c.image_url, c.sort_order, c.is_active,
		COUNT(DISTINCT p.product_id) FILTER (WHERE p.is_active) AS product_count
	FROM categories AS c
	LEFT JOIN products AS p ON p.category_id = c.category_id
	WHERE c.is_active
	GROUP BY c.category_id
	ORDER BY c.sort_order, c.name`

	cs := []Category{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting category counts: %w", err)
	}
	return cs, nil
}

func CreateBullet(ctx context.Context, db sqlx.ExtContext, b Bullet) (int64, error) {
	const q = `
	INSERT INTO category_bullets (category_id, text, sort_order, is_active)
	VALUES (:category_id, :text, :sort_order, :is_active)
	RETURNING bullet_id`

	id, err := database.NamedQueryRowID(ctx, db, q, b)
	if err != nil {
		return 0, fmt.Errorf("inserting bullet for category[%d]: %w", b.CategoryID, err)
	}
	return id, nil
}

func DeleteBullet(ctx context.Context, db sqlx.ExtContext, categoryID, bulletID int64) error {
	const q = `DELETE FROM category_bullets WHERE bullet_id = $1 AND category_id = $2`

	res, err := db.ExecContext(ctx, q, bulletID, categoryID)
	if err != nil {
		return fmt.Errorf("deleting bullet[%d]: %w", bulletID, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err, ErrBulletNotFound)
	}
	return nil
}

// attachBullets loads the active bullets of every category in one query.
func attachBullets(ctx context.Context, db sqlx.ExtContext, cs []Category) error {
	if len(cs) == 0 {
		return nil
	}

	ids := make([]int64, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}

	const q = `
	SELECT bullet_id, category_id, text, sort_order, is_active
	FROM category_bullets
	WHERE category_id = ANY($1) AND is_active
	ORDER BY sort_order, bullet_id`

	bs := []Bullet{}
	if err := sqlx.SelectContext(ctx, db, &bs, q, pq.Array(ids)); err != nil {
		return fmt.Errorf("selecting category bullets: %w", err)
	}

	byCategory := make(map[int64][]Bullet, len(cs))
	for _, b := range bs {
		byCategory[b.CategoryID] = append(byCategory[b.CategoryID], b)
	}
	for i := range cs {
		cs[i].Bullets = byCategory[cs[i].ID]
		if cs[i].Bullets == nil {
			cs[i].Bullets = []Bullet{}
		}
	}
	return nil
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, database.ErrDBNotFound) {
		return sentinel
	}
	return err
}
