package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fullscopemd/storefront/database"
	"github.com/jmoiron/sqlx"
)

const selectPosts = `
SELECT
	post_id, title, slug, topic, badge_label, excerpt, body, main_image_url, read_time_label,
	published_at, bullet_1, bullet_2, bullet_3, is_featured_home, is_featured_page, is_active,
	sort_order, created_at, updated_at
FROM blog_posts`

const listOrder = ` ORDER BY sort_order, published_at DESC, post_id DESC`

func Create(ctx context.Context, db sqlx.ExtContext, p Post) (int64, error) {
	const q = `
	INSERT INTO blog_posts
		(title, slug, topic, badge_label, excerpt, body, main_image_url, read_time_label, published_at,
		 bullet_1, bullet_2, bullet_3, is_featured_home, is_featured_page, is_active, sort_order,
		 created_at, updated_at)
	VALUES
		(:title, :slug, :topic, :badge_label, :excerpt, :body, :main_image_url, :read_time_label, :published_at,
		 :bullet_1, :bullet_2, :bullet_3, :is_featured_home, :is_featured_page, :is_active, :sort_order,
		 :created_at, :updated_at)
	RETURNING post_id`

	id, err := database.NamedQueryRowID(ctx, db, q, p)
	if err != nil {
		return 0, fmt.Errorf("inserting blog post: %w", err)
	}
	return id, nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id int64) error {
	const q = `DELETE FROM blog_posts WHERE post_id = $1`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting blog post[%d]: %w", id, err)
	}
	if err := database.RowsAffected(res); err != nil {
		return notFound(err)
	}
	return nil
}

func FetchActiveBySlug(ctx context.Context, db sqlx.ExtContext, slug string) (Post, error) {
	q := selectPosts + ` WHERE slug = $1 AND is_active`

	var p Post
	if err := sqlx.GetContext(ctx, db, &p, q, slug); err != nil {
		return Post{}, notFound(err)
	}
	return p, nil
}

// ListActive returns the visible posts of a topic, or of every topic when
// topic is TopicAll.
func ListActive(ctx context.Context, db sqlx.ExtContext, topic string) ([]Post, error) {
	ps := []Post{}

	var err error
	if topic == TopicAll {
		err = sqlx.SelectContext(ctx, db, &ps, selectPosts+` WHERE is_active`+listOrder)
	} else {
		err = sqlx.SelectContext(ctx, db, &ps, selectPosts+` WHERE is_active AND topic = $1`+listOrder, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("selecting posts of topic %q: %w", topic, err)
	}
	return ps, nil
}

// ListFeaturedHome returns up to limit posts flagged for the home page.
func ListFeaturedHome(ctx context.Context, db sqlx.ExtContext, limit int) ([]Post, error) {
	q := selectPosts + ` WHERE is_active AND is_featured_home` + listOrder + ` LIMIT $1`

	ps := []Post{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, limit); err != nil {
		return nil, fmt.Errorf("selecting home posts: %w", err)
	}
	return ps, nil
}

func notFound(err error) error {
	if errors.Is(err, database.ErrDBNotFound) {
		return ErrNotFound
	}
	return err
}
