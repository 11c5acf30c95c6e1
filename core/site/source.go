package site

import (
	"context"

	"github.com/fullscopemd/storefront/core/blog"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/feedback"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/jmoiron/sqlx"
)

// Source is everything the pages read.
type Source interface {
	NavCategories(ctx context.Context) ([]category.Category, error)
	CategoriesWithCounts(ctx context.Context) ([]category.Category, error)
	CategoryIDBySlug(ctx context.Context, slug string) (int64, error)
	Category(ctx context.Context, id int64) (category.Category, error)

	Products(ctx context.Context) ([]product.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]product.Product, error)
	ProductBySlug(ctx context.Context, slug string) (product.Product, error)
	Images(ctx context.Context, productID int64) ([]product.Image, error)
	Related(ctx context.Context, categoryID, excludeID int64, limit int) ([]product.Product, error)

	Feedbacks(ctx context.Context) ([]feedback.Feedback, error)
	HomePosts(ctx context.Context, limit int) ([]blog.Post, error)
	Posts(ctx context.Context, topic string) ([]blog.Post, error)
	PostBySlug(ctx context.Context, slug string) (blog.Post, error)
}

// DBSource reads pages straight from Postgres.
type DBSource struct {
	DB *sqlx.DB
}

var _ Source = DBSource{}

func (s DBSource) NavCategories(ctx context.Context) ([]category.Category, error) {
	return category.ListActive(ctx, s.DB)
}

func (s DBSource) CategoriesWithCounts(ctx context.Context) ([]category.Category, error) {
	return category.ListActiveWithCounts(ctx, s.DB)
}

func (s DBSource) CategoryIDBySlug(ctx context.Context, slug string) (int64, error) {
	return category.FetchIDBySlug(ctx, s.DB, slug)
}

func (s DBSource) Category(ctx context.Context, id int64) (category.Category, error) {
	return category.FetchActive(ctx, s.DB, id)
}

func (s DBSource) Products(ctx context.Context) ([]product.Product, error) {
	return product.ListActive(ctx, s.DB)
}

func (s DBSource) ProductsByCategory(ctx context.Context, categoryID int64) ([]product.Product, error) {
	return product.ListByCategory(ctx, s.DB, categoryID)
}

func (s DBSource) ProductBySlug(ctx context.Context, slug string) (product.Product, error) {
	return product.FetchBySlug(ctx, s.DB, slug)
}

func (s DBSource) Images(ctx context.Context, productID int64) ([]product.Image, error) {
	return product.ListImages(ctx, s.DB, productID)
}

func (s DBSource) Related(ctx context.Context, categoryID, excludeID int64, limit int) ([]product.Product, error) {
	return product.ListRelated(ctx, s.DB, categoryID, excludeID, limit)
}

func (s DBSource) Feedbacks(ctx context.Context) ([]feedback.Feedback, error) {
	return feedback.ListActive(ctx, s.DB)
}

func (s DBSource) HomePosts(ctx context.Context, limit int) ([]blog.Post, error) {
	return blog.ListFeaturedHome(ctx, s.DB, limit)
}

func (s DBSource) Posts(ctx context.Context, topic string) ([]blog.Post, error) {
	return blog.ListActive(ctx, s.DB, topic)
}

func (s DBSource) PostBySlug(ctx context.Context, slug string) (blog.Post, error) {
	return blog.FetchActiveBySlug(ctx, s.DB, slug)
}
