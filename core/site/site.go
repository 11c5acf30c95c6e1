// Package site composes the storefront pages. Catalog derived parts of each
// page are read through the cache generation gate, so an admin write makes
// every one of them stale at once.
package site

import (
	"context"
	"strings"
	"time"

	"github.com/fullscopemd/storefront/cachegen"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/product"
)

// RelatedLimit caps the related products shown on a product page.
const RelatedLimit = 12

// SlideSize is the number of programs per carousel slide.
const SlideSize = 3

// Cache namespaces.
const (
	nsNav              = "nav_programs"
	nsCoreCategories   = "core_categories"
	nsHomeProducts     = "home_products"
	nsCategoryID       = "category_id"
	nsCategoryProducts = "category_products"
	nsRelatedProducts  = "related_products"
	nsProgramsCats     = "prgrms_srvcs_categories"
	nsProgramsProducts = "prgrms_srvcs_products"
)

type TTL struct {
	Nav    time.Duration
	List   time.Duration
	Detail time.Duration
}

type Config struct {
	Brand       string
	BaseURL     string
	CheckoutURL string
	TTL         TTL
}

type Site struct {
	src  Source
	gate *cachegen.Gate
	cfg  Config
}

func New(src Source, gate *cachegen.Gate, cfg Config) *Site {
	return &Site{src: src, gate: gate, cfg: cfg}
}

// Nav returns the active categories with their bullets, for the menu.
func (s *Site) Nav(ctx context.Context) ([]category.Category, error) {
	key := s.gate.VersionedKey(ctx, nsNav)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.Nav, s.src.NavCategories)
}

func (s *Site) coreCategories(ctx context.Context) ([]category.Category, error) {
	key := s.gate.VersionedKey(ctx, nsCoreCategories)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.List, s.src.CategoriesWithCounts)
}

func (s *Site) homeProducts(ctx context.Context) ([]product.Product, error) {
	key := s.gate.VersionedKey(ctx, nsHomeProducts)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.List, s.src.Products)
}

func (s *Site) programsCategories(ctx context.Context) ([]category.Category, error) {
	key := s.gate.VersionedKey(ctx, nsProgramsCats)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.List, s.src.CategoriesWithCounts)
}

func (s *Site) programsProducts(ctx context.Context) ([]product.Product, error) {
	key := s.gate.VersionedKey(ctx, nsProgramsProducts)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.List, s.src.Products)
}

func (s *Site) categoryID(ctx context.Context, slug string) (int64, error) {
	key := s.gate.VersionedKey(ctx, nsCategoryID, slug)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.Detail, func(ctx context.Context) (int64, error) {
		return s.src.CategoryIDBySlug(ctx, slug)
	})
}

func (s *Site) categoryProducts(ctx context.Context, slug string, categoryID int64) ([]product.Product, error) {
	key := s.gate.VersionedKey(ctx, nsCategoryProducts, slug)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.List, func(ctx context.Context) ([]product.Product, error) {
		return s.src.ProductsByCategory(ctx, categoryID)
	})
}

func (s *Site) related(ctx context.Context, p product.Product) ([]product.Product, error) {
	key := s.gate.VersionedKey(ctx, nsRelatedProducts, p.CategoryID, p.ID)
	return cachegen.GetOrBuild(ctx, s.gate, key, s.cfg.TTL.List, func(ctx context.Context) ([]product.Product, error) {
		return s.src.Related(ctx, p.CategoryID, p.ID, RelatedLimit)
	})
}

// absURL resolves a stored media path against the public site URL.
func (s *Site) absURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (s *Site) title(name string) string {
	return name + " | " + s.cfg.Brand
}
