// Package seo serves the crawler-facing documents of the site.
package seo

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/core/blog"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/jmoiron/sqlx"
)

// Disallowed are the paths crawlers are asked to skip.
var Disallowed = []string{
	"/cart",
	"/cart/add",
	"/cart/update",
	"/cart/remove",
	"/cart/summary",
	"/newsletter/subscribe",
	"/newsletter/unsubscribe",
}

// Robots renders robots.txt for a site rooted at base.
func Robots(base string) string {
	lines := []string{"User-agent: *"}
	for _, p := range Disallowed {
		lines = append(lines, "Disallow: "+p)
	}
	lines = append(lines, "Sitemap: "+strings.TrimRight(base, "/")+"/sitemap.xml")
	return strings.Join(lines, "\n")
}

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Entries feeds the sitemap.
type Entries struct {
	Static     []string
	Categories []category.Category
	Products   []product.Product
	Posts      []blog.Post
}

// Sitemap lists static pages, programs, products and blog posts, in that
// order, under base.
func Sitemap(base string, e Entries) URLSet {
	base = strings.TrimRight(base, "/")
	set := URLSet{Xmlns: xmlns, URLs: []URL{}}

	for _, p := range e.Static {
		set.URLs = append(set.URLs, URL{Loc: base + p, ChangeFreq: "weekly", Priority: "0.7"})
	}
	for _, c := range e.Categories {
		set.URLs = append(set.URLs, URL{Loc: base + "/programs/" + c.Slug, ChangeFreq: "weekly", Priority: "0.8"})
	}
	for _, p := range e.Products {
		set.URLs = append(set.URLs, URL{
			Loc:        base + "/products/" + p.Slug,
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.9",
		})
	}
	for _, p := range e.Posts {
		set.URLs = append(set.URLs, URL{
			Loc:        base + "/blog?slug=" + url.QueryEscape(p.Slug),
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}
	return set
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func HandleRobots(base string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.RespondRaw(ctx, w, []byte(Robots(siteBase(base, r))), "text/plain; charset=utf-8", http.StatusOK)
	}
}

func HandleSitemap(db *sqlx.DB, base string, static []string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cs, err := category.ListActive(ctx, db)
		if err != nil {
			return err
		}
		ps, err := product.ListActive(ctx, db)
		if err != nil {
			return err
		}
		posts, err := blog.ListActive(ctx, db, blog.TopicAll)
		if err != nil {
			return err
		}

		set := Sitemap(siteBase(base, r), Entries{
			Static:     static,
			Categories: cs,
			Products:   ps,
			Posts:      posts,
		})

		b, err := xml.MarshalIndent(set, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding sitemap: %w", err)
		}
		b = append([]byte(xml.Header), b...)

		return web.RespondRaw(ctx, w, b, "application/xml; charset=utf-8", http.StatusOK)
	}
}

// siteBase prefers the configured public URL over the request host.
func siteBase(base string, r *http.Request) string {
	if base != "" {
		return base
	}
	return web.BaseURL(r)
}
