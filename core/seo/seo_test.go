package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/fullscopemd/storefront/core/blog"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/google/go-cmp/cmp"
)

func TestMetaText(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		parts    []string
		max      int
		want     string
	}{
		{"fallback", "Clinician-guided care", []string{"", ""}, 160, "Clinician-guided care"},
		{"joins parts", "x", []string{"Lose weight.", "With GLP-1."}, 160, "Lose weight. With GLP-1."},
		{"strips tags", "x", []string{"<p>Fast <b>and</b>\n\n safe</p>"}, 160, "Fast and safe"},
		{"decodes entities", "x", []string{"Tom &amp; Jerry"}, 160, "Tom & Jerry"},
		{"truncates", "x", []string{"aaaa bbbb"}, 5, "aaaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MetaText(tt.fallback, tt.max, tt.parts...); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	long := strings.Repeat("word ", 100)
	if got := MetaText("", MetaLength, long); len([]rune(got)) > MetaLength {
		t.Fatalf("meta text longer than %d: %d", MetaLength, len(got))
	}
}

func TestRobots(t *testing.T) {
	got := Robots("https://fullscopemd.com/")

	if !strings.HasPrefix(got, "User-agent: *\nDisallow: /cart\n") {
		t.Fatalf("unexpected head:\n%s", got)
	}
	if !strings.HasSuffix(got, "Sitemap: https://fullscopemd.com/sitemap.xml") {
		t.Fatalf("unexpected tail:\n%s", got)
	}
}

func TestSitemap(t *testing.T) {
	updated := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	set := Sitemap("https://fullscopemd.com", Entries{
		Static:     []string{"/"},
		Categories: []category.Category{{Slug: "weight-loss"}},
		Products:   []product.Product{{Slug: "semaglutide", UpdatedAt: updated}},
		Posts:      []blog.Post{{Slug: "glp-1-basics", UpdatedAt: updated}},
	})

	want := []URL{
		{Loc: "https://fullscopemd.com/", ChangeFreq: "weekly", Priority: "0.7"},
		{Loc: "https://fullscopemd.com/programs/weight-loss", ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: "https://fullscopemd.com/products/semaglutide", LastMod: "2026-05-01", ChangeFreq: "weekly", Priority: "0.9"},
		{Loc: "https://fullscopemd.com/blog?slug=glp-1-basics", LastMod: "2026-05-01", ChangeFreq: "monthly", Priority: "0.6"},
	}
	if diff := cmp.Diff(want, set.URLs); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}

	b, err := xml.Marshal(set)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Fatalf("unexpected document: %s", b)
	}
}
