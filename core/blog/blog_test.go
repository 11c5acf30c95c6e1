package blog

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFeatured(t *testing.T) {
	posts := []Post{{ID: 1}, {ID: 2, FeaturedPage: true}, {ID: 3, FeaturedPage: true}}

	if got := Featured(posts, &Post{ID: 9}); got.ID != 9 {
		t.Fatalf("slug match ignored: got post %d", got.ID)
	}
	if got := Featured(posts, nil); got.ID != 2 {
		t.Fatalf("featured flag ignored: got post %d", got.ID)
	}
	if got := Featured(posts[:1], nil); got.ID != 1 {
		t.Fatalf("first post not used: got post %d", got.ID)
	}
	if got := Featured(nil, nil); got != nil {
		t.Fatalf("expected no featured post, got %d", got.ID)
	}
}

func TestFromNewDefaults(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	p := FromNew(PostNew{
		Title:   "GLP-1: What to Expect",
		Topic:   TopicPeptides,
		Bullets: []string{"one", "two"},
	}, now)

	if p.Slug != "glp-1-what-to-expect" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.BadgeLabel != "Peptide Therapy" {
		t.Errorf("badge = %q", p.BadgeLabel)
	}
	if p.ReadTimeLabel != DefaultReadTime {
		t.Errorf("read time = %q", p.ReadTimeLabel)
	}
	if !p.Active {
		t.Errorf("new post should be active")
	}
	if want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC); !p.PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", p.PublishedAt, want)
	}
	if diff := cmp.Diff([]string{"one", "two"}, p.Bullets()); diff != "" {
		t.Errorf("bullets mismatch (-want +got):\n%s", diff)
	}

	if p := FromNew(PostNew{Title: "x"}, now); p.Topic != TopicWeight || p.BadgeLabel != "Weight Management" {
		t.Errorf("default topic = %q badge = %q", p.Topic, p.BadgeLabel)
	}
}
