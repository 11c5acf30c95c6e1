package blog

import (
	"errors"
	"time"
)

type Topic string

const (
	TopicWeight   Topic = "weight"
	TopicPeptides Topic = "peptides"
	TopicSkin     Topic = "skin"
	TopicHair     Topic = "hair"
	TopicWellness Topic = "wellness"
	TopicPrimary  Topic = "primary"
)

// TopicAll is the listing filter that matches every topic.
const TopicAll = "all"

var topicNames = map[Topic]string{
	TopicWeight:   "Weight Management",
	TopicPeptides: "Peptide Therapy",
	TopicSkin:     "Skin Treatments",
	TopicHair:     "Hair Health",
	TopicWellness: "Wellness Therapy",
	TopicPrimary:  "Primary Care",
}

// DisplayName is the human label of t, or t itself when unknown.
func (t Topic) DisplayName() string {
	if n, ok := topicNames[t]; ok {
		return n
	}
	return string(t)
}

func (t Topic) Valid() bool {
	_, ok := topicNames[t]
	return ok
}

const DefaultReadTime = "4–6 min read"

// HomeLimit is the number of posts shown on the home page.
const HomeLimit = 5

var ErrNotFound = errors.New("blog post not found")

type Post struct {
	ID            int64     `json:"id" db:"post_id"`
	Title         string    `json:"title" db:"title"`
	Slug          string    `json:"slug" db:"slug"`
	Topic         Topic     `json:"topic" db:"topic"`
	BadgeLabel    string    `json:"badgeLabel" db:"badge_label"`
	Excerpt       string    `json:"excerpt" db:"excerpt"`
	Body          string    `json:"body" db:"body"`
	MainImageURL  string    `json:"mainImageUrl" db:"main_image_url"`
	ReadTimeLabel string    `json:"readTimeLabel" db:"read_time_label"`
	PublishedAt   time.Time `json:"publishedAt" db:"published_at"`
	Bullet1       string    `json:"-" db:"bullet_1"`
	Bullet2       string    `json:"-" db:"bullet_2"`
	Bullet3       string    `json:"-" db:"bullet_3"`
	FeaturedHome  bool      `json:"featuredHome" db:"is_featured_home"`
	FeaturedPage  bool      `json:"featuredPage" db:"is_featured_page"`
	Active        bool      `json:"active" db:"is_active"`
	SortOrder     int       `json:"sortOrder" db:"sort_order"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Bullets returns the non-empty bullet points in order.
func (p Post) Bullets() []string {
	bs := []string{}
	for _, b := range []string{p.Bullet1, p.Bullet2, p.Bullet3} {
		if b != "" {
			bs = append(bs, b)
		}
	}
	return bs
}

type PostNew struct {
	Title         string     `json:"title" validate:"required,max=220"`
	Slug          string     `json:"slug" validate:"omitempty,max=240,slug"`
	Topic         Topic      `json:"topic" validate:"omitempty,oneof=weight peptides skin hair wellness primary"`
	BadgeLabel    string     `json:"badgeLabel" validate:"max=80"`
	Excerpt       string     `json:"excerpt" validate:"required"`
	Body          string     `json:"body" validate:"required"`
	MainImageURL  string     `json:"mainImageUrl" validate:"required,max=255"`
	ReadTimeLabel string     `json:"readTimeLabel" validate:"max=40"`
	PublishedAt   *time.Time `json:"publishedAt"`
	Bullets       []string   `json:"bullets" validate:"max=3,dive,max=200"`
	FeaturedHome  bool       `json:"featuredHome"`
	FeaturedPage  bool       `json:"featuredPage"`
	Active        *bool      `json:"active"`
	SortOrder     int        `json:"sortOrder" validate:"gte=0"`
}

// Featured picks the headline post of the blog page: the post named by slug
// when it is active, else the first post flagged for the page, else the
// first post of the listing.
func Featured(posts []Post, bySlug *Post) *Post {
	if bySlug != nil {
		return bySlug
	}
	for i := range posts {
		if posts[i].FeaturedPage {
			return &posts[i]
		}
	}
	if len(posts) > 0 {
		return &posts[0]
	}
	return nil
}
