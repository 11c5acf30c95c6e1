package site

import (
	"context"
	"errors"
	"fmt"

	"github.com/fullscopemd/storefront/core/blog"
	"github.com/fullscopemd/storefront/core/category"
	"github.com/fullscopemd/storefront/core/feedback"
	"github.com/fullscopemd/storefront/core/product"
	"github.com/fullscopemd/storefront/core/seo"
)

// ErrUnknownPage is returned for a static page path that is not served.
var ErrUnknownPage = errors.New("unknown page")

const noIndex = "noindex,nofollow"

type Meta struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Canonical     string `json:"canonical,omitempty"`
	OGTitle       string `json:"ogTitle,omitempty"`
	OGDescription string `json:"ogDescription,omitempty"`
	OGImage       string `json:"ogImage,omitempty"`
	Robots        string `json:"robots,omitempty"`
}

// PostView is a blog post as shown in listings.
type PostView struct {
	blog.Post
	Bullets []string `json:"bullets"`
}

func postViews(ps []blog.Post) []PostView {
	vs := make([]PostView, len(ps))
	for i, p := range ps {
		vs[i] = PostView{Post: p, Bullets: p.Bullets()}
	}
	return vs
}

type HomePage struct {
	Nav          []category.Category `json:"nav"`
	Categories   []category.Category `json:"categories"`
	Products     []product.Product   `json:"products"`
	Feedbacks    []feedback.Feedback `json:"feedbacks"`
	Stars        int                 `json:"stars"`
	HomePosts    []PostView          `json:"homePosts"`
	FeaturedPost *PostView           `json:"featuredPost"`
}

func (s *Site) Home(ctx context.Context) (HomePage, error) {
	var (
		pg  = HomePage{Stars: feedback.Stars}
		err error
	)

	if pg.Nav, err = s.Nav(ctx); err != nil {
		return HomePage{}, err
	}
	if pg.Categories, err = s.coreCategories(ctx); err != nil {
		return HomePage{}, err
	}
	if pg.Products, err = s.homeProducts(ctx); err != nil {
		return HomePage{}, err
	}
	if pg.Feedbacks, err = s.src.Feedbacks(ctx); err != nil {
		return HomePage{}, err
	}

	posts, err := s.src.HomePosts(ctx, blog.HomeLimit)
	if err != nil {
		return HomePage{}, err
	}
	pg.HomePosts = postViews(posts)
	if len(pg.HomePosts) > 0 {
		pg.FeaturedPost = &pg.HomePosts[0]
	}

	return pg, nil
}

type ProgramsPage struct {
	Nav           []category.Category   `json:"nav"`
	Categories    []category.Category   `json:"categories"`
	Programs      []category.Category   `json:"programs"`
	ProgramSlides [][]category.Category `json:"programSlides"`
	Services      []category.Category   `json:"services"`
	Products      []product.Product     `json:"products"`
	Meta          Meta                  `json:"meta"`
}

func (s *Site) Programs(ctx context.Context) (ProgramsPage, error) {
	var (
		pg  ProgramsPage
		err error
	)

	if pg.Nav, err = s.Nav(ctx); err != nil {
		return ProgramsPage{}, err
	}
	if pg.Categories, err = s.programsCategories(ctx); err != nil {
		return ProgramsPage{}, err
	}
	if pg.Products, err = s.programsProducts(ctx); err != nil {
		return ProgramsPage{}, err
	}

	pg.Programs, pg.Services = category.SplitByKind(pg.Categories)
	pg.ProgramSlides = category.Slides(pg.Programs, SlideSize)

	desc := seo.MetaText(
		fmt.Sprintf("Explore %s programs and services across weight management, peptides, dermatology, hair loss, wellness therapy and primary care, with clinician-guided telehealth and nationwide delivery.", s.cfg.Brand),
		seo.MetaLength,
	)
	pg.Meta = Meta{
		Title:         s.title("Programs & Services"),
		Description:   desc,
		Canonical:     s.absURL("/programs"),
		OGTitle:       s.title("Programs & Services"),
		OGDescription: desc,
	}

	return pg, nil
}

type ProgramPage struct {
	Nav      []category.Category `json:"nav"`
	Category category.Category   `json:"category"`
	Products []product.Product   `json:"products"`
	Meta     Meta                `json:"meta"`
}

// Program is the page of one active category, by slug.
func (s *Site) Program(ctx context.Context, slug string) (ProgramPage, error) {
	var (
		pg  ProgramPage
		err error
	)

	if pg.Nav, err = s.Nav(ctx); err != nil {
		return ProgramPage{}, err
	}

	id, err := s.categoryID(ctx, slug)
	if err != nil {
		return ProgramPage{}, err
	}

	// The cached id may outlive the category; its state is always read fresh.
	if pg.Category, err = s.src.Category(ctx, id); err != nil {
		return ProgramPage{}, err
	}

	if pg.Products, err = s.categoryProducts(ctx, slug, id); err != nil {
		return ProgramPage{}, err
	}

	c := pg.Category
	desc := seo.MetaText(
		fmt.Sprintf("Clinician-guided %s telehealth with transparent pricing and nationwide delivery.", c.Name),
		seo.MetaLength,
		c.Tagline, c.ShortDescription,
	)
	pg.Meta = Meta{
		Title:         s.title(c.Name),
		Description:   desc,
		Canonical:     s.absURL("/programs/" + c.Slug),
		OGTitle:       s.title(c.Name),
		OGDescription: desc,
		OGImage:       s.absURL(c.ImageURL),
	}

	return pg, nil
}

type ProductPage struct {
	Nav     []category.Category `json:"nav"`
	Product product.Product     `json:"product"`
	Images  []product.Image     `json:"images"`
	Related []product.Product   `json:"related"`
	Meta    Meta                `json:"meta"`
}

// Product is the page of one visible product, by slug.
func (s *Site) Product(ctx context.Context, slug string) (ProductPage, error) {
	var (
		pg  ProductPage
		err error
	)

	if pg.Nav, err = s.Nav(ctx); err != nil {
		return ProductPage{}, err
	}
	if pg.Product, err = s.src.ProductBySlug(ctx, slug); err != nil {
		return ProductPage{}, err
	}
	if pg.Images, err = s.src.Images(ctx, pg.Product.ID); err != nil {
		return ProductPage{}, err
	}
	if pg.Related, err = s.related(ctx, pg.Product); err != nil {
		return ProductPage{}, err
	}

	p := pg.Product
	desc := seo.MetaText(
		fmt.Sprintf("Clinician-guided telehealth access for %s with transparent pricing and nationwide delivery.", p.Name),
		seo.MetaLength,
		p.ShortDetails, p.LongDetails,
	)
	pg.Meta = Meta{
		Title:         s.title(p.Name),
		Description:   desc,
		Canonical:     s.absURL("/products/" + p.Slug),
		OGTitle:       s.title(p.Name),
		OGDescription: desc,
		OGImage:       s.absURL(p.MainImageURL),
	}

	return pg, nil
}

type BlogPage struct {
	Nav          []category.Category `json:"nav"`
	Posts        []PostView          `json:"posts"`
	FeaturedPost *PostView           `json:"featuredPost"`
	ActiveTopic  string              `json:"activeTopic"`
	Topics       []Topic             `json:"topics"`
}

type Topic struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var blogTopics = []blog.Topic{
	blog.TopicWeight, blog.TopicPeptides, blog.TopicSkin,
	blog.TopicHair, blog.TopicWellness, blog.TopicPrimary,
}

// Blog lists the posts of topic ("" or "all" for every topic). The featured
// post is the active post named by slug, else the first one flagged for the
// page, else the first listed.
func (s *Site) Blog(ctx context.Context, topic, slug string) (BlogPage, error) {
	if topic == "" {
		topic = blog.TopicAll
	}

	pg := BlogPage{ActiveTopic: topic, Topics: []Topic{{Value: blog.TopicAll, Label: "All"}}}
	for _, t := range blogTopics {
		pg.Topics = append(pg.Topics, Topic{Value: string(t), Label: t.DisplayName()})
	}

	var err error
	if pg.Nav, err = s.Nav(ctx); err != nil {
		return BlogPage{}, err
	}

	posts, err := s.src.Posts(ctx, topic)
	if err != nil {
		return BlogPage{}, err
	}

	var bySlug *blog.Post
	if slug != "" {
		p, err := s.src.PostBySlug(ctx, slug)
		switch {
		case err == nil:
			bySlug = &p
		case !errors.Is(err, blog.ErrNotFound):
			return BlogPage{}, err
		}
	}

	pg.Posts = postViews(posts)
	if f := blog.Featured(posts, bySlug); f != nil {
		v := PostView{Post: *f, Bullets: f.Bullets()}
		pg.FeaturedPost = &v
	}

	return pg, nil
}

type StaticPage struct {
	Nav       []category.Category `json:"nav"`
	Page      Page                `json:"page"`
	Feedbacks []feedback.Feedback `json:"feedbacks,omitempty"`
	Stars     int                 `json:"stars,omitempty"`
	Meta      Meta                `json:"meta"`
}

// Static renders an informational or legal page registered in Pages.
func (s *Site) Static(ctx context.Context, path string) (StaticPage, error) {
	p, ok := lookupPage(path)
	if !ok {
		return StaticPage{}, fmt.Errorf("%w: %s", ErrUnknownPage, path)
	}

	pg := StaticPage{Page: p, Meta: Meta{Title: s.title(p.Title), Canonical: s.absURL(p.Path)}}

	var err error
	if pg.Nav, err = s.Nav(ctx); err != nil {
		return StaticPage{}, err
	}

	if p.Testimonials {
		if pg.Feedbacks, err = s.src.Feedbacks(ctx); err != nil {
			return StaticPage{}, err
		}
		pg.Stars = feedback.Stars
	}

	return pg, nil
}

// NotFoundMeta is the metadata of the 404 page.
func NotFoundMeta() Meta {
	const t = "404: Page not found"
	const d = "The requested page could not be found."
	return Meta{Title: t, Description: d, OGTitle: t, OGDescription: d, Robots: noIndex}
}
