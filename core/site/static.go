package site

// Page is an informational page whose body lives in the front end.
type Page struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Legal bool   `json:"legal"`

	// Testimonials pulls the active feedbacks into the page.
	Testimonials bool `json:"-"`
}

// Pages are the static pages of the site, in sitemap order.
var Pages = []Page{
	{Path: "/about", Title: "About Us", Testimonials: true},
	{Path: "/contact", Title: "Contact Us"},
	{Path: "/faq", Title: "FAQs"},
	{Path: "/terms-and-conditions", Title: "Terms & Conditions", Legal: true},
	{Path: "/privacy-policy", Title: "Privacy Policy", Legal: true},
	{Path: "/refund-policy", Title: "Refund Policy", Legal: true},
	{Path: "/telehealth-consent", Title: "Telehealth Consent", Legal: true},
	{Path: "/hipaa-notice-of-privacy-practices", Title: "HIPAA Notice of Privacy Practices", Legal: true},
	{Path: "/medical-disclaimer", Title: "Medical Disclaimer", Legal: true},
	{Path: "/accessibility-statement", Title: "Accessibility Statement", Legal: true},
}

// SitemapPaths lists every indexable page that is not catalog or blog
// content.
func SitemapPaths() []string {
	paths := []string{"/", "/programs", "/blog"}
	for _, p := range Pages {
		paths = append(paths, p.Path)
	}
	return paths
}

func lookupPage(path string) (Page, bool) {
	for _, p := range Pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}
