package category

import "errors"

type Kind string

const (
	KindProgram Kind = "program"
	KindService Kind = "service"
)

var (
	ErrNotFound       = errors.New("category not found")
	ErrBulletNotFound = errors.New("category bullet not found")
	ErrHasProducts    = errors.New("category still has products")
)

type Category struct {
	ID               int64    `json:"id" db:"category_id"`
	Name             string   `json:"name" db:"name"`
	Slug             string   `json:"slug" db:"slug"`
	Kind             Kind     `json:"kind" db:"kind"`
	Tagline          string   `json:"tagline" db:"tagline"`
	ShortDescription string   `json:"shortDescription" db:"short_description"`
	LongDescription  string   `json:"longDescription" db:"long_description"`
	ImageURL         string   `json:"imageUrl" db:"image_url"`
	SortOrder        int      `json:"sortOrder" db:"sort_order"`
	Active           bool     `json:"active" db:"is_active"`
	ProductCount     int      `json:"productCount" db:"product_count"`
	Bullets          []Bullet `json:"bullets" db:"-"`
}

type Bullet struct {
	ID         int64  `json:"id" db:"bullet_id"`
	CategoryID int64  `json:"categoryId" db:"category_id"`
	Text       string `json:"text" db:"text"`
	SortOrder  int    `json:"sortOrder" db:"sort_order"`
	Active     bool   `json:"active" db:"is_active"`
}

type CategoryNew struct {
	Name             string `json:"name" validate:"required,max=120"`
	Slug             string `json:"slug" validate:"omitempty,max=140,slug"`
	Kind             Kind   `json:"kind" validate:"omitempty,oneof=program service"`
	Tagline          string `json:"tagline" validate:"max=160"`
	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
	ImageURL         string `json:"imageUrl" validate:"max=255"`
	SortOrder        int    `json:"sortOrder" validate:"gte=0"`
	Active           *bool  `json:"active"`
}

type CategoryUp struct {
	Name             *string `json:"name" validate:"omitempty,max=120"`
	Slug             *string `json:"slug" validate:"omitempty,max=140,slug"`
	Kind             *Kind   `json:"kind" validate:"omitempty,oneof=program service"`
	Tagline          *string `json:"tagline" validate:"omitempty,max=160"`
	ShortDescription *string `json:"shortDescription"`
	LongDescription  *string `json:"longDescription"`
	ImageURL         *string `json:"imageUrl" validate:"omitempty,max=255"`
	SortOrder        *int    `json:"sortOrder" validate:"omitempty,gte=0"`
	Active           *bool   `json:"active"`
}

type BulletNew struct {
	Text      string `json:"text" validate:"required,max=220"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
	Active    *bool  `json:"active"`
}

// SplitByKind separates programs from services, keeping their order.
func SplitByKind(cs []Category) (programs, services []Category) {
	programs, services = []Category{}, []Category{}
	for _, c := range cs {
		switch c.Kind {
		case KindService:
			services = append(services, c)
		default:
			programs = append(programs, c)
		}
	}
	return programs, services
}

// Slides groups categories in consecutive rows of size n.
func Slides(cs []Category, n int) [][]Category {
	slides := [][]Category{}
	for i := 0; i < len(cs); i += n {
		end := i + n
		if end > len(cs) {
			end = len(cs)
		}
		slides = append(slides, cs[i:end])
	}
	return slides
}
