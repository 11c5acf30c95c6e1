package product

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

type DiscountType string

const (
	DiscountNone    DiscountType = "none"
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// DefaultImage is used when a product has no main image uploaded.
const DefaultImage = "products/no_image_available.png"

var (
	ErrNotFound         = errors.New("product not found")
	ErrImageNotFound    = errors.New("product image not found")
	ErrDiscountPercent  = errors.New("Percent discount cannot exceed 100.")
	ErrDiscountFixed    = errors.New("Fixed discount cannot exceed product price.")
	ErrDiscountNegative = errors.New("Discount value cannot be negative.")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

type Product struct {
	ID                   int64           `json:"id" db:"product_id"`
	CategoryID           int64           `json:"categoryId" db:"category_id"`
	CategoryName         string          `json:"categoryName" db:"category_name"`
	CategorySlug         string          `json:"categorySlug" db:"category_slug"`
	Name                 string          `json:"name" db:"name"`
	Slug                 string          `json:"slug" db:"slug"`
	ShortDetails         string          `json:"shortDetails" db:"short_details"`
	LongDetails          string          `json:"longDetails" db:"long_details"`
	MainImageURL         string          `json:"mainImageUrl" db:"main_image_url"`
	Price                decimal.Decimal `json:"price" db:"price"`
	Stock                Stock           `json:"stock" db:"quantity"`
	DiscountType         DiscountType    `json:"discountType" db:"discount_type"`
	DiscountValue        decimal.Decimal `json:"discountValue" db:"discount_value"`
	Active               bool            `json:"active" db:"is_active"`
	RequiresPrescription bool            `json:"requiresPrescription" db:"requires_prescription"`
	RequiresConsultation bool            `json:"requiresConsultation" db:"requires_consultation"`
	CreatedAt            time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time       `json:"updatedAt" db:"updated_at"`
}

// FinalPrice is the price after the configured discount, floored at zero and
// rounded to cents.
func (p Product) FinalPrice() decimal.Decimal {
	return FinalPrice(p.Price, p.DiscountType, p.DiscountValue)
}

func FinalPrice(price decimal.Decimal, typ DiscountType, value decimal.Decimal) decimal.Decimal {
	var final decimal.Decimal
	switch typ {
	case DiscountPercent:
		final = price.Mul(one.Sub(value.Div(hundred)))
	case DiscountFixed:
		final = price.Sub(value)
	default:
		final = price
	}

	if final.IsNegative() {
		final = decimal.Zero
	}
	return final.RoundBank(2)
}

// CheckDiscount enforces the discount bounds that tags cannot express.
func CheckDiscount(price decimal.Decimal, typ DiscountType, value decimal.Decimal) error {
	if value.IsNegative() {
		return ErrDiscountNegative
	}

	switch typ {
	case DiscountPercent:
		if value.GreaterThan(hundred) {
			return ErrDiscountPercent
		}
	case DiscountFixed:
		if value.GreaterThan(price) {
			return ErrDiscountFixed
		}
	}
	return nil
}

type ProductNew struct {
	CategoryID           int64           `json:"categoryId" validate:"required,gt=0"`
	Name                 string          `json:"name" validate:"required,max=200"`
	Slug                 string          `json:"slug" validate:"omitempty,max=220,slug"`
	ShortDetails         string          `json:"shortDetails"`
	LongDetails          string          `json:"longDetails"`
	MainImageURL         string          `json:"mainImageUrl" validate:"max=255"`
	Price                decimal.Decimal `json:"price" validate:"gte=0"`
	Stock                Stock           `json:"stock"`
	DiscountType         DiscountType    `json:"discountType" validate:"omitempty,oneof=none percent fixed"`
	DiscountValue        decimal.Decimal `json:"discountValue" validate:"gte=0"`
	Active               *bool           `json:"active"`
	RequiresPrescription bool            `json:"requiresPrescription"`
	RequiresConsultation bool            `json:"requiresConsultation"`
}

type ProductUp struct {
	CategoryID           *int64           `json:"categoryId" validate:"omitempty,gt=0"`
	Name                 *string          `json:"name" validate:"omitempty,max=200"`
	Slug                 *string          `json:"slug" validate:"omitempty,max=220,slug"`
	ShortDetails         *string          `json:"shortDetails"`
	LongDetails          *string          `json:"longDetails"`
	MainImageURL         *string          `json:"mainImageUrl" validate:"omitempty,max=255"`
	Price                *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Stock                *Stock           `json:"stock"`
	DiscountType         *DiscountType    `json:"discountType" validate:"omitempty,oneof=none percent fixed"`
	DiscountValue        *decimal.Decimal `json:"discountValue" validate:"omitempty,gte=0"`
	Active               *bool            `json:"active"`
	RequiresPrescription *bool            `json:"requiresPrescription"`
	RequiresConsultation *bool            `json:"requiresConsultation"`
}

type Image struct {
	ID        int64     `json:"id" db:"image_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	URL       string    `json:"url" db:"image_url"`
	AltText   string    `json:"altText" db:"alt_text"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	Active    bool      `json:"active" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ImageNew struct {
	URL       string `json:"url" validate:"required,max=255"`
	AltText   string `json:"altText" validate:"max=200"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
	Active    *bool  `json:"active"`
}

type ImageUp struct {
	URL       *string `json:"url" validate:"omitempty,max=255"`
	AltText   *string `json:"altText" validate:"omitempty,max=200"`
	SortOrder *int    `json:"sortOrder" validate:"omitempty,gte=0"`
	Active    *bool   `json:"active"`
}

// Stock is either untracked or a tracked, non-negative count of units.
// It is stored as a nullable integer: NULL means untracked.
type Stock struct {
	n       int
	tracked bool
}

// StockSentinel is reported to clients in place of an untracked stock.
const StockSentinel = 999999

func Untracked() Stock { return Stock{} }

func Tracked(n int) Stock {
	if n < 0 {
		n = 0
	}
	return Stock{n: n, tracked: true}
}

func (s Stock) IsTracked() bool { return s.tracked }

func (s Stock) Count() (int, bool) { return s.n, s.tracked }

// Available reports whether the product can be put in a cart.
func (s Stock) Available() bool {
	return !s.tracked || s.n > 0
}

// Clamp lowers qty to the tracked count. It never raises qty.
func (s Stock) Clamp(qty int) int {
	if s.tracked && qty > s.n {
		return s.n
	}
	return qty
}

// Display is the stock count shown to clients.
func (s Stock) Display() int {
	if !s.tracked || s.n == 0 {
		return StockSentinel
	}
	return s.n
}

func (s Stock) String() string {
	if !s.tracked {
		return "untracked"
	}
	return fmt.Sprintf("tracked(%d)", s.n)
}

func (s *Stock) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Untracked()
	case int64:
		*s = Tracked(int(v))
	case []byte:
		var n int
		if _, err := fmt.Sscan(string(v), &n); err != nil {
			return fmt.Errorf("scanning stock %q: %w", v, err)
		}
		*s = Tracked(n)
	default:
		return fmt.Errorf("cannot scan %T into stock", src)
	}
	return nil
}

func (s Stock) Value() (driver.Value, error) {
	if !s.tracked {
		return nil, nil
	}
	return int64(s.n), nil
}

func (s Stock) MarshalJSON() ([]byte, error) {
	if !s.tracked {
		return []byte("null"), nil
	}
	return json.Marshal(s.n)
}

func (s *Stock) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Untracked()
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("stock must be an integer or null: %w", err)
	}
	if n < 0 {
		return errors.New("stock cannot be negative")
	}
	*s = Tracked(n)
	return nil
}

func (s Stock) MarshalMsgpack() ([]byte, error) {
	if !s.tracked {
		return msgpack.Marshal(nil)
	}
	return msgpack.Marshal(s.n)
}

func (s *Stock) UnmarshalMsgpack(b []byte) error {
	var n *int
	if err := msgpack.Unmarshal(b, &n); err != nil {
		return err
	}
	if n == nil {
		*s = Untracked()
		return nil
	}
	*s = Tracked(*n)
	return nil
}
