package cart

import "github.com/shopspring/decimal"

// Payload is the cart document consumed by the storefront UI. Money is
// rendered as decimal strings with two places.
type Payload struct {
	OK         bool          `json:"ok"`
	Items      []PayloadItem `json:"items"`
	TotalQty   int           `json:"total_qty"`
	TotalPrice string        `json:"total_price"`
}

type PayloadItem struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Qty                  int    `json:"qty"`
	UnitPrice            string `json:"unit_price"`
	LineTotal            string `json:"line_total"`
	Image                string `json:"image"`
	RequiresPrescription bool   `json:"requires_prescription"`
	RequiresConsultation bool   `json:"requires_consultation"`
	Stock                int    `json:"stock"`
}

// Failure is the body of a refused cart mutation.
type Failure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func NewPayload(s Summary) Payload {
	items := make([]PayloadItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		p := l.Product
		items = append(items, PayloadItem{
			ID:                   p.ID,
			Name:                 p.Name,
			Qty:                  l.Qty,
			UnitPrice:            money(l.UnitPrice),
			LineTotal:            money(l.LineTotal),
			Image:                p.MainImageURL,
			RequiresPrescription: p.RequiresPrescription,
			RequiresConsultation: p.RequiresConsultation,
			Stock:                p.Stock.Display(),
		})
	}

	return Payload{
		OK:         true,
		Items:      items,
		TotalQty:   s.TotalQty,
		TotalPrice: money(s.TotalPrice),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
