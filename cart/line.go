package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineID identifies a cart line. SKU is empty for products sold without
// variants.
type LineID struct {
	ProductCode string `json:"product_code"`
	SKU         string `json:"sku,omitempty"`
}

func (id LineID) String() string {
	if id.SKU == "" {
		return id.ProductCode
	}
	return id.ProductCode + "/" + id.SKU
}

// Snapshot is captured when an item is first added so the cart renders and
// totals without going back to the catalog.
type Snapshot struct {
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Title         string          `json:"title"`
	Image         string          `json:"image,omitempty"`
	OptionSummary string          `json:"option_summary,omitempty"`
}

type Line struct {
	LineID
	Snapshot
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// Total is the unit price times the quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
