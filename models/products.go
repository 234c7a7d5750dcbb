package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// It includes a unique code, prices, category, its option axes and the
// purchasable variants built from them.
type Product struct {
	ID             uint                `gorm:"primaryKey"`
	Code           string              `gorm:"uniqueIndex;not null"`
	Title          string              `gorm:"not null;default:''"`
	Description    string              `gorm:"type:text"`
	Slug           string              `gorm:"index"`
	Price          decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	CompareAtPrice decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Featured       bool                `gorm:"not null;default:false"`
	Tags           pq.StringArray      `gorm:"type:text[]"`
	Images         pq.StringArray      `gorm:"type:text[]"`
	CategoryID     uint                `gorm:"not null"`
	Category       Category            `gorm:"foreignKey:CategoryID"`
	Options        []Option            `gorm:"foreignKey:ProductID"`
	Variants       []Variant           `gorm:"foreignKey:ProductID"`
}

func (p *Product) TableName() string {
	return "products"
}

// FirstImage returns the first catalog image, or "" when the product has none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Option is a named axis of a product, e.g. "Color" or "Size".
// Values keep the order in which the shop wants them displayed.
type Option struct {
	ID        uint              `gorm:"primaryKey"`
	ProductID uint              `gorm:"index;not null"`
	Name      string            `gorm:"not null"`
	Position  int               `gorm:"not null;default:0"`
	Values    []string          `gorm:"serializer:json;type:jsonb"`
	Swatches  map[string]string `gorm:"serializer:json;type:jsonb"` // value -> color code
}

func (o *Option) TableName() string {
	return "product_options"
}

// HasValue reports whether value is declared for the option.
func (o *Option) HasValue(value string) bool {
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Variant is one purchasable SKU of a product.
type Variant struct {
	ID                uint                `gorm:"primaryKey"`
	ProductID         uint                `gorm:"index;not null"`
	Name              string              `gorm:"not null;default:''"`
	SKU               string              `gorm:"uniqueIndex;not null"`
	Price             decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	CompareAtPrice    decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	InventoryQuantity *int
	InStock           bool              `gorm:"not null;default:false"`
	Image             string            `gorm:"default:''"`
	OptionValues      map[string]string `gorm:"serializer:json;type:jsonb"` // option name -> value
}

func (v *Variant) TableName() string {
	return "product_variants"
}

// IsInStock reports availability. A tracked inventory quantity wins over the
// plain in-stock flag.
func (v *Variant) IsInStock() bool {
	if v.InventoryQuantity != nil {
		return *v.InventoryQuantity > 0
	}
	return v.InStock
}

// EffectivePrice returns the variant price, inheriting the product price when
// the variant has none of its own.
func (v *Variant) EffectivePrice(p *Product) decimal.Decimal {
	if v.Price.IsZero() {
		return p.Price
	}
	return v.Price
}

// EffectiveCompareAt returns the variant compare-at price, inheriting the
// product one when the variant has none.
func (v *Variant) EffectiveCompareAt(p *Product) decimal.NullDecimal {
	if v.CompareAtPrice.Valid {
		return v.CompareAtPrice
	}
	return p.CompareAtPrice
}
