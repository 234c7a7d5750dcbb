package variants

import (
	"github.com/mytheresa/go-storefront/models"
	"github.com/shopspring/decimal"
)

// --- Helpers ---

func price(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func compareAt(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

func stock(n int) *int { return &n }

// newHeadphone returns the Color x Size product with no (White, S) variant.
func newHeadphone() *models.Product {
	return &models.Product{
		Code:  "HEADPHONE",
		Title: "Headphone",
		Price: price(99),
		Options: []models.Option{
			{Name: "Color", Values: []string{"Black", "White"}, Swatches: map[string]string{"Black": "#000000", "White": "#ffffff"}},
			{Name: "Size", Values: []string{"S", "M"}},
		},
		Variants: []models.Variant{
			{SKU: "HP-BLK-S", Price: price(100), CompareAtPrice: compareAt(120), InventoryQuantity: stock(5), OptionValues: map[string]string{"Color": "Black", "Size": "S"}},
			{SKU: "HP-BLK-M", Price: price(110), InventoryQuantity: stock(2), OptionValues: map[string]string{"Color": "Black", "Size": "M"}},
			{SKU: "HP-WHT-M", Price: price(105), InventoryQuantity: stock(0), OptionValues: map[string]string{"Color": "White", "Size": "M"}},
		},
	}
}
