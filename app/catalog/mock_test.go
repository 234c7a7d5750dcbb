package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-storefront/models"
	"github.com/mytheresa/go-storefront/variants"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error

	// Fields to capture call arguments
	lastCalledOffset  int
	lastCalledLimit   int
	lastCalledFilters models.ProductFilters
	lastCalledCode    string
}

func (m *MockProductRepo) GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error) {
	m.lastCalledOffset = offset
	m.lastCalledLimit = limit
	m.lastCalledFilters = filters

	if m.Err != nil {
		return nil, 0, m.Err
	}

	// Simulate filtering
	var filteredProducts []models.Product
	for _, p := range m.SourceProducts {
		match := true
		// Category filter
		if filters.CategoryCode != "" && p.Category.Code != filters.CategoryCode {
			match = false
		}
		// Price filter
		if filters.PriceLessThan != nil && p.Price.InexactFloat64() >= *filters.PriceLessThan {
			match = false
		}
		if filters.FeaturedOnly && !p.Featured {
			match = false
		}

		if match {
			filteredProducts = append(filteredProducts, p)
		}
	}

	total := int64(len(filteredProducts))

	// Simulate pagination
	start := min(offset, len(filteredProducts))
	end := min(offset+limit, len(filteredProducts))

	return filteredProducts[start:end], total, nil
}

func (m *MockProductRepo) GetByCode(code string) (*models.Product, error) {
	m.lastCalledCode = code

	if m.Err != nil {
		return nil, m.Err
	}

	for _, p := range m.SourceProducts {
		if p.Code == code {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrProductNotFound
}

// --- Helpers ---

func newTestProduct(code, categoryCode, categoryName string, price float64) models.Product {
	return models.Product{
		Code:  code,
		Title: code,
		Price: decimal.NewFromFloat(price),
		Category: models.Category{
			Code: categoryCode,
			Name: categoryName,
		},
	}
}

func stock(n int) *int { return &n }

// newHeadphone has no (White, S) variant and a sold-out (White, M).
func newHeadphone() models.Product {
	p := newTestProduct("HEADPHONE", "audio", "Audio", 99)
	p.Images = []string{"headphone.jpg"}
	p.Options = []models.Option{
		{Name: "Color", Values: []string{"Black", "White"}, Swatches: map[string]string{"Black": "#000000", "White": "#ffffff"}},
		{Name: "Size", Values: []string{"S", "M"}},
	}
	p.Variants = []models.Variant{
		{SKU: "HP-BLK-S", Price: decimal.NewFromInt(100), CompareAtPrice: decimal.NewNullDecimal(decimal.NewFromInt(120)), InventoryQuantity: stock(5), Image: "black.jpg", OptionValues: map[string]string{"Color": "Black", "Size": "S"}},
		{SKU: "HP-BLK-M", Price: decimal.NewFromInt(110), InventoryQuantity: stock(2), OptionValues: map[string]string{"Color": "Black", "Size": "M"}},
		{SKU: "HP-WHT-M", Price: decimal.NewFromInt(105), InventoryQuantity: stock(0), OptionValues: map[string]string{"Color": "White", "Size": "M"}},
	}
	return p
}

func newTestRouter(repo ProductProvider, settings variants.Settings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCatalogHandler(repo, settings, nil)
	r := gin.New()
	r.GET("/catalog", h.HandleGet)
	r.GET("/catalog/:code", h.HandleGetProduct)
	r.POST("/catalog/:code/selection", h.HandleSelection)
	return r
}
