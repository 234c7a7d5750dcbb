package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mytheresa/go-storefront/models"
	"github.com/mytheresa/go-storefront/variants"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Product struct {
	Code           string   `json:"code"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug,omitempty"`
	Price          float64  `json:"price"`
	CompareAtPrice *float64 `json:"compare_at_price,omitempty"`
	Featured       bool     `json:"featured"`
	Image          string   `json:"image,omitempty"`
	Category       Category `json:"category"`
}

type Option struct {
	Name     string            `json:"name"`
	Values   []string          `json:"values"`
	Swatches map[string]string `json:"swatches,omitempty"`
}

type Variant struct {
	Name           string            `json:"name"`
	SKU            string            `json:"sku"`
	Price          float64           `json:"price"`
	CompareAtPrice *float64          `json:"compare_at_price,omitempty"`
	InStock        bool              `json:"in_stock"`
	Image          string            `json:"image,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
}

type ProductDetail struct {
	Product
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Options     []Option  `json:"options"`
	Variants    []Variant `json:"variants"`
	// Degraded is set when the catalog record is inconsistent; options and
	// variants are then withheld and the product cannot be bought.
	Degraded bool `json:"degraded,omitempty"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByCode(code string) (*models.Product, error)
}

type CatalogHandler struct {
	repo     ProductProvider
	settings variants.Settings
	logger   *zap.Logger
}

func NewCatalogHandler(r ProductProvider, settings variants.Settings, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{
		repo:     r,
		settings: settings,
		logger:   logger,
	}
}

func (h *CatalogHandler) HandleGet(c *gin.Context) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := c.Query("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := c.Query("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	var priceFilter *float64
	if priceStr := c.Query("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	filters := models.ProductFilters{
		CategoryCode:  c.Query("category"),
		PriceLessThan: priceFilter,
		Tag:           c.Query("tag"),
		FeaturedOnly:  c.Query("featured") == "true",
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		h.logger.Error("listing products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get products"})
		return
	}

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i])
	}

	c.JSON(http.StatusOK, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(c *gin.Context) {
	product, ok := h.lookup(c)
	if !ok {
		return
	}

	detail := ProductDetail{
		Product:     toProduct(product),
		Description: product.Description,
		Tags:        product.Tags,
		Images:      product.Images,
		Options:     []Option{},
		Variants:    []Variant{},
	}

	if _, err := variants.Build(product, h.settings.IndexOptions()...); err != nil {
		h.logger.Warn("inconsistent catalog record", zap.String("code", product.Code), zap.Error(err))
		detail.Degraded = true
		c.JSON(http.StatusOK, detail)
		return
	}

	for _, o := range product.Options {
		detail.Options = append(detail.Options, Option{Name: o.Name, Values: o.Values, Swatches: o.Swatches})
	}
	for i := range product.Variants {
		v := &product.Variants[i]
		detail.Variants = append(detail.Variants, Variant{
			Name:           v.Name,
			SKU:            v.SKU,
			Price:          v.EffectivePrice(product).InexactFloat64(),
			CompareAtPrice: nullFloat(v.EffectiveCompareAt(product)),
			InStock:        v.IsInStock(),
			Image:          v.Image,
			Options:        v.OptionValues,
		})
	}

	c.JSON(http.StatusOK, detail)
}

type OptionChange struct {
	Option string `json:"option"`
	Value  string `json:"value"`
}

// SelectionRequest carries the shopper's current picks and at most one change.
type SelectionRequest struct {
	Selection map[string]string `json:"selection"`
	Change    *OptionChange     `json:"change"`
	Clear     string            `json:"clear"`
}

// HandleSelection applies one option change to a selection and returns the
// resolved card state.
func (h *CatalogHandler) HandleSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	product, ok := h.lookup(c)
	if !ok {
		return
	}

	idx, err := variants.Build(product, h.settings.IndexOptions()...)
	if err != nil {
		h.logger.Warn("inconsistent catalog record", zap.String("code", product.Code), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	sel := variants.Normalize(idx, req.Selection)
	if req.Clear != "" {
		sel = variants.ClearOption(sel, req.Clear)
	}
	if req.Change != nil {
		sel, err = variants.OnOptionChange(idx, sel, req.Change.Option, req.Change.Value)
		switch {
		case errors.Is(err, variants.ErrUnreachableValue):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	view := variants.Resolve(idx, sel, h.settings.ResolveOptions()...)
	c.JSON(http.StatusOK, NewResolvedResponse(product, view))
}

func (h *CatalogHandler) lookup(c *gin.Context) (*models.Product, bool) {
	product, err := h.repo.GetByCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			h.logger.Error("loading product", zap.String("code", c.Param("code")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		}
		return nil, false
	}
	return product, true
}

func toProduct(p *models.Product) Product {
	return Product{
		Code:           p.Code,
		Title:          p.Title,
		Slug:           p.Slug,
		Price:          p.Price.InexactFloat64(),
		CompareAtPrice: nullFloat(p.CompareAtPrice),
		Featured:       p.Featured,
		Image:          p.FirstImage(),
		Category: Category{
			Code: p.Category.Code,
			Name: p.Category.Name,
		},
	}
}

func nullFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
