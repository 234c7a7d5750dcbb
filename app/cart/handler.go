package cart

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartstore "github.com/mytheresa/go-storefront/cart"
	"github.com/mytheresa/go-storefront/models"
	"github.com/mytheresa/go-storefront/variants"
)

// CartIDHeader carries the shopper's cart id in both directions.
const CartIDHeader = "X-Cart-ID"

type Line struct {
	ProductCode   string  `json:"product_code"`
	SKU           string  `json:"sku,omitempty"`
	Title         string  `json:"title"`
	Image         string  `json:"image,omitempty"`
	OptionSummary string  `json:"option_summary,omitempty"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int     `json:"quantity"`
	Total         float64 `json:"total"`
}

type Response struct {
	ID         string  `json:"id"`
	Lines      []Line  `json:"lines"`
	TotalItems int     `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
}

type AddRequest struct {
	ProductCode string            `json:"product_code"`
	Selection   map[string]string `json:"selection"`
	Quantity    *int              `json:"quantity"`
}

type UpdateRequest struct {
	ProductCode string `json:"product_code"`
	SKU         string `json:"sku"`
	Quantity    *int   `json:"quantity"`
}

type ProductProvider interface {
	GetByCode(code string) (*models.Product, error)
}

type CartHandler struct {
	products ProductProvider
	carts    *cartstore.Registry
	settings variants.Settings
	logger   *zap.Logger
}

func NewCartHandler(products ProductProvider, carts *cartstore.Registry, settings variants.Settings, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		products: products,
		carts:    carts,
		settings: settings,
		logger:   logger,
	}
}

func (h *CartHandler) HandleGet(c *gin.Context) {
	id, store := h.cartFor(c, false)
	c.JSON(http.StatusOK, toResponse(id, store))
}

// HandleAdd resolves the posted selection and adds the matched variant, or
// the product itself when it has no options.
func (h *CartHandler) HandleAdd(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.ProductCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product_code"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.products.GetByCode(req.ProductCode)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("loading product", zap.String("code", req.ProductCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}

	idx, err := variants.Build(product, h.settings.IndexOptions()...)
	if err != nil {
		h.logger.Warn("inconsistent catalog record", zap.String("code", product.Code), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Product is not available"})
		return
	}

	sel := variants.Normalize(idx, req.Selection)
	view := variants.Resolve(idx, sel, h.settings.ResolveOptions()...)
	if !view.CanAddToCart {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Selection cannot be added to cart"})
		return
	}

	lineID := cartstore.LineID{ProductCode: product.Code}
	snap := cartstore.Snapshot{
		UnitPrice:     view.Price.Current,
		Title:         product.Title,
		Image:         product.FirstImage(),
		OptionSummary: variants.OptionSummary(idx, sel),
	}
	if v := view.MatchedVariant; v != nil {
		lineID.SKU = v.SKU
		if v.Image != "" {
			snap.Image = v.Image
		}
	}

	id, store := h.cartFor(c, true)
	line, err := store.Add(c.Request.Context(), lineID, quantity, snap)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Debug("cart item added",
		zap.String("cart", id),
		zap.Stringer("line", line.LineID),
		zap.Int("quantity", line.Quantity))

	c.JSON(http.StatusCreated, toResponse(id, store))
}

func (h *CartHandler) HandleUpdate(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.ProductCode == "" || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product_code or quantity"})
		return
	}

	id, store := h.cartFor(c, false)
	lineID := cartstore.LineID{ProductCode: req.ProductCode, SKU: req.SKU}
	if store == nil {
		h.writeError(c, &cartstore.LineNotFoundError{Line: lineID})
		return
	}
	if err := store.UpdateQuantity(c.Request.Context(), lineID, *req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(id, store))
}

func (h *CartHandler) HandleRemove(c *gin.Context) {
	code := c.Query("product_code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product_code"})
		return
	}

	id, store := h.cartFor(c, false)
	if store == nil {
		c.JSON(http.StatusOK, toResponse(id, nil))
		return
	}
	store.Remove(c.Request.Context(), cartstore.LineID{ProductCode: code, SKU: c.Query("sku")})
	c.JSON(http.StatusOK, toResponse(id, store))
}

func (h *CartHandler) HandleClear(c *gin.Context) {
	id, store := h.cartFor(c, false)
	if store != nil {
		store.Clear(c.Request.Context())
	}
	c.JSON(http.StatusOK, toResponse(id, store))
}

func (h *CartHandler) HandleOpen(c *gin.Context) {
	id, store := h.cartFor(c, false)
	if store != nil {
		store.Open()
	}
	c.JSON(http.StatusOK, toResponse(id, store))
}

// cartFor returns the cart named by the request header, issuing a new id when
// the header is missing or malformed. The id is echoed back either way. A
// freshly issued id names an empty cart, so unless create is set no store is
// registered for it and the returned store is nil.
func (h *CartHandler) cartFor(c *gin.Context, create bool) (string, *cartstore.Store) {
	id := c.GetHeader(CartIDHeader)
	fresh := !cartstore.ValidID(id)
	if fresh {
		id = h.carts.NewID()
	}
	c.Header(CartIDHeader, id)
	if fresh && !create {
		return id, nil
	}
	return id, h.carts.Get(c.Request.Context(), id)
}

func (h *CartHandler) writeError(c *gin.Context, err error) {
	var limitErr *cartstore.QuantityLimitError
	var notFound *cartstore.LineNotFoundError
	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "max_quantity": limitErr.Max})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cartstore.ErrInvalidQuantity), errors.Is(err, cartstore.ErrInvalidLine):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("cart operation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
	}
}

// toResponse renders store, or an empty cart when store is nil.
func toResponse(id string, store *cartstore.Store) Response {
	var contents cartstore.Contents
	if store != nil {
		contents = store.Contents()
	}
	resp := Response{
		ID:         id,
		Lines:      make([]Line, len(contents.Lines)),
		TotalItems: contents.TotalItems,
		TotalPrice: contents.TotalPrice.InexactFloat64(),
	}
	for i, l := range contents.Lines {
		resp.Lines[i] = Line{
			ProductCode:   l.ProductCode,
			SKU:           l.SKU,
			Title:         l.Title,
			Image:         l.Image,
			OptionSummary: l.OptionSummary,
			UnitPrice:     l.UnitPrice.InexactFloat64(),
			Quantity:      l.Quantity,
			Total:         l.Total().InexactFloat64(),
		}
	}
	return resp
}
