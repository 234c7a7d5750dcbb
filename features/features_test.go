package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-storefront/cart"
	"github.com/mytheresa/go-storefront/models"
	"github.com/mytheresa/go-storefront/variants"
)

// --- Variant selection ---

type selectionContext struct {
	product   *models.Product
	index     *variants.Index
	selection variants.Selection
}

func (c *selectionContext) reset() {
	c.product = nil
	c.index = nil
	c.selection = variants.Selection{}
}

func (c *selectionContext) aProductWithBasePrice(title string, price float64) error {
	c.product = &models.Product{Code: strings.ToUpper(title), Title: title, Price: decimal.NewFromFloat(price)}
	return nil
}

func (c *selectionContext) optionWithValues(name, values string) error {
	c.product.Options = append(c.product.Options, models.Option{Name: name, Values: strings.Split(values, ",")})
	return nil
}

func parseMapping(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, _ := strings.Cut(pair, "=")
		out[k] = v
	}
	return out
}

func (c *selectionContext) aDiscountedVariant(sku, mapping string, price, compareAt float64, stock int) error {
	c.product.Variants = append(c.product.Variants, models.Variant{
		SKU:               sku,
		Price:             decimal.NewFromFloat(price),
		CompareAtPrice:    decimal.NewNullDecimal(decimal.NewFromFloat(compareAt)),
		InventoryQuantity: &stock,
		OptionValues:      parseMapping(mapping),
	})
	return nil
}

func (c *selectionContext) aVariant(sku, mapping string, price float64, stock int) error {
	c.product.Variants = append(c.product.Variants, models.Variant{
		SKU:               sku,
		Price:             decimal.NewFromFloat(price),
		InventoryQuantity: &stock,
		OptionValues:      parseMapping(mapping),
	})
	return nil
}

func (c *selectionContext) ensureIndex() error {
	if c.index != nil {
		return nil
	}
	idx, err := variants.Build(c.product)
	if err != nil {
		return err
	}
	c.index = idx
	return nil
}

func (c *selectionContext) iPickFor(value, option string) error {
	if err := c.ensureIndex(); err != nil {
		return err
	}
	next, err := variants.OnOptionChange(c.index, c.selection, option, value)
	if err != nil {
		return err
	}
	c.selection = next
	return nil
}

func (c *selectionContext) view() (variants.ResolvedView, error) {
	if err := c.ensureIndex(); err != nil {
		return variants.ResolvedView{}, err
	}
	return variants.Resolve(c.index, c.selection), nil
}

func (c *selectionContext) theValuesOnOfferAre(option, values string) error {
	view, err := c.view()
	if err != nil {
		return err
	}
	state, ok := view.Option(option)
	if !ok {
		return fmt.Errorf("option %q not in view", option)
	}
	if got := strings.Join(state.AvailableValues(), ","); got != values {
		return fmt.Errorf("expected values %q, got %q", values, got)
	}
	return nil
}

func (c *selectionContext) isNotSelected(option string) error {
	if v, ok := c.selection[option]; ok {
		return fmt.Errorf("expected %q unselected, got %q", option, v)
	}
	return nil
}

func (c *selectionContext) isSelectedAs(option, value string) error {
	if got := c.selection[option]; got != value {
		return fmt.Errorf("expected %q=%q, got %q", option, value, got)
	}
	return nil
}

func (c *selectionContext) theMatchedVariantIs(sku string) error {
	view, err := c.view()
	if err != nil {
		return err
	}
	if view.MatchedVariant == nil {
		return errors.New("no variant matched")
	}
	if view.MatchedVariant.SKU != sku {
		return fmt.Errorf("expected %s, got %s", sku, view.MatchedVariant.SKU)
	}
	return nil
}

func (c *selectionContext) noVariantIsMatched() error {
	view, err := c.view()
	if err != nil {
		return err
	}
	if view.MatchedVariant != nil {
		return fmt.Errorf("expected no match, got %s", view.MatchedVariant.SKU)
	}
	return nil
}

func (c *selectionContext) theCurrentPriceIs(price float64) error {
	view, err := c.view()
	if err != nil {
		return err
	}
	if !view.Price.Current.Equal(decimal.NewFromFloat(price)) {
		return fmt.Errorf("expected price %v, got %s", price, view.Price.Current)
	}
	return nil
}

func (c *selectionContext) theDiscountIsPercent(pct int) error {
	view, err := c.view()
	if err != nil {
		return err
	}
	if view.Price.DiscountPercentage == nil {
		return errors.New("no discount")
	}
	if *view.Price.DiscountPercentage != pct {
		return fmt.Errorf("expected %d%%, got %d%%", pct, *view.Price.DiscountPercentage)
	}
	return nil
}

func (c *selectionContext) theCardCanAddToCart() error {
	view, err := c.view()
	if err != nil {
		return err
	}
	if !view.CanAddToCart {
		return errors.New("expected card to allow adding")
	}
	return nil
}

func (c *selectionContext) theCardCannotAddToCart() error {
	view, err := c.view()
	if err != nil {
		return err
	}
	if view.CanAddToCart {
		return errors.New("expected card to refuse adding")
	}
	return nil
}

// --- Cart ---

type cartContext struct {
	storage *cart.MemoryStorage
	maxLine int
	store   *cart.Store
	lastErr error
}

func (c *cartContext) reset() {
	c.storage = cart.NewMemoryStorage()
	c.maxLine = cart.DefaultMaxLineQuantity
	c.store = nil
	c.lastErr = nil
}

func (c *cartContext) open() {
	c.store = cart.NewStore(context.Background(), c.storage, cart.WithMaxLineQuantity(c.maxLine))
}

func (c *cartContext) anEmptyCartWithALimitOf(limit int) error {
	c.maxLine = limit
	c.open()
	return nil
}

func (c *cartContext) theStoredCartIs(raw string) error {
	return c.storage.Set(context.Background(), cart.DefaultKey, []byte(raw))
}

func (c *cartContext) iAddOfVariantAt(qty int, product, sku string, price float64) error {
	_, c.lastErr = c.store.Add(context.Background(), cart.LineID{ProductCode: product, SKU: sku}, qty,
		cart.Snapshot{UnitPrice: decimal.NewFromFloat(price), Title: product})
	return nil
}

func (c *cartContext) iAddOfWithoutVariantAt(qty int, product string, price float64) error {
	return c.iAddOfVariantAt(qty, product, "", price)
}

func (c *cartContext) theCartIsReloaded() error {
	c.open()
	return nil
}

func (c *cartContext) theCartHasLines(n int) error {
	if got := len(c.store.Lines()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartContext) theCartHoldsItems(n int) error {
	if got := c.store.TotalItems(); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *cartContext) theCartTotalIs(total float64) error {
	if got := c.store.TotalPrice(); !got.Equal(decimal.NewFromFloat(total)) {
		return fmt.Errorf("expected total %v, got %s", total, got)
	}
	return nil
}

func (c *cartContext) theLastOperationFailedWithAQuantityLimitError() error {
	var limitErr *cart.QuantityLimitError
	if !errors.As(c.lastErr, &limitErr) {
		return fmt.Errorf("expected quantity limit error, got %v", c.lastErr)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	sc := &selectionContext{}
	cc := &cartContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		cc.reset()
		return ctx, nil
	})

	// Variant selection
	ctx.Step(`^a product "([^"]*)" with base price (\d+(?:\.\d+)?)$`, sc.aProductWithBasePrice)
	ctx.Step(`^option "([^"]*)" with values "([^"]*)"$`, sc.optionWithValues)
	ctx.Step(`^a variant "([^"]*)" with "([^"]*)" priced (\d+(?:\.\d+)?) compared at (\d+(?:\.\d+)?) with (\d+) in stock$`, sc.aDiscountedVariant)
	ctx.Step(`^a variant "([^"]*)" with "([^"]*)" priced (\d+(?:\.\d+)?) with (\d+) in stock$`, sc.aVariant)
	ctx.Step(`^I pick "([^"]*)" for "([^"]*)"$`, sc.iPickFor)
	ctx.Step(`^the values of "([^"]*)" on offer are "([^"]*)"$`, sc.theValuesOnOfferAre)
	ctx.Step(`^"([^"]*)" is not selected$`, sc.isNotSelected)
	ctx.Step(`^"([^"]*)" is "([^"]*)"$`, sc.isSelectedAs)
	ctx.Step(`^the matched variant is "([^"]*)"$`, sc.theMatchedVariantIs)
	ctx.Step(`^no variant is matched$`, sc.noVariantIsMatched)
	ctx.Step(`^the current price is (\d+(?:\.\d+)?)$`, sc.theCurrentPriceIs)
	ctx.Step(`^the discount is (\d+) percent$`, sc.theDiscountIsPercent)
	ctx.Step(`^the card can add to cart$`, sc.theCardCanAddToCart)
	ctx.Step(`^the card cannot add to cart$`, sc.theCardCannotAddToCart)

	// Cart
	ctx.Step(`^an empty cart with a limit of (\d+) per line$`, cc.anEmptyCartWithALimitOf)
	ctx.Step(`^the stored cart is "([^"]*)"$`, cc.theStoredCartIs)
	ctx.Step(`^I add (\d+) of "([^"]*)" variant "([^"]*)" at (\d+(?:\.\d+)?)$`, cc.iAddOfVariantAt)
	ctx.Step(`^I add (\d+) of "([^"]*)" without variant at (\d+(?:\.\d+)?)$`, cc.iAddOfWithoutVariantAt)
	ctx.Step(`^the cart is reloaded from storage$`, cc.theCartIsReloaded)
	ctx.Step(`^the cart has (\d+) lines?$`, cc.theCartHasLines)
	ctx.Step(`^the cart holds (\d+) items$`, cc.theCartHoldsItems)
	ctx.Step(`^the cart total is (\d+(?:\.\d+)?)$`, cc.theCartTotalIs)
	ctx.Step(`^the last cart operation failed with a quantity limit error$`, cc.theLastOperationFailedWithAQuantityLimitError)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"variant_selection.feature", "cart.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
