// Package variants resolves a shopper's option picks against the variants a
// product actually sells.
//
// An Index is built once per product. Selections are plain values that move
// through OnOptionChange, and Resolve derives everything a product card shows
// from the current Selection.
package variants

import (
	"strconv"
	"strings"

	"github.com/mytheresa/go-storefront/models"
)

// Index answers lookups over the variants of one product.
type Index struct {
	product      *models.Product
	options      []models.Option
	byName       map[string]int
	variants     []*models.Variant
	byKey        map[string]*models.Variant
	requireStock bool
}

type IndexOption func(*Index)

// WithStockRequired makes reachability consider in-stock variants only, so
// values that can only lead to sold-out SKUs are hidden as well.
func WithStockRequired() IndexOption {
	return func(idx *Index) {
		idx.requireStock = true
	}
}

// Build validates product and indexes its variants by option values.
// It fails with *InvalidProductError when a variant does not map exactly one
// declared value for every declared option, or when two variants share the
// same mapping.
func Build(product *models.Product, opts ...IndexOption) (*Index, error) {
	idx := &Index{
		product: product,
		options: product.Options,
		byName:  make(map[string]int, len(product.Options)),
		byKey:   make(map[string]*models.Variant, len(product.Variants)),
	}
	for _, opt := range opts {
		opt(idx)
	}

	for i, opt := range idx.options {
		if opt.Name == "" {
			return nil, invalidProduct(product.Code, "option at position %d has no name", i)
		}
		if _, dup := idx.byName[opt.Name]; dup {
			return nil, invalidProduct(product.Code, "option %q declared twice", opt.Name)
		}
		seen := make(map[string]struct{}, len(opt.Values))
		for _, v := range opt.Values {
			if _, dup := seen[v]; dup {
				return nil, invalidProduct(product.Code, "option %q declares value %q twice", opt.Name, v)
			}
			seen[v] = struct{}{}
		}
		idx.byName[opt.Name] = i
	}

	for i := range product.Variants {
		v := &product.Variants[i]
		for name, value := range v.OptionValues {
			pos, ok := idx.byName[name]
			if !ok {
				return nil, invalidProduct(product.Code, "variant %q references unknown option %q", v.SKU, name)
			}
			if !idx.options[pos].HasValue(value) {
				return nil, invalidProduct(product.Code, "variant %q uses undeclared value %q for option %q", v.SKU, value, name)
			}
		}
		if len(v.OptionValues) != len(idx.options) {
			return nil, invalidProduct(product.Code, "variant %q maps %d of %d options", v.SKU, len(v.OptionValues), len(idx.options))
		}

		key := idx.key(v.OptionValues)
		if other, dup := idx.byKey[key]; dup {
			if len(idx.options) == 0 {
				return nil, invalidProduct(product.Code, "product without options has more than one variant (%q, %q)", other.SKU, v.SKU)
			}
			return nil, invalidProduct(product.Code, "variants %q and %q have the same option values", other.SKU, v.SKU)
		}
		idx.byKey[key] = v
		idx.variants = append(idx.variants, v)
	}

	return idx, nil
}

// key encodes values in option order. Each value is length-prefixed, so no
// value content can make two different mappings collide.
func (idx *Index) key(values map[string]string) string {
	var b strings.Builder
	for _, opt := range idx.options {
		v := values[opt.Name]
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

func (idx *Index) Product() *models.Product {
	return idx.product
}

// Options returns the option axes in product order.
func (idx *Index) Options() []models.Option {
	return idx.options
}

func (idx *Index) HasOptions() bool {
	return len(idx.options) > 0
}

// Option looks up an option by name.
func (idx *Index) Option(name string) (*models.Option, bool) {
	pos, ok := idx.byName[name]
	if !ok {
		return nil, false
	}
	return &idx.options[pos], true
}

// IsFull reports whether sel picks a value for every option.
func (idx *Index) IsFull(sel Selection) bool {
	for _, opt := range idx.options {
		if _, ok := sel[opt.Name]; !ok {
			return false
		}
	}
	return true
}

// VariantFor returns the variant whose mapping equals sel exactly, or nil.
// Partial selections never match.
func (idx *Index) VariantFor(sel Selection) *models.Variant {
	if !idx.IsFull(sel) || len(sel) != len(idx.options) {
		return nil
	}
	return idx.byKey[idx.key(sel)]
}

// BaseVariant returns the single variant of a product without options, if any.
func (idx *Index) BaseVariant() *models.Variant {
	if idx.HasOptions() || len(idx.variants) == 0 {
		return nil
	}
	return idx.variants[0]
}

// IsValueReachable reports whether some variant carries value for option and
// agrees with every other pick in sel. The pick sel holds for option itself is
// ignored, so a superseded choice never blocks its alternatives.
func (idx *Index) IsValueReachable(option, value string, sel Selection) bool {
	for _, v := range idx.variants {
		if idx.requireStock && !v.IsInStock() {
			continue
		}
		if v.OptionValues[option] != value {
			continue
		}
		if matches(v, sel, option) {
			return true
		}
	}
	return false
}

// AnyInStock reports whether some variant agreeing with sel is in stock.
func (idx *Index) AnyInStock(sel Selection) bool {
	for _, v := range idx.variants {
		if v.IsInStock() && matches(v, sel, "") {
			return true
		}
	}
	return false
}

func matches(v *models.Variant, sel Selection, skip string) bool {
	for name, picked := range sel {
		if name == skip {
			continue
		}
		if v.OptionValues[name] != picked {
			return false
		}
	}
	return true
}
