package variants

import (
	"fmt"

	"github.com/mytheresa/go-storefront/models"
)

// ValueState describes one option value as a product card renders it.
// Unreachable values are hidden; reachable values next to a different pick
// are shown dimmed.
type ValueState struct {
	Value     string
	Swatch    string
	Reachable bool
	Selected  bool
}

type OptionState struct {
	Name   string
	Values []ValueState
}

// AvailableValues lists the reachable values in display order.
func (o OptionState) AvailableValues() []string {
	var out []string
	for _, v := range o.Values {
		if v.Reachable {
			out = append(out, v.Value)
		}
	}
	return out
}

// ResolvedView is derived from an Index and a Selection and never stored.
type ResolvedView struct {
	Selection      Selection
	MatchedVariant *models.Variant
	Options        []OptionState
	Price          PriceView
	InStock        bool
	CanAddToCart   bool
}

// Option returns the state of the named option.
func (r ResolvedView) Option(name string) (OptionState, bool) {
	for _, o := range r.Options {
		if o.Name == name {
			return o, true
		}
	}
	return OptionState{}, false
}

type resolveConfig struct {
	rounding Rounding
}

type ResolveOption func(*resolveConfig)

func WithRounding(r Rounding) ResolveOption {
	return func(c *resolveConfig) {
		c.rounding = r
	}
}

// Resolve computes the card state for sel. A variant is matched only when sel
// is full; a partial selection shows the product's own prices rather than
// guessing a SKU.
func Resolve(idx *Index, sel Selection, opts ...ResolveOption) ResolvedView {
	cfg := resolveConfig{rounding: RoundNearest}
	for _, opt := range opts {
		opt(&cfg)
	}

	product := idx.Product()
	view := ResolvedView{
		Selection: sel.Clone(),
		Options:   make([]OptionState, 0, len(idx.Options())),
	}

	for _, opt := range idx.Options() {
		state := OptionState{Name: opt.Name, Values: make([]ValueState, 0, len(opt.Values))}
		picked, hasPick := sel[opt.Name]
		for _, value := range opt.Values {
			state.Values = append(state.Values, ValueState{
				Value:     value,
				Swatch:    opt.Swatches[value],
				Reachable: idx.IsValueReachable(opt.Name, value, sel),
				Selected:  hasPick && picked == value,
			})
		}
		view.Options = append(view.Options, state)
	}

	if !idx.HasOptions() {
		view.MatchedVariant = idx.BaseVariant()
		view.InStock = view.MatchedVariant == nil || view.MatchedVariant.IsInStock()
		view.CanAddToCart = true
	} else if idx.IsFull(sel) {
		view.MatchedVariant = idx.VariantFor(sel)
		view.InStock = view.MatchedVariant != nil && view.MatchedVariant.IsInStock()
		view.CanAddToCart = view.MatchedVariant != nil && view.InStock
	} else {
		view.InStock = idx.AnyInStock(sel)
	}

	if v := view.MatchedVariant; v != nil {
		view.Price = NewPriceView(v.EffectivePrice(product), v.EffectiveCompareAt(product), cfg.rounding)
	} else {
		view.Price = NewPriceView(product.Price, product.CompareAtPrice, cfg.rounding)
	}
	return view
}

// OnOptionChange picks value for option and returns the next selection.
// Any other pick that no longer admits a variant together with the rest is
// cleared, in product option order. sel itself is left untouched, and
// applying the same change to the result yields the result again.
func OnOptionChange(idx *Index, sel Selection, option, value string) (Selection, error) {
	opt, ok := idx.Option(option)
	if !ok {
		return sel, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	if !opt.HasValue(value) {
		return sel, fmt.Errorf("%w: %q for option %q", ErrUnknownValue, value, option)
	}
	if !idx.IsValueReachable(option, value, nil) {
		return sel, fmt.Errorf("%w: %q for option %q", ErrUnreachableValue, value, option)
	}

	next := sel.With(option, value)
	for _, other := range idx.Options() {
		if other.Name == option {
			continue
		}
		picked, ok := next[other.Name]
		if !ok {
			continue
		}
		if !idx.IsValueReachable(other.Name, picked, next) {
			delete(next, other.Name)
		}
	}
	return next, nil
}

// ClearOption unselects option.
func ClearOption(sel Selection, option string) Selection {
	return sel.Without(option)
}

// Normalize turns an untrusted selection into a coherent one: unknown options
// and values are dropped and, walking options in product order, any pick that
// conflicts with the picks kept before it is discarded.
func Normalize(idx *Index, sel Selection) Selection {
	out := make(Selection, len(sel))
	for _, opt := range idx.Options() {
		picked, ok := sel[opt.Name]
		if !ok || !opt.HasValue(picked) {
			continue
		}
		if idx.IsValueReachable(opt.Name, picked, out) {
			out[opt.Name] = picked
		}
	}
	return out
}
