package catalog

import (
	"github.com/mytheresa/go-storefront/models"
	"github.com/mytheresa/go-storefront/variants"
)

type ValueState struct {
	Value     string `json:"value"`
	Swatch    string `json:"swatch,omitempty"`
	Available bool   `json:"available"`
	Selected  bool   `json:"selected"`
}

type OptionState struct {
	Name   string       `json:"name"`
	Values []ValueState `json:"values"`
}

type ResolvedResponse struct {
	Selection          map[string]string `json:"selection"`
	MatchedVariant     *Variant          `json:"matched_variant"`
	Options            []OptionState     `json:"options"`
	Price              float64           `json:"price"`
	CompareAtPrice     *float64          `json:"compare_at_price,omitempty"`
	DiscountPercentage *int              `json:"discount_percentage,omitempty"`
	InStock            bool              `json:"in_stock"`
	CanAddToCart       bool              `json:"can_add_to_cart"`
	Image              string            `json:"image,omitempty"`
}

// NewResolvedResponse maps a resolved card state to its JSON form.
func NewResolvedResponse(product *models.Product, view variants.ResolvedView) ResolvedResponse {
	resp := ResolvedResponse{
		Selection:          map[string]string(view.Selection),
		Options:            make([]OptionState, 0, len(view.Options)),
		Price:              view.Price.Current.InexactFloat64(),
		CompareAtPrice:     nullFloat(view.Price.CompareAt),
		DiscountPercentage: view.Price.DiscountPercentage,
		InStock:            view.InStock,
		CanAddToCart:       view.CanAddToCart,
		Image:              product.FirstImage(),
	}

	for _, o := range view.Options {
		state := OptionState{Name: o.Name, Values: make([]ValueState, 0, len(o.Values))}
		for _, v := range o.Values {
			state.Values = append(state.Values, ValueState{
				Value:     v.Value,
				Swatch:    v.Swatch,
				Available: v.Reachable,
				Selected:  v.Selected,
			})
		}
		resp.Options = append(resp.Options, state)
	}

	if v := view.MatchedVariant; v != nil {
		resp.MatchedVariant = &Variant{
			Name:           v.Name,
			SKU:            v.SKU,
			Price:          v.EffectivePrice(product).InexactFloat64(),
			CompareAtPrice: nullFloat(v.EffectiveCompareAt(product)),
			InStock:        v.IsInStock(),
			Image:          v.Image,
			Options:        v.OptionValues,
		}
		if v.Image != "" {
			resp.Image = v.Image
		}
	}
	return resp
}
