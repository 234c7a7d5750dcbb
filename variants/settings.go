package variants

// Settings holds the storefront-wide resolution policy.
type Settings struct {
	// RequireStock hides values that only lead to sold-out variants.
	RequireStock bool
	Rounding     Rounding
}

func (s Settings) IndexOptions() []IndexOption {
	if s.RequireStock {
		return []IndexOption{WithStockRequired()}
	}
	return nil
}

func (s Settings) ResolveOptions() []ResolveOption {
	return []ResolveOption{WithRounding(s.Rounding)}
}

// OptionSummary renders the picks of sel in product order, e.g.
// "Color: Black / Size: S".
func OptionSummary(idx *Index, sel Selection) string {
	summary := ""
	for _, opt := range idx.Options() {
		v, ok := sel[opt.Name]
		if !ok {
			continue
		}
		if summary != "" {
			summary += " / "
		}
		summary += opt.Name + ": " + v
	}
	return summary
}
