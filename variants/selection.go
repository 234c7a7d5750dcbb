package variants

// Selection maps an option name to the value the shopper picked for it.
// Options without a pick are simply absent. Methods never mutate the receiver.
type Selection map[string]string

func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a copy of s with option set to value.
func (s Selection) With(option, value string) Selection {
	out := s.Clone()
	out[option] = value
	return out
}

// Without returns a copy of s with option unselected.
func (s Selection) Without(option string) Selection {
	out := s.Clone()
	delete(out, option)
	return out
}

// Equal reports whether both selections hold the same picks.
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
