package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned when an item is added with a quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidLine is returned when a line has no product or a negative price.
	ErrInvalidLine = errors.New("invalid cart line")
)

// QuantityLimitError is returned when a line would exceed the per-line cap.
// The line keeps its previous quantity. For an add, Requested is the number
// of units being added; for an update, it is the quantity the line was to be
// set to.
type QuantityLimitError struct {
	Line      LineID
	Current   int
	Requested int
	Max       int
	Update    bool
}

func (e *QuantityLimitError) Error() string {
	if e.Update {
		return fmt.Sprintf("cart line %s: quantity %d exceeds the limit of %d",
			e.Line, e.Requested, e.Max)
	}
	return fmt.Sprintf("cart line %s: adding %d to %d exceeds the limit of %d",
		e.Line, e.Requested, e.Current, e.Max)
}

// LineNotFoundError is returned when an operation targets a line the cart does not hold.
type LineNotFoundError struct {
	Line LineID
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("cart line %s not found", e.Line)
}
