package variants

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProduct matches every *InvalidProductError.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrUnknownOption is returned when a selection names an option the product does not declare.
	ErrUnknownOption = errors.New("unknown option")
	// ErrUnknownValue is returned when a selection uses a value its option does not declare.
	ErrUnknownValue = errors.New("unknown option value")
	// ErrUnreachableValue is returned when no variant of the product carries the chosen value.
	ErrUnreachableValue = errors.New("option value has no variant")
)

// InvalidProductError reports a catalog record whose variants do not agree
// with its declared options. Such a product cannot be resolved safely.
type InvalidProductError struct {
	ProductCode string
	Reason      string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product %q: %s", e.ProductCode, e.Reason)
}

func (e *InvalidProductError) Is(target error) bool {
	return target == ErrInvalidProduct
}

func invalidProduct(code, format string, args ...any) *InvalidProductError {
	return &InvalidProductError{ProductCode: code, Reason: fmt.Sprintf(format, args...)}
}
