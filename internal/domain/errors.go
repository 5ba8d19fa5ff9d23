package domain

import (
	"errors"
	"fmt"
)

// Not-found sentinels. Repositories translate gorm.ErrRecordNotFound into
// these at the boundary so callers never depend on gorm.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
)

// InvalidArgumentError signals a failed business rule: price ordering,
// empty cart, non-positive total, non-positive stock addition.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

// InsufficientStockError signals a decrement larger than the available
// stock. It carries both quantities for diagnostics.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ValidationError collects structural field errors rejected before any
// business logic runs, one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrSaleNotFound)
}
