package enums

import "fmt"

// ProductStatus is the remote availability flag carried on products and cart lines.
type ProductStatus int

const (
	ProductStatusUnavailable ProductStatus = 0
	ProductStatusAvailable   ProductStatus = 1
)

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	switch p {
	case ProductStatusUnavailable:
		return "unavailable"
	case ProductStatusAvailable:
		return "available"
	default:
		return fmt.Sprintf("product_status(%d)", int(p))
	}
}

// IsValid reports whether the value is known.
func (p ProductStatus) IsValid() bool {
	return p == ProductStatusUnavailable || p == ProductStatusAvailable
}

// IsAvailable reports whether the product can be checked out.
func (p ProductStatus) IsAvailable() bool {
	return p == ProductStatusAvailable
}
