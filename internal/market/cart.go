package market

// ValidateItems checks every cart line against the referenced products:
// the product must exist, be approved, and have enough stock. The first
// violation aborts, nothing is partially applied.
func ValidateItems(items []CartItem, products map[int64]Product) error {
	for _, it := range items {
		if it.Quantity <= 0 {
			return Invalidf("quantity must be positive for product %d", it.ProductID)
		}
		p, ok := products[it.ProductID]
		if !ok {
			return Invalidf("product with ID %d not found", it.ProductID)
		}
		if p.Status != ProductApproved {
			return Invalidf("product %s is not available for purchase", p.Name)
		}
		if it.Quantity > p.Quantity {
			return Invalidf("not enough quantity available for %s", p.Name)
		}
	}
	return nil
}

// ProductIDs returns the distinct product ids referenced by the cart.
func (c Cart) ProductIDs() []int64 {
	seen := make(map[int64]bool, len(c.Items))
	out := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			out = append(out, it.ProductID)
		}
	}
	return out
}
