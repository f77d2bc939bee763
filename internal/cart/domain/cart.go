package domain

// Cart is the aggregate view over the visitor's line items. Totals are
// always derived from Items, never stored.
type Cart struct {
	Items []CartItem `json:"items"`
}

// CartItem represents a single product line in a cart.
//
// ID is server-assigned for authenticated carts and locally generated for
// anonymous carts. The two ID spaces are disjoint and IDs must be treated
// as opaque.
type CartItem struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
	StoreID      string `json:"store_id,omitempty"`
	StoreName    string `json:"store_name,omitempty"`
}

// TotalPrice calculates the total price of all items in the cart (in cents).
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.ProductPrice * int64(item.Quantity)
	}
	return total
}

// TotalItems returns the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line matching the given product ID.
// Returns -1 if not found. A product appears in a cart at most once, so the
// first match is the only match.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// FindItemByID returns the index of the line with the given item ID, or -1.
func (c *Cart) FindItemByID(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Contains reports whether the cart has a line for the given product.
func (c *Cart) Contains(productID string) bool {
	return c.FindItemIndex(productID) >= 0
}
