package domain

// CartItem is one line of a commerce cart. Prices arrive pre-formatted from the
// backend (display price with tax) and are rendered as-is.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

// CartSummary carries the cart-wide totals returned by the commerce backend.
type CartSummary struct {
	Total string `json:"total"`
}
