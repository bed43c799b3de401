package domain

// CartLine is one unit of a product in the cart. Quantity is derived by
// counting lines with the same name.
type CartLine struct {
	Name string `json:"name"`
}

// CartSummaryItem is the aggregated view of one distinct cart name
type CartSummaryItem struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// CartSummary is derived from the cart and the catalog on every request. Never cached.
type CartSummary struct {
	Items []CartSummaryItem `json:"items"`
	Total float64           `json:"total"`
}
