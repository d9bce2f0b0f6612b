package models

// Money is an amount in a single currency, as returned by the
// Storefront API's cost fields.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Merchandise is the purchasable variant snapshot carried by a cart line.
type Merchandise struct {
	VariantID       string           `json:"variant_id"`
	Title           string           `json:"title"`
	ProductTitle    string           `json:"product_title"`
	ProductHandle   string           `json:"product_handle"`
	Price           Money            `json:"price"`
	SelectedOptions []SelectedOption `json:"selected_options"`
	Image           *Image           `json:"image,omitempty"`
}

// SelectedOption is one variant axis choice, e.g. Size: M.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image is a remote product or content image.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// CartLine is one variant entry within a cart. Quantity is always >= 1;
// a line that would reach zero is removed upstream, never stored at zero.
type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Cost        Money       `json:"cost"`
	Merchandise Merchandise `json:"merchandise"`
}

// Cart mirrors the platform-hosted cart. The ID is opaque and assigned
// by Shopify; this server never mints cart identifiers of its own.
type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkout_url"`
	TotalQuantity int        `json:"total_quantity"`
	Lines         []CartLine `json:"lines"`
	Subtotal      Money      `json:"subtotal"`
	Total         Money      `json:"total"`
}

// CartLineUpdate is a single quantity change within a batched
// cartLinesUpdate mutation.
type CartLineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}
