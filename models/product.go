package models

// ProductVariant is one sellable size/option combination of a product.
type ProductVariant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"available_for_sale"`
	Price            Money            `json:"price"`
	SelectedOptions  []SelectedOption `json:"selected_options"`
}

// Product is a catalog entry from the commerce platform.
type Product struct {
	ID          string           `json:"id"`
	Handle      string           `json:"handle"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Images      []Image          `json:"images"`
	Variants    []ProductVariant `json:"variants"`
	PriceRange  PriceRange       `json:"price_range"`
}

// PriceRange is the min/max variant price spread for a product.
type PriceRange struct {
	MinVariantPrice Money `json:"min_variant_price"`
	MaxVariantPrice Money `json:"max_variant_price"`
}

// PageInfo carries the cursor state for paginated product listings.
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor,omitempty"`
}

// ProductPage is one page of the catalog plus its pagination cursor.
type ProductPage struct {
	Products []Product `json:"products"`
	PageInfo PageInfo  `json:"page_info"`
}
