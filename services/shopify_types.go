package services

import "opacweb-server/models"

// Wire shapes for the Storefront API's nested camelCase responses.
// They stay private to this package; handlers only ever see the flat
// models types.

type shopifyMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

func (m shopifyMoney) toModel() models.Money {
	return models.Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

type shopifyImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type shopifyCartLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Cost     struct {
		TotalAmount shopifyMoney `json:"totalAmount"`
	} `json:"cost"`
	Merchandise struct {
		ID              string                  `json:"id"`
		Title           string                  `json:"title"`
		Price           shopifyMoney            `json:"price"`
		SelectedOptions []models.SelectedOption `json:"selectedOptions"`
		Image           *shopifyImage           `json:"image"`
		Product         struct {
			Title  string `json:"title"`
			Handle string `json:"handle"`
		} `json:"product"`
	} `json:"merchandise"`
}

type shopifyCart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		SubtotalAmount shopifyMoney `json:"subtotalAmount"`
		TotalAmount    shopifyMoney `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node shopifyCartLine `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

func (c *shopifyCart) toModel() *models.Cart {
	cart := &models.Cart{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		TotalQuantity: c.TotalQuantity,
		Lines:         make([]models.CartLine, 0, len(c.Lines.Edges)),
		Subtotal:      c.Cost.SubtotalAmount.toModel(),
		Total:         c.Cost.TotalAmount.toModel(),
	}
	for _, edge := range c.Lines.Edges {
		node := edge.Node
		line := models.CartLine{
			ID:       node.ID,
			Quantity: node.Quantity,
			Cost:     node.Cost.TotalAmount.toModel(),
			Merchandise: models.Merchandise{
				VariantID:       node.Merchandise.ID,
				Title:           node.Merchandise.Title,
				ProductTitle:    node.Merchandise.Product.Title,
				ProductHandle:   node.Merchandise.Product.Handle,
				Price:           node.Merchandise.Price.toModel(),
				SelectedOptions: node.Merchandise.SelectedOptions,
			},
		}
		if node.Merchandise.Image != nil {
			line.Merchandise.Image = &models.Image{
				URL:     node.Merchandise.Image.URL,
				AltText: node.Merchandise.Image.AltText,
			}
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart
}

type shopifyProduct struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Images      struct {
		Edges []struct {
			Node shopifyImage `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node struct {
				ID               string                  `json:"id"`
				Title            string                  `json:"title"`
				AvailableForSale bool                    `json:"availableForSale"`
				Price            shopifyMoney            `json:"price"`
				SelectedOptions  []models.SelectedOption `json:"selectedOptions"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	PriceRange struct {
		MinVariantPrice shopifyMoney `json:"minVariantPrice"`
		MaxVariantPrice shopifyMoney `json:"maxVariantPrice"`
	} `json:"priceRange"`
}

func (p *shopifyProduct) toModel() models.Product {
	product := models.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		Images:      make([]models.Image, 0, len(p.Images.Edges)),
		Variants:    make([]models.ProductVariant, 0, len(p.Variants.Edges)),
		PriceRange: models.PriceRange{
			MinVariantPrice: p.PriceRange.MinVariantPrice.toModel(),
			MaxVariantPrice: p.PriceRange.MaxVariantPrice.toModel(),
		},
	}
	for _, edge := range p.Images.Edges {
		product.Images = append(product.Images, models.Image{
			URL:     edge.Node.URL,
			AltText: edge.Node.AltText,
		})
	}
	for _, edge := range p.Variants.Edges {
		node := edge.Node
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:               node.ID,
			Title:            node.Title,
			AvailableForSale: node.AvailableForSale,
			Price:            node.Price.toModel(),
			SelectedOptions:  node.SelectedOptions,
		})
	}
	return product
}
