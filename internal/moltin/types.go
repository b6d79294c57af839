package moltin

// Typed projections of the Moltin v2 JSON responses. Only the fields the bot
// reads are modeled; the load-bearing ones are validated after decoding so a
// malformed upstream payload surfaces as an API error instead of a zero value
// leaking into a rendered message.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Expires     int64  `json:"expires"`
}

// Product is an immutable snapshot of one catalog entry. It is fetched per
// request and never cached beyond the current render.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       string // formatted unit price, e.g. "$10.50"
	Stock       int    // kg on stock
	MainImageID string // empty when no image is linked
}

type productMeta struct {
	DisplayPrice struct {
		WithTax struct {
			Amount    int    `json:"amount"`
			Formatted string `json:"formatted"`
		} `json:"with_tax"`
	} `json:"display_price"`
	Stock struct {
		Level int `json:"level"`
	} `json:"stock"`
}

type productData struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Meta          productMeta `json:"meta"`
	Relationships struct {
		MainImage struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

type productResponse struct {
	Data productData `json:"data"`
}

type productListResponse struct {
	Data []productData `json:"data"`
}

// CartItem is one line of a chat's remote cart. ID is the cart line id used
// for removal; ProductID refers back to the catalog entry.
type CartItem struct {
	ID          string
	ProductID   string
	Name        string
	Description string
	Quantity    int
	UnitPrice   string
	LinePrice   string
}

// Cart is the full remote cart snapshot: line items plus the formatted total.
type Cart struct {
	Items []CartItem
	Total string
}

type cartItemData struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Meta        struct {
		DisplayPrice struct {
			WithTax struct {
				Unit struct {
					Formatted string `json:"formatted"`
				} `json:"unit"`
				Value struct {
					Formatted string `json:"formatted"`
				} `json:"value"`
			} `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
}

type cartItemsResponse struct {
	Data []cartItemData `json:"data"`
	Meta struct {
		DisplayPrice struct {
			WithTax struct {
				Formatted string `json:"formatted"`
			} `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type customerResponse struct {
	Data Customer `json:"data"`
}

type customerListResponse struct {
	Data []Customer `json:"data"`
}

type fileResponse struct {
	Data struct {
		ID   string `json:"id"`
		Link struct {
			Href string `json:"href"`
		} `json:"link"`
	} `json:"data"`
}

// File describes one uploaded catalog image.
type File struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
}

type fileListResponse struct {
	Data []File `json:"data"`
}
