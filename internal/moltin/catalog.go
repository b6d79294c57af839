package moltin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Products lists the whole catalog. The result builds the menu and is never
// cached: the next menu render fetches again.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var resp productListResponse
	if err := c.do(ctx, http.MethodGet, "/v2/products", nil, &resp); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(resp.Data))
	for _, d := range resp.Data {
		p, err := toProduct(d)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Product fetches one product's full detail, including the linked main image
// id when one exists.
func (c *Client) Product(ctx context.Context, productID string) (Product, error) {
	var resp productResponse
	if err := c.do(ctx, http.MethodGet, "/v2/products/"+productID, nil, &resp); err != nil {
		return Product{}, err
	}
	return toProduct(resp.Data)
}

// ImageURL resolves a file id to a fetchable image URL.
func (c *Client) ImageURL(ctx context.Context, fileID string) (string, error) {
	var resp fileResponse
	if err := c.do(ctx, http.MethodGet, "/v2/files/"+fileID, nil, &resp); err != nil {
		return "", err
	}
	if resp.Data.Link.Href == "" {
		return "", &APIError{Endpoint: "/v2/files/" + fileID, Status: http.StatusOK}
	}
	return resp.Data.Link.Href, nil
}

func toProduct(d productData) (Product, error) {
	if d.ID == "" || d.Meta.DisplayPrice.WithTax.Formatted == "" {
		return Product{}, fmt.Errorf("product %q: malformed upstream payload", d.ID)
	}
	return Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Meta.DisplayPrice.WithTax.Formatted,
		Stock:       d.Meta.Stock.Level,
		MainImageID: d.Relationships.MainImage.Data.ID,
	}, nil
}

// DescribeProduct renders the four-line product card shown under the photo.
func DescribeProduct(p Product) string {
	return strings.Join([]string{
		p.Name,
		fmt.Sprintf("%s per kg", p.Price),
		fmt.Sprintf("%dkg on stock", p.Stock),
		p.Description,
	}, "\n")
}
