package moltin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// AddCartItem puts quantityKg of a product into the chat's remote cart. The
// quantity is forwarded as chosen; when the product is already in the cart
// the upstream merges by incrementing the existing line. Nothing is mutated
// locally: the cart view always re-fetches.
func (c *Client) AddCartItem(ctx context.Context, cartRef, productID string, quantityKg int) error {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"id":       productID,
			"type":     "cart_item",
			"quantity": quantityKg,
		},
	}
	return c.do(ctx, http.MethodPost, "/v2/carts/"+cartRef+"/items", payload, nil)
}

// CartItems fetches the chat's full cart snapshot.
func (c *Client) CartItems(ctx context.Context, cartRef string) (Cart, error) {
	var resp cartItemsResponse
	if err := c.do(ctx, http.MethodGet, "/v2/carts/"+cartRef+"/items", nil, &resp); err != nil {
		return Cart{}, err
	}
	if resp.Meta.DisplayPrice.WithTax.Formatted == "" {
		return Cart{}, fmt.Errorf("cart %s: malformed upstream payload, no total", cartRef)
	}
	cart := Cart{
		Items: make([]CartItem, 0, len(resp.Data)),
		Total: resp.Meta.DisplayPrice.WithTax.Formatted,
	}
	for _, d := range resp.Data {
		cart.Items = append(cart.Items, CartItem{
			ID:          d.ID,
			ProductID:   d.ProductID,
			Name:        d.Name,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.Meta.DisplayPrice.WithTax.Unit.Formatted,
			LinePrice:   d.Meta.DisplayPrice.WithTax.Value.Formatted,
		})
	}
	return cart, nil
}

// RemoveCartItem deletes one cart line by its line id. The upstream decides
// whether the line existed; the caller re-fetches the cart either way.
func (c *Client) RemoveCartItem(ctx context.Context, cartRef, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/v2/carts/"+cartRef+"/items/"+itemID, nil, nil)
}

// RenderCart renders the cart view text: one block per line item, then the
// grand total.
func RenderCart(cart Cart) string {
	var b strings.Builder
	for _, item := range cart.Items {
		b.WriteString(strings.Join([]string{
			item.Name,
			item.Description,
			fmt.Sprintf("%s per kg", item.UnitPrice),
			fmt.Sprintf("%dkg in cart for %s", item.Quantity, item.LinePrice),
		}, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(fmt.Sprintf("Total: %s", cart.Total))
	return b.String()
}
