package moltin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// CreateCustomer registers a customer and returns its id. A duplicate email
// answers 409 with no customer body, so in that case the existing customer is
// looked up by email and that id is returned instead; either way the caller
// ends up with an id it can persist.
func (c *Client) CreateCustomer(ctx context.Context, fullName, email string) (string, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type":  "customer",
			"name":  fullName,
			"email": email,
		},
	}
	var resp customerResponse
	err := c.do(ctx, http.MethodPost, "/v2/customers", payload, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return c.findCustomerByEmail(ctx, email)
		}
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("create customer: malformed upstream payload, no id")
	}
	return resp.Data.ID, nil
}

func (c *Client) findCustomerByEmail(ctx context.Context, email string) (string, error) {
	path := "/v2/customers?filter=" + url.QueryEscape(fmt.Sprintf("eq(email,%s)", email))
	var resp customerListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("customer %s: %w", email, ErrNotFound)
	}
	return resp.Data[0].ID, nil
}
