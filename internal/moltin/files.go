package moltin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Catalog maintenance endpoints, used by the shop-admin CLI rather than the
// bot itself.

// UploadFile uploads one public image file and returns its file id.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.WriteField("public", "true"); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/files", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Endpoint: "/v2/files", Status: resp.StatusCode}
	}
	var fr fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return fr.Data.ID, nil
}

// Files lists all uploaded files.
func (c *Client) Files(ctx context.Context) ([]File, error) {
	var resp fileListResponse
	if err := c.do(ctx, http.MethodGet, "/v2/files", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// LinkMainImage sets a file as a product's main image.
func (c *Client) LinkMainImage(ctx context.Context, productID, fileID string) error {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "main_image",
			"id":   fileID,
		},
	}
	return c.do(ctx, http.MethodPost, "/v2/products/"+productID+"/relationships/main-image", payload, nil)
}
