package apiexternal

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

func itemPath(endpoint, id string) string {
	return strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(id)
}

// Create posts body to endpoint.
func (c *Client) Create(ctx context.Context, endpoint string, body any) error {
	return c.do(ctx, http.MethodPost, endpoint, "", body, nil)
}

// Update puts body to endpoint/id.
func (c *Client) Update(ctx context.Context, endpoint, id string, body any) error {
	return c.do(ctx, http.MethodPut, itemPath(endpoint, id), "", body, nil)
}

// Delete removes endpoint/id. No body is sent.
func (c *Client) Delete(ctx context.Context, endpoint, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(endpoint, id), "", nil, nil)
}
