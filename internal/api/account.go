package api

import (
	"context"
	"net/http"
)

func (c *Client) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	var out DashboardSummary
	err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, nil, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

// LoginURL returns the identity provider URL that starts sign-in.
func (c *Client) LoginURL(ctx context.Context) (AuthURL, error) {
	var out AuthURL
	err := c.do(ctx, http.MethodGet, "/auth/google", nil, nil, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out)
	return out, err
}

func (c *Client) LinkWhatsApp(ctx context.Context, phone string) error {
	body := struct {
		Phone string `json:"phone"`
	}{phone}
	return c.do(ctx, http.MethodPatch, "/auth/whatsapp/link", nil, body, nil)
}
