package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Sheets(ctx context.Context) ([]Sheet, error) {
	var out []Sheet
	if err := c.do(ctx, http.MethodGet, "/sheets/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectSheet starts the OAuth flow for an existing sheet URL.
func (c *Client) ConnectSheet(ctx context.Context, sheetURL string) (AuthURL, error) {
	var out AuthURL
	err := c.do(ctx, http.MethodGet, "/sheets/connect", url.Values{"sheet_url": {sheetURL}}, nil, &out)
	return out, err
}

// CreateSheet starts the OAuth flow that creates a new sheet titled title.
func (c *Client) CreateSheet(ctx context.Context, title string) (AuthURL, error) {
	var out AuthURL
	err := c.do(ctx, http.MethodGet, "/sheets/create", url.Values{"title": {title}}, nil, &out)
	return out, err
}

func (c *Client) DeleteSheet(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sheets/"+esc(id), nil, nil, nil)
}

// SheetRuleCount is the number of rules writing into the sheet.
func (c *Client) SheetRuleCount(ctx context.Context, id string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/sheets/"+esc(id)+"/rule-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) SheetPreview(ctx context.Context, id string) (SheetPreview, error) {
	var out SheetPreview
	err := c.do(ctx, http.MethodGet, "/sheets/"+esc(id)+"/preview", nil, nil, &out)
	return out, err
}

// RenameSheet sets the display name; nil clears it.
func (c *Client) RenameSheet(ctx context.Context, id string, displayName *string) (Sheet, error) {
	body := struct {
		DisplayName *string `json:"display_name"`
	}{displayName}
	var out Sheet
	err := c.do(ctx, http.MethodPatch, "/sheets/"+esc(id), nil, body, &out)
	return out, err
}
