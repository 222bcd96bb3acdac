package api

import (
	"context"
	"net/http"
	"net/url"
)

// Rules lists rules, filtered server-side by ruleType when it is non-empty.
func (c *Client) Rules(ctx context.Context, ruleType string) ([]Rule, error) {
	var q url.Values
	if ruleType != "" {
		q = url.Values{"rule_type": {ruleType}}
	}
	var out []Rule
	if err := c.do(ctx, http.MethodGet, "/rules/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRule(ctx context.Context, in CreateRule) (Rule, error) {
	var out Rule
	err := c.do(ctx, http.MethodPost, "/rules/", nil, in, &out)
	return out, err
}

func (c *Client) UpdateRule(ctx context.Context, id string, p RulePatch) (Rule, error) {
	var out Rule
	err := c.do(ctx, http.MethodPatch, "/rules/"+esc(id), nil, p, &out)
	return out, err
}

func (c *Client) DeleteRule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rules/"+esc(id), nil, nil, nil)
}

// SheetHeaders returns the column headers of a connected sheet.
func (c *Client) SheetHeaders(ctx context.Context, sheetID string) ([]ColumnHeader, error) {
	var out []ColumnHeader
	if err := c.do(ctx, http.MethodGet, "/sheets/"+esc(sheetID)+"/headers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
