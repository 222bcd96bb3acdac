package api

import (
	"context"
	"net/http"
	"net/url"
)

// WarlordRules lists rules of type warlord. The backend returns every rule
// here, so the filter runs client-side.
func (c *Client) WarlordRules(ctx context.Context) ([]Rule, error) {
	all, err := c.Rules(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]Rule, 0, len(all))
	for _, r := range all {
		if r.RuleType == RuleTypeWarlord {
			out = append(out, r)
		}
	}
	return out, nil
}

type CreateWarlordRule struct {
	Name               string
	SheetIntegrationID string
	CronSchedule       string
	PromptText         string
}

// CreateWarlordRule posts a rule with the fixed warlord fields: column A,
// no metric, active.
func (c *Client) CreateWarlordRule(ctx context.Context, in CreateWarlordRule) (Rule, error) {
	return c.CreateRule(ctx, CreateRule{
		SheetIntegrationID: in.SheetIntegrationID,
		Name:               in.Name,
		RuleType:           RuleTypeWarlord,
		CronSchedule:       in.CronSchedule,
		TargetColumn:       "A",
		MetricName:         nil,
		PromptText:         in.PromptText,
		IsActive:           true,
	})
}

func (c *Client) UpdateWarlordPrompt(ctx context.Context, id, prompt string) (Rule, error) {
	return c.UpdateRule(ctx, id, RulePatch{PromptText: &prompt})
}

func (c *Client) WarlordDebug(ctx context.Context, id string) (WarlordDebug, error) {
	var out WarlordDebug
	err := c.do(ctx, http.MethodGet, "/warlord/debug/"+esc(id), nil, nil, &out)
	return out, err
}

// TriggerWarlord asks the backend to run a scan now.
func (c *Client) TriggerWarlord(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/warlord/trigger", nil, struct{}{}, nil)
}

func (c *Client) VoiceLogs(ctx context.Context) ([]Interaction, error) {
	var out []Interaction
	if err := c.do(ctx, http.MethodGet, "/interactions/", url.Values{"channel": {"voice"}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
