package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trackerdesk/internal/api"
	"trackerdesk/internal/schedule"
	logx "trackerdesk/pkg/logx"
)

// DefaultTargetColumn is used when the chosen metric matches no sheet header.
const DefaultTargetColumn = "B"

// RulesAPI is the backend surface of the health rules screen.
type RulesAPI interface {
	RuleEditor
	Rules(ctx context.Context, ruleType string) ([]api.Rule, error)
	CreateRule(ctx context.Context, in api.CreateRule) (api.Rule, error)
	SheetHeaders(ctx context.Context, sheetID string) ([]api.ColumnHeader, error)
}

// RuleDraft is the create form of a health rule.
type RuleDraft struct {
	Name     string
	SheetID  string
	Metric   string
	Prompt   string
	Schedule schedule.Spec
}

// NewRuleDraft returns an empty form with the default schedule.
func NewRuleDraft() RuleDraft { return RuleDraft{Schedule: schedule.Default} }

func (d RuleDraft) Validate() error {
	return errors.Join(
		required("name", d.Name),
		required("sheet", d.SheetID),
		required("metric", d.Metric),
		required("prompt", d.Prompt),
	)
}

// Rules controls the health tracker rules screen.
type Rules struct {
	*ruleBook
	client RulesAPI
}

func NewRules(client RulesAPI, deps Deps) *Rules {
	return &Rules{ruleBook: newRuleBook(client, deps, "rules", "rule"), client: client}
}

// Load replaces the visible list with the backend's health rules.
func (r *Rules) Load(ctx context.Context) error {
	rules, err := r.client.Rules(ctx, api.RuleTypeHealth)
	if err != nil {
		return err
	}
	r.list.Set(rules)
	r.log.Debug("rules loaded", logx.Int("count", len(rules)))
	return nil
}

// Headers lists the columns of a sheet for the metric picker. Lookup
// failures yield an empty list.
func (r *Rules) Headers(ctx context.Context, sheetID string) []api.ColumnHeader {
	h, err := r.client.SheetHeaders(ctx, sheetID)
	if err != nil {
		r.log.Debug("sheet headers unavailable", logx.String("sheet", sheetID), logx.Err(err))
		return nil
	}
	return h
}

// TargetColumn maps a metric to the column of the header with the same
// name, or DefaultTargetColumn.
func TargetColumn(headers []api.ColumnHeader, metric string) string {
	for _, h := range headers {
		if h.Name == metric {
			return h.Column
		}
	}
	return DefaultTargetColumn
}

// Create validates d, creates the rule and appends it to the list.
func (r *Rules) Create(ctx context.Context, d RuleDraft) (api.Rule, error) {
	if err := d.Validate(); err != nil {
		return api.Rule{}, err
	}
	cron := schedule.Encode(d.Schedule)
	if err := schedule.Validate(cron); err != nil {
		return api.Rule{}, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	metric := d.Metric
	rule, err := r.client.CreateRule(ctx, api.CreateRule{
		SheetIntegrationID: strings.TrimSpace(d.SheetID),
		Name:               d.Name,
		RuleType:           api.RuleTypeHealth,
		CronSchedule:       cron,
		TargetColumn:       TargetColumn(r.Headers(ctx, d.SheetID), metric),
		MetricName:         &metric,
		PromptText:         d.Prompt,
		IsActive:           true,
	})
	if err != nil {
		return api.Rule{}, r.createFailed(err)
	}
	r.created(rule)
	return rule, nil
}
