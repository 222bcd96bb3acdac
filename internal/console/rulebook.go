package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trackerdesk/internal/api"
	"trackerdesk/internal/confirm"
	"trackerdesk/internal/optimistic"
	"trackerdesk/internal/schedule"
	logx "trackerdesk/pkg/logx"
)

// RuleEdit is the editable part of a rule.
type RuleEdit struct {
	Name     string
	Prompt   string
	Schedule schedule.Spec
}

// RuleEditor is the backend surface shared by both rule screens.
type RuleEditor interface {
	UpdateRule(ctx context.Context, id string, p api.RulePatch) (api.Rule, error)
	DeleteRule(ctx context.Context, id string) error
}

// ruleBook is the list mechanics shared by the health and warlord screens.
type ruleBook struct {
	editor RuleEditor
	list   *optimistic.List[api.Rule]
	coord  *optimistic.Coordinator[api.Rule]
	notify Notifier
	log    logx.Logger
	noun   string
}

func newRuleBook(editor RuleEditor, deps Deps, comp, noun string) *ruleBook {
	log := deps.logger(comp)
	list := optimistic.NewList(func(r api.Rule) string { return r.ID })
	return &ruleBook{
		editor: editor,
		list:   list,
		coord:  optimistic.New(list, deps.Prompt, deps.Notify, optimistic.MutatorFunc(editor.DeleteRule), deps.coordinatorOptions(log)...),
		notify: deps.Notify,
		log:    log,
		noun:   noun,
	}
}

// Items returns the visible rules.
func (b *ruleBook) Items() []api.Rule { return b.list.Items() }

func (b *ruleBook) Find(id string) (api.Rule, bool) { return b.list.Find(id) }

// GraceWindow is how long a deletion can be undone.
func (b *ruleBook) GraceWindow() time.Duration { return b.coord.GraceWindow() }

// EditForm returns the edit state of rule id; its cron string is decoded,
// falling back to the default schedule for expressions the picker cannot show.
func (b *ruleBook) EditForm(id string) (RuleEdit, error) {
	r, ok := b.list.Find(id)
	if !ok {
		return RuleEdit{}, optimistic.ErrNotFound
	}
	return RuleEdit{Name: r.Name, Prompt: r.PromptText, Schedule: schedule.Decode(r.CronSchedule)}, nil
}

// Save patches name, schedule and prompt of rule id.
func (b *ruleBook) Save(ctx context.Context, id string, e RuleEdit) (api.Rule, error) {
	if !b.list.Contains(id) {
		return api.Rule{}, optimistic.ErrNotFound
	}
	if strings.TrimSpace(e.Name) == "" {
		return api.Rule{}, fmt.Errorf("%w: name is required", ErrInvalidForm)
	}
	cron := schedule.Encode(e.Schedule)
	if err := schedule.Validate(cron); err != nil {
		return api.Rule{}, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	updated, err := b.editor.UpdateRule(ctx, id, api.RulePatch{Name: &e.Name, CronSchedule: &cron, PromptText: &e.Prompt})
	if err != nil {
		b.log.Warn("save failed", logx.String("id", id), logx.Err(err))
		b.notify.Error("Failed to save " + b.noun + ".")
		return api.Rule{}, err
	}
	b.list.Replace(updated)
	b.notify.Success(capitalize(b.noun) + " saved.")
	return updated, nil
}

// ToggleActive pauses an active rule or resumes a paused one.
func (b *ruleBook) ToggleActive(ctx context.Context, id string) (api.Rule, error) {
	r, ok := b.list.Find(id)
	if !ok {
		return api.Rule{}, optimistic.ErrNotFound
	}
	next := !r.IsActive
	updated, err := b.editor.UpdateRule(ctx, id, api.RulePatch{IsActive: &next})
	if err != nil {
		b.log.Warn("toggle failed", logx.String("id", id), logx.Err(err))
		b.notify.Error("Failed to save " + b.noun + ".")
		return api.Rule{}, err
	}
	b.list.Replace(updated)
	state := "paused"
	if updated.IsActive {
		state = "resumed"
	}
	b.notify.Success(capitalize(b.noun) + " " + state + ".")
	return updated, nil
}

// Delete asks for confirmation, hides the rule and deletes it remotely once
// the grace window passes without undo.
func (b *ruleBook) Delete(ctx context.Context, id string) (optimistic.Outcome, error) {
	return b.coord.Delete(ctx, id, optimistic.Request{
		Confirm: confirm.Options{
			Title:       "Delete " + b.noun,
			Message:     "The " + b.noun + " stops running and its history is removed.",
			ConfirmText: "Delete",
			Danger:      true,
		},
		UndoMessage:    capitalize(b.noun) + " deleted.",
		FailureMessage: "Failed to delete " + b.noun + ".",
	})
}

func (b *ruleBook) created(r api.Rule) {
	b.list.Append(r)
	b.notify.Success(capitalize(b.noun) + " created.")
}

func (b *ruleBook) createFailed(err error) error {
	b.log.Warn("create failed", logx.Err(err))
	b.notify.Error("Failed to create " + b.noun + ".")
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidForm, field)
	}
	return nil
}
