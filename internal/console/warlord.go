package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"trackerdesk/internal/api"
	"trackerdesk/internal/optimistic"
	"trackerdesk/internal/schedule"
	logx "trackerdesk/pkg/logx"
)

type WarlordAPI interface {
	RuleEditor
	WarlordRules(ctx context.Context) ([]api.Rule, error)
	CreateWarlordRule(ctx context.Context, in api.CreateWarlordRule) (api.Rule, error)
	UpdateWarlordPrompt(ctx context.Context, id, prompt string) (api.Rule, error)
	WarlordDebug(ctx context.Context, id string) (api.WarlordDebug, error)
	TriggerWarlord(ctx context.Context) error
	VoiceLogs(ctx context.Context) ([]api.Interaction, error)
}

// WarlordDraft is the create form of a warlord rule. The prompt is optional.
type WarlordDraft struct {
	Name     string
	SheetID  string
	Prompt   string
	Schedule schedule.Spec
}

func NewWarlordDraft() WarlordDraft { return WarlordDraft{Schedule: schedule.Default} }

func (d WarlordDraft) Validate() error {
	return errors.Join(required("name", d.Name), required("sheet", d.SheetID))
}

// ErrTriggerRunning is returned by Trigger while an earlier trigger is
// still waiting for the backend.
var ErrTriggerRunning = errors.New("scan already running")

// Warlord controls the outbound voice call screen.
type Warlord struct {
	*ruleBook
	client     WarlordAPI
	triggering atomic.Bool
}

func NewWarlord(client WarlordAPI, deps Deps) *Warlord {
	return &Warlord{ruleBook: newRuleBook(client, deps, "warlord", "warlord rule"), client: client}
}

func (w *Warlord) Load(ctx context.Context) error {
	rules, err := w.client.WarlordRules(ctx)
	if err != nil {
		return err
	}
	w.list.Set(rules)
	w.log.Debug("warlord rules loaded", logx.Int("count", len(rules)))
	return nil
}

func (w *Warlord) Create(ctx context.Context, d WarlordDraft) (api.Rule, error) {
	if err := d.Validate(); err != nil {
		return api.Rule{}, err
	}
	cron := schedule.Encode(d.Schedule)
	if err := schedule.Validate(cron); err != nil {
		return api.Rule{}, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	rule, err := w.client.CreateWarlordRule(ctx, api.CreateWarlordRule{
		Name:               d.Name,
		SheetIntegrationID: strings.TrimSpace(d.SheetID),
		CronSchedule:       cron,
		PromptText:         d.Prompt,
	})
	if err != nil {
		return api.Rule{}, w.createFailed(err)
	}
	w.created(rule)
	return rule, nil
}

// SetPrompt replaces the call instructions of rule id.
func (w *Warlord) SetPrompt(ctx context.Context, id, prompt string) (api.Rule, error) {
	if !w.list.Contains(id) {
		return api.Rule{}, optimistic.ErrNotFound
	}
	updated, err := w.client.UpdateWarlordPrompt(ctx, id, prompt)
	if err != nil {
		w.log.Warn("prompt save failed", logx.String("id", id), logx.Err(err))
		w.notify.Error("Failed to save prompt.")
		return api.Rule{}, err
	}
	w.list.Replace(updated)
	w.notify.Success("Prompt saved.")
	return updated, nil
}

// Trigger asks the backend to run a scan now. Only one trigger runs at a
// time; overlapping calls get ErrTriggerRunning.
func (w *Warlord) Trigger(ctx context.Context) error {
	if !w.triggering.CompareAndSwap(false, true) {
		return ErrTriggerRunning
	}
	defer w.triggering.Store(false)
	if err := w.client.TriggerWarlord(ctx); err != nil {
		w.log.Warn("trigger failed", logx.Err(err))
		w.notify.Error("Failed to trigger scan.")
		return err
	}
	w.notify.Success("Scan triggered.")
	return nil
}

// Debug returns what the scanner sees for rule id. On failure the result is
// empty and the error is returned alongside it.
func (w *Warlord) Debug(ctx context.Context, id string) (api.WarlordDebug, error) {
	res, err := w.client.WarlordDebug(ctx, id)
	if err != nil {
		return api.WarlordDebug{RawRows: [][]string{}, MissedTasks: []api.MissedTask{}}, err
	}
	return res, nil
}

func (w *Warlord) VoiceLogs(ctx context.Context) ([]api.Interaction, error) {
	return w.client.VoiceLogs(ctx)
}
