package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trackerdesk/internal/api"
	"trackerdesk/internal/app"
	"trackerdesk/internal/console"
	"trackerdesk/internal/optimistic"
	"trackerdesk/internal/schedule"
)

// scheduleFlags is the schedule picker as flags.
type scheduleFlags struct {
	freq     string
	hour     int
	day      int
	interval int
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	d := schedule.Default
	cmd.Flags().StringVar(&f.freq, "freq", string(d.Kind), "daily, weekly or hourly")
	cmd.Flags().IntVar(&f.hour, "hour", d.Hour, "hour of day (daily, weekly)")
	cmd.Flags().IntVar(&f.day, "day", d.Day, "day of week, 0 = Sunday (weekly)")
	cmd.Flags().IntVar(&f.interval, "interval", d.Interval, "hours between runs (hourly)")
}

func (f *scheduleFlags) spec() (schedule.Spec, error) {
	k := schedule.Kind(strings.ToLower(strings.TrimSpace(f.freq)))
	switch k {
	case schedule.Daily, schedule.Weekly, schedule.Hourly:
	default:
		return schedule.Spec{}, fmt.Errorf("unknown --freq %q (want daily, weekly or hourly)", f.freq)
	}
	return schedule.Spec{Kind: k, Hour: f.hour, Day: f.day, Interval: f.interval}, nil
}

// apply overrides base with the flags the user set.
func (f *scheduleFlags) apply(cmd *cobra.Command, base schedule.Spec) (schedule.Spec, error) {
	fl := cmd.Flags()
	if fl.Changed("freq") {
		s, err := f.spec()
		if err != nil {
			return base, err
		}
		base.Kind = s.Kind
	}
	if fl.Changed("hour") {
		base.Hour = f.hour
	}
	if fl.Changed("day") {
		base.Day = f.day
	}
	if fl.Changed("interval") {
		base.Interval = f.interval
	}
	return base, nil
}

// ruleOps is what the rules and warlord screens share.
type ruleOps interface {
	Load(ctx context.Context) error
	EditForm(id string) (console.RuleEdit, error)
	Save(ctx context.Context, id string, e console.RuleEdit) (api.Rule, error)
	ToggleActive(ctx context.Context, id string) (api.Rule, error)
	Delete(ctx context.Context, id string) (optimistic.Outcome, error)
}

var timeNow = time.Now

func (e *env) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "Health tracker rules"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.loaded(cmd, func(a *app.App) error { return a.Rules.Load(cmd.Context()) })
			if err != nil {
				return err
			}
			return e.printRules(a, a.Rules.Items(), true)
		},
	}

	var (
		draft = console.NewRuleDraft()
		sf    scheduleFlags
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := sf.spec()
			if err != nil {
				return err
			}
			draft.Schedule = spec
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			r, err := a.Rules.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return e.printRules(a, []api.Rule{r}, true)
		},
	}
	create.Flags().StringVar(&draft.Name, "name", "", "rule name")
	create.Flags().StringVar(&draft.SheetID, "sheet", "", "sheet integration id")
	create.Flags().StringVar(&draft.Metric, "metric", "", "metric (sheet column header)")
	create.Flags().StringVar(&draft.Prompt, "prompt", "", "question sent to the user")
	sf.register(create)

	cmd.AddCommand(list, create)
	cmd.AddCommand(e.ruleEditCmds(func(a *app.App) ruleOps { return a.Rules }, "rule", true)...)
	return cmd
}

func (e *env) warlordCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "warlord", Short: "Voice call rules for missed tasks"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List warlord rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.loaded(cmd, func(a *app.App) error { return a.Warlord.Load(cmd.Context()) })
			if err != nil {
				return err
			}
			return e.printRules(a, a.Warlord.Items(), false)
		},
	}

	var (
		draft = console.NewWarlordDraft()
		sf    scheduleFlags
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a warlord rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := sf.spec()
			if err != nil {
				return err
			}
			draft.Schedule = spec
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			r, err := a.Warlord.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return e.printRules(a, []api.Rule{r}, false)
		},
	}
	create.Flags().StringVar(&draft.Name, "name", "", "rule name")
	create.Flags().StringVar(&draft.SheetID, "sheet", "", "sheet integration id")
	create.Flags().StringVar(&draft.Prompt, "prompt", "", "instructions for the call (optional)")
	sf.register(create)

	trigger := &cobra.Command{
		Use:   "trigger",
		Short: "Scan sheets and call now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			return a.Warlord.Trigger(cmd.Context())
		},
	}

	debug := &cobra.Command{
		Use:   "debug <id>",
		Short: "Show what the scanner sees for a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			res, err := a.Warlord.Debug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInfo(e.out, "Today: %s, %d rows scanned", orDash(res.Today), len(res.RawRows))
			rows := make([][]string, 0, len(res.MissedTasks))
			for _, m := range res.MissedTasks {
				rows = append(rows, []string{fmt.Sprint(m.Row), m.Task, m.Deadline})
			}
			return printTable(e.out, []string{"Row", "Task", "Deadline"}, rows)
		},
	}

	logs := &cobra.Command{
		Use:   "logs",
		Short: "Show voice call history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			items, err := a.Warlord.VoiceLogs(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				msg := ""
				if it.MessageContent != nil {
					msg = *it.MessageContent
				}
				rows = append(rows, []string{it.CreatedAt, it.Direction, it.Status, orDash(msg)})
			}
			return printTable(e.out, []string{"When", "Direction", "Status", "Message"}, rows)
		},
	}

	prompt := &cobra.Command{
		Use:   "prompt <id> <text>",
		Short: "Replace the call instructions of a warlord rule",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.loaded(cmd, func(a *app.App) error { return a.Warlord.Load(cmd.Context()) })
			if err != nil {
				return err
			}
			r, err := a.Warlord.SetPrompt(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return notFound("warlord rule", args[0], err)
			}
			return e.printRules(a, []api.Rule{r}, false)
		},
	}

	cmd.AddCommand(list, create, trigger, debug, logs, prompt)
	cmd.AddCommand(e.ruleEditCmds(func(a *app.App) ruleOps { return a.Warlord }, "warlord rule", false)...)
	return cmd
}

// loaded opens the app and runs load before the command body.
func (e *env) loaded(cmd *cobra.Command, load func(*app.App) error) (*app.App, error) {
	a, err := e.open(cmd)
	if err != nil {
		return nil, err
	}
	if err := load(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (e *env) printRules(a *app.App, rules []api.Rule, withMetric bool) error {
	loc := a.Settings().Location
	header := []string{"ID", "Name", "Schedule", "Next run", "Active"}
	if withMetric {
		header = append(header, "Metric", "Column")
	}
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		next := "-"
		if r.IsActive {
			next = schedule.NextLabel(r.CronSchedule, timeNow(), loc)
		}
		row := []string{r.ID, r.Name, schedule.Humanize(r.CronSchedule), next, yesNo(r.IsActive)}
		if withMetric {
			row = append(row, orDash(r.Metric()), orDash(r.TargetColumn))
		}
		rows = append(rows, row)
	}
	return printTable(e.out, header, rows)
}

// ruleEditCmds are the edit, toggle and delete commands of a rule screen.
func (e *env) ruleEditCmds(pick func(*app.App) ruleOps, noun string, withMetric bool) []*cobra.Command {
	open := func(cmd *cobra.Command) (*app.App, ruleOps, error) {
		a, err := e.open(cmd)
		if err != nil {
			return nil, nil, err
		}
		ops := pick(a)
		if err := ops.Load(cmd.Context()); err != nil {
			return nil, nil, err
		}
		return a, ops, nil
	}

	var (
		name, prompt string
		sf           scheduleFlags
	)
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the name, prompt or schedule of a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ops, err := open(cmd)
			if err != nil {
				return err
			}
			form, err := ops.EditForm(args[0])
			if err != nil {
				return notFound(noun, args[0], err)
			}
			if cmd.Flags().Changed("name") {
				form.Name = name
			}
			if cmd.Flags().Changed("prompt") {
				form.Prompt = prompt
			}
			if form.Schedule, err = sf.apply(cmd, form.Schedule); err != nil {
				return err
			}
			r, err := ops.Save(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			return e.printRules(a, []api.Rule{r}, withMetric)
		},
	}
	edit.Flags().StringVar(&name, "name", "", "new name")
	edit.Flags().StringVar(&prompt, "prompt", "", "new prompt")
	sf.register(edit)

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ops, err := open(cmd)
			if err != nil {
				return err
			}
			r, err := ops.ToggleActive(cmd.Context(), args[0])
			if err != nil {
				return notFound(noun, args[0], err)
			}
			return e.printRules(a, []api.Rule{r}, withMetric)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + noun + " (undo with Enter)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ops, err := open(cmd)
			if err != nil {
				return err
			}
			return e.runDelete(cmd.Context(), a, noun, args[0], ops.Delete)
		},
	}
	return []*cobra.Command{edit, toggle, del}
}

func notFound(noun, id string, err error) error {
	if errors.Is(err, optimistic.ErrNotFound) {
		return fmt.Errorf("%s %q not found", noun, id)
	}
	return err
}
