package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trackerdesk/internal/app"
	"trackerdesk/internal/config"
	"trackerdesk/internal/schedule"
	logx "trackerdesk/pkg/logx"
)

func (e *env) dashboardCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
		upcoming int
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals and the next scheduled runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			if err := e.renderDashboard(cmd.Context(), a, upcoming); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return e.watchDashboard(cmd.Context(), a, interval, upcoming)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "refresh interval with --watch")
	cmd.Flags().IntVarP(&upcoming, "next", "n", 5, "number of upcoming runs")
	return cmd
}

// watchDashboard re-renders every interval and on config reloads until ctx
// is done.
func (e *env) watchDashboard(ctx context.Context, a *app.App, interval time.Duration, n int) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	g, gctx := errgroup.WithContext(ctx)
	refresh := make(chan struct{}, 1)
	poke := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	g.Go(func() error {
		return a.Watch(gctx, func(*config.Config) { poke() })
	})
	g.Go(func() error {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
			case <-refresh:
			}
			if err := e.renderDashboard(gctx, a, n); err != nil {
				if gctx.Err() != nil {
					return nil
				}
				a.Logger().Warn("dashboard refresh failed", logx.Err(err))
			}
		}
	})
	return g.Wait()
}

func (e *env) renderDashboard(ctx context.Context, a *app.App, n int) error {
	sum, err := a.Dashboard.Summary(ctx)
	if err != nil {
		return err
	}
	if err := printPairs(e.out, [][2]string{
		{"Health rules active", fmt.Sprint(sum.HealthRulesActive)},
		{"Warlord rules active", fmt.Sprint(sum.WarlordRulesActive)},
		{"Sheets connected", fmt.Sprint(sum.SheetsConnected)},
		{"WhatsApp linked", yesNo(sum.HasWhatsApp)},
		{"Recent interactions", fmt.Sprint(sum.RecentInteractions)},
	}); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	next, err := a.Dashboard.NextRuns(ctx, n)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(next))
	for _, u := range next {
		rows = append(rows, []string{
			u.Rule.Name,
			schedule.Humanize(u.Rule.CronSchedule),
			u.At.Format("Mon 02 Jan 15:04"),
			u.Label,
		})
	}
	return printTable(e.out, []string{"Rule", "Schedule", "At", "In"}, rows)
}
