package console

import (
	"context"
	"sort"
	"time"

	"trackerdesk/internal/api"
	"trackerdesk/internal/schedule"
)

type DashboardAPI interface {
	DashboardSummary(ctx context.Context) (api.DashboardSummary, error)
	Rules(ctx context.Context, ruleType string) ([]api.Rule, error)
}

// Upcoming is the next run of one active rule.
type Upcoming struct {
	Rule  api.Rule
	At    time.Time
	Label string
}

type Dashboard struct {
	client DashboardAPI
	now    func() time.Time
	loc    *time.Location
}

// NewDashboard computes next runs in loc (local time when nil).
func NewDashboard(client DashboardAPI, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.Local
	}
	return &Dashboard{client: client, now: time.Now, loc: loc}
}

func (d *Dashboard) Summary(ctx context.Context) (api.DashboardSummary, error) {
	return d.client.DashboardSummary(ctx)
}

// NextRuns lists active rules of every type ordered by next run, at most n
// (all when n <= 0). Rules whose schedule does not parse are skipped.
func (d *Dashboard) NextRuns(ctx context.Context, n int) ([]Upcoming, error) {
	rules, err := d.client.Rules(ctx, "")
	if err != nil {
		return nil, err
	}
	now := d.now()
	out := make([]Upcoming, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		at, err := schedule.Next(r.CronSchedule, now, d.loc)
		if err != nil {
			continue
		}
		out = append(out, Upcoming{Rule: r, At: at, Label: schedule.NextLabel(r.CronSchedule, now, d.loc)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
