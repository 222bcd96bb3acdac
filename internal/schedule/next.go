package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
)

// parser accepts standard five-field crontab expressions plus descriptors
// such as "@hourly", matching what the backend scheduler runs.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports whether expr is a cron expression the backend can schedule.
// Opaque expressions (not built by Encode) are accepted as long as they parse.
func Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("cron schedule required")
	}
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}

// Next returns the first firing of expr strictly after from, evaluated in loc.
// A nil loc means time.Local.
func Next(expr string, from time.Time, loc *time.Location) (time.Time, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.Local
	}
	next := sched.Next(from.In(loc))
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("cron schedule %q never fires", expr)
	}
	return next, nil
}

// Upcoming returns up to n consecutive firings of expr after from. A
// non-positive n yields an empty slice.
func Upcoming(expr string, from time.Time, loc *time.Location, n int) ([]time.Time, error) {
	if n <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, n)
	cur := from
	for i := 0; i < n; i++ {
		next, err := Next(expr, cur, loc)
		if err != nil {
			return out, err
		}
		out = append(out, next)
		cur = next
	}
	return out, nil
}

// NextLabel describes the next firing relative to now, e.g. "in 3 hours".
// Unparseable expressions yield an empty label.
func NextLabel(expr string, now time.Time, loc *time.Location) string {
	next, err := Next(expr, now, loc)
	if err != nil {
		return ""
	}
	return humanize.RelTime(next, now, "ago", "from now")
}
