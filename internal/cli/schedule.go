package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trackerdesk/internal/schedule"
)

// scheduleCmd works offline; it never opens the config.
func (e *env) scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schedule", Short: "Build and explain cron schedules"}

	var sf scheduleFlags
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Print the cron string for a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := sf.spec()
			if err != nil {
				return err
			}
			cron := schedule.Encode(spec)
			if err := schedule.Validate(cron); err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, cron)
			return err
		},
	}
	sf.register(encode)

	humanize := &cobra.Command{
		Use:   "humanize <cron>",
		Short: "Describe a cron string in words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if !schedule.Recognized(raw) {
				printInfo(e.out, "Not a schedule the picker can edit; shown as is.")
			}
			_, err := fmt.Fprintln(e.out, schedule.Humanize(raw))
			return err
		},
	}

	var (
		count int
		tz    string
	)
	next := &cobra.Command{
		Use:   "next <cron>",
		Short: "List the next runs of a cron string",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			loc := time.Local
			if tz != "" {
				l, err := time.LoadLocation(tz)
				if err != nil {
					return err
				}
				loc = l
			}
			raw := strings.Join(args, " ")
			now := timeNow()
			runs, err := schedule.Upcoming(raw, now, loc, count)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(runs))
			for _, at := range runs {
				rows = append(rows, []string{at.Format("Mon 02 Jan 2006 15:04 MST")})
			}
			if err := printTable(e.out, []string{"Run"}, rows); err != nil {
				return err
			}
			printInfo(e.out, "Next run %s.", schedule.NextLabel(raw, now, loc))
			return nil
		},
	}
	next.Flags().IntVarP(&count, "count", "n", 5, "number of runs")
	next.Flags().StringVar(&tz, "tz", "", "IANA time zone (default local)")

	cmd.AddCommand(encode, humanize, next)
	return cmd
}
