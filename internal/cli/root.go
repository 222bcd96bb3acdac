// Package cli is the trackerdesk command line.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"trackerdesk/internal/app"
	"trackerdesk/internal/confirm"
)

const closeTimeout = 3 * time.Second

// Option configures Execute.
type Option func(*env)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(e *env) {
		e.in = confirm.NewLines(in)
		e.out = out
	}
}

// WithAppOptions is passed through to app.New.
func WithAppOptions(opts ...app.Option) Option {
	return func(e *env) { e.appOpts = append(e.appOpts, opts...) }
}

// env is the state shared by every command of one invocation.
type env struct {
	cfgPath   string
	assumeYes bool

	in  *confirm.Lines
	out io.Writer

	appOpts    []app.Option
	app        *app.App
	stopToasts func()
}

// Execute runs the command line in args and releases everything it opened.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	e := &env{in: confirm.NewLines(os.Stdin), out: os.Stdout}
	for _, o := range opts {
		o(e)
	}
	root := e.rootCmd()
	root.SetArgs(args)
	root.SetOut(e.out)
	root.SetErr(e.out)
	err := root.ExecuteContext(ctx)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	return err
}

func (e *env) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trackerdesk",
		Short: "Manage habit tracking rules, sheets and voice check-ins",
		Long: `trackerdesk is a console for the tracker backend.

Examples:
  trackerdesk rules list
  trackerdesk rules create --name Water --sheet s1 --metric Glasses --prompt "How many?" --freq daily --hour 20
  trackerdesk sheets delete s1
  trackerdesk dashboard --watch
  trackerdesk schedule humanize "0 */3 * * *"`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&e.cfgPath, "config", "c", defaultConfigPath(), "config file (JSON or YAML)")
	root.PersistentFlags().BoolVarP(&e.assumeYes, "yes", "y", false, "answer yes to confirmations")

	root.AddCommand(
		e.rulesCmd(),
		e.warlordCmd(),
		e.sheetsCmd(),
		e.dashboardCmd(),
		e.scheduleCmd(),
		e.sessionCmd(),
		e.prefsCmd(),
		e.healthCmd(),
		e.configCmd(),
	)
	return root
}

// open builds the App on first use. Commands that never talk to the
// backend do not need a valid config.
func (e *env) open(cmd *cobra.Command) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	term := &confirm.Terminal{Lines: e.in, Out: e.out, AssumeYes: e.assumeYes}
	opts := append([]app.Option{app.WithPrompter(term)}, e.appOpts...)

	a, err := app.New(cmd.Context(), e.cfgPath, opts...)
	if err != nil {
		return nil, err
	}
	e.app = a
	e.stopToasts = startToastPrinter(a.Bus(), e.out)
	return a, nil
}

func (e *env) close() error {
	if e.stopToasts != nil {
		e.stopToasts()
		e.stopToasts = nil
	}
	if e.app == nil {
		return nil
	}
	err := e.app.CloseTimeout(closeTimeout)
	e.app = nil
	return err
}

// defaultConfigPath is $TRACKERDESK_CONFIG, else config.yaml in the user
// config directory.
func defaultConfigPath() string {
	if p := os.Getenv("TRACKERDESK_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "trackerdesk", "config.yaml")
}
