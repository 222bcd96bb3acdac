package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"trackerdesk/internal/config"
)

const sampleConfig = `api:
  base_url: http://localhost:8000
  timeout: 15s
  rate_per_sec: 5
logging:
  level: info
  console: false
  file:
    enabled: false
    path: ""
  telegram:
    enabled: false
    thread_id: 0
    min_level: warn
    rate_per_sec: 1
telegram:
  token: ""
  group_log: ""
storage:
  driver: file
  path: ~/.config/trackerdesk/state
undo:
  grace_window: 5s
  toast_ttl: 4s
  restore: append
preferences:
  language: en
  timezone: ""
`

func (e *env) configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Create and check the config file"}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the config file without contacting the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := config.NewConfigManager(e.cfgPath)
			cfg, err := m.Parse()
			if err != nil {
				return err
			}
			s, err := config.Resolve(cfg)
			if err != nil {
				return err
			}
			return printPairs(e.out, [][2]string{
				{"File", e.cfgPath},
				{"API", cfg.API.BaseURL},
				{"Storage", orDash(cfg.Storage.Driver)},
				{"Grace window", s.GraceWindow.String()},
				{"Toast TTL", s.ToastTTL.String()},
				{"Restore at index", yesNo(s.RestoreIndex)},
				{"Time zone", s.Location.String()},
			})
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(e.cfgPath); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", e.cfgPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(e.cfgPath), 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(e.cfgPath, []byte(sampleConfig), 0o600); err != nil {
				return err
			}
			printInfo(e.out, "Wrote %s", e.cfgPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(validate, initCmd)
	return cmd
}
