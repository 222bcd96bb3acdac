package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trackerdesk/internal/api"
	"trackerdesk/internal/app"
)

func (e *env) sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sheets", Short: "Connected Google Sheets"}

	load := func(cmd *cobra.Command) (*app.App, error) {
		return e.loaded(cmd, func(a *app.App) error { return a.Sheets.Load(cmd.Context()) })
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List connected sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return e.printSheets(a.Sheets.Items())
		},
	}

	connect := &cobra.Command{
		Use:   "connect <sheet-url>",
		Short: "Print the link that grants access to an existing sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			u, err := a.Sheets.Connect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInfo(e.out, "Open this link to finish connecting:")
			_, err = fmt.Fprintln(e.out, u)
			return err
		},
	}

	create := &cobra.Command{
		Use:   "create <title>",
		Short: "Print the link that creates a new tracking sheet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			u, err := a.Sheets.CreateNew(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printInfo(e.out, "Open this link to create the sheet:")
			_, err = fmt.Fprintln(e.out, u)
			return err
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> [name]",
		Short: "Set the display name of a sheet; no name clears it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			sh, err := a.Sheets.Rename(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return notFound("sheet", args[0], err)
			}
			return e.printSheets([]api.Sheet{sh})
		},
	}

	preview := &cobra.Command{
		Use:   "preview <id>",
		Short: "Show the first rows of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			p, err := a.Sheets.Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(p.Headers) == 0 {
				printInfo(e.out, "The sheet is empty.")
				return nil
			}
			if err := printTable(e.out, p.Headers, padRows(p.Rows, len(p.Headers))); err != nil {
				return err
			}
			printInfo(e.out, "%d of %d rows", len(p.Rows), p.TotalRows)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Disconnect a sheet (undo with Enter)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return e.runDelete(cmd.Context(), a, "sheet", args[0], a.Sheets.Delete)
		},
	}

	cmd.AddCommand(list, connect, create, rename, preview, del)
	return cmd
}

func (e *env) printSheets(sheets []api.Sheet) error {
	rows := make([][]string, 0, len(sheets))
	for _, s := range sheets {
		rows = append(rows, []string{s.ID, s.Label(), s.GoogleSheetID, yesNo(s.IsActive)})
	}
	return printTable(e.out, []string{"ID", "Name", "Google sheet", "Active"}, rows)
}

// padRows makes every row n cells wide so ragged sheet rows render.
func padRows(rows [][]string, n int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, n)
		copy(row, r)
		out[i] = row
	}
	return out
}
