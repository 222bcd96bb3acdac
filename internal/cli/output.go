package cli

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"trackerdesk/internal/eventbus"
	"trackerdesk/internal/notifier"
)

// startToastPrinter prints every shown toast to out. The returned stop
// function prints whatever is still buffered before returning.
func startToastPrinter(bus eventbus.Bus, out io.Writer) func() {
	ch, unsub := bus.Subscribe(64, notifier.EventShown)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			data, ok := ev.Data.(notifier.Event)
			if !ok {
				continue
			}
			printToast(out, data.Toast)
		}
	}()
	return func() {
		unsub()
		<-done
	}
}

func printToast(out io.Writer, t notifier.Toast) {
	msg := t.Message
	if t.Undoable {
		msg += " Press Enter to undo."
	}
	switch t.Kind {
	case notifier.KindError:
		fmt.Fprint(out, pterm.Error.Sprintln(msg))
	case notifier.KindInfo:
		fmt.Fprint(out, pterm.Info.Sprintln(msg))
	default:
		fmt.Fprint(out, pterm.Success.Sprintln(msg))
	}
}

func printInfo(out io.Writer, format string, args ...any) {
	fmt.Fprint(out, pterm.Info.Sprintfln(format, args...))
}

// printTable renders rows under header. An empty table prints a hint.
func printTable(out io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		printInfo(out, "Nothing to show.")
		return nil
	}
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, s)
	return err
}

// printPairs renders a two column key/value table.
func printPairs(out io.Writer, pairs [][2]string) error {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return printTable(out, []string{"Field", "Value"}, rows)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
