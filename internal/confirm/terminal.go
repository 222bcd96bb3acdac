package confirm

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Terminal prompts on a line-oriented stream (usually stdin/stdout).
//
// Answers "y" and "yes" (or the lowercased confirm label) confirm; anything
// else, including EOF, declines. AssumeYes skips the prompt entirely.
type Terminal struct {
	Lines     *Lines
	Out       io.Writer
	AssumeYes bool
}

// NewTerminal wraps in/out. Callers that read the same input elsewhere
// should build the Terminal around a shared *Lines instead.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{Lines: NewLines(in), Out: out}
}

func (t *Terminal) Confirm(ctx context.Context, opts Options) bool {
	if t.AssumeYes {
		return true
	}
	yes, no := opts.Labels()

	title := opts.Title
	if opts.Danger {
		title = "! " + title
	}
	fmt.Fprintf(t.Out, "%s\n%s\n[%s/%s] (y/N): ", title, opts.Message, yes, no)

	line, err := t.Lines.ReadLine(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(t.Out)
		return false
	}
	if err != nil && strings.TrimSpace(line) == "" {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(line))
	return v == "y" || v == "yes" || v == strings.ToLower(yes)
}
