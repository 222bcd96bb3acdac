package confirm

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// Lines hands out input lines to several readers in turn, such as a
// confirmation prompt followed by an undo listener.
//
// At most one read of the underlying reader is outstanding. When a caller
// gives up (ctx done) the read keeps running and its line goes to the next
// ReadLine caller, so no line is lost or taken by an abandoned reader. Lines
// owns the reader until that line arrives.
type Lines struct {
	in   *bufio.Reader
	turn chan struct{}

	mu      sync.Mutex
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewLines(in io.Reader) *Lines {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &Lines{in: br, turn: make(chan struct{}, 1)}
}

// ReadLine returns the next line including its newline. It returns
// ctx.Err() when ctx ends first. A final line without a newline is returned
// together with io.EOF. Concurrent callers take turns.
func (l *Lines) ReadLine(ctx context.Context) (string, error) {
	select {
	case l.turn <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.turn }()

	l.mu.Lock()
	ch := l.pending
	if ch == nil {
		ch = make(chan lineResult, 1)
		l.pending = ch
		go func() {
			line, err := l.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		l.mu.Lock()
		l.pending = nil
		l.mu.Unlock()
		return r.line, r.err
	}
}
