package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trackerdesk/internal/api"
	"trackerdesk/internal/confirm"
	"trackerdesk/internal/optimistic"
	logx "trackerdesk/pkg/logx"
)

type SheetsAPI interface {
	Sheets(ctx context.Context) ([]api.Sheet, error)
	ConnectSheet(ctx context.Context, sheetURL string) (api.AuthURL, error)
	CreateSheet(ctx context.Context, title string) (api.AuthURL, error)
	DeleteSheet(ctx context.Context, id string) error
	SheetRuleCount(ctx context.Context, id string) (int, error)
	SheetPreview(ctx context.Context, id string) (api.SheetPreview, error)
	RenameSheet(ctx context.Context, id string, displayName *string) (api.Sheet, error)
}

// Sheets controls the sheet integrations screen.
type Sheets struct {
	client SheetsAPI
	list   *optimistic.List[api.Sheet]
	coord  *optimistic.Coordinator[api.Sheet]
	notify Notifier
	log    logx.Logger
}

func NewSheets(client SheetsAPI, deps Deps) *Sheets {
	log := deps.logger("sheets")
	list := optimistic.NewList(func(s api.Sheet) string { return s.ID })
	return &Sheets{
		client: client,
		list:   list,
		coord:  optimistic.New(list, deps.Prompt, deps.Notify, optimistic.MutatorFunc(client.DeleteSheet), deps.coordinatorOptions(log)...),
		notify: deps.Notify,
		log:    log,
	}
}

func (s *Sheets) Load(ctx context.Context) error {
	sheets, err := s.client.Sheets(ctx)
	if err != nil {
		return err
	}
	s.list.Set(sheets)
	return nil
}

func (s *Sheets) Items() []api.Sheet { return s.list.Items() }

func (s *Sheets) GraceWindow() time.Duration { return s.coord.GraceWindow() }

// Connect returns the URL that grants access to an existing sheet.
func (s *Sheets) Connect(ctx context.Context, sheetURL string) (string, error) {
	if err := required("sheet url", sheetURL); err != nil {
		return "", err
	}
	u, err := s.client.ConnectSheet(ctx, strings.TrimSpace(sheetURL))
	if err != nil {
		return "", err
	}
	return u.URL, nil
}

// CreateNew returns the URL that creates and connects a new sheet.
func (s *Sheets) CreateNew(ctx context.Context, title string) (string, error) {
	if err := required("title", title); err != nil {
		return "", err
	}
	u, err := s.client.CreateSheet(ctx, strings.TrimSpace(title))
	if err != nil {
		return "", err
	}
	return u.URL, nil
}

// Rename sets the display name of sheet id; a blank name clears it.
func (s *Sheets) Rename(ctx context.Context, id, name string) (api.Sheet, error) {
	if !s.list.Contains(id) {
		return api.Sheet{}, optimistic.ErrNotFound
	}
	var dn *string
	if n := strings.TrimSpace(name); n != "" {
		dn = &n
	}
	updated, err := s.client.RenameSheet(ctx, id, dn)
	if err != nil {
		s.log.Warn("rename failed", logx.String("id", id), logx.Err(err))
		s.notify.Error("Failed to rename sheet.")
		return api.Sheet{}, err
	}
	s.list.Replace(updated)
	s.notify.Success("Sheet renamed.")
	return updated, nil
}

func (s *Sheets) Preview(ctx context.Context, id string) (api.SheetPreview, error) {
	return s.client.SheetPreview(ctx, id)
}

// Delete disconnects sheet id with undo. The confirmation names how many
// rules write into the sheet when that count is available.
func (s *Sheets) Delete(ctx context.Context, id string) (optimistic.Outcome, error) {
	sh, ok := s.list.Find(id)
	if !ok {
		return optimistic.Declined, optimistic.ErrNotFound
	}
	msg := fmt.Sprintf("%q will be disconnected.", sh.Label())
	if n, err := s.client.SheetRuleCount(ctx, id); err != nil {
		s.log.Debug("rule count unavailable", logx.String("id", id), logx.Err(err))
	} else if n > 0 {
		msg += fmt.Sprintf(" %d %s using it will stop working.", n, plural(n, "rule", "rules"))
	}
	return s.coord.Delete(ctx, id, optimistic.Request{
		Confirm: confirm.Options{
			Title:       "Disconnect sheet",
			Message:     msg,
			ConfirmText: "Disconnect",
			Danger:      true,
		},
		UndoMessage:    "Sheet disconnected.",
		FailureMessage: "Failed to disconnect sheet.",
	})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
