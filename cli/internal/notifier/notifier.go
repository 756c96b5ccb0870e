// Package notifier runs one collect, format and deliver cycle.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"time"

	"github.com/zhaobenny/vnstat-notify/cli/internal/output"
	"github.com/zhaobenny/vnstat-notify/cli/internal/telegram"
	applog "github.com/zhaobenny/vnstat-notify/internal/log"
	"github.com/zhaobenny/vnstat-notify/internal/model"
)

// Collector produces the record of the local system.
type Collector interface {
	Collect(ctx context.Context, systemName string, target model.Date) model.TrafficRecord
}

// Fetcher produces the record of the remote system.
type Fetcher interface {
	Fetch(ctx context.Context, target model.Date) model.TrafficRecord
}

// Sender delivers a formatted message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// SaveFunc persists a record, see recordfile.Save.
type SaveFunc func(path string, rec model.TrafficRecord) error

// Notifier wires the collaborators of a run. Remote and Sender may be nil
// when the selected options do not need them.
type Notifier struct {
	Local     Collector
	LocalName string
	Remote    Fetcher
	Sender    Sender

	Save     SaveFunc
	SavePath string

	Out    io.Writer
	Now    func() time.Time
	Logger *applog.Logger
}

// Options selects what a run does.
type Options struct {
	// Target overrides the reported day; yesterday when zero.
	Target model.Date

	SaveOnly  bool
	NoCollect bool
	Print     bool
	JSON      bool
	Compact   bool
}

// Run performs one cycle. Collection problems never fail a run, they end
// up in the report. The returned error means the run produced nothing:
// the record was not saved or the report was not delivered.
func (n *Notifier) Run(ctx context.Context, opts Options) error {
	target := opts.Target
	if target.IsZero() {
		target = model.DateOf(n.now()).AddDays(-1)
	}
	logger := n.logger().With(applog.FieldTargetDate, target.String())

	local := n.Local.Collect(ctx, n.LocalName, target)

	if opts.SaveOnly {
		if err := n.Save(n.SavePath, local); err != nil {
			logger.ErrorContext(ctx, "Failed to save record",
				applog.FieldOperation, applog.OpSave,
				applog.FieldPath, n.SavePath,
				applog.FieldError, err)
			return fmt.Errorf("save record: %w", err)
		}
		logger.InfoContext(ctx, "Record saved", applog.FieldPath, n.SavePath, applog.FieldSystem, local.SystemName)
		return nil
	}

	records := []model.TrafficRecord{local}
	if !opts.NoCollect {
		if n.Remote == nil {
			logger.WarnContext(ctx, "No remote system configured, reporting local data only")
		} else {
			records = append(records, n.Remote.Fetch(ctx, target))
		}
	}

	switch {
	case opts.JSON:
		return output.PrintJSON(n.out(), records)
	case opts.Print:
		output.PrintTable(n.out(), records, output.TableOptions{ForceCompact: opts.Compact})
		return nil
	}

	return n.deliver(ctx, logger, output.FinalMessage(records...))
}

func (n *Notifier) deliver(ctx context.Context, logger *applog.Logger, msg string) error {
	if n.Sender == nil {
		return errors.New("no sender configured")
	}

	err := n.Sender.Send(ctx, msg)
	if err == nil {
		return nil
	}

	logger.ErrorContext(ctx, "Failed to send report",
		applog.FieldOperation, applog.OpSend,
		applog.FieldError, err)

	// The API answered but refused the report, so a short plain notice
	// can still get through. A transport fault would fail again.
	if errors.Is(err, telegram.ErrUnexpectedStatus) {
		if derr := n.Sender.Send(ctx, diagnostic(err)); derr != nil {
			logger.ErrorContext(ctx, "Failed to send diagnostic message",
				applog.FieldOperation, applog.OpSend,
				applog.FieldError, derr)
		}
	}

	return fmt.Errorf("send report: %w", err)
}

func diagnostic(err error) string {
	return fmt.Sprintf("<b>vnstat-notify</b>: the traffic report could not be delivered: %s", html.EscapeString(err.Error()))
}

func (n *Notifier) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Notifier) out() io.Writer {
	if n.Out == nil {
		return os.Stdout
	}
	return n.Out
}

func (n *Notifier) logger() *applog.Logger {
	if n.Logger == nil {
		return applog.Discard()
	}
	return n.Logger.WithComponent(applog.ComponentNotifier)
}
