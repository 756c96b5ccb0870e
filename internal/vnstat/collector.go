package vnstat

import (
	"context"
	"strings"

	applog "github.com/zhaobenny/vnstat-notify/internal/log"
	"github.com/zhaobenny/vnstat-notify/internal/model"
)

// DefaultInterface is used when no interface is configured.
const DefaultInterface = "eth0"

// StatusSource describes the run state of the accounting daemon.
// An empty string means the state is unknown.
type StatusSource interface {
	ServiceStatus(ctx context.Context) string
}

// Collector builds the traffic record of the local system.
type Collector struct {
	Runner Runner
	Status StatusSource

	// Command prints day and month history. When MonthCommand is set,
	// Command is only used for the day history.
	Command      []string
	MonthCommand []string

	Interface string
	Policy    MonthKeyPolicy
	Logger    *applog.Logger
}

// Collect returns the record of systemName for target. It never fails:
// retrieval errors are logged and end up in the record's Error field.
func (c *Collector) Collect(ctx context.Context, systemName string, target model.Date) model.TrafficRecord {
	logger := c.logger().With(
		applog.FieldSystem, systemName,
		applog.FieldInterface, c.iface(),
		applog.FieldTargetDate, target.String())

	var status string
	if c.Status != nil {
		status = c.Status.ServiceStatus(ctx)
	}

	daySnap, monthSnap, failed, err := c.fetch(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to fetch vnstat data",
			applog.FieldOperation, applog.OpCollect,
			applog.FieldCommand, strings.Join(failed, " "),
			applog.FieldErrorKind, KindOf(err).String(),
			applog.FieldError, err)
		return model.ErrorRecord(systemName, status, target, err.Error())
	}

	rec, err := Normalize(systemName, status, daySnap, monthSnap, c.iface(), target, c.Policy)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve traffic period",
			applog.FieldOperation, applog.OpResolve,
			applog.FieldErrorKind, KindOf(err).String(),
			applog.FieldError, err)
		return rec
	}

	logger.InfoContext(ctx, "Collected traffic data",
		"day_traffic", rec.DayTraffic.String(),
		"month_traffic", rec.MonthTraffic.String(),
		"month_period", rec.MonthPeriod.String())
	return rec
}

// fetch runs the configured command(s). With a single command the same
// snapshot serves both granularities. On error, failed is the command
// that did not succeed.
func (c *Collector) fetch(ctx context.Context) (day, month *model.Snapshot, failed []string, err error) {
	command := c.Command
	if len(command) == 0 {
		command = DefaultCommand
	}

	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	day, err = runner.Run(ctx, command)
	if err != nil {
		return nil, nil, command, err
	}
	if len(c.MonthCommand) == 0 {
		return day, day, nil, nil
	}

	month, err = runner.Run(ctx, c.MonthCommand)
	if err != nil {
		return nil, nil, c.MonthCommand, err
	}
	return day, month, nil, nil
}

func (c *Collector) iface() string {
	if c.Interface == "" {
		return DefaultInterface
	}
	return c.Interface
}

func (c *Collector) logger() *applog.Logger {
	if c.Logger == nil {
		return applog.Discard()
	}
	return c.Logger.WithComponent(applog.ComponentVnstat)
}

// Normalize resolves both granularities and combines them into one record.
// On failure the returned record carries the error and no traffic, and the
// error is returned as well so the caller can log it.
func Normalize(systemName, status string, daySnap, monthSnap *model.Snapshot, iface string, target model.Date, policy MonthKeyPolicy) (model.TrafficRecord, error) {
	day, err := ResolvePeriod(daySnap, iface, Day, target, policy)
	if err != nil {
		return model.ErrorRecord(systemName, status, target, err.Error()), err
	}
	month, err := ResolvePeriod(monthSnap, iface, Month, target, policy)
	if err != nil {
		return model.ErrorRecord(systemName, status, target, err.Error()), err
	}
	return model.NewRecord(systemName, status, target, day.Total, month.Total, month.Month), nil
}
