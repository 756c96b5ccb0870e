package status

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os/exec"
	"strings"
	"time"

	"github.com/kardianos/service"
	"github.com/shirou/gopsutil/v3/process"

	applog "github.com/zhaobenny/vnstat-notify/internal/log"
)

const errorOutputLimit = 100

// Lookup reports the run state of the accounting daemon. It asks systemd
// first and falls back to the platform service manager plus a process scan
// when systemctl cannot be run.
type Lookup struct {
	Unit    string // systemd unit, e.g. "vnstat"
	Process string // daemon binary, e.g. "vnstatd"
	Logger  *applog.Logger

	run     func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
	manager func(unit string) (service.Status, error)
	process func(ctx context.Context, name string) (proc, bool, error)
}

type proc struct {
	pid     int32
	started time.Time
}

// New creates a Lookup for the given unit and daemon process name.
func New(unit, processName string, logger *applog.Logger) *Lookup {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Lookup{
		Unit:    unit,
		Process: processName,
		Logger:  logger.WithComponent(applog.ComponentStatus),
		run:     execRun,
		manager: managerStatus,
		process: findProcess,
	}
}

// ServiceStatus returns an HTML sentence describing the daemon, or ""
// when systemctl printed nothing.
func (l *Lookup) ServiceStatus(ctx context.Context) string {
	stdout, stderr, err := l.run(ctx, "systemctl", "show", l.Unit, "--property="+strings.Join(properties, ","))

	if stderr = strings.TrimSpace(stderr); stderr != "" {
		l.Logger.WarnContext(ctx, "systemctl reported an error", applog.FieldCommand, "systemctl show "+l.Unit, applog.FieldError, stderr)
		return fmt.Sprintf("%s.service: status <b>unknown</b>: %s", l.Unit, html.EscapeString(truncate(stderr, errorOutputLimit)))
	}

	if err != nil {
		l.Logger.WarnContext(ctx, "systemctl unavailable, using fallback", applog.FieldError, err)
		return l.fallback(ctx, err)
	}

	if strings.TrimSpace(stdout) == "" {
		l.Logger.DebugContext(ctx, "systemctl printed no properties", applog.FieldCommand, "systemctl show "+l.Unit)
		return ""
	}
	return ParseUnit(stdout).Describe(l.Unit)
}

func (l *Lookup) fallback(ctx context.Context, cause error) string {
	st, serr := l.manager(l.Unit)
	p, found, perr := l.process(ctx, l.Process)
	if serr != nil && perr != nil {
		l.Logger.ErrorContext(ctx, "Failed to fetch service status", applog.FieldError, serr, "process_error", perr)
		return fmt.Sprintf("%s.service: an error occurred while trying to fetch the status: '%s'", l.Unit, html.EscapeString(cause.Error()))
	}

	state := "unknown"
	if serr == nil {
		switch st {
		case service.StatusRunning:
			state = "running"
		case service.StatusStopped:
			state = "stopped"
		}
	}

	msg := fmt.Sprintf("%s.service is <b>%s</b>", l.Unit, state)
	switch {
	case found && !p.started.IsZero():
		msg += fmt.Sprintf(", %s (pid %d) running since %s", l.Process, p.pid, p.started.Format(displayLayout))
	case found:
		msg += fmt.Sprintf(", %s (pid %d) running", l.Process, p.pid)
	case perr == nil:
		msg += fmt.Sprintf(", no %s process found", l.Process)
	}
	return msg
}

func execRun(ctx context.Context, name string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// noopProgram lets us build a service handle for a unit we do not own,
// only to query its status.
type noopProgram struct{}

func (noopProgram) Start(service.Service) error { return nil }
func (noopProgram) Stop(service.Service) error  { return nil }

func managerStatus(unit string) (service.Status, error) {
	svc, err := service.New(noopProgram{}, &service.Config{Name: unit})
	if err != nil {
		return service.StatusUnknown, err
	}
	return svc.Status()
}

func findProcess(ctx context.Context, name string) (proc, bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return proc{}, false, err
	}
	for _, p := range procs {
		n, err := p.NameWithContext(ctx)
		if err != nil || n != name {
			continue
		}
		var started time.Time
		if ms, err := p.CreateTimeWithContext(ctx); err == nil {
			started = time.UnixMilli(ms)
		}
		return proc{pid: p.Pid, started: started}, true, nil
	}
	return proc{}, false, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
