package vnstat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/zhaobenny/vnstat-notify/internal/model"
	"github.com/zhaobenny/vnstat-notify/internal/parser"
)

// outputLimit caps how much of stdout/stderr ends up in an error message.
const outputLimit = 100

// DefaultCommand prints both day and month history as JSON.
var DefaultCommand = []string{"vnstat", "--json"}

// Runner runs the accounting command and decodes its output.
type Runner interface {
	Run(ctx context.Context, command []string) (*model.Snapshot, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// Run executes command and decodes its stdout. Failures are returned as *Error
// with KindCommand, KindParse or KindFetch.
func (ExecRunner) Run(ctx context.Context, command []string) (*model.Snapshot, error) {
	if len(command) == 0 {
		return nil, newError(KindFetch, ErrFetch.Error(), errors.New("empty command"))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return nil, newError(KindCommand, commandFailure(command, exitErr.ExitCode(), stdout.String(), stderr.String()), nil)
		}
		return nil, newError(KindFetch, ErrFetch.Error(), err)
	}

	snap, err := parser.DecodeSnapshot(stdout.Bytes())
	if err != nil {
		return nil, newError(KindParse, ErrParse.Error(), err)
	}
	return snap, nil
}

func commandFailure(command []string, code int, stdout, stderr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error running command `%s`: returncode: %d", strings.Join(command, " "), code)
	if s := strings.TrimSpace(stdout); s != "" {
		fmt.Fprintf(&b, ", stdout: `%s`", truncate(s, outputLimit))
	}
	if s := strings.TrimSpace(stderr); s != "" {
		fmt.Fprintf(&b, ", stderr: `%s`", truncate(s, outputLimit))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
