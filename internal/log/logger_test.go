package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: slog.LevelInfo, Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("Collected traffic data", FieldSystem, "local")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `msg="Collected traffic data"`)
	assert.Contains(t, out, "component=app")
	assert.Contains(t, out, "system=local")
	assert.NotContains(t, out, "hidden")
}

func TestNewWritesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "vnstat.log")

	logger, err := New(Config{Level: slog.LevelDebug, Console: &buf, LogFile: path, MaxSizeMB: 1, MaxBackups: 5})
	require.NoError(t, err)

	logger.WithComponent(ComponentRemote).Error("Failed to fetch remote vnstat data", FieldHost, "vps")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "component=remote")
	assert.Contains(t, string(data), "host=vps")
	assert.Equal(t, buf.String(), string(data))
}

func TestWithKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Console: &buf, Component: ComponentVnstat})
	require.NoError(t, err)

	child := logger.With(FieldTargetDate, "2024-09-02")
	assert.Equal(t, ComponentVnstat, child.Component())

	child.Warn("Target date missing")
	assert.Contains(t, buf.String(), "target_date=2024-09-02")
	assert.Contains(t, buf.String(), "component=vnstat")
}

func TestContextVariants(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: slog.LevelDebug, Console: &buf})
	require.NoError(t, err)

	ctx := context.Background()
	l := logger.WithComponent(ComponentTelegram)
	l.DebugContext(ctx, "debug line", FieldCommand, "vnstat --json")
	l.InfoContext(ctx, "info line", FieldDuration, int64(12))
	l.WarnContext(ctx, "warn line", FieldStatusCode, 429)
	l.ErrorContext(ctx, "error line", FieldInterface, "eth0")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	for i, want := range []string{
		`level=DEBUG msg="debug line" component=telegram command="vnstat --json"`,
		`level=INFO msg="info line" component=telegram duration_ms=12`,
		`level=WARN msg="warn line" component=telegram status_code=429`,
		`level=ERROR msg="error line" component=telegram interface=eth0`,
	} {
		assert.Contains(t, lines[i], want)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.Equal(t, ComponentApp, logger.Component())
	assert.NoError(t, logger.Close())
	logger.Error("dropped")
}

func TestCloseNil(t *testing.T) {
	var logger *Logger
	assert.NoError(t, logger.Close())
}
