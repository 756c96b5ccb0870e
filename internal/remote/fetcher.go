// Package remote fetches the traffic record of a second machine over SSH.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	applog "github.com/zhaobenny/vnstat-notify/internal/log"
	"github.com/zhaobenny/vnstat-notify/internal/model"
	"github.com/zhaobenny/vnstat-notify/internal/parser"
	"github.com/zhaobenny/vnstat-notify/internal/vnstat"
)

// Stage errors. Fetch failures wrap exactly one of these.
var (
	ErrConnect   = errors.New("ssh connection failed")
	ErrCopy      = errors.New("remote file copy failed")
	ErrLocalFile = errors.New("downloaded file unavailable")
	ErrDecode    = errors.New("failed to decode remote data")
)

// Config describes where the remote record lives and how to reach it.
type Config struct {
	SystemName string

	Host    string
	Port    int
	User    string
	KeyPath string

	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath  string
	InsecureHostKey bool

	RemotePath string
	LocalPath  string

	// Used when the remote file is raw vnstat output.
	Interface string
	Policy    vnstat.MonthKeyPolicy

	Timeout time.Duration
}

// Session is an open connection able to copy files from the remote host.
type Session interface {
	Copy(remotePath, localPath string) error
	Close() error
}

// DialFunc opens a Session.
type DialFunc func(ctx context.Context, cfg Config) (Session, error)

// Fetcher retrieves the remote record.
type Fetcher struct {
	Config Config
	Dial   DialFunc
	Now    func() time.Time
	Logger *applog.Logger
}

// NewFetcher creates a Fetcher that connects with SSH and copies over SFTP.
func NewFetcher(cfg Config, logger *applog.Logger) *Fetcher {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Fetcher{
		Config: cfg,
		Dial:   DialSFTP,
		Now:    time.Now,
		Logger: logger.WithComponent(applog.ComponentRemote),
	}
}

// Fetch returns the remote system's record for target (yesterday by the
// local clock when target is zero). It never fails: any error is logged and
// returned inside the record.
func (f *Fetcher) Fetch(ctx context.Context, target model.Date) model.TrafficRecord {
	if target.IsZero() {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		target = model.DateOf(now()).AddDays(-1)
	}

	rec, err := f.fetch(ctx, target)
	if err != nil {
		f.logger().ErrorContext(ctx, "Failed to fetch remote vnstat data",
			applog.FieldOperation, applog.OpFetch,
			applog.FieldHost, f.Config.Host,
			applog.FieldPath, f.Config.RemotePath,
			applog.FieldError, err)
		return model.ErrorRecord(f.Config.SystemName, "", target, err.Error())
	}

	f.logger().InfoContext(ctx, "Fetched remote vnstat data",
		applog.FieldHost, f.Config.Host,
		applog.FieldSystem, rec.SystemName,
		"stat_date", rec.StatDate.String())
	return rec
}

func (f *Fetcher) fetch(ctx context.Context, target model.Date) (model.TrafficRecord, error) {
	dial := f.Dial
	if dial == nil {
		dial = DialSFTP
	}

	sess, err := dial(ctx, f.Config)
	if err != nil {
		return model.TrafficRecord{}, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer sess.Close()

	if err := sess.Copy(remotePath(f.Config.RemotePath), f.Config.LocalPath); err != nil {
		return model.TrafficRecord{}, fmt.Errorf("%w: %s: %w", ErrCopy, f.Config.RemotePath, err)
	}

	data, err := os.ReadFile(f.Config.LocalPath)
	if err != nil {
		return model.TrafficRecord{}, fmt.Errorf("%w: %w", ErrLocalFile, err)
	}

	doc, err := parser.DecodeDocument(data)
	if err != nil {
		return model.TrafficRecord{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if doc.Snapshot != nil {
		iface := f.Config.Interface
		if iface == "" {
			iface = vnstat.DefaultInterface
		}
		return vnstat.Normalize(f.Config.SystemName, "", doc.Snapshot, doc.Snapshot, iface, target, f.Config.Policy)
	}

	// The peer labels its record with its own local name.
	r := *doc.Record
	name := f.Config.SystemName
	if name == "" {
		name = r.SystemName
	}
	if r.StatDate.IsZero() {
		r.StatDate = target
	}
	if !r.OK() {
		return model.ErrorRecord(name, r.ServiceStatus, r.StatDate, r.Error), nil
	}
	return model.NewRecord(name, r.ServiceStatus, r.StatDate, r.DayTraffic, r.MonthTraffic, r.MonthPeriod), nil
}

func (f *Fetcher) logger() *applog.Logger {
	if f.Logger == nil {
		return applog.Discard()
	}
	return f.Logger
}

// remotePath makes home-relative paths relative, since SFTP sessions start
// in the user's home directory and do not expand variables.
func remotePath(p string) string {
	for _, prefix := range []string{"$HOME/", "${HOME}/", "~/"} {
		if strings.HasPrefix(p, prefix) {
			return strings.TrimPrefix(p, prefix)
		}
	}
	return p
}
