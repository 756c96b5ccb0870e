package remote

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/vnstat-notify/internal/model"
)

type fakeSession struct {
	CopyFn func(remotePath, localPath string) error
	copied []string
	closed bool
}

func (s *fakeSession) Copy(remotePath, localPath string) error {
	s.copied = append(s.copied, remotePath)
	if s.CopyFn != nil {
		return s.CopyFn(remotePath, localPath)
	}
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// writes content to the local path as if downloaded.
func serving(content string) func(string, string) error {
	return func(_, local string) error {
		return os.WriteFile(local, []byte(content), 0644)
	}
}

func newTestFetcher(t *testing.T, sess *fakeSession, dialErr error) *Fetcher {
	t.Helper()
	return &Fetcher{
		Config: Config{
			SystemName: "remote",
			Host:       "vps.example.com",
			RemotePath: "$HOME/vnstat_notify_data.json",
			LocalPath:  filepath.Join(t.TempDir(), "vps.json"),
			Interface:  "eth0",
		},
		Dial: func(ctx context.Context, cfg Config) (Session, error) {
			if dialErr != nil {
				return nil, dialErr
			}
			return sess, nil
		},
		Now: func() time.Time { return time.Date(2024, time.September, 3, 9, 40, 0, 0, time.Local) },
	}
}

func TestFetchSavedRecord(t *testing.T) {
	sess := &fakeSession{CopyFn: serving(`{
  "system_name": "local",
  "service_status": "vnstat.service is <b>active (running)</b>",
  "stat_date": "2024-09-02",
  "day_traffic": 8246207397,
  "month_traffic": 13223069032,
  "month_period": "2024-08"
}`)}
	f := newTestFetcher(t, sess, nil)

	rec := f.Fetch(context.Background(), model.Date{})

	require.True(t, rec.OK(), rec.Error)
	assert.Equal(t, "remote", rec.SystemName)
	assert.Equal(t, "vnstat.service is <b>active (running)</b>", rec.ServiceStatus)
	assert.Equal(t, "2024-09-02", rec.StatDate.String())
	assert.Equal(t, uint64(8246207397), rec.DayTraffic.Value())
	assert.Equal(t, uint64(13223069032), rec.MonthTraffic.Value())
	assert.Equal(t, "2024-08", rec.MonthPeriod.String())

	assert.Equal(t, []string{"vnstat_notify_data.json"}, sess.copied)
	assert.True(t, sess.closed)
}

func TestFetchSavedErrorRecord(t *testing.T) {
	sess := &fakeSession{CopyFn: serving(`{
  "system_name": "local",
  "stat_date": "2024-09-02",
  "day_traffic": null,
  "month_traffic": null,
  "error": "interface eth0 not found in vnstat data"
}`)}
	f := newTestFetcher(t, sess, nil)

	rec := f.Fetch(context.Background(), model.Date{})

	assert.False(t, rec.OK())
	assert.Equal(t, "remote", rec.SystemName)
	assert.Equal(t, "interface eth0 not found in vnstat data", rec.Error)
	assert.False(t, rec.DayTraffic.Valid())
}

func TestFetchRawSnapshot(t *testing.T) {
	sess := &fakeSession{CopyFn: serving(`{
  "jsonversion": "2",
  "interfaces": [{
    "name": "eth0",
    "traffic": {
      "day": [
        {"date": {"year": 2024, "month": 9, "day": 1}, "rx": 70, "tx": 30},
        {"date": {"year": 2024, "month": 9, "day": 2}, "rx": 100, "tx": 50}
      ],
      "month": [
        {"date": {"year": 2024, "month": 8}, "rx": 1000, "tx": 500},
        {"date": {"year": 2024, "month": 9}, "rx": 170, "tx": 80}
      ]
    }
  }]
}`)}

	t.Run("yesterday", func(t *testing.T) {
		f := newTestFetcher(t, sess, nil)

		rec := f.Fetch(context.Background(), model.Date{})

		require.True(t, rec.OK(), rec.Error)
		assert.Equal(t, "remote", rec.SystemName)
		assert.Equal(t, "2024-09-02", rec.StatDate.String())
		assert.Equal(t, uint64(150), rec.DayTraffic.Value())
		assert.Equal(t, uint64(250), rec.MonthTraffic.Value())
		assert.Equal(t, "2024-09", rec.MonthPeriod.String())
	})

	t.Run("first of month reports previous month", func(t *testing.T) {
		f := newTestFetcher(t, sess, nil)

		rec := f.Fetch(context.Background(), model.Date{Year: 2024, Month: time.September, Day: 1})

		require.True(t, rec.OK(), rec.Error)
		assert.Equal(t, "2024-09-01", rec.StatDate.String())
		assert.Equal(t, uint64(100), rec.DayTraffic.Value())
		assert.Equal(t, uint64(1500), rec.MonthTraffic.Value())
		assert.Equal(t, "2024-08", rec.MonthPeriod.String())
	})
}

func TestFetchExplicitTarget(t *testing.T) {
	f := newTestFetcher(t, nil, errors.New("unreachable"))

	rec := f.Fetch(context.Background(), model.Date{Year: 2024, Month: time.July, Day: 14})

	assert.Equal(t, "2024-07-14", rec.StatDate.String())
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		session *fakeSession
		dialErr error
		want    error
	}{
		{
			name:    "connect",
			dialErr: errors.New("dial tcp 10.0.0.1:22: i/o timeout"),
			want:    ErrConnect,
		},
		{
			name:    "copy",
			session: &fakeSession{CopyFn: func(string, string) error { return errors.New("file does not exist") }},
			want:    ErrCopy,
		},
		{
			name:    "local file missing",
			session: &fakeSession{},
			want:    ErrLocalFile,
		},
		{
			name:    "decode",
			session: &fakeSession{CopyFn: serving("<html>not json</html>")},
			want:    ErrDecode,
		},
		{
			name:    "unknown document",
			session: &fakeSession{CopyFn: serving(`{"hello": "world"}`)},
			want:    ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, tt.session, tt.dialErr)

			_, err := f.fetch(context.Background(), model.Date{Year: 2024, Month: time.September, Day: 2})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			rec := f.Fetch(context.Background(), model.Date{})
			assert.False(t, rec.OK())
			assert.Equal(t, "remote", rec.SystemName)
			assert.Equal(t, "2024-09-02", rec.StatDate.String())
			assert.Equal(t, err.Error(), rec.Error)
			assert.False(t, rec.DayTraffic.Valid())
			assert.False(t, rec.MonthTraffic.Valid())
		})
	}
}

func TestFetchSnapshotMissingInterface(t *testing.T) {
	sess := &fakeSession{CopyFn: serving(`{"jsonversion": "2", "interfaces": [{"name": "ens3", "traffic": {"day": [], "month": []}}]}`)}
	f := newTestFetcher(t, sess, nil)

	rec := f.Fetch(context.Background(), model.Date{})

	assert.False(t, rec.OK())
	assert.Equal(t, "interface eth0 not found in vnstat data", rec.Error)
}

func TestRemotePath(t *testing.T) {
	assert.Equal(t, "data.json", remotePath("$HOME/data.json"))
	assert.Equal(t, "data.json", remotePath("${HOME}/data.json"))
	assert.Equal(t, "stats/data.json", remotePath("~/stats/data.json"))
	assert.Equal(t, "/var/lib/data.json", remotePath("/var/lib/data.json"))
}

func TestDialSFTPMissingKey(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: 1, KeyPath: filepath.Join(t.TempDir(), "missing")}

	_, err := DialSFTP(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read private key")
}

func TestDialSFTPBadKey(t *testing.T) {
	key := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(key, []byte("not a key"), 0600))

	_, err := DialSFTP(context.Background(), Config{Host: "127.0.0.1", KeyPath: key})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse private key")
}

func TestHostKeyCallback(t *testing.T) {
	cb, err := hostKeyCallback(Config{InsecureHostKey: true})
	require.NoError(t, err)
	assert.NotNil(t, cb)

	_, err = hostKeyCallback(Config{KnownHostsPath: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	known := filepath.Join(t.TempDir(), "known_hosts")
	require.NoError(t, os.WriteFile(known, nil, 0600))
	cb, err = hostKeyCallback(Config{KnownHostsPath: known})
	require.NoError(t, err)
	assert.NotNil(t, cb)
}
