package status

import (
	"bufio"
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	systemdTimestampLayout = "Mon 2006-01-02 15:04:05 MST"
	displayLayout          = "2006-01-02 15:04:05"
)

// properties requested from `systemctl show`
var properties = []string{
	"Id",
	"LoadState",
	"ActiveState",
	"SubState",
	"UnitFileState",
	"ActiveEnterTimestamp",
	"InactiveEnterTimestamp",
}

// Unit is the subset of systemd unit properties we report on.
type Unit struct {
	ID                     string
	LoadState              string
	ActiveState            string
	SubState               string
	UnitFileState          string
	ActiveEnterTimestamp   time.Time
	InactiveEnterTimestamp time.Time
}

// unitFields maps `systemctl show` keys to Unit members.
var unitFields = map[string]func(u *Unit, v string){
	"Id":                     func(u *Unit, v string) { u.ID = v },
	"LoadState":              func(u *Unit, v string) { u.LoadState = v },
	"ActiveState":            func(u *Unit, v string) { u.ActiveState = v },
	"SubState":               func(u *Unit, v string) { u.SubState = v },
	"UnitFileState":          func(u *Unit, v string) { u.UnitFileState = v },
	"ActiveEnterTimestamp":   func(u *Unit, v string) { u.ActiveEnterTimestamp = parseTimestamp(v) },
	"InactiveEnterTimestamp": func(u *Unit, v string) { u.InactiveEnterTimestamp = parseTimestamp(v) },
}

// ParseUnit parses `systemctl show` output (one Key=Value per line).
// Unknown keys and malformed lines are ignored.
func ParseUnit(out string) Unit {
	var u Unit
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		if set, known := unitFields[key]; known {
			set(&u, value)
		}
	}
	return u
}

func parseTimestamp(v string) time.Time {
	t, err := time.Parse(systemdTimestampLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Describe renders the unit state as an HTML sentence, e.g.
// "vnstat.service is <b>loaded</b>, <b>active</b> (running) since 2024-09-12 09:40:00, unit is <b>enabled</b>".
// unit names the queried unit when systemctl did not report an Id.
func (u Unit) Describe(unit string) string {
	if u.ID == "" || u.LoadState == "" || u.ActiveState == "" {
		return fmt.Sprintf("%s.service: could not parse status: missing unit properties", html.EscapeString(unit))
	}

	var since string
	switch {
	case u.ActiveState == "active" && !u.ActiveEnterTimestamp.IsZero():
		since = " since " + u.ActiveEnterTimestamp.Format(displayLayout)
	case u.ActiveState == "inactive" && !u.InactiveEnterTimestamp.IsZero():
		since = " since " + u.InactiveEnterTimestamp.Format(displayLayout)
	}

	return fmt.Sprintf("%s is <b>%s</b>, <b>%s</b> (%s)%s, unit is <b>%s</b>",
		html.EscapeString(u.ID),
		html.EscapeString(u.LoadState),
		html.EscapeString(u.ActiveState),
		html.EscapeString(u.SubState),
		since,
		html.EscapeString(u.UnitFileState))
}
